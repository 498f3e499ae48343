package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vibecoder/backend/internal/database"
	"github.com/vibecoder/backend/internal/models"
)

type ReportRepository struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, target_type, target_id, reporter_id, reason, memo, status, created_at, resolved_at`

func scanReport(row interface{ Scan(...any) error }, rep *models.Report) error {
	return row.Scan(
		&rep.ID,
		&rep.TargetType,
		&rep.TargetID,
		&rep.ReporterID,
		&rep.Reason,
		&rep.Memo,
		&rep.Status,
		&rep.CreatedAt,
		&rep.ResolvedAt,
	)
}

func (r *ReportRepository) Create(ctx context.Context, rep *models.Report) error {
	if rep.Status == "" {
		rep.Status = models.ReportStatusOpen
	}
	query := `
		INSERT INTO reports (id, target_type, target_id, reporter_id, reason, memo, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, rep.ID, rep.TargetType, rep.TargetID, rep.ReporterID, rep.Reason, rep.Memo, rep.Status).Scan(&rep.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("active report by this user %w", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// CountOpen counts distinct users with an open or under-review report on a target
func (r *ReportRepository) CountOpen(ctx context.Context, targetType string, targetID uuid.UUID) (int, error) {
	query := `SELECT COUNT(DISTINCT reporter_id) FROM reports WHERE target_type = $1 AND target_id = $2 AND status IN ($3, $4)`
	var n int
	if err := r.db.QueryRowContext(ctx, query, targetType, targetID, models.ReportStatusOpen, models.ReportStatusReviewing).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return n, nil
}

// List returns reports newest first, optionally filtered by status
func (r *ReportRepository) List(ctx context.Context, status string) ([]models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var rep models.Report
		if err := scanReport(rows, &rep); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return reports, nil
}

// UpdateStatus sets a report's status; resolved and rejected stamp resolved_at
func (r *ReportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Report, error) {
	query := `
		UPDATE reports
		SET status = $1,
			resolved_at = CASE WHEN $2 THEN NOW() ELSE NULL END
		WHERE id = $3
		RETURNING ` + reportColumns

	rep := &models.Report{}
	err := scanReport(r.db.QueryRowContext(ctx, query, status, models.IsClosingReportStatus(status), id), rep)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}
	return rep, nil
}
