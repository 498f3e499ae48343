package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/vibecoder/backend/internal/database"
	"github.com/vibecoder/backend/internal/models"
)

// ModerationRepository stores the moderation settings row and the admin action log.
type ModerationRepository struct {
	db *database.DB
}

func NewModerationRepository(db *database.DB) *ModerationRepository {
	return &ModerationRepository{db: db}
}

// LoadModerationSettings returns nil, nil when the row has not been seeded
func (r *ModerationRepository) LoadModerationSettings(ctx context.Context) (*models.ModerationSettings, error) {
	query := `
		SELECT id, blocked_keywords, auto_hide_report_threshold, updated_at
		FROM moderation_settings
		WHERE id = $1
	`

	s := &models.ModerationSettings{}
	err := r.db.QueryRowContext(ctx, query, models.ModerationSettingsID).Scan(
		&s.ID,
		pq.Array(&s.BlockedKeywords),
		&s.AutoHideReportThreshold,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load moderation settings: %w", err)
	}
	if s.BlockedKeywords == nil {
		s.BlockedKeywords = []string{}
	}
	return s, nil
}

// SaveModerationSettings upserts the settings row
func (r *ModerationRepository) SaveModerationSettings(ctx context.Context, keywords []string, threshold int) (*models.ModerationSettings, error) {
	query := `
		INSERT INTO moderation_settings (id, blocked_keywords, auto_hide_report_threshold, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET blocked_keywords = EXCLUDED.blocked_keywords,
			auto_hide_report_threshold = EXCLUDED.auto_hide_report_threshold,
			updated_at = NOW()
		RETURNING updated_at
	`

	s := &models.ModerationSettings{
		ID:                      models.ModerationSettingsID,
		BlockedKeywords:         keywords,
		AutoHideReportThreshold: threshold,
	}
	err := r.db.QueryRowContext(ctx, query, s.ID, pq.Array(keywords), threshold).Scan(&s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save moderation settings: %w", err)
	}
	return s, nil
}

// SeedModerationSettings inserts the row only if it does not exist yet
func (r *ModerationRepository) SeedModerationSettings(ctx context.Context, keywords []string, threshold int) (bool, error) {
	query := `
		INSERT INTO moderation_settings (id, blocked_keywords, auto_hide_report_threshold, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, models.ModerationSettingsID, pq.Array(keywords), threshold)
	if err != nil {
		return false, fmt.Errorf("failed to seed moderation settings: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// AppendAuditLog records an admin action. Entries are never updated or deleted.
func (r *ModerationRepository) AppendAuditLog(ctx context.Context, entry *models.AdminActionLog) error {
	query := `
		INSERT INTO admin_action_logs (id, admin_id, action_type, target_type, target_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.AdminID,
		entry.ActionType,
		entry.TargetType,
		entry.TargetID,
		entry.Reason,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert admin action log: %w", err)
	}
	return nil
}

func (r *ModerationRepository) RecentAuditLogs(ctx context.Context, limit int) ([]models.AdminActionLog, error) {
	query := `
		SELECT id, admin_id, action_type, target_type, target_id, reason, created_at
		FROM admin_action_logs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin action logs: %w", err)
	}
	defer rows.Close()

	res := []models.AdminActionLog{}
	for rows.Next() {
		var e models.AdminActionLog
		if err := rows.Scan(&e.ID, &e.AdminID, &e.ActionType, &e.TargetType, &e.TargetID, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin action log: %w", err)
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate admin action logs: %w", err)
	}
	return res, nil
}

// LatestAuditLogByType returns nil, nil when no entry of actionType exists
func (r *ModerationRepository) LatestAuditLogByType(ctx context.Context, actionType string) (*models.AdminActionLog, error) {
	query := `
		SELECT id, admin_id, action_type, target_type, target_id, reason, created_at
		FROM admin_action_logs
		WHERE action_type = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	e := &models.AdminActionLog{}
	err := r.db.QueryRowContext(ctx, query, actionType).Scan(&e.ID, &e.AdminID, &e.ActionType, &e.TargetType, &e.TargetID, &e.Reason, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest admin action log: %w", err)
	}
	return e, nil
}
