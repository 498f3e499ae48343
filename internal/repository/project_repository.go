package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vibecoder/backend/internal/database"
	"github.com/vibecoder/backend/internal/models"
)

const (
	defaultProjectLimit = 20
	maxProjectLimit     = 100
)

type ProjectRepository struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectSelect = `
	SELECT p.id, p.author_id, u.nickname, p.title, p.summary, p.description,
		p.thumbnail_url, p.demo_url, p.repo_url, p.platform, p.tags, p.status,
		p.like_count, p.comment_count, p.created_at, p.updated_at
	FROM projects p
	JOIN users u ON p.author_id = u.id
`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	p := &models.Project{}
	var tags []string
	err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.AuthorNickname,
		&p.Title,
		&p.Summary,
		&p.Description,
		&p.ThumbnailURL,
		&p.DemoURL,
		&p.RepoURL,
		&p.Platform,
		pq.Array(&tags),
		&p.Status,
		&p.LikeCount,
		&p.CommentCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	p.Tags = tags
	return p, nil
}

func (r *ProjectRepository) queryProjects(ctx context.Context, query string, args ...any) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// List returns published projects filtered by platform and tag
func (r *ProjectRepository) List(ctx context.Context, req models.ListProjectsRequest) ([]models.Project, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultProjectLimit
	}
	if limit > maxProjectLimit {
		limit = maxProjectLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	query := projectSelect + ` WHERE p.status = $1`
	args := []any{models.ProjectStatusPublished}

	if req.Platform != "" {
		args = append(args, req.Platform)
		query += fmt.Sprintf(" AND p.platform = $%d", len(args))
	}
	if req.Tag != "" {
		args = append(args, req.Tag)
		query += fmt.Sprintf(" AND $%d = ANY(p.tags)", len(args))
	}

	if req.Sort == "popular" {
		query += " ORDER BY p.like_count DESC, p.created_at DESC"
	} else {
		query += " ORDER BY p.created_at DESC"
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return r.queryProjects(ctx, query, args...)
}

// ListByAuthor returns every non-deleted project of a user, newest first
func (r *ProjectRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Project, error) {
	query := projectSelect + ` WHERE p.author_id = $1 AND p.status <> $2 ORDER BY p.created_at DESC`
	return r.queryProjects(ctx, query, authorID, models.ProjectStatusDeleted)
}

// GetByID returns a project in any status
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, projectSelect+` WHERE p.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	if p.Platform == "" {
		p.Platform = "web"
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Status == "" {
		p.Status = models.ProjectStatusPublished
	}

	query := `
		INSERT INTO projects (id, author_id, title, summary, description, thumbnail_url, demo_url, repo_url, platform, tags, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.ID,
		p.AuthorID,
		p.Title,
		p.Summary,
		p.Description,
		p.ThumbnailURL,
		p.DemoURL,
		p.RepoURL,
		p.Platform,
		pq.Array(p.Tags),
		p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// Like records a like by userID and returns the new like count. Liking twice is a no-op.
func (r *ProjectRepository) Like(ctx context.Context, projectID, userID uuid.UUID) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `INSERT INTO project_likes (project_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, projectID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to like project: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx, `UPDATE projects SET like_count = like_count + $1 WHERE id = $2 RETURNING like_count`, inserted, projectID).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("project %w", ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update like count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return count, nil
}

// Unlike removes a like by userID and returns the new like count
func (r *ProjectRepository) Unlike(ctx context.Context, projectID, userID uuid.UUID) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM project_likes WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to unlike project: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx, `UPDATE projects SET like_count = GREATEST(0, like_count - $1) WHERE id = $2 RETURNING like_count`, removed, projectID).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("project %w", ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update like count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return count, nil
}

// SetStatus moves a project between published, hidden and deleted
func (r *ProjectRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("project %w", ErrNotFound)
	}
	return nil
}
