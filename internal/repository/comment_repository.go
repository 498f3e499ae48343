package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vibecoder/backend/internal/database"
	"github.com/vibecoder/backend/internal/models"
)

type CommentRepository struct {
	db *database.DB
}

func NewCommentRepository(db *database.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentSelect = `
	SELECT c.id, c.project_id, c.author_id, u.nickname, c.parent_id, c.content,
		c.status, c.like_count, c.created_at, c.updated_at
	FROM comments c
	JOIN users u ON c.author_id = u.id
`

func scanComment(row interface{ Scan(...any) error }, c *models.Comment) error {
	return row.Scan(
		&c.ID,
		&c.ProjectID,
		&c.AuthorID,
		&c.AuthorNickname,
		&c.ParentID,
		&c.Content,
		&c.Status,
		&c.LikeCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

// Create inserts a comment and bumps the project's comment count in one transaction
func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	if c.Status == "" {
		c.Status = models.CommentStatusVisible
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE projects SET comment_count = comment_count + 1 WHERE id = $1`, c.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to update comment count: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("project %w", ErrNotFound)
	}

	query := `
		INSERT INTO comments (id, project_id, author_id, parent_id, content, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, query, c.ID, c.ProjectID, c.AuthorID, c.ParentID, c.Content, c.Status).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ListVisible returns the visible comments of a project
func (r *CommentRepository) ListVisible(ctx context.Context, projectID uuid.UUID, sort string) ([]models.Comment, error) {
	query := commentSelect + ` WHERE c.project_id = $1 AND c.status = $2`
	if sort == "popular" {
		query += " ORDER BY c.like_count DESC, c.created_at DESC"
	} else {
		query += " ORDER BY c.created_at DESC"
	}

	rows, err := r.db.QueryContext(ctx, query, projectID, models.CommentStatusVisible)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := scanComment(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c := &models.Comment{}
	err := scanComment(r.db.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id), c)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("comment %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return c, nil
}

// SetStatus hides or restores a comment
func (r *CommentRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE comments SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update comment status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("comment %w", ErrNotFound)
	}
	return nil
}
