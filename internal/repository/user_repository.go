package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vibecoder/backend/internal/database"
	"github.com/vibecoder/backend/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, nickname, bio, avatar_url, role, status, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }, user *models.User) error {
	return row.Scan(
		&user.ID,
		&user.Email,
		&user.Nickname,
		&user.Bio,
		&user.AvatarURL,
		&user.Role,
		&user.Status,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}

	query := `
		INSERT INTO users (id, email, nickname, bio, avatar_url, role, status, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx,
		query,
		user.ID,
		user.Email,
		user.Nickname,
		user.Bio,
		user.AvatarURL,
		user.Role,
		user.Status,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if isUniqueViolation(err) {
		return fmt.Errorf("email or nickname %w", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user := &models.User{}
	err := scanUser(r.db.QueryRowContext(ctx, query, id), user)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user := &models.User{}
	err := scanUser(r.db.QueryRowContext(ctx, query, email), user)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateProfile updates the user-editable profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET nickname = $1, bio = $2, avatar_url = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query, user.Nickname, user.Bio, user.AvatarURL, user.ID).Scan(&user.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("user %w", ErrNotFound)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("nickname %w", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// SetStatus switches a user between active and limited
func (r *UserRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %w", ErrNotFound)
	}

	return nil
}

// EnsureSystemUser returns the account automatic moderation actions are
// attributed to, creating it on first start. It cannot log in.
func (r *UserRepository) EnsureSystemUser(ctx context.Context, email, nickname string) (*models.User, error) {
	user, err := r.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	user = &models.User{
		ID:           uuid.New(),
		Email:        email,
		Nickname:     nickname,
		Role:         models.RoleAdmin,
		Status:       models.UserStatusActive,
		PasswordHash: "!",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `
		INSERT INTO users (id, email, nickname, role, status, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.Nickname, user.Role, user.Status, user.PasswordHash, user.CreatedAt, user.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create system user: %w", err)
	}

	return r.GetByEmail(ctx, email)
}
