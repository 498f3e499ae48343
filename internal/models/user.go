package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	UserStatusActive  = "active"
	UserStatusLimited = "limited"
)

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Nickname     string    `json:"nickname" db:"nickname"`
	Bio          *string   `json:"bio,omitempty" db:"bio"`
	AvatarURL    *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	Role         string    `json:"role" db:"role"`
	Status       string    `json:"status" db:"status"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks basic user fields
func (u *User) Validate() error {
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("invalid email")
	}
	if u.Nickname == "" {
		return fmt.Errorf("nickname is required")
	}
	if len(u.Nickname) < 2 || len(u.Nickname) > 100 {
		return fmt.Errorf("nickname length invalid")
	}
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) IsLimited() bool { return u.Status == UserStatusLimited }

type CreateUserRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	Nickname  string  `json:"nickname" binding:"required"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type UpdateProfileRequest struct {
	Nickname  string  `json:"nickname" binding:"required,min=2,max=100"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}
