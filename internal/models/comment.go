package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CommentStatusVisible = "visible"
	CommentStatusHidden  = "hidden"
)

type Comment struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	ProjectID      uuid.UUID  `json:"project_id" db:"project_id"`
	AuthorID       uuid.UUID  `json:"author_id" db:"author_id"`
	AuthorNickname string     `json:"author_nickname" db:"author_nickname"`
	ParentID       *uuid.UUID `json:"parent_id,omitempty" db:"parent_id"`
	Content        string     `json:"content" db:"content"`
	Status         string     `json:"status" db:"status"`
	LikeCount      int        `json:"like_count" db:"like_count"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateCommentRequest struct {
	Content  string     `json:"content" binding:"required"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}
