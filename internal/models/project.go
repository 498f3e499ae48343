package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProjectStatusPublished = "published"
	ProjectStatusHidden    = "hidden"
	ProjectStatusDeleted   = "deleted"
)

type Project struct {
	ID             uuid.UUID `json:"id" db:"id"`
	AuthorID       uuid.UUID `json:"author_id" db:"author_id"`
	AuthorNickname string    `json:"author_nickname" db:"author_nickname"`
	Title          string    `json:"title" db:"title"`
	Summary        string    `json:"summary" db:"summary"`
	Description    *string   `json:"description,omitempty" db:"description"`
	ThumbnailURL   *string   `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	DemoURL        *string   `json:"demo_url,omitempty" db:"demo_url"`
	RepoURL        *string   `json:"repo_url,omitempty" db:"repo_url"`
	Platform       string    `json:"platform" db:"platform"`
	Tags           []string  `json:"tags" db:"tags"`
	Status         string    `json:"status" db:"status"`
	LikeCount      int       `json:"like_count" db:"like_count"`
	CommentCount   int       `json:"comment_count" db:"comment_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type CreateProjectRequest struct {
	Title        string   `json:"title" binding:"required,max=255"`
	Summary      string   `json:"summary" binding:"required,max=500"`
	Description  *string  `json:"description,omitempty"`
	ThumbnailURL *string  `json:"thumbnail_url,omitempty"`
	DemoURL      *string  `json:"demo_url,omitempty"`
	RepoURL      *string  `json:"repo_url,omitempty"`
	Platform     string   `json:"platform"`
	Tags         []string `json:"tags"`
}

// ModeratedText returns every user-written field the keyword gate must clear.
func (r *CreateProjectRequest) ModeratedText() []string {
	texts := []string{r.Title, r.Summary}
	if r.Description != nil {
		texts = append(texts, *r.Description)
	}
	return append(texts, r.Tags...)
}

type ListProjectsRequest struct {
	Sort     string `form:"sort"` // latest, popular
	Platform string `form:"platform"`
	Tag      string `form:"tag"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}
