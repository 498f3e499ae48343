package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vibecoder/backend/internal/models"
)

// The handlers depend on these narrow views of the repositories.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

type ProjectStore interface {
	List(ctx context.Context, req models.ListProjectsRequest) ([]models.Project, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Create(ctx context.Context, p *models.Project) error
	Like(ctx context.Context, projectID, userID uuid.UUID) (int, error)
	Unlike(ctx context.Context, projectID, userID uuid.UUID) (int, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	ListVisible(ctx context.Context, projectID uuid.UUID, sort string) ([]models.Comment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

type ReportStore interface {
	Create(ctx context.Context, r *models.Report) error
	CountOpen(ctx context.Context, targetType string, targetID uuid.UUID) (int, error)
	List(ctx context.Context, status string) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Report, error)
}

// activeUser loads the caller and rejects limited accounts with 403
func activeUser(c *gin.Context, users UserStore) (*models.User, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	user, err := users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if user.IsLimited() {
		ErrorResponse(c, http.StatusForbidden, "Account is limited")
		return nil, false
	}
	return user, true
}
