package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vibecoder/backend/internal/models"
	"github.com/vibecoder/backend/internal/moderation"
)

type ProjectHandler struct {
	projects ProjectStore
	users    UserStore
	gate     *moderation.Gate
}

func NewProjectHandler(projects ProjectStore, users UserStore, gate *moderation.Gate) *ProjectHandler {
	return &ProjectHandler{projects: projects, users: users, gate: gate}
}

// ListProjects returns published projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var req models.ListProjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	projects, err := h.projects.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": projects})
}

// GetProject returns a published project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if project.Status != models.ProjectStatusPublished {
		ErrorResponse(c, http.StatusNotFound, "project not found")
		return
	}

	c.JSON(http.StatusOK, project)
}

// CreateProject publishes a project once every text field clears the keyword gate
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, ok := activeUser(c, h.users)
	if !ok {
		return
	}

	if err := h.gate.Require(c.Request.Context(), req.ModeratedText()...); err != nil {
		respondError(c, err)
		return
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	project := &models.Project{
		ID:             uuid.New(),
		AuthorID:       user.ID,
		AuthorNickname: user.Nickname,
		Title:          strings.TrimSpace(req.Title),
		Summary:        strings.TrimSpace(req.Summary),
		Description:    req.Description,
		ThumbnailURL:   req.ThumbnailURL,
		DemoURL:        req.DemoURL,
		RepoURL:        req.RepoURL,
		Platform:       req.Platform,
		Tags:           tags,
		Status:         models.ProjectStatusPublished,
	}

	if err := h.projects.Create(c.Request.Context(), project); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// LikeProject adds the caller's like
func (h *ProjectHandler) LikeProject(c *gin.Context) {
	h.toggleLike(c, h.projects.Like)
}

// UnlikeProject removes the caller's like
func (h *ProjectHandler) UnlikeProject(c *gin.Context) {
	h.toggleLike(c, h.projects.Unlike)
}

func (h *ProjectHandler) toggleLike(c *gin.Context, apply func(ctx context.Context, projectID, userID uuid.UUID) (int, error)) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	count, err := apply(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"like_count": count})
}

// MyProjects lists the caller's projects in every non-deleted status
func (h *ProjectHandler) MyProjects(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	projects, err := h.projects.ListByAuthor(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": projects})
}
