package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vibecoder/backend/internal/models"
	"github.com/vibecoder/backend/internal/moderation"
)

const maxCommentLength = 2000

type CommentHandler struct {
	comments CommentStore
	projects ProjectStore
	users    UserStore
	gate     *moderation.Gate
}

func NewCommentHandler(comments CommentStore, projects ProjectStore, users UserStore, gate *moderation.Gate) *CommentHandler {
	return &CommentHandler{comments: comments, projects: projects, users: users, gate: gate}
}

// ListComments returns the visible comments of a published project
func (h *CommentHandler) ListComments(c *gin.Context) {
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	comments, err := h.comments.ListVisible(c.Request.Context(), projectID, c.DefaultQuery("sort", "latest"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": comments})
}

// CreateComment adds a comment once its content clears the keyword gate
func (h *CommentHandler) CreateComment(c *gin.Context) {
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" || len([]rune(content)) > maxCommentLength {
		ErrorResponse(c, http.StatusBadRequest, "Comment must be between 1 and 2000 characters")
		return
	}

	user, ok := activeUser(c, h.users)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	project, err := h.projects.GetByID(ctx, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	if project.Status != models.ProjectStatusPublished {
		ErrorResponse(c, http.StatusNotFound, "project not found")
		return
	}

	if req.ParentID != nil {
		parent, err := h.comments.GetByID(ctx, *req.ParentID)
		if err != nil {
			respondError(c, err)
			return
		}
		if parent.ProjectID != projectID {
			ErrorResponse(c, http.StatusBadRequest, "Parent comment belongs to another project")
			return
		}
	}

	if err := h.gate.Require(ctx, content); err != nil {
		respondError(c, err)
		return
	}

	comment := &models.Comment{
		ID:             uuid.New(),
		ProjectID:      projectID,
		AuthorID:       user.ID,
		AuthorNickname: user.Nickname,
		ParentID:       req.ParentID,
		Content:        content,
		Status:         models.CommentStatusVisible,
	}
	if err := h.comments.Create(ctx, comment); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}
