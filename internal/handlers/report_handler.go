package handlers

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vibecoder/backend/internal/models"
	"github.com/vibecoder/backend/internal/moderator"
)

type ReportHandler struct {
	reports  ReportStore
	projects ProjectStore
	comments CommentStore
	users    UserStore
	bot      *moderator.Bot
}

// NewReportHandler builds the report endpoints. bot decides automatic hides.
func NewReportHandler(reports ReportStore, projects ProjectStore, comments CommentStore, users UserStore, bot *moderator.Bot) *ReportHandler {
	return &ReportHandler{
		reports:  reports,
		projects: projects,
		comments: comments,
		users:    users,
		bot:      bot,
	}
}

// ReportProject files a report against a project
func (h *ReportHandler) ReportProject(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	h.fileReport(c, models.ReportTargetProject, id, func(ctx context.Context) (bool, error) {
		project, err := h.projects.GetByID(ctx, id)
		if err != nil {
			return false, err
		}
		return project.Status == models.ProjectStatusPublished, nil
	}, func(ctx context.Context) error {
		return h.projects.SetStatus(ctx, id, models.ProjectStatusHidden)
	})
}

// ReportComment files a report against a comment
func (h *ReportHandler) ReportComment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	h.fileReport(c, models.ReportTargetComment, id, func(ctx context.Context) (bool, error) {
		comment, err := h.comments.GetByID(ctx, id)
		if err != nil {
			return false, err
		}
		return comment.Status == models.CommentStatusVisible, nil
	}, func(ctx context.Context) error {
		return h.comments.SetStatus(ctx, id, models.CommentStatusHidden)
	})
}

// fileReport stores the report and hides the target once its open reports
// reach the configured threshold. visible must fail for missing targets.
func (h *ReportHandler) fileReport(
	c *gin.Context,
	targetType string,
	targetID uuid.UUID,
	visible func(ctx context.Context) (bool, error),
	hide func(ctx context.Context) error,
) {
	var req models.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, ok := activeUser(c, h.users)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	isVisible, err := visible(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	report := &models.Report{
		ID:         uuid.New(),
		TargetType: targetType,
		TargetID:   targetID,
		ReporterID: user.ID,
		Reason:     req.Reason,
		Memo:       req.Memo,
		Status:     models.ReportStatusOpen,
	}
	if err := h.reports.Create(ctx, report); err != nil {
		respondError(c, err)
		return
	}

	autoHidden := false
	if isVisible {
		autoHidden, err = h.bot.ReviewTarget(ctx, targetType, targetID, hide)
		if err != nil {
			// The report itself is stored; the next report retries the hide.
			log.Error("Auto-hide failed", "target_type", targetType, "target_id", targetID, "error", err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"report": report, "auto_hidden": autoHidden})
}
