package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vibecoder/backend/internal/models"
	"github.com/vibecoder/backend/internal/moderation"
)

type AdminHandler struct {
	admin    *moderation.AdminService
	projects ProjectStore
	comments CommentStore
	users    UserStore
	reports  ReportStore
}

func NewAdminHandler(admin *moderation.AdminService, projects ProjectStore, comments CommentStore, users UserStore, reports ReportStore) *AdminHandler {
	return &AdminHandler{
		admin:    admin,
		projects: projects,
		comments: comments,
		users:    users,
		reports:  reports,
	}
}

// GetPolicy returns the effective moderation policy
func (h *AdminHandler) GetPolicy(c *gin.Context) {
	policy, err := h.admin.GetEffectivePolicy(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

// UpdatePolicy replaces the custom keywords and threshold
func (h *AdminHandler) UpdatePolicy(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	policy, err := h.admin.UpdatePolicy(c.Request.Context(), adminID, req.CustomKeywords, req.AutoHideReportThreshold, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

// CheckText runs the filter against arbitrary text without storing anything
func (h *AdminHandler) CheckText(c *gin.Context) {
	var req models.CheckTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	decision, err := h.admin.CheckText(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}

// ListLogs returns the newest audit entries, ?limit= bounded by the audit log
func (h *AdminHandler) ListLogs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	logs, err := h.admin.Audit().Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}

// ListReports returns reports, optionally filtered by ?status=
func (h *AdminHandler) ListReports(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.IsValidReportStatus(status) {
		ErrorResponse(c, http.StatusBadRequest, "Invalid status")
		return
	}

	reports, err := h.reports.List(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": reports})
}

// UpdateReport moves a report to a new status and audits the change
func (h *AdminHandler) UpdateReport(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !models.IsValidReportStatus(req.Status) {
		ErrorResponse(c, http.StatusBadRequest, "Invalid status")
		return
	}
	reason, err := moderation.RequireActionReason(req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	var report *models.Report
	entry, err := h.admin.Apply(c.Request.Context(), moderation.AdminAction{
		AdminID:    adminID,
		ActionType: moderation.ActionReportUpdated,
		TargetType: moderation.TargetReport,
		TargetID:   id.String(),
		Reason:     fmt.Sprintf("%s (status=%s)", reason, req.Status),
	}, func(ctx context.Context) error {
		var err error
		report, err = h.reports.UpdateStatus(ctx, id, req.Status)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report, "log": entry})
}

func (h *AdminHandler) HideProject(c *gin.Context) {
	h.act(c, moderation.ActionProjectHidden, moderation.TargetProject, func(ctx context.Context, id uuid.UUID) error {
		return h.projects.SetStatus(ctx, id, models.ProjectStatusHidden)
	})
}

func (h *AdminHandler) RestoreProject(c *gin.Context) {
	h.act(c, moderation.ActionProjectRestored, moderation.TargetProject, func(ctx context.Context, id uuid.UUID) error {
		return h.projects.SetStatus(ctx, id, models.ProjectStatusPublished)
	})
}

func (h *AdminHandler) DeleteProject(c *gin.Context) {
	h.act(c, moderation.ActionProjectDeleted, moderation.TargetProject, func(ctx context.Context, id uuid.UUID) error {
		return h.projects.SetStatus(ctx, id, models.ProjectStatusDeleted)
	})
}

func (h *AdminHandler) HideComment(c *gin.Context) {
	h.act(c, moderation.ActionCommentHidden, moderation.TargetComment, func(ctx context.Context, id uuid.UUID) error {
		return h.comments.SetStatus(ctx, id, models.CommentStatusHidden)
	})
}

func (h *AdminHandler) RestoreComment(c *gin.Context) {
	h.act(c, moderation.ActionCommentRestored, moderation.TargetComment, func(ctx context.Context, id uuid.UUID) error {
		return h.comments.SetStatus(ctx, id, models.CommentStatusVisible)
	})
}

// LimitUser blocks a user from creating content. Admins cannot limit themselves.
func (h *AdminHandler) LimitUser(c *gin.Context) {
	self, ok := currentUserID(c)
	if target, err := uuid.Parse(c.Param("id")); ok && err == nil && target == self {
		ErrorResponse(c, http.StatusBadRequest, "Cannot limit your own account")
		return
	}
	h.act(c, moderation.ActionUserLimited, moderation.TargetUser, func(ctx context.Context, id uuid.UUID) error {
		return h.users.SetStatus(ctx, id, models.UserStatusLimited)
	})
}

func (h *AdminHandler) UnlimitUser(c *gin.Context) {
	h.act(c, moderation.ActionUserUnlimited, moderation.TargetUser, func(ctx context.Context, id uuid.UUID) error {
		return h.users.SetStatus(ctx, id, models.UserStatusActive)
	})
}

// act runs an audited mutation against the :id target. The reason is
// required; the mutation is skipped when it is blank.
func (h *AdminHandler) act(c *gin.Context, actionType, targetType string, mutate func(ctx context.Context, id uuid.UUID) error) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	adminID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.AdminActionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.admin.Apply(c.Request.Context(), moderation.AdminAction{
		AdminID:    adminID,
		ActionType: actionType,
		TargetType: targetType,
		TargetID:   id.String(),
		Reason:     req.Reason,
	}, func(ctx context.Context) error {
		return mutate(ctx, id)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"log": entry})
}
