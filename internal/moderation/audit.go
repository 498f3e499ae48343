package moderation

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vibecoder/backend/internal/models"
)

// Action types written to the audit log.
const (
	ActionPolicyUpdated   = "policy_updated"
	ActionProjectHidden   = "project_hidden"
	ActionProjectRestored = "project_restored"
	ActionProjectDeleted  = "project_deleted"
	ActionCommentHidden   = "comment_hidden"
	ActionCommentRestored = "comment_restored"
	ActionUserLimited     = "user_limited"
	ActionUserUnlimited   = "user_unlimited"
	ActionReportUpdated   = "report_updated"
	ActionAutoHidden      = "auto_hidden"
)

// Target types written to the audit log.
const (
	TargetModerationSettings = "moderation_settings"
	TargetProject            = "project"
	TargetComment            = "comment"
	TargetUser               = "user"
	TargetReport             = "report"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// AuditStore is the append-only persistence behind AuditLog.
// LatestAuditLogByType returns nil, nil when no entry matches.
type AuditStore interface {
	AppendAuditLog(ctx context.Context, entry *models.AdminActionLog) error
	RecentAuditLogs(ctx context.Context, limit int) ([]models.AdminActionLog, error)
	LatestAuditLogByType(ctx context.Context, actionType string) (*models.AdminActionLog, error)
}

// ActionPublisher fans appended entries out to live listeners.
type ActionPublisher interface {
	PublishAdminAction(ctx context.Context, entry models.AdminActionLog) error
}

// Clock allows deterministic timestamps in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// AdminAction describes one audited action. Reason may be empty for
// automatic actions; admin endpoints enforce it through AdminService.
type AdminAction struct {
	AdminID    uuid.UUID
	ActionType string
	TargetType string
	TargetID   string
	Reason     string
}

// AuditLog is the write-once record of admin and bot actions.
type AuditLog struct {
	store     AuditStore
	publisher ActionPublisher
	clock     Clock
}

// NewAuditLog builds an AuditLog. publisher and clock may be nil.
func NewAuditLog(store AuditStore, publisher ActionPublisher, clock Clock) *AuditLog {
	if clock == nil {
		clock = systemClock{}
	}
	return &AuditLog{store: store, publisher: publisher, clock: clock}
}

// Append writes a new entry. Store errors are returned as-is and not retried.
func (a *AuditLog) Append(ctx context.Context, action AdminAction) (*models.AdminActionLog, error) {
	entry := &models.AdminActionLog{
		ID:         uuid.New(),
		AdminID:    action.AdminID,
		ActionType: action.ActionType,
		TargetType: action.TargetType,
		TargetID:   action.TargetID,
		CreatedAt:  a.clock.Now(),
	}
	if action.Reason != "" {
		reason := action.Reason
		entry.Reason = &reason
	}

	if err := a.store.AppendAuditLog(ctx, entry); err != nil {
		return nil, err
	}

	if a.publisher != nil {
		if err := a.publisher.PublishAdminAction(ctx, *entry); err != nil {
			log.Warn("Failed to publish admin action", "action", entry.ActionType, "error", err)
		}
	}
	return entry, nil
}

// Recent returns the newest entries first.
func (a *AuditLog) Recent(ctx context.Context, limit int) ([]models.AdminActionLog, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return a.store.RecentAuditLogs(ctx, limit)
}

// LatestByActionType returns the newest entry of actionType, or nil.
func (a *AuditLog) LatestByActionType(ctx context.Context, actionType string) (*models.AdminActionLog, error) {
	return a.store.LatestAuditLogByType(ctx, actionType)
}
