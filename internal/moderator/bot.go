// Package moderator holds the automated moderator that acts as the
// moderation system user.
package moderator

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vibecoder/backend/internal/models"
	"github.com/vibecoder/backend/internal/moderation"
)

type OpenReportCounter interface {
	CountOpen(ctx context.Context, targetType string, targetID uuid.UUID) (int, error)
}

type ThresholdPolicy interface {
	ShouldAutoHide(ctx context.Context, openReports int) (bool, int, error)
}

type ActionRecorder interface {
	Append(ctx context.Context, action moderation.AdminAction) (*models.AdminActionLog, error)
}

// Bot hides reported content once its open reports reach the policy
// threshold. Every hide is audited under the bot's user id.
type Bot struct {
	reports OpenReportCounter
	policy  ThresholdPolicy
	audit   ActionRecorder
	botUser uuid.UUID
}

// NewBot creates a new moderation bot instance
func NewBot(reports OpenReportCounter, policy ThresholdPolicy, audit ActionRecorder, botUser uuid.UUID) *Bot {
	return &Bot{
		reports: reports,
		policy:  policy,
		audit:   audit,
		botUser: botUser,
	}
}

// UserID returns the system user the bot acts as
func (b *Bot) UserID() uuid.UUID { return b.botUser }

// ReviewTarget counts open reports against a visible target and calls hide
// when the threshold is reached. Reports whether the target was hidden.
// If hide succeeds but the audit append fails, it returns true with the error.
func (b *Bot) ReviewTarget(ctx context.Context, targetType string, targetID uuid.UUID, hide func(ctx context.Context) error) (bool, error) {
	open, err := b.reports.CountOpen(ctx, targetType, targetID)
	if err != nil {
		return false, err
	}

	shouldHide, threshold, err := b.policy.ShouldAutoHide(ctx, open)
	if err != nil || !shouldHide {
		return false, err
	}

	if err := hide(ctx); err != nil {
		return false, fmt.Errorf("failed to hide %s %s: %w", targetType, targetID, err)
	}

	_, err = b.audit.Append(ctx, moderation.AdminAction{
		AdminID:    b.botUser,
		ActionType: moderation.ActionAutoHidden,
		TargetType: targetType,
		TargetID:   targetID.String(),
		Reason:     fmt.Sprintf("auto-hidden after %d open reports (threshold %d)", open, threshold),
	})
	if err != nil {
		return true, err
	}

	log.Info("Target auto-hidden", "target_type", targetType, "target_id", targetID, "open_reports", open, "threshold", threshold)
	return true, nil
}
