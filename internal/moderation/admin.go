package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vibecoder/backend/internal/models"
)

// EffectivePolicy is the admin view of the moderation policy.
type EffectivePolicy struct {
	EffectiveKeywords       []string          `json:"effective_keywords"`
	CustomKeywords          []string          `json:"custom_keywords"`
	BaselineCategories      []KeywordCategory `json:"baseline_categories"`
	AutoHideReportThreshold int               `json:"auto_hide_report_threshold"`
	LastUpdatedBy           *uuid.UUID        `json:"last_updated_by,omitempty"`
	LastUpdatedAt           time.Time         `json:"last_updated_at"`
}

// RequireActionReason rejects blank reasons and returns reason unchanged otherwise.
func RequireActionReason(reason string) (string, error) {
	if strings.TrimSpace(reason) == "" {
		return "", fmt.Errorf("%w: a reason is required for admin actions", ErrValidation)
	}
	return reason, nil
}

// AdminService coordinates policy edits, content checks and audited admin actions.
type AdminService struct {
	policy *PolicyStore
	audit  *AuditLog
	gate   *Gate
}

func NewAdminService(policy *PolicyStore, audit *AuditLog) *AdminService {
	return &AdminService{policy: policy, audit: audit, gate: NewGate(policy)}
}

// Gate exposes the content gate used by project and comment creation.
func (s *AdminService) Gate() *Gate { return s.gate }

// Audit exposes the audit log for read endpoints and automatic actions.
func (s *AdminService) Audit() *AuditLog { return s.audit }

// Policy exposes the keyword policy store.
func (s *AdminService) Policy() *PolicyStore { return s.policy }

// CheckText runs text through the gate.
func (s *AdminService) CheckText(ctx context.Context, text string) (Decision, error) {
	return s.gate.Check(ctx, text)
}

// GetEffectivePolicy returns the current policy and who last changed it.
func (s *AdminService) GetEffectivePolicy(ctx context.Context) (*EffectivePolicy, error) {
	settings, err := s.policy.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := s.audit.LatestByActionType(ctx, ActionPolicyUpdated)
	if err != nil {
		return nil, err
	}
	return buildPolicy(settings, latest), nil
}

// UpdatePolicy replaces the custom keywords and threshold and records exactly
// one policy_updated entry. The settings write and the log append are not
// atomic: if the append fails the new policy is already in force.
func (s *AdminService) UpdatePolicy(ctx context.Context, adminID uuid.UUID, custom []string, threshold int, reason string) (*EffectivePolicy, error) {
	reason, err := RequireActionReason(reason)
	if err != nil {
		return nil, err
	}

	settings, err := s.policy.UpdateSettings(ctx, custom, threshold)
	if err != nil {
		return nil, err
	}

	customCount := len(CustomOnly(settings.BlockedKeywords))
	entry, err := s.audit.Append(ctx, AdminAction{
		AdminID:    adminID,
		ActionType: ActionPolicyUpdated,
		TargetType: TargetModerationSettings,
		TargetID:   fmt.Sprint(models.ModerationSettingsID),
		Reason:     fmt.Sprintf("%s (keywords=%d, threshold=%d)", strings.TrimSpace(reason), customCount, settings.AutoHideReportThreshold),
	})
	if err != nil {
		return nil, err
	}
	return buildPolicy(settings, entry), nil
}

// RecordAdminAction appends an admin action after checking its reason.
func (s *AdminService) RecordAdminAction(ctx context.Context, action AdminAction) (*models.AdminActionLog, error) {
	if _, err := RequireActionReason(action.Reason); err != nil {
		return nil, err
	}
	return s.audit.Append(ctx, action)
}

// Apply validates the reason, runs mutate, and records action once mutate
// succeeds. A blank reason fails before mutate is called.
func (s *AdminService) Apply(ctx context.Context, action AdminAction, mutate func(ctx context.Context) error) (*models.AdminActionLog, error) {
	if _, err := RequireActionReason(action.Reason); err != nil {
		return nil, err
	}
	if err := mutate(ctx); err != nil {
		return nil, err
	}
	return s.audit.Append(ctx, action)
}

func buildPolicy(settings *models.ModerationSettings, latest *models.AdminActionLog) *EffectivePolicy {
	p := &EffectivePolicy{
		EffectiveKeywords:       settings.BlockedKeywords,
		CustomKeywords:          CustomOnly(settings.BlockedKeywords),
		BaselineCategories:      BaselineCategories,
		AutoHideReportThreshold: settings.AutoHideReportThreshold,
		LastUpdatedAt:           settings.UpdatedAt,
	}
	if latest != nil {
		adminID := latest.AdminID
		p.LastUpdatedBy = &adminID
		p.LastUpdatedAt = latest.CreatedAt
	}
	return p
}
