package models

import (
	"time"

	"github.com/google/uuid"
)

// ModerationSettingsID is the primary key of the single settings row.
const ModerationSettingsID = 1

// ModerationSettings is the site-wide moderation policy. BlockedKeywords holds
// the effective (custom + baseline) normalized set.
type ModerationSettings struct {
	ID                      int       `json:"-" db:"id"`
	BlockedKeywords         []string  `json:"blocked_keywords" db:"blocked_keywords"`
	AutoHideReportThreshold int       `json:"auto_hide_report_threshold" db:"auto_hide_report_threshold"`
	UpdatedAt               time.Time `json:"updated_at" db:"updated_at"`
}

// AdminActionLog records an action taken by an admin or by the moderation bot
type AdminActionLog struct {
	ID         uuid.UUID `json:"id" db:"id"`
	AdminID    uuid.UUID `json:"admin_id" db:"admin_id"`
	ActionType string    `json:"action_type" db:"action_type"` // policy_updated, project_hidden, user_limited, auto_hidden, ...
	TargetType string    `json:"target_type" db:"target_type"`
	TargetID   string    `json:"target_id" db:"target_id"`
	Reason     *string   `json:"reason,omitempty" db:"reason"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type UpdatePolicyRequest struct {
	CustomKeywords          []string `json:"custom_keywords"`
	AutoHideReportThreshold int      `json:"auto_hide_report_threshold"`
	Reason                  string   `json:"reason"`
}

// AdminActionRequest is the body of every admin mutation endpoint.
type AdminActionRequest struct {
	Reason string `json:"reason"`
}

type CheckTextRequest struct {
	Text string `json:"text"`
}
