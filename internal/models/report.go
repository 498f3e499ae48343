package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReportTargetProject = "project"
	ReportTargetComment = "comment"

	ReportStatusOpen      = "open"
	ReportStatusReviewing = "reviewing"
	ReportStatusResolved  = "resolved"
	ReportStatusRejected  = "rejected"
)

type Report struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TargetType string     `json:"target_type" db:"target_type"`
	TargetID   uuid.UUID  `json:"target_id" db:"target_id"`
	ReporterID uuid.UUID  `json:"reporter_id" db:"reporter_id"`
	Reason     string     `json:"reason" db:"reason"` // spam, abuse, adult, other
	Memo       *string    `json:"memo,omitempty" db:"memo"`
	Status     string     `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
}

// IsClosingReportStatus reports whether moving to status stamps resolved_at.
func IsClosingReportStatus(status string) bool {
	return status == ReportStatusResolved || status == ReportStatusRejected
}

func IsValidReportStatus(status string) bool {
	switch status {
	case ReportStatusOpen, ReportStatusReviewing, ReportStatusResolved, ReportStatusRejected:
		return true
	}
	return false
}

type CreateReportRequest struct {
	Reason string  `json:"reason" binding:"required,oneof=spam abuse adult other"`
	Memo   *string `json:"memo,omitempty"`
}

type UpdateReportRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}
