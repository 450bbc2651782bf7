package models

import "time"

// PromotionStatus is the lifecycle state of a promotional campaign.
type PromotionStatus string

const (
	PromotionStatusDraft     PromotionStatus = "draft"
	PromotionStatusActive    PromotionStatus = "active"
	PromotionStatusPaused    PromotionStatus = "paused"
	PromotionStatusCompleted PromotionStatus = "completed"
	PromotionStatusCancelled PromotionStatus = "cancelled"
)

// Valid reports whether s is a known promotion status.
func (s PromotionStatus) Valid() bool {
	switch s {
	case PromotionStatusDraft, PromotionStatusActive, PromotionStatusPaused,
		PromotionStatusCompleted, PromotionStatusCancelled:
		return true
	}
	return false
}

// Promotion is a marketing campaign run by an organization, optionally
// tied to one of its projects.
type Promotion struct {
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	SendAt         *time.Time      `json:"send_at,omitempty"`
	ProjectID      *string         `json:"project_id,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Channel        *string         `json:"channel,omitempty"`
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	Title          string          `json:"title"`
	Status         PromotionStatus `json:"status"`
}
