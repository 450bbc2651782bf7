package models

import "time"

// OrganizationType distinguishes developers (who own projects) from agents
// (who market them).
type OrganizationType string

const (
	OrganizationTypeDeveloper OrganizationType = "developer"
	OrganizationTypeAgent     OrganizationType = "agent"
)

// Organization is a tenant of the platform.
type Organization struct {
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	ContactEmail *string          `json:"contact_email,omitempty"`
	ContactPhone *string          `json:"contact_phone,omitempty"`
	Website      *string          `json:"website,omitempty"`
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Type         OrganizationType `json:"type"`
	Status       string           `json:"status"`
}
