package models

import (
	"strings"
	"time"
)

// Role is an employee's role inside an organization.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleAgent     Role = "agent"
)

// ParseRole maps stored role names, including the legacy "manager" and
// "staff" aliases, onto a Role. Unrecognized names yield "".
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "developer", "manager":
		return RoleDeveloper
	case "agent", "staff":
		return RoleAgent
	}
	return ""
}

// Employee links an authenticated user to an organization.
type Employee struct {
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	FullName       *string   `json:"full_name,omitempty"`
	Email          *string   `json:"email,omitempty"`
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Role           Role      `json:"role"`
	Status         string    `json:"status"`
}

// IsActive reports whether the employee may act on behalf of the organization.
func (e *Employee) IsActive() bool {
	return e.Status == "" || strings.EqualFold(e.Status, "active")
}
