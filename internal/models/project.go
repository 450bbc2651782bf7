package models

import "time"

// ProjectStatus is the publication state of a project.
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusPublished ProjectStatus = "published"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusPublished, ProjectStatusArchived:
		return true
	}
	return false
}

// CreationMethod records how a project was created.
type CreationMethod string

const (
	CreationMethodManual     CreationMethod = "manual"
	CreationMethodAIAssisted CreationMethod = "ai_assisted"
	CreationMethodHybrid     CreationMethod = "hybrid"
	CreationMethodAdmin      CreationMethod = "admin"
)

// Valid reports whether m is a known creation method.
func (m CreationMethod) Valid() bool {
	switch m {
	case CreationMethodManual, CreationMethodAIAssisted, CreationMethodHybrid, CreationMethodAdmin:
		return true
	}
	return false
}

// Project is a real-estate development marketed on the platform.
// All nullable fields use pointers to distinguish between zero values and NULL.
type Project struct {
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	UnitSummary    *UnitSummary   `json:"unit_summary,omitempty"`
	Description    *string        `json:"description,omitempty"`
	Location       *string        `json:"location,omitempty"`
	SourceFileID   *string        `json:"source_file_id,omitempty"`
	CreatedBy      *string        `json:"created_by,omitempty"`
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	Name           string         `json:"name"`
	Status         ProjectStatus  `json:"status"`
	CreationMethod CreationMethod `json:"creation_method"`
	Amenities      []string       `json:"amenities"`
	Connectivity   []string       `json:"connectivity"`
	Landmarks      []string       `json:"landmarks"`
	PaymentPlans   []string       `json:"payment_plans"`
}
