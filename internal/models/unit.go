package models

import (
	"time"
)

// UnitStatus is the occupancy state of a unit.
type UnitStatus string

const (
	UnitStatusAvailable UnitStatus = "available"
	UnitStatusSold      UnitStatus = "sold"
	UnitStatusReserved  UnitStatus = "reserved"
	UnitStatusBlocked   UnitStatus = "blocked"
	UnitStatusUnknown   UnitStatus = "unknown"
)

// Valid reports whether s is one of the known status values.
func (s UnitStatus) Valid() bool {
	switch s {
	case UnitStatusAvailable, UnitStatusSold, UnitStatusReserved, UnitStatusBlocked, UnitStatusUnknown:
		return true
	}
	return false
}

// UnitRow is one normalized spreadsheet row.
// Rows are produced per ingestion batch and never mutated afterwards.
type UnitRow struct {
	RawData      JSONMap    `json:"raw_data"`
	CustomFields JSONMap    `json:"custom_fields"`
	Bedrooms     *int       `json:"bedrooms"`
	Tower        string     `json:"tower,omitempty"`
	UnitNumber   string     `json:"unit_number,omitempty"`
	UnitCode     string     `json:"unit_code,omitempty"`
	Status       UnitStatus `json:"status"`
	UnitView     string     `json:"unit_view,omitempty"`
	UnitType     string     `json:"unit_type,omitempty"`
	AreaTotal    float64    `json:"area_total"`
	AreaSuite    float64    `json:"area_suite"`
	AreaBalcony  float64    `json:"area_balcony"`
	Price        float64    `json:"price"`
	Floor        int        `json:"floor_number"`
}

// HasIdentity reports whether the row carries a unit number or unit code.
func (u UnitRow) HasIdentity() bool {
	return u.UnitNumber != "" || u.UnitCode != ""
}

// Key returns the value used as the upsert key alongside the project id.
// The unit number wins; the unit code stands in when the number is absent.
func (u UnitRow) Key() string {
	if u.UnitNumber != "" {
		return u.UnitNumber
	}
	return u.UnitCode
}

// Unit is a persisted unit row belonging to a project.
type Unit struct {
	UnitRow
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
}
