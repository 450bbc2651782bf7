package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// UnknownKey is the bucket used for null bedrooms, blank towers and unknown status.
const UnknownKey = "unknown"

// degenerateBedroomRatio is the share of "unknown" bedroom values at or above
// which a cached summary is no longer trusted.
const degenerateBedroomRatio = 0.99

// Confidence holds heuristic [0,1] scores for an automatically derived summary.
type Confidence struct {
	HeaderMapping float64 `json:"headerMapping"`
	DataQuality   float64 `json:"dataQuality"`
	Overall       float64 `json:"overall"`
}

// UnitSummary is the aggregate view over a project's units.
// It is cached on the project row as JSON and can always be regenerated.
type UnitSummary struct {
	ByStatus    map[string]int `json:"byStatus"`
	ByBedrooms  map[string]int `json:"byBedrooms"`
	ByFloor     map[string]int `json:"byFloor"`
	ByTower     map[string]int `json:"byTower"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Confidence  Confidence     `json:"confidence"`
	Total       int            `json:"total"`
}

// Validate checks that every grouping sums to Total.
func (s *UnitSummary) Validate() error {
	groups := map[string]map[string]int{
		"byStatus":   s.ByStatus,
		"byBedrooms": s.ByBedrooms,
		"byFloor":    s.ByFloor,
		"byTower":    s.ByTower,
	}
	for name, group := range groups {
		sum := 0
		for _, count := range group {
			sum += count
		}
		if sum != s.Total {
			return fmt.Errorf("summary %s sums to %d, want %d", name, sum, s.Total)
		}
	}
	return nil
}

// IsDegenerate reports whether a cached summary should be recomputed:
// it is empty, or (effectively) every bedroom value is unknown.
func (s *UnitSummary) IsDegenerate() bool {
	if s == nil || s.Total <= 0 {
		return true
	}
	unknown := s.ByBedrooms[UnknownKey]
	return float64(unknown)/float64(s.Total) >= degenerateBedroomRatio
}

// Scan implements sql.Scanner for the projects.unit_summary JSONB column.
func (s *UnitSummary) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan UnitSummary: expected []byte or string, got %T", value)
	}

	if err := json.Unmarshal(bytes, s); err != nil {
		return fmt.Errorf("failed to unmarshal unit summary: %w", err)
	}
	return nil
}

// Value implements driver.Valuer for the projects.unit_summary JSONB column.
func (s UnitSummary) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal unit summary: %w", err)
	}
	return string(data), nil
}
