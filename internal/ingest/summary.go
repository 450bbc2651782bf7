package ingest

import (
	"math"
	"strconv"
	"time"

	"github.com/stwalsh4118/estatedesk/internal/models"
)

// Summarize aggregates units into a summary in a single pass.
// headerMapping is the confidence of the header mapping that produced the
// rows; it is clamped to [0,1].
func Summarize(units []models.UnitRow, headerMapping float64) models.UnitSummary {
	summary := models.UnitSummary{
		ByStatus:    make(map[string]int),
		ByBedrooms:  make(map[string]int),
		ByFloor:     make(map[string]int),
		ByTower:     make(map[string]int),
		GeneratedAt: time.Now().UTC(),
		Total:       len(units),
	}

	identified, knownStatus, knownBedrooms := 0, 0, 0
	for _, u := range units {
		status := u.Status
		if status == "" {
			status = models.UnitStatusUnknown
		}
		summary.ByStatus[string(status)]++
		if status != models.UnitStatusUnknown {
			knownStatus++
		}

		if u.Bedrooms != nil {
			summary.ByBedrooms[strconv.Itoa(*u.Bedrooms)]++
			knownBedrooms++
		} else {
			summary.ByBedrooms[models.UnknownKey]++
		}

		summary.ByFloor[strconv.Itoa(u.Floor)]++

		if u.Tower != "" {
			summary.ByTower[u.Tower]++
		} else {
			summary.ByTower[models.UnknownKey]++
		}

		if u.HasIdentity() {
			identified++
		}
	}

	hm := clamp01(headerMapping)
	dq := 0.0
	if n := float64(len(units)); n > 0 {
		dq = (float64(identified)/n + float64(knownStatus)/n + float64(knownBedrooms)/n) / 3
	}

	summary.Confidence = models.Confidence{
		HeaderMapping: round2(hm),
		DataQuality:   round2(dq),
		Overall:       round2((hm + dq) / 2),
	}
	return summary
}

// SummarizeUnits aggregates persisted units.
func SummarizeUnits(units []models.Unit, headerMapping float64) models.UnitSummary {
	rows := make([]models.UnitRow, len(units))
	for i := range units {
		rows[i] = units[i].UnitRow
	}
	return Summarize(rows, headerMapping)
}

// FieldCoverage is the share of catalog fields populated on at least one
// unit. It stands in for header-mapping confidence when a summary is rebuilt
// from stored units and the original headers are gone.
func FieldCoverage(units []models.UnitRow) float64 {
	fields := catalogFields()
	if len(units) == 0 || len(fields) == 0 {
		return 0
	}

	seen := make(map[Field]bool, len(fields))
	for _, u := range units {
		mark := func(f Field, ok bool) {
			if ok {
				seen[f] = true
			}
		}
		mark(FieldTower, u.Tower != "")
		mark(FieldUnitNumber, u.UnitNumber != "")
		mark(FieldUnitCode, u.UnitCode != "")
		mark(FieldFloor, u.Floor != 0)
		mark(FieldUnitType, u.UnitType != "")
		mark(FieldBedrooms, u.Bedrooms != nil)
		mark(FieldPrice, u.Price > 0)
		mark(FieldAreaBalcony, u.AreaBalcony > 0)
		mark(FieldAreaSuite, u.AreaSuite > 0)
		mark(FieldAreaTotal, u.AreaTotal > 0)
		mark(FieldStatus, u.Status != "" && u.Status != models.UnitStatusUnknown)
		mark(FieldUnitView, u.UnitView != "")
	}

	return float64(len(seen)) / float64(len(fields))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
