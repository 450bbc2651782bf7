package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stwalsh4118/estatedesk/internal/models"
)

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil, 0.8)

	assert.Zero(t, summary.Total)
	assert.Empty(t, summary.ByStatus)
	assert.Zero(t, summary.Confidence.DataQuality)
	assert.Equal(t, 0.4, summary.Confidence.Overall)
	assert.NoError(t, summary.Validate())
	assert.True(t, summary.IsDegenerate())
}

func TestSummarize_UnknownBuckets(t *testing.T) {
	units := []models.UnitRow{
		{UnitNumber: "1", Tower: "A", Bedrooms: intPtr(1), Status: models.UnitStatusAvailable, Floor: 2},
		{UnitCode: "X-2"},
	}

	summary := Summarize(units, 0.5)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, map[string]int{"available": 1, "unknown": 1}, summary.ByStatus)
	assert.Equal(t, map[string]int{"1": 1, "unknown": 1}, summary.ByBedrooms)
	assert.Equal(t, map[string]int{"A": 1, "unknown": 1}, summary.ByTower)
	assert.Equal(t, map[string]int{"2": 1, "0": 1}, summary.ByFloor)
	assert.NoError(t, summary.Validate())

	assert.Equal(t, 0.5, summary.Confidence.HeaderMapping)
	assert.Equal(t, 0.67, summary.Confidence.DataQuality)
	assert.Equal(t, 0.58, summary.Confidence.Overall)
	assert.False(t, summary.IsDegenerate())
}

func TestSummarize_ClampsHeaderMapping(t *testing.T) {
	units := []models.UnitRow{{UnitNumber: "1", Bedrooms: intPtr(2), Status: models.UnitStatusSold}}

	assert.Equal(t, 1.0, Summarize(units, 1.5).Confidence.HeaderMapping)
	assert.Equal(t, 0.0, Summarize(units, -1).Confidence.HeaderMapping)
}

func TestSummarize_AllBedroomsUnknownIsDegenerate(t *testing.T) {
	units := []models.UnitRow{
		{UnitNumber: "1", Status: models.UnitStatusAvailable},
		{UnitNumber: "2", Status: models.UnitStatusSold},
	}

	summary := Summarize(units, 1)

	assert.True(t, summary.IsDegenerate())
}

func TestSummarizeUnits(t *testing.T) {
	units := []models.Unit{
		{ID: "u1", UnitRow: models.UnitRow{UnitNumber: "1", Tower: "A", Bedrooms: intPtr(3)}},
	}

	summary := SummarizeUnits(units, 1)

	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, map[string]int{"3": 1}, summary.ByBedrooms)
}

func TestFieldCoverage(t *testing.T) {
	units := []models.UnitRow{
		{UnitNumber: "1", Tower: "A"},
		{UnitNumber: "2", Tower: "A", Status: models.UnitStatusUnknown},
	}

	assert.InDelta(t, 2.0/12.0, FieldCoverage(units), 1e-9)
	assert.Equal(t, 0.0, FieldCoverage(nil))
}
