package ingest

import (
	"fmt"
	"strings"

	"github.com/stwalsh4118/estatedesk/internal/models"
)

// ProcessResult is the outcome of processing one batch of sheet rows.
type ProcessResult struct {
	Units   []models.UnitRow
	Dropped int
}

// ProcessRows converts raw sheet rows into unit rows using mapping.
//
// Mapped non-empty cells feed their canonical field; unmapped cells are kept
// in CustomFields and every cell is kept in RawData. Repeated header names
// get a numeric suffix ("Price_2") and only the first one feeds the field. Values are normalized,
// a missing tower falls back to projectName, and rows with neither a unit
// number nor a unit code are dropped.
func ProcessRows(headers []string, rows [][]interface{}, mapping HeaderMapping, projectName string) ProcessResult {
	result := ProcessResult{Units: make([]models.UnitRow, 0, len(rows))}

	for _, row := range rows {
		unit, ok := processRow(headers, row, mapping, projectName)
		if !ok {
			result.Dropped++
			continue
		}
		result.Units = append(result.Units, unit)
	}

	return result
}

func processRow(headers []string, row []interface{}, mapping HeaderMapping, projectName string) (models.UnitRow, bool) {
	raw := make(models.JSONMap, len(row))
	custom := make(models.JSONMap)
	fields := make(map[Field]interface{}, len(mapping))

	for i, cell := range row {
		if cellString(cell) == "" {
			continue
		}

		header := ""
		if i < len(headers) {
			header = headers[i]
		}
		key := strings.TrimSpace(header)
		if key == "" {
			key = fmt.Sprintf("column_%d", i+1)
		}
		key = uniqueKey(raw, key)
		raw[key] = cell

		field, ok := mapping.Lookup(header)
		if _, taken := fields[field]; ok && !taken {
			fields[field] = cell
		} else {
			custom[key] = cell
		}
	}

	unit := models.UnitRow{
		RawData:      raw,
		CustomFields: custom,
		Tower:        cellString(fields[FieldTower]),
		UnitNumber:   cellString(fields[FieldUnitNumber]),
		UnitCode:     cellString(fields[FieldUnitCode]),
		UnitView:     cellString(fields[FieldUnitView]),
		UnitType:     cellString(fields[FieldUnitType]),
		Floor:        NormalizeFloor(fields[FieldFloor]),
		Bedrooms:     NormalizeBedrooms(cellString(fields[FieldBedrooms])),
		Status:       NormalizeStatus(cellString(fields[FieldStatus])),
		AreaTotal:    NormalizeNumber(fields[FieldAreaTotal]),
		AreaSuite:    NormalizeNumber(fields[FieldAreaSuite]),
		AreaBalcony:  NormalizeNumber(fields[FieldAreaBalcony]),
		Price:        NormalizeNumber(fields[FieldPrice]),
	}

	if unit.Bedrooms == nil && unit.UnitType != "" {
		unit.Bedrooms = NormalizeBedrooms(unit.UnitType)
	}
	if unit.Tower == "" {
		unit.Tower = strings.TrimSpace(projectName)
	}

	return unit, unit.HasIdentity()
}

// uniqueKey returns key, or key with the first free "_N" suffix if raw
// already holds it.
func uniqueKey(raw models.JSONMap, key string) string {
	if _, exists := raw[key]; !exists {
		return key
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", key, n)
		if _, exists := raw[candidate]; !exists {
			return candidate
		}
	}
}
