package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/stwalsh4118/estatedesk/internal/models"
)

// ExportSheetName is the worksheet name used for unit exports.
const ExportSheetName = "Units"

// ExportHeaders is the header row of an exported unit workbook. Every header
// maps back onto its own field, so an export can be re-ingested unchanged.
var ExportHeaders = []string{
	"Tower",
	"Unit No",
	"Unit Code",
	"Floor",
	"Bedrooms",
	"Unit Type",
	"View",
	"Area",
	"Suite Area",
	"Balcony Area",
	"Price",
	"Status",
}

var exportColumnWidths = []float64{15, 12, 14, 8, 10, 16, 14, 10, 12, 14, 14, 12}

// WriteUnitsWorkbook renders units as an xlsx workbook.
func WriteUnitsWorkbook(units []models.Unit) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ExportSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(ExportHeaders))
	for i, h := range ExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(ExportSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(ExportHeaders))
	if err != nil {
		return nil, fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetCellStyle(ExportSheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range exportColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(ExportSheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, u := range units {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		row := exportRow(u.UnitRow)
		if err := f.SetSheetRow(ExportSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func exportRow(u models.UnitRow) []interface{} {
	var beds interface{}
	if u.Bedrooms != nil {
		beds = *u.Bedrooms
	}
	return []interface{}{
		u.Tower,
		u.UnitNumber,
		u.UnitCode,
		u.Floor,
		beds,
		u.UnitType,
		u.UnitView,
		u.AreaTotal,
		u.AreaSuite,
		u.AreaBalcony,
		u.Price,
		string(u.Status),
	}
}
