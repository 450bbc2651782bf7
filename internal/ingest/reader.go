package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
var ErrUnsupportedFormat = errors.New("unsupported sheet format")

// ErrEmptySheet is returned when a file holds no header row.
var ErrEmptySheet = errors.New("sheet has no header row")

// Sheet is a header row plus the data rows beneath it.
type Sheet struct {
	Headers []string
	Rows    [][]interface{}
}

// ReadSheet parses an uploaded spreadsheet. The format is chosen by the file
// extension. Only the first worksheet of a workbook is read; the first
// non-blank row becomes the header row and blank rows are skipped.
func ReadSheet(filename string, r io.Reader) (*Sheet, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(r)
	case ".csv":
		records, err = readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	return buildSheet(records)
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrEmptySheet
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func buildSheet(records [][]string) (*Sheet, error) {
	start := -1
	for i, record := range records {
		if !blankRecord(record) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrEmptySheet
	}

	sheet := &Sheet{Headers: make([]string, len(records[start]))}
	for i, h := range records[start] {
		sheet.Headers[i] = strings.TrimSpace(h)
	}

	for _, record := range records[start+1:] {
		if blankRecord(record) {
			continue
		}
		row := make([]interface{}, len(record))
		for i, cell := range record {
			row[i] = cell
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
