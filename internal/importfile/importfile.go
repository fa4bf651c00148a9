// Package importfile reads product spreadsheets (CSV or XLSX) into
// header-keyed rows and builds the downloadable import templates.
package importfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ErrUnsupported is returned for files that are neither CSV nor XLSX.
var ErrUnsupported = errors.New("unsupported file format")

// RequiredColumns must be present in every import file.
var RequiredColumns = []string{"product_name", "product_price", "selling_price", "stock_quantity"}

// Sheet is a parsed file: the header row and one map per data row.
type Sheet struct {
	Columns []string
	Rows    []map[string]string
}

// FormatOf maps a filename to a supported format by extension.
func FormatOf(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", ErrUnsupported
}

// Read parses r according to the extension of filename.
func Read(filename string, r io.Reader) (*Sheet, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}
	var records [][]string
	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = readXLSX(r)
	}
	if err != nil {
		return nil, err
	}
	return newSheet(records)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("open xlsx: workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	return rows, nil
}

func newSheet(records [][]string) (*Sheet, error) {
	if len(records) == 0 {
		return nil, errors.New("file is empty")
	}
	s := &Sheet{Rows: make([]map[string]string, 0, len(records)-1)}
	for _, h := range records[0] {
		s.Columns = append(s.Columns, strings.TrimSpace(h))
	}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make(map[string]string, len(s.Columns))
		for i, col := range s.Columns {
			if col == "" {
				continue
			}
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Missing lists the required columns absent from the header, in order.
func (s *Sheet) Missing(required []string) []string {
	have := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		have[c] = true
	}
	var missing []string
	for _, c := range required {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// Has reports whether the header contains col.
func (s *Sheet) Has(col string) bool {
	for _, c := range s.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// RowNumber converts a zero-based data row index into the line number a
// user sees in a spreadsheet, where the header is line 1.
func RowNumber(index int) int { return index + 2 }

// Template builds a sample file with two rows. kind is "csv" or "excel".
func Template(kind string) (data []byte, filename string, err error) {
	header := []string{"product_name", "product_price", "selling_price", "stock_quantity", "description"}
	rows := [][]string{
		{"Sample Product 1", "100", "150", "50", "Sample description 1"},
		{"Sample Product 2", "200", "250", "75", "Sample description 2"},
	}
	switch kind {
	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(header); err != nil {
			return nil, "", err
		}
		if err := w.WriteAll(rows); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "product_import_template.csv", nil
	case "excel":
		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)
		all := append([][]string{header}, rows...)
		for i, r := range all {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return nil, "", err
			}
			vals := make([]any, len(r))
			for j, v := range r {
				vals[j] = v
			}
			if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
				return nil, "", err
			}
		}
		buf, err := f.WriteToBuffer()
		if err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "product_import_template.xlsx", nil
	}
	return nil, "", ErrUnsupported
}
