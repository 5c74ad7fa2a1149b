// Package spreadsheet writes extracted rows to .xlsx workbooks.
package spreadsheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is used when no sheet name is given.
const DefaultSheet = "Sheet1"

// ErrSheetNotFound is returned by Read for a sheet the workbook lacks.
var ErrSheetNotFound = errors.New("sheet not found")

// Sheet is a header row plus rows keyed by header name.
type Sheet struct {
	Columns []string
	Rows    []map[string]string
}

// NewSheet builds a sheet from rows. Columns are listed first, then any
// column only seen in rows, in first-seen order.
func NewSheet(columns []string, rows []map[string]string) Sheet {
	s := Sheet{Columns: append([]string(nil), columns...)}
	s.merge(nil, rows)
	return s
}

// Records returns the header followed by every row in column order.
func (s Sheet) Records() [][]string {
	out := make([][]string, 0, len(s.Rows)+1)
	out = append(out, s.Columns)
	for _, row := range s.Rows {
		rec := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			rec[i] = row[c]
		}
		out = append(out, rec)
	}
	return out
}

// merge appends rows, growing Columns with names first seen in them.
func (s *Sheet) merge(columns []string, rows []map[string]string) {
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		seen[c] = true
	}
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			s.Columns = append(s.Columns, c)
		}
	}
	for _, c := range columns {
		add(c)
	}
	for _, row := range rows {
		var fresh []string
		for k := range row {
			if !seen[k] {
				fresh = append(fresh, k)
			}
		}
		sort.Strings(fresh)
		for _, k := range fresh {
			add(k)
		}
		s.Rows = append(s.Rows, row)
	}
}

// Write replaces the workbook at path with a single sheet holding s.
func Write(path, sheet string, s Sheet) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	defer f.Close()

	if sheet != DefaultSheet {
		if err := f.SetSheetName(DefaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
		}
	}
	if err := fill(f, sheet, s); err != nil {
		return err
	}
	return save(f, path)
}

// Append adds s below the existing rows of sheet, merging headers, and
// rewrites the sheet. Other sheets of the workbook are kept. A missing file or
// sheet is created.
func Append(path, sheet string, s Sheet) error {
	if sheet == "" {
		sheet = DefaultSheet
	}

	f, err := excelize.OpenFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Write(path, sheet, s)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	merged := Sheet{}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("failed to look up sheet %q: %w", sheet, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}
	} else {
		existing, err := readSheet(f, sheet)
		if err != nil {
			return err
		}
		merged = existing
	}

	merged.merge(s.Columns, s.Rows)
	if err := fill(f, sheet, merged); err != nil {
		return err
	}
	return save(f, path)
}

// Read loads sheet from the workbook at path, or its first sheet when sheet
// is empty. The first row is the header.
func Read(path, sheet string) (Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Sheet{}, ErrSheetNotFound
		}
		sheet = sheets[0]
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return Sheet{}, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, path)
	}
	return readSheet(f, sheet)
}

func readSheet(f *excelize.File, sheet string) (Sheet, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return Sheet{}, nil
	}

	s := Sheet{Columns: rows[0]}
	for _, cells := range rows[1:] {
		row := make(map[string]string, len(s.Columns))
		for i, c := range s.Columns {
			if i < len(cells) {
				row[c] = cells[i]
			} else {
				row[c] = ""
			}
		}
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}

func fill(f *excelize.File, sheet string, s Sheet) error {
	for i, rec := range s.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(rec))
		for j, v := range rec {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if len(s.Columns) == 0 {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(s.Columns), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func save(f *excelize.File, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
