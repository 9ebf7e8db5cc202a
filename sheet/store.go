// Package sheet persists the attendance ledger as a spreadsheet workbook,
// one row per person per date, matching the layout the front office already
// opens in Excel.
package sheet

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/kirtilabs/kirti/ledger"
)

const sheetName = "Attendance"

var header = []string{"Name", "Check-in Time", "Check-out Time", "Date"}

// Store reads and writes attendance records in an .xlsx workbook.
type Store struct {
	path string
}

// NewStore returns a store backed by the workbook at path. The file is
// created on first Save; a missing file loads as an empty record set.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the full record set from the workbook.
func (s *Store) Load() ([]ledger.Record, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("could not open workbook %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheetName, err)
	}

	var records []ledger.Record
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rec := ledger.Record{}
		if len(row) > 0 {
			rec.PersonID = row[0]
		}
		if len(row) > 1 {
			rec.CheckIn = row[1]
		}
		if len(row) > 2 {
			rec.CheckOut = row[2]
		}
		if len(row) > 3 {
			rec.Date = row[3]
		}
		// A record always carries a name, date and check-in; rows missing
		// any of them (hand edits, stray formatting) are skipped so they
		// cannot produce a check-out without a check-in.
		if rec.PersonID == "" || rec.Date == "" || rec.CheckIn == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Save writes the full record set, replacing the workbook. The new contents
// are written to a temp file and renamed over the old one so a failed write
// never truncates the existing ledger.
func (s *Store) Save(records []ledger.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("could not name sheet: %w", err)
	}
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("could not write header: %w", err)
		}
	}

	for i, rec := range records {
		values := []string{rec.PersonID, rec.CheckIn, rec.CheckOut, rec.Date}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("could not write row %d: %w", i+2, err)
			}
		}
	}

	tmp := s.path + ".tmp"
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("could not save workbook %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("could not replace workbook %s: %w", s.path, err)
	}
	return nil
}
