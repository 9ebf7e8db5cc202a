// Package sqlstore is the sqlite-backed alternative to the spreadsheet
// store, for deployments that prefer a database file over a workbook.
package sqlstore

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	ldg "github.com/kirtilabs/kirti/ledger"
)

type attendanceRow struct {
	ID       uint   `gorm:"primaryKey"`
	PersonID string `gorm:"index:idx_person_date,unique"`
	Date     string `gorm:"index:idx_person_date,unique"`
	CheckIn  string
	CheckOut string
}

func (attendanceRow) TableName() string { return "attendance" }

// Store persists attendance records in a sqlite database.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the attendance
// table.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("could not open sqlite database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&attendanceRow{}); err != nil {
		return nil, fmt.Errorf("could not migrate attendance table: %w", err)
	}
	return &Store{db: db}, nil
}

// Load reads the full record set in insertion order.
func (s *Store) Load() ([]ldg.Record, error) {
	var rows []attendanceRow
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("could not load attendance rows: %w", err)
	}

	records := make([]ldg.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, ldg.Record{
			PersonID: row.PersonID,
			Date:     row.Date,
			CheckIn:  row.CheckIn,
			CheckOut: row.CheckOut,
		})
	}
	return records, nil
}

// Save replaces the full record set in one transaction.
func (s *Store) Save(records []ldg.Record) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM attendance").Error; err != nil {
			return fmt.Errorf("could not clear attendance rows: %w", err)
		}
		for _, rec := range records {
			row := attendanceRow{
				PersonID: rec.PersonID,
				Date:     rec.Date,
				CheckIn:  rec.CheckIn,
				CheckOut: rec.CheckOut,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("could not insert attendance row for %s: %w", rec.PersonID, err)
			}
		}
		return nil
	})
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
