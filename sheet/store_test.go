package sheet

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kirtilabs/kirti/ledger"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "attendance.xlsx"))

	records, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.xlsx")
	s := NewStore(path)

	in := []ledger.Record{
		{PersonID: "alice", Date: "2024-03-01", CheckIn: "09:00:00", CheckOut: "18:00:00"},
		{PersonID: "bob", Date: "2024-03-01", CheckIn: "09:05:00"},
	}
	require.NoError(t, s.Save(in))

	out, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSave_WritesExpectedColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.xlsx")
	s := NewStore(path)

	require.NoError(t, s.Save([]ledger.Record{
		{PersonID: "alice", Date: "2024-03-01", CheckIn: "09:00:00"},
	}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Attendance")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Name", "Check-in Time", "Check-out Time", "Date"}, rows[0])
	assert.Equal(t, "alice", rows[1][0])
	assert.Equal(t, "09:00:00", rows[1][1])
}

func TestSave_ReplacesPreviousContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.xlsx")
	s := NewStore(path)

	require.NoError(t, s.Save([]ledger.Record{
		{PersonID: "alice", Date: "2024-03-01", CheckIn: "09:00:00"},
		{PersonID: "bob", Date: "2024-03-01", CheckIn: "09:05:00"},
	}))
	require.NoError(t, s.Save([]ledger.Record{
		{PersonID: "alice", Date: "2024-03-01", CheckIn: "09:00:00", CheckOut: "18:00:00"},
	}))

	out, err := s.Load()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "18:00:00", out[0].CheckOut)
}

func TestLoad_SkipsHandEditedIncompleteRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.xlsx")

	// Build a workbook the way a hand edit could leave it: a valid row,
	// a name with no check-in, and a row with no date.
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Attendance"))
	require.NoError(t, f.SetSheetRow("Attendance", "A1", &[]string{"Name", "Check-in Time", "Check-out Time", "Date"}))
	require.NoError(t, f.SetSheetRow("Attendance", "A2", &[]string{"alice", "09:00:00", "", "2024-03-01"}))
	require.NoError(t, f.SetSheetRow("Attendance", "A3", &[]string{"bob", "", "", "2024-03-01"}))
	require.NoError(t, f.SetSheetRow("Attendance", "A4", &[]string{"carol", "09:10:00", "", ""}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	out, err := NewStore(path).Load()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "alice", out[0].PersonID)

	// The incomplete row is invisible to the ledger, so bob's next event
	// is a fresh check-in rather than a check-out with no check-in.
	l, err := ledger.New(NewStore(path), nil)
	require.NoError(t, err)
	ts, err := time.Parse("2006-01-02T15:04:05", "2024-03-01T10:00:00")
	require.NoError(t, err)
	result, err := l.RecordEvent("bob", ts)
	require.NoError(t, err)
	assert.Equal(t, ledger.CheckedIn, result)
}

func TestLedgerIntegration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.xlsx")

	l, err := ledger.New(NewStore(path), nil)
	require.NoError(t, err)

	ts, err := time.Parse("2006-01-02T15:04:05", "2024-03-01T09:00:00")
	require.NoError(t, err)
	result, err := l.RecordEvent("alice", ts)
	require.NoError(t, err)
	assert.Equal(t, ledger.CheckedIn, result)

	// A fresh ledger over the same workbook sees the persisted record.
	l2, err := ledger.New(NewStore(path), nil)
	require.NoError(t, err)
	rec, ok := l2.Latest("alice")
	require.True(t, ok)
	assert.Equal(t, "09:00:00", rec.CheckIn)
}
