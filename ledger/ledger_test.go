package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store with an optional forced save failure.
type memStore struct {
	records []Record
	loadErr error
	saveErr error
	saves   int
}

func (s *memStore) Load() ([]Record, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *memStore) Save(records []Record) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.records = make([]Record, len(records))
	copy(s.records, records)
	return nil
}

// fixedClock pins the ledger's notion of "today".
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02T15:04:05", value)
	require.NoError(t, err)
	return ts
}

func TestRecordEvent_FullDay(t *testing.T) {
	store := &memStore{}
	l, err := New(store, fixedClock{now: mustTime(t, "2024-03-01T12:00:00")})
	require.NoError(t, err)

	result, err := l.RecordEvent("alice", mustTime(t, "2024-03-01T09:00:00"))
	require.NoError(t, err)
	assert.Equal(t, CheckedIn, result)

	rec, ok := l.QueryToday("alice")
	require.True(t, ok)
	assert.Equal(t, "09:00:00", rec.CheckIn)
	assert.Empty(t, rec.CheckOut)

	result, err = l.RecordEvent("alice", mustTime(t, "2024-03-01T18:00:00"))
	require.NoError(t, err)
	assert.Equal(t, CheckedOut, result)

	rec, ok = l.QueryToday("alice")
	require.True(t, ok)
	assert.Equal(t, Record{PersonID: "alice", Date: "2024-03-01", CheckIn: "09:00:00", CheckOut: "18:00:00"}, rec)
}

func TestRecordEvent_ThirdEventIsTerminalNoOp(t *testing.T) {
	store := &memStore{}
	l, err := New(store, fixedClock{now: mustTime(t, "2024-03-01T12:00:00")})
	require.NoError(t, err)

	_, err = l.RecordEvent("alice", mustTime(t, "2024-03-01T09:00:00"))
	require.NoError(t, err)
	_, err = l.RecordEvent("alice", mustTime(t, "2024-03-01T17:00:00"))
	require.NoError(t, err)
	savesBefore := store.saves

	result, err := l.RecordEvent("alice", mustTime(t, "2024-03-01T18:30:00"))
	require.NoError(t, err)
	assert.Equal(t, AlreadyComplete, result)

	// No mutation and no extra write.
	assert.Equal(t, savesBefore, store.saves)
	rec, ok := l.QueryToday("alice")
	require.True(t, ok)
	assert.Equal(t, "17:00:00", rec.CheckOut)
}

func TestRecordEvent_DatesAreIndependent(t *testing.T) {
	store := &memStore{}
	l, err := New(store, fixedClock{now: mustTime(t, "2024-03-02T12:00:00")})
	require.NoError(t, err)

	_, err = l.RecordEvent("alice", mustTime(t, "2024-03-01T09:00:00"))
	require.NoError(t, err)
	_, err = l.RecordEvent("alice", mustTime(t, "2024-03-01T18:00:00"))
	require.NoError(t, err)

	result, err := l.RecordEvent("alice", mustTime(t, "2024-03-02T08:45:00"))
	require.NoError(t, err)
	assert.Equal(t, CheckedIn, result)

	records := l.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "2024-03-01", records[0].Date)
	assert.Equal(t, "2024-03-02", records[1].Date)
	assert.Empty(t, records[1].CheckOut)
}

func TestRecordEvent_OneRecordPerPersonAndDate(t *testing.T) {
	store := &memStore{}
	l, err := New(store, fixedClock{now: mustTime(t, "2024-03-01T12:00:00")})
	require.NoError(t, err)

	events := []string{
		"2024-03-01T09:00:00",
		"2024-03-01T12:30:00",
		"2024-03-01T15:00:00",
		"2024-03-01T18:00:00",
	}
	for _, e := range events {
		_, err := l.RecordEvent("bob", mustTime(t, e))
		require.NoError(t, err)
	}

	assert.Len(t, l.Records(), 1)
}

func TestRecordEvent_SaveFailureLeavesStateUntouched(t *testing.T) {
	store := &memStore{}
	l, err := New(store, fixedClock{now: mustTime(t, "2024-03-01T12:00:00")})
	require.NoError(t, err)

	_, err = l.RecordEvent("alice", mustTime(t, "2024-03-01T09:00:00"))
	require.NoError(t, err)

	store.saveErr = errors.New("disk full")
	_, err = l.RecordEvent("alice", mustTime(t, "2024-03-01T18:00:00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	// The failed check-out must not be visible.
	rec, ok := l.QueryToday("alice")
	require.True(t, ok)
	assert.Empty(t, rec.CheckOut)

	store.saveErr = errors.New("disk full")
	_, err = l.RecordEvent("carol", mustTime(t, "2024-03-01T10:00:00"))
	require.Error(t, err)
	_, ok = l.QueryToday("carol")
	assert.False(t, ok)
}

func TestRecordEvent_EmptyPersonID(t *testing.T) {
	l, err := New(&memStore{}, nil)
	require.NoError(t, err)

	_, err = l.RecordEvent("", mustTime(t, "2024-03-01T09:00:00"))
	assert.ErrorIs(t, err, ErrEmptyPersonID)
}

func TestQueryToday_SingleEvent(t *testing.T) {
	store := &memStore{}
	l, err := New(store, fixedClock{now: mustTime(t, "2024-03-01T12:00:00")})
	require.NoError(t, err)

	_, err = l.RecordEvent("bob", mustTime(t, "2024-03-01T09:05:00"))
	require.NoError(t, err)

	rec, ok := l.QueryToday("bob")
	require.True(t, ok)
	assert.Equal(t, "09:05:00", rec.CheckIn)
	assert.Empty(t, rec.CheckOut)

	_, ok = l.QueryToday("nobody")
	assert.False(t, ok)
}

func TestQueryToday_IgnoresOtherDates(t *testing.T) {
	store := &memStore{records: []Record{
		{PersonID: "alice", Date: "2024-02-29", CheckIn: "09:00:00", CheckOut: "17:00:00"},
	}}
	l, err := New(store, fixedClock{now: mustTime(t, "2024-03-01T12:00:00")})
	require.NoError(t, err)

	_, ok := l.QueryToday("alice")
	assert.False(t, ok)
}

func TestNew_LoadFailure(t *testing.T) {
	store := &memStore{loadErr: errors.New("file locked")}
	_, err := New(store, nil)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestLatest_ReturnsMostRecentRecord(t *testing.T) {
	store := &memStore{records: []Record{
		{PersonID: "alice", Date: "2024-02-28", CheckIn: "09:00:00", CheckOut: "17:00:00"},
		{PersonID: "alice", Date: "2024-02-29", CheckIn: "09:10:00"},
	}}
	l, err := New(store, fixedClock{now: mustTime(t, "2024-03-01T12:00:00")})
	require.NoError(t, err)

	rec, ok := l.Latest("alice")
	require.True(t, ok)
	assert.Equal(t, "2024-02-29", rec.Date)
}
