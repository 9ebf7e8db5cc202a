package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// DateLayout is the calendar-day format used for record matching.
	DateLayout = "2006-01-02"
	// TimeLayout is the time-of-day format stored in records.
	TimeLayout = "15:04:05"
)

// EventResult describes the outcome of recording an attendance event.
type EventResult string

const (
	CheckedIn       EventResult = "checked_in"
	CheckedOut      EventResult = "checked_out"
	AlreadyComplete EventResult = "already_complete"
)

// ErrStorageUnavailable means the durable store could not be read or written.
// The in-memory record set is left untouched when it is returned.
var ErrStorageUnavailable = errors.New("attendance storage unavailable")

// ErrEmptyPersonID is returned when an event carries no person identity.
var ErrEmptyPersonID = errors.New("person id is empty")

// Record is one person's attendance for one calendar date.
type Record struct {
	PersonID string `json:"person_id"`
	Date     string `json:"date"`           // YYYY-MM-DD
	CheckIn  string `json:"check_in_time"`  // HH:MM:SS
	CheckOut string `json:"check_out_time"` // HH:MM:SS, empty until checked out
}

// Store persists the full record set. Save must be atomic per call: either
// the whole set is written or the previous contents remain readable.
type Store interface {
	Load() ([]Record, error)
	Save([]Record) error
}

// Clock supplies the current time, injected so tests can pin it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// Ledger owns the per-day attendance records for all known persons. All
// access goes through its mutex; the hosting process may call it from
// concurrent HTTP handlers.
type Ledger struct {
	mu      sync.Mutex
	store   Store
	clock   Clock
	records []Record
}

// New loads the full record set from the store and returns a ready ledger.
func New(store Store, clock Clock) (*Ledger, error) {
	records, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: load: %v", ErrStorageUnavailable, err)
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Ledger{store: store, clock: clock, records: records}, nil
}

// RecordEvent applies one attendance event for personID at ts. The first
// event of a calendar day checks the person in, the second checks them out,
// and anything after that is a no-op. The mutated set is written to the
// store before the in-memory set is replaced, so a failed save leaves the
// ledger exactly as it was.
func (l *Ledger) RecordEvent(personID string, ts time.Time) (EventResult, error) {
	if personID == "" {
		return "", ErrEmptyPersonID
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	date := ts.Format(DateLayout)
	clock := ts.Format(TimeLayout)

	next := make([]Record, len(l.records))
	copy(next, l.records)

	result := CheckedIn
	found := false
	for i := range next {
		if next[i].PersonID != personID || next[i].Date != date {
			continue
		}
		found = true
		if next[i].CheckOut != "" {
			// Terminal for the day; nothing to persist.
			return AlreadyComplete, nil
		}
		next[i].CheckOut = clock
		result = CheckedOut
		break
	}
	if !found {
		next = append(next, Record{PersonID: personID, Date: date, CheckIn: clock})
	}

	if err := l.store.Save(next); err != nil {
		return "", fmt.Errorf("%w: save: %v", ErrStorageUnavailable, err)
	}
	l.records = next
	return result, nil
}

// QueryToday returns personID's record for the current calendar date.
func (l *Ledger) QueryToday(personID string) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	date := l.clock.Now().Format(DateLayout)
	for _, r := range l.records {
		if r.PersonID == personID && r.Date == date {
			return r, true
		}
	}
	return Record{}, false
}

// Latest returns personID's most recently created record, if any.
func (l *Ledger) Latest(personID string) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(l.records) - 1; i >= 0; i-- {
		if l.records[i].PersonID == personID {
			return l.records[i], true
		}
	}
	return Record{}, false
}

// Records returns a copy of the full record set.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}
