// Package worker serializes attendance events through a single worker so
// concurrent triggers cannot interleave the ledger's read-modify-write.
package worker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirtilabs/kirti/ledger"
)

// ErrStopped is returned by Submit once the queue is shut down.
var ErrStopped = errors.New("attendance queue is stopped")

// AttendanceJob holds all the necessary data for a single attendance event.
type AttendanceJob struct {
	ID        string
	PersonID  string
	Timestamp time.Time
	Reply     chan Result
}

// Result is the outcome delivered back to the submitter.
type Result struct {
	Outcome ledger.EventResult
	Err     error
}

// Queue owns the job channel and the single worker goroutine.
type Queue struct {
	jobs   chan AttendanceJob
	ledger *ledger.Ledger
	done   chan struct{}

	mu      sync.Mutex
	stopped bool
}

// New creates a queue with the given buffer size.
func New(l *ledger.Ledger, queueSize int) *Queue {
	return &Queue{
		jobs:   make(chan AttendanceJob, queueSize),
		ledger: l,
		done:   make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (q *Queue) Start() {
	go q.worker()
}

// Stop drains no further jobs and waits for the worker to exit. It is safe
// to call while submits are in flight; they either enqueue first or get
// ErrStopped.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.stopped = true
	close(q.jobs)
	q.mu.Unlock()
	<-q.done
}

// Submit enqueues one attendance event and blocks until it has been
// processed or the context expires. The lock is held across the enqueue so
// Stop cannot close the channel under an in-flight send.
func (q *Queue) Submit(ctx context.Context, personID string, ts time.Time) (ledger.EventResult, error) {
	job := AttendanceJob{
		ID:        uuid.NewString(),
		PersonID:  personID,
		Timestamp: ts,
		Reply:     make(chan Result, 1),
	}

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return "", ErrStopped
	}
	select {
	case q.jobs <- job:
		q.mu.Unlock()
	case <-ctx.Done():
		q.mu.Unlock()
		return "", ctx.Err()
	}

	select {
	case res := <-job.Reply:
		return res.Outcome, res.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (q *Queue) worker() {
	defer close(q.done)
	for job := range q.jobs {
		outcome, err := q.ledger.RecordEvent(job.PersonID, job.Timestamp)
		if err != nil {
			log.Printf("[WORKER] job %s for %s failed: %v", job.ID, job.PersonID, err)
		} else {
			log.Printf("[WORKER] job %s: %s -> %s", job.ID, job.PersonID, outcome)
		}
		job.Reply <- Result{Outcome: outcome, Err: err}
	}
}
