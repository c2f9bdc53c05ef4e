package harvester

import (
	"sync/atomic"
	"time"
)

// SessionTracker accumulates the counters of a single harvest run. It is
// shared by the dispatcher and all workers, so everything is atomic.
type SessionTracker struct {
	started time.Time

	fetched          atomic.Int64
	parsed           atomic.Int64
	saved            atomic.Int64
	skippedDuplicate atomic.Int64
	rewritten        atomic.Int64
	failed           atomic.Int64
}

func NewSessionTracker() *SessionTracker {
	return &SessionTracker{started: time.Now()}
}

func (t *SessionTracker) Fetched()          { t.fetched.Add(1) }
func (t *SessionTracker) Parsed()           { t.parsed.Add(1) }
func (t *SessionTracker) Saved()            { t.saved.Add(1) }
func (t *SessionTracker) SkippedDuplicate() { t.skippedDuplicate.Add(1) }
func (t *SessionTracker) Rewritten()        { t.rewritten.Add(1) }
func (t *SessionTracker) Failed()           { t.failed.Add(1) }

// SessionSnapshot is a point-in-time copy of the counters of a run.
type SessionSnapshot struct {
	Fetched          int64
	Parsed           int64
	Saved            int64
	SkippedDuplicate int64
	Rewritten        int64
	Failed           int64
	Elapsed          time.Duration
}

func (t *SessionTracker) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		Fetched:          t.fetched.Load(),
		Parsed:           t.parsed.Load(),
		Saved:            t.saved.Load(),
		SkippedDuplicate: t.skippedDuplicate.Load(),
		Rewritten:        t.rewritten.Load(),
		Failed:           t.failed.Load(),
		Elapsed:          time.Since(t.started),
	}
}
