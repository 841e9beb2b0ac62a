package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AttemptStatus is the transient per-habit state between user action and
// confirmed acknowledgement. It is an overlay over the persisted habit,
// joined at read time and never stored on the habit row.
type AttemptStatus string

const (
	StatusIdle    AttemptStatus = "idle"
	StatusPending AttemptStatus = "pending"
	StatusMissed  AttemptStatus = "missed"
)

// Attempt is the tagged per-habit overlay value
type Attempt struct {
	Status AttemptStatus
	Reason string // set for StatusMissed
	day    string // local calendar day the state was recorded for
}

// attemptTracker holds the per-habit overlay. A pending entry doubles as the
// in-flight guard: begin fails while one exists, so a duplicate complete()
// call can never double-increment counters.
type attemptTracker struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]Attempt
	now      func() time.Time
}

func newAttemptTracker(now func() time.Time) *attemptTracker {
	if now == nil {
		now = time.Now
	}
	return &attemptTracker{
		attempts: make(map[uuid.UUID]Attempt),
		now:      now,
	}
}

func localDay(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// begin transitions a habit from Idle to Pending. Returns false if an attempt
// is already pending for the habit.
func (t *attemptTracker) begin(habitID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.attempts[habitID]; ok && a.Status == StatusPending {
		return false
	}
	t.attempts[habitID] = Attempt{Status: StatusPending, day: localDay(t.now())}
	return true
}

// resolve clears the pending state, returning the habit to Idle
func (t *attemptTracker) resolve(habitID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.attempts, habitID)
}

// markMissed records the missed-for-the-day overlay
func (t *attemptTracker) markMissed(habitID uuid.UUID, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts[habitID] = Attempt{Status: StatusMissed, Reason: reason, day: localDay(t.now())}
}

// isPending reports whether a completion attempt is in flight for the habit
func (t *attemptTracker) isPending(habitID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.attempts[habitID]
	return ok && a.Status == StatusPending
}

// get returns the habit's current overlay. Missed entries expire at local day
// rollover; pending entries never expire on their own because the engine
// resolves every attempt it begins.
func (t *attemptTracker) get(habitID uuid.UUID) Attempt {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.attempts[habitID]
	if !ok {
		return Attempt{Status: StatusIdle}
	}
	if a.Status == StatusMissed && a.day != localDay(t.now()) {
		delete(t.attempts, habitID)
		return Attempt{Status: StatusIdle}
	}
	return a
}
