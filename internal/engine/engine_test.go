package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/habito/habito-api/internal/database"
	"github.com/habito/habito-api/internal/eventlog"
	"github.com/habito/habito-api/internal/models"
	"github.com/habito/habito-api/internal/notify"
)

// fakeStore keeps habits in memory and applies commits like the SQL store
type fakeStore struct {
	mu             sync.Mutex
	habits         map[uuid.UUID]*models.Habit
	events         []*models.CompletionEvent
	commitErr      error
	missedErr      error
	completionDays map[uuid.UUID]map[string]bool
}

func newFakeStore(habits ...*models.Habit) *fakeStore {
	s := &fakeStore{
		habits:         make(map[uuid.UUID]*models.Habit),
		completionDays: make(map[uuid.UUID]map[string]bool),
	}
	for _, h := range habits {
		s.habits[h.ID] = h
	}
	return s
}

func (s *fakeStore) GetHabit(ctx context.Context, id uuid.UUID) (*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	habit, ok := s.habits[id]
	if !ok {
		return nil, errors.New("habit not found")
	}
	copied := *habit
	return &copied, nil
}

func (s *fakeStore) HasCompletionOn(ctx context.Context, habitID uuid.UUID, t time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completionDays[habitID][t.Format("2006-01-02")], nil
}

func (s *fakeStore) CommitCompletion(ctx context.Context, habit *models.Habit, event *models.CompletionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		return s.commitErr
	}
	day := event.CompletedAt.Format("2006-01-02")
	if s.completionDays[habit.ID] == nil {
		s.completionDays[habit.ID] = make(map[string]bool)
	}
	if s.completionDays[habit.ID][day] {
		return database.ErrDuplicateCompletion
	}
	s.completionDays[habit.ID][day] = true
	copied := *habit
	s.habits[habit.ID] = &copied
	s.events = append(s.events, event)
	return nil
}

func (s *fakeStore) CommitMissed(ctx context.Context, habit *models.Habit, event *models.CompletionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missedErr != nil {
		return s.missedErr
	}
	copied := *habit
	s.habits[habit.ID] = &copied
	s.events = append(s.events, event)
	return nil
}

// fakeAck resolves acknowledgements synchronously
type fakeAck struct {
	mu    sync.Mutex
	err   error
	ack   *notify.Ack
	calls int
	block chan struct{} // when set, AcknowledgeCompletion waits for ctx or close
}

func (a *fakeAck) AcknowledgeCompletion(ctx context.Context, habitID uuid.UUID, habitName string) (*notify.Ack, error) {
	a.mu.Lock()
	a.calls++
	block := a.block
	a.mu.Unlock()

	if block != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-block:
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	if a.ack != nil {
		return a.ack, nil
	}
	return &notify.Ack{Success: true, Message: "delivered", Timestamp: time.Now()}, nil
}

// recordingNotifier counts best-effort deliveries
type recordingNotifier struct {
	mu             sync.Mutex
	nudges         []string
	celebrations   []int
	celebrationErr error
	nudgeErr       error
}

func (n *recordingNotifier) ScheduleNudge(ctx context.Context, habitID uuid.UUID, habitName, missedReason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.nudgeErr != nil {
		return n.nudgeErr
	}
	n.nudges = append(n.nudges, missedReason)
	return nil
}

func (n *recordingNotifier) CelebrateStreak(ctx context.Context, habitName string, streakDays int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.celebrationErr != nil {
		return n.celebrationErr
	}
	n.celebrations = append(n.celebrations, streakDays)
	return nil
}

func (n *recordingNotifier) SendDailySummary(ctx context.Context, userID uuid.UUID, completedCount, totalCount int) error {
	return nil
}

func testHabit(userID uuid.UUID) *models.Habit {
	return &models.Habit{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       "Morning Run",
		TimeOfDay:  models.TimeOfDayMorning,
		Occurrence: models.OccurrenceDaily,
	}
}

func newTestEngine(store Store, ack notify.Acknowledger, notifier notify.Notifier, opts ...Option) (*Engine, eventlog.Store) {
	log := eventlog.NewMemoryStore()
	return New(store, ack, notifier, log, zap.NewNop(), opts...), log
}

func TestComplete_IncrementsCounters(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)
	habit.CurrentStreak = 2
	habit.LongestStreak = 5
	habit.TotalCompletions = 10

	store := newFakeStore(habit)
	eng, _ := newTestEngine(store, &fakeAck{}, &recordingNotifier{})

	got, err := eng.Complete(context.Background(), userID, habit.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if got.CurrentStreak != 3 {
		t.Errorf("Expected current streak 3, got %d", got.CurrentStreak)
	}
	if got.LongestStreak != 5 {
		t.Errorf("Expected longest streak unchanged at 5, got %d", got.LongestStreak)
	}
	if got.TotalCompletions != 11 {
		t.Errorf("Expected 11 total completions, got %d", got.TotalCompletions)
	}
	if got.LastCompletedAt == nil {
		t.Error("Expected LastCompletedAt to be set")
	}

	if len(store.events) != 1 {
		t.Fatalf("Expected 1 completion event, got %d", len(store.events))
	}
	event := store.events[0]
	if event.Status != models.CompletionStatusCompleted {
		t.Errorf("Expected completed event, got %s", event.Status)
	}
	if event.Source != models.CompletionSourceWebhook {
		t.Errorf("Expected webhook source, got %s", event.Source)
	}
	if event.StreakDays == nil || *event.StreakDays != 3 {
		t.Error("Expected event streak days 3")
	}
}

func TestComplete_ExtendsLongestStreak(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)
	habit.CurrentStreak = 5
	habit.LongestStreak = 5

	store := newFakeStore(habit)
	eng, _ := newTestEngine(store, &fakeAck{}, &recordingNotifier{})

	got, err := eng.Complete(context.Background(), userID, habit.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if got.CurrentStreak != 6 || got.LongestStreak != 6 {
		t.Errorf("Expected streaks 6/6, got %d/%d", got.CurrentStreak, got.LongestStreak)
	}
}

func TestComplete_WrongOwner(t *testing.T) {
	t.Parallel()

	habit := testHabit(uuid.New())
	store := newFakeStore(habit)
	eng, _ := newTestEngine(store, &fakeAck{}, &recordingNotifier{})

	_, err := eng.Complete(context.Background(), uuid.New(), habit.ID)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("Expected ErrNotOwner, got %v", err)
	}
}

func TestComplete_AlreadyCompletedToday(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)
	now := time.Now()
	habit.LastCompletedAt = &now

	store := newFakeStore(habit)
	eng, _ := newTestEngine(store, &fakeAck{}, &recordingNotifier{})

	_, err := eng.Complete(context.Background(), userID, habit.ID)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("Expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestComplete_AlreadyCompletedPerEventHistory(t *testing.T) {
	t.Parallel()

	// LastCompletedAt is stale but an event for today already exists
	userID := uuid.New()
	habit := testHabit(userID)

	store := newFakeStore(habit)
	store.completionDays[habit.ID] = map[string]bool{
		time.Now().Format("2006-01-02"): true,
	}
	eng, _ := newTestEngine(store, &fakeAck{}, &recordingNotifier{})

	_, err := eng.Complete(context.Background(), userID, habit.ID)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("Expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestComplete_AckFailureRollsBack(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)
	habit.CurrentStreak = 4

	store := newFakeStore(habit)
	ack := &fakeAck{err: errors.New("delivery channel down")}
	eng, _ := newTestEngine(store, ack, &recordingNotifier{})

	_, err := eng.Complete(context.Background(), userID, habit.ID)
	if !errors.Is(err, ErrAckFailed) {
		t.Fatalf("Expected ErrAckFailed, got %v", err)
	}

	// Counters untouched, no event committed, habit completable again
	stored, _ := store.GetHabit(context.Background(), habit.ID)
	if stored.CurrentStreak != 4 {
		t.Errorf("Expected streak unchanged at 4, got %d", stored.CurrentStreak)
	}
	if len(store.events) != 0 {
		t.Errorf("Expected no events after failed ack, got %d", len(store.events))
	}
	if state := eng.State(habit.ID); state.Status != StatusIdle {
		t.Errorf("Expected idle state after rollback, got %s", state.Status)
	}
}

func TestComplete_RejectedAckRollsBack(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)

	store := newFakeStore(habit)
	ack := &fakeAck{ack: &notify.Ack{Success: false, Message: "rejected"}}
	eng, _ := newTestEngine(store, ack, &recordingNotifier{})

	_, err := eng.Complete(context.Background(), userID, habit.ID)
	if !errors.Is(err, ErrAckFailed) {
		t.Fatalf("Expected ErrAckFailed, got %v", err)
	}
	if len(store.events) != 0 {
		t.Errorf("Expected no events, got %d", len(store.events))
	}
}

func TestComplete_AckTimeout(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)

	store := newFakeStore(habit)
	ack := &fakeAck{block: make(chan struct{})} // never closes, ctx must expire
	eng, _ := newTestEngine(store, ack, &recordingNotifier{},
		WithAckTimeout(20*time.Millisecond),
	)

	start := time.Now()
	_, err := eng.Complete(context.Background(), userID, habit.ID)
	if !errors.Is(err, ErrAckFailed) {
		t.Fatalf("Expected ErrAckFailed on timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Timeout took too long: %v", elapsed)
	}

	// Habit must be completable again after the timeout
	if state := eng.State(habit.ID); state.Status != StatusIdle {
		t.Errorf("Expected idle state after timeout, got %s", state.Status)
	}
}

func TestComplete_InFlightGuard(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)

	store := newFakeStore(habit)
	block := make(chan struct{})
	ack := &fakeAck{block: block}
	eng, _ := newTestEngine(store, ack, &recordingNotifier{})

	firstDone := make(chan error, 1)
	go func() {
		_, err := eng.Complete(context.Background(), userID, habit.ID)
		firstDone <- err
	}()

	// Wait until the first attempt is pending
	deadline := time.After(2 * time.Second)
	for eng.State(habit.ID).Status != StatusPending {
		select {
		case <-deadline:
			t.Fatal("First attempt never went pending")
		case <-time.After(5 * time.Millisecond):
		}
	}

	_, err := eng.Complete(context.Background(), userID, habit.ID)
	if !errors.Is(err, ErrAttemptInFlight) {
		t.Fatalf("Expected ErrAttemptInFlight, got %v", err)
	}

	close(block)
	if err := <-firstDone; err != nil {
		t.Fatalf("First attempt failed: %v", err)
	}
}

func TestComplete_DuplicateCommitIsIdempotent(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)
	habit.CurrentStreak = 1

	store := newFakeStore(habit)
	// Simulate a concurrent writer having already committed today's event
	store.commitErr = database.ErrDuplicateCompletion

	eng, _ := newTestEngine(store, &fakeAck{}, &recordingNotifier{})

	got, err := eng.Complete(context.Background(), userID, habit.ID)
	if err != nil {
		t.Fatalf("Expected duplicate commit to resolve idempotently, got %v", err)
	}

	// The stored state is returned, not a second increment
	if got.CurrentStreak != 1 {
		t.Errorf("Expected stored streak 1, got %d", got.CurrentStreak)
	}
}

func TestComplete_CelebratesEverySeventhDay(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)
	habit.CurrentStreak = 6

	store := newFakeStore(habit)
	notifier := &recordingNotifier{}
	eng, _ := newTestEngine(store, &fakeAck{}, notifier)

	got, err := eng.Complete(context.Background(), userID, habit.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got.CurrentStreak != 7 {
		t.Fatalf("Expected streak 7, got %d", got.CurrentStreak)
	}

	if len(notifier.celebrations) != 1 || notifier.celebrations[0] != 7 {
		t.Errorf("Expected one celebration for 7 days, got %v", notifier.celebrations)
	}
}

func TestComplete_NoCelebrationOffMilestone(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)
	habit.CurrentStreak = 4

	store := newFakeStore(habit)
	notifier := &recordingNotifier{}
	eng, _ := newTestEngine(store, &fakeAck{}, notifier)

	if _, err := eng.Complete(context.Background(), userID, habit.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if len(notifier.celebrations) != 0 {
		t.Errorf("Expected no celebration at streak 5, got %v", notifier.celebrations)
	}
}

func TestComplete_CelebrationFailureDoesNotFailCompletion(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)
	habit.CurrentStreak = 6

	store := newFakeStore(habit)
	notifier := &recordingNotifier{celebrationErr: errors.New("queue full")}
	eng, _ := newTestEngine(store, &fakeAck{}, notifier)

	got, err := eng.Complete(context.Background(), userID, habit.ID)
	if err != nil {
		t.Fatalf("Expected completion to survive celebration failure: %v", err)
	}
	if got.CurrentStreak != 7 {
		t.Errorf("Expected streak 7, got %d", got.CurrentStreak)
	}
}

func TestComplete_AppendsLogRecords(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)

	store := newFakeStore(habit)
	eng, log := newTestEngine(store, &fakeAck{}, &recordingNotifier{})

	if _, err := eng.Complete(context.Background(), userID, habit.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	records, err := log.Records(context.Background(), userID)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected pending+completed records, got %d", len(records))
	}
	if records[0].Status != eventlog.RecordStatusPending {
		t.Errorf("Expected first record pending, got %s", records[0].Status)
	}
	if records[1].Status != eventlog.RecordStatusCompleted {
		t.Errorf("Expected second record completed, got %s", records[1].Status)
	}
	if records[1].Metadata == nil || records[1].Metadata.StreakDays != 1 {
		t.Error("Expected completed record to carry streak days")
	}
}

func TestReportMissed_ResetsStreak(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)
	habit.CurrentStreak = 9
	habit.LongestStreak = 12
	habit.TotalCompletions = 40

	store := newFakeStore(habit)
	notifier := &recordingNotifier{}
	eng, _ := newTestEngine(store, &fakeAck{}, notifier)

	got, err := eng.ReportMissed(context.Background(), userID, habit.ID, "Travel day")
	if err != nil {
		t.Fatalf("ReportMissed failed: %v", err)
	}

	if got.CurrentStreak != 0 {
		t.Errorf("Expected streak reset to 0, got %d", got.CurrentStreak)
	}
	if got.LongestStreak != 12 {
		t.Errorf("Expected longest streak untouched at 12, got %d", got.LongestStreak)
	}
	if got.TotalCompletions != 40 {
		t.Errorf("Expected total completions untouched at 40, got %d", got.TotalCompletions)
	}

	if len(store.events) != 1 {
		t.Fatalf("Expected one missed event, got %d", len(store.events))
	}
	event := store.events[0]
	if event.Status != models.CompletionStatusMissed {
		t.Errorf("Expected missed event, got %s", event.Status)
	}
	if event.MissedReason == nil || *event.MissedReason != "Travel day" {
		t.Error("Expected missed reason on the event")
	}

	if len(notifier.nudges) != 1 || notifier.nudges[0] != "Travel day" {
		t.Errorf("Expected one nudge with the reason, got %v", notifier.nudges)
	}

	if state := eng.State(habit.ID); state.Status != StatusMissed || state.Reason != "Travel day" {
		t.Errorf("Expected missed overlay with reason, got %+v", state)
	}
}

func TestReportMissed_EmptyReason(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)
	store := newFakeStore(habit)
	eng, _ := newTestEngine(store, &fakeAck{}, &recordingNotifier{})

	for _, reason := range []string{"", "   ", "\t\n"} {
		if _, err := eng.ReportMissed(context.Background(), userID, habit.ID, reason); !errors.Is(err, ErrEmptyReason) {
			t.Errorf("Reason %q: expected ErrEmptyReason, got %v", reason, err)
		}
	}

	if len(store.events) != 0 {
		t.Errorf("Expected no events for rejected reasons, got %d", len(store.events))
	}
}

func TestReportMissed_WrongOwner(t *testing.T) {
	t.Parallel()

	habit := testHabit(uuid.New())
	store := newFakeStore(habit)
	eng, _ := newTestEngine(store, &fakeAck{}, &recordingNotifier{})

	if _, err := eng.ReportMissed(context.Background(), uuid.New(), habit.ID, "busy"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("Expected ErrNotOwner, got %v", err)
	}
}

func TestReportMissed_BlockedWhilePending(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)

	store := newFakeStore(habit)
	block := make(chan struct{})
	ack := &fakeAck{block: block}
	eng, _ := newTestEngine(store, ack, &recordingNotifier{})

	done := make(chan error, 1)
	go func() {
		_, err := eng.Complete(context.Background(), userID, habit.ID)
		done <- err
	}()

	deadline := time.After(2 * time.Second)
	for eng.State(habit.ID).Status != StatusPending {
		select {
		case <-deadline:
			t.Fatal("Attempt never went pending")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, err := eng.ReportMissed(context.Background(), userID, habit.ID, "changed my mind"); !errors.Is(err, ErrAttemptInFlight) {
		t.Fatalf("Expected ErrAttemptInFlight, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("Completion failed: %v", err)
	}
}

func TestReportMissed_NudgeFailureDoesNotFailReport(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)
	habit.CurrentStreak = 3

	store := newFakeStore(habit)
	notifier := &recordingNotifier{nudgeErr: errors.New("queue down")}
	eng, _ := newTestEngine(store, &fakeAck{}, notifier)

	got, err := eng.ReportMissed(context.Background(), userID, habit.ID, "sick")
	if err != nil {
		t.Fatalf("Expected report to survive nudge failure: %v", err)
	}
	if got.CurrentStreak != 0 {
		t.Errorf("Expected streak reset, got %d", got.CurrentStreak)
	}
}

func TestMissedOverlayExpiresNextDay(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)
	store := newFakeStore(habit)

	current := time.Date(2026, 3, 10, 21, 0, 0, 0, time.Local)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	eng, _ := newTestEngine(store, &fakeAck{}, &recordingNotifier{}, WithClock(clock))

	if _, err := eng.ReportMissed(context.Background(), userID, habit.ID, "late meeting"); err != nil {
		t.Fatalf("ReportMissed failed: %v", err)
	}
	if state := eng.State(habit.ID); state.Status != StatusMissed {
		t.Fatalf("Expected missed overlay, got %s", state.Status)
	}

	// Next morning the overlay is gone
	mu.Lock()
	current = time.Date(2026, 3, 11, 7, 0, 0, 0, time.Local)
	mu.Unlock()

	if state := eng.State(habit.ID); state.Status != StatusIdle {
		t.Errorf("Expected overlay to expire at day rollover, got %s", state.Status)
	}
}

func TestRecordCreated(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	habit := testHabit(userID)
	store := newFakeStore(habit)
	eng, log := newTestEngine(store, &fakeAck{}, &recordingNotifier{})

	eng.RecordCreated(context.Background(), habit)

	records, err := log.Records(context.Background(), userID)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 1 || records[0].Status != eventlog.RecordStatusCreated {
		t.Fatalf("Expected one created record, got %+v", records)
	}
}
