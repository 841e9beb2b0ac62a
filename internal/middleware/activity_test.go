package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/habito/habito-api/internal/models"
)

// fakeActivityStore signals pause calls over a channel so tests can wait on
// background work
type fakeActivityStore struct {
	mu           sync.Mutex
	interactions []uuid.UUID
	stale        []uuid.UUID
	gate         chan struct{} // when non-nil, GetStaleUserIDs waits on it
	paused       chan uuid.UUID
}

var _ ActivityStore = (*fakeActivityStore)(nil)

func (s *fakeActivityStore) UpdateLastInteraction(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions = append(s.interactions, userID)
	return nil
}

func (s *fakeActivityStore) GetStaleUserIDs(ctx context.Context, olderThan time.Time) ([]uuid.UUID, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale, nil
}

func (s *fakeActivityStore) SetSummariesPaused(ctx context.Context, userID uuid.UUID, paused bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.paused <- userID
	return nil
}

func TestActivityTracking_UpdatesLastInteraction(t *testing.T) {
	t.Parallel()

	store := &fakeActivityStore{paused: make(chan uuid.UUID, 1)}
	handler := ActivityTracking(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/habits", nil)
	req = req.WithContext(SetUserInContext(req.Context(), &models.User{ID: userID}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.interactions) != 1 || store.interactions[0] != userID {
		t.Errorf("interactions = %v, want [%s]", store.interactions, userID)
	}
}

func TestActivityTracking_SkipsAnonymousRequests(t *testing.T) {
	t.Parallel()

	store := &fakeActivityStore{paused: make(chan uuid.UUID, 1)}
	handler := ActivityTracking(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.interactions) != 0 {
		t.Errorf("interactions = %v, want none for anonymous request", store.interactions)
	}
}

// The stale-user sweep runs after the response is written, so it must not be
// tied to the request context.
func TestActivityTracking_SweepSurvivesRequestCancellation(t *testing.T) {
	t.Parallel()

	staleID := uuid.New()
	gate := make(chan struct{})
	store := &fakeActivityStore{
		stale:  []uuid.UUID{staleID},
		gate:   gate,
		paused: make(chan uuid.UUID, 1),
	}

	handler := ActivityTracking(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	reqCtx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/habits", nil)
	req = req.WithContext(SetUserInContext(reqCtx, &models.User{ID: uuid.New()}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// The request is finished and its context cancelled before the sweep
	// gets to query the store
	cancel()
	close(gate)

	select {
	case got := <-store.paused:
		if got != staleID {
			t.Errorf("paused user = %s, want %s", got, staleID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stale user was never paused after request context cancellation")
	}
}

func TestActivityTracker_PausesStaleUsers(t *testing.T) {
	t.Parallel()

	staleID := uuid.New()
	store := &fakeActivityStore{
		stale:  []uuid.UUID{staleID},
		paused: make(chan uuid.UUID, 1),
	}

	tracker := NewActivityTracker(store)
	tracker.checkInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tracker.Start(ctx)

	select {
	case got := <-store.paused:
		if got != staleID {
			t.Errorf("paused user = %s, want %s", got, staleID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tracker never paused the stale user")
	}
}

func TestActivityTracker_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	store := &fakeActivityStore{paused: make(chan uuid.UUID, 8)}
	tracker := NewActivityTracker(store)
	tracker.checkInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tracker.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}
