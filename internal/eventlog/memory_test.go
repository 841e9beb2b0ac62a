package eventlog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/habito/habito-api/internal/models"
)

func record(at time.Time, status RecordStatus) Record {
	return Record{
		Timestamp: at,
		HabitID:   uuid.New(),
		HabitName: "Stretch",
		Status:    status,
		Source:    models.CompletionSourceUser,
	}
}

func TestMemoryStore_AppendPreservesOrder(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	userID := uuid.New()
	ctx := context.Background()

	base := time.Now()
	statuses := []RecordStatus{RecordStatusCreated, RecordStatusPending, RecordStatusCompleted}
	for i, status := range statuses {
		if err := store.Append(ctx, userID, record(base.Add(time.Duration(i)*time.Minute), status)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	records, err := store.Records(ctx, userID)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	for i, status := range statuses {
		if records[i].Status != status {
			t.Errorf("Record %d: expected %s, got %s", i, status, records[i].Status)
		}
	}
}

func TestMemoryStore_RecordsSince(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	userID := uuid.New()
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, userID, record(base.Add(time.Duration(i)*time.Hour), RecordStatusCompleted)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	since := base.Add(2 * time.Hour)
	records, err := store.RecordsSince(ctx, userID, since)
	if err != nil {
		t.Fatalf("RecordsSince failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records at or after the cutoff, got %d", len(records))
	}
	for _, r := range records {
		if r.Timestamp.Before(since) {
			t.Errorf("Record before cutoff leaked through: %v", r.Timestamp)
		}
	}
}

func TestMemoryStore_UserIsolation(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	if err := store.Append(ctx, alice, record(time.Now(), RecordStatusCompleted)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records, err := store.Records(ctx, bob)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records for other user, got %d", len(records))
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	if err := store.Append(ctx, userID, record(time.Now(), RecordStatusMissed)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Clear(ctx, userID); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	records, err := store.Records(ctx, userID)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty log after clear, got %d records", len(records))
	}
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Append(ctx, userID, record(time.Now(), RecordStatusCompleted))
		}()
	}
	wg.Wait()

	records, err := store.Records(ctx, userID)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(records) != 20 {
		t.Errorf("Expected 20 records, got %d", len(records))
	}
}

func TestMemoryStore_ReturnsCopy(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	userID := uuid.New()

	if err := store.Append(ctx, userID, record(time.Now(), RecordStatusCompleted)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	first, _ := store.Records(ctx, userID)
	first[0].HabitName = "mutated"

	second, _ := store.Records(ctx, userID)
	if second[0].HabitName != "Stretch" {
		t.Error("Expected store contents to be isolated from caller mutation")
	}
}
