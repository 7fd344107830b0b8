package sqlite

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/sulfurevents/lottery/internal/lottery/storage"
)

func TestEventRoundTripPreservesRosterOrder(t *testing.T) {
	store, err := Open(t.TempDir() + "/lottery.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	now := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	record := storage.EventRecord{
		ID:        "event-1",
		Name:      "Pottery Workshop",
		Capacity:  4,
		Waiting:   []string{"entrant-3", "entrant-1", "entrant-2"},
		Invited:   []string{"entrant-4"},
		Enrolled:  []string{"entrant-5"},
		Cancelled: []string{"entrant-6"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateEvent(context.Background(), record); err != nil {
		t.Fatalf("create event: %v", err)
	}

	got, err := store.GetEvent(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.Name != "Pottery Workshop" || got.Capacity != 4 || got.Finalized {
		t.Fatalf("unexpected event fields: %+v", got)
	}
	if !slices.Equal(got.Waiting, record.Waiting) {
		t.Fatalf("waiting = %v, want %v", got.Waiting, record.Waiting)
	}
	if !slices.Equal(got.Invited, record.Invited) {
		t.Fatalf("invited = %v, want %v", got.Invited, record.Invited)
	}
	if !slices.Equal(got.Enrolled, record.Enrolled) {
		t.Fatalf("enrolled = %v, want %v", got.Enrolled, record.Enrolled)
	}
	if !slices.Equal(got.Cancelled, record.Cancelled) {
		t.Fatalf("cancelled = %v, want %v", got.Cancelled, record.Cancelled)
	}
	if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps = %v / %v, want %v", got.CreatedAt, got.UpdatedAt, now)
	}
}

func TestCreateEventRejectsDuplicateID(t *testing.T) {
	store, err := Open(t.TempDir() + "/lottery.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	now := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	record := storage.EventRecord{ID: "event-1", Name: "Trip", CreatedAt: now, UpdatedAt: now}
	if err := store.CreateEvent(context.Background(), record); err != nil {
		t.Fatalf("create event: %v", err)
	}
	if err := store.CreateEvent(context.Background(), record); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("duplicate create error = %v, want %v", err, storage.ErrConflict)
	}
}

func TestGetEventMissingReturnsNotFound(t *testing.T) {
	store, err := Open(t.TempDir() + "/lottery.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if _, err := store.GetEvent(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestUpdateEventAppliesMutationAtomically(t *testing.T) {
	store, err := Open(t.TempDir() + "/lottery.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	now := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	if err := store.CreateEvent(context.Background(), storage.EventRecord{
		ID:        "event-1",
		Name:      "Trip",
		Capacity:  2,
		Waiting:   []string{"entrant-1", "entrant-2"},
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	updated, err := store.UpdateEvent(context.Background(), "event-1", func(record storage.EventRecord) (storage.EventRecord, error) {
		record.Waiting = []string{"entrant-2"}
		record.Invited = []string{"entrant-1"}
		record.UpdatedAt = now.Add(time.Minute)
		return record, nil
	})
	if err != nil {
		t.Fatalf("update event: %v", err)
	}
	if !slices.Equal(updated.Invited, []string{"entrant-1"}) {
		t.Fatalf("invited = %v", updated.Invited)
	}

	got, err := store.GetEvent(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if !slices.Equal(got.Waiting, []string{"entrant-2"}) || !slices.Equal(got.Invited, []string{"entrant-1"}) {
		t.Fatalf("persisted roster = %+v", got)
	}
	if !got.UpdatedAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("updated at = %v", got.UpdatedAt)
	}
}

func TestUpdateEventRollsBackOnCallbackError(t *testing.T) {
	store, err := Open(t.TempDir() + "/lottery.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	now := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	if err := store.CreateEvent(context.Background(), storage.EventRecord{
		ID:        "event-1",
		Name:      "Trip",
		Waiting:   []string{"entrant-1"},
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	callbackErr := errors.New("registration is closed")
	if _, err := store.UpdateEvent(context.Background(), "event-1", func(record storage.EventRecord) (storage.EventRecord, error) {
		return storage.EventRecord{}, callbackErr
	}); !errors.Is(err, callbackErr) {
		t.Fatalf("update error = %v, want %v", err, callbackErr)
	}

	got, err := store.GetEvent(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if !slices.Equal(got.Waiting, []string{"entrant-1"}) {
		t.Fatalf("roster changed after failed update: %+v", got)
	}
}

func TestUpdateEventSerializesConcurrentMutations(t *testing.T) {
	store, err := Open(t.TempDir() + "/lottery.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	now := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	if err := store.CreateEvent(context.Background(), storage.EventRecord{
		ID:        "event-1",
		Name:      "Trip",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	const joiners = 8
	var wg sync.WaitGroup
	errs := make(chan error, joiners)
	for i := range joiners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entrantID := string(rune('a' + i))
			_, err := store.UpdateEvent(context.Background(), "event-1", func(record storage.EventRecord) (storage.EventRecord, error) {
				record.Waiting = append(record.Waiting, entrantID)
				return record, nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent update: %v", err)
		}
	}

	got, err := store.GetEvent(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if len(got.Waiting) != joiners {
		t.Fatalf("waiting len = %d, want %d (lost updates)", len(got.Waiting), joiners)
	}
}

func TestProfileRoundTripAndMissingDefault(t *testing.T) {
	store, err := Open(t.TempDir() + "/lottery.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if _, err := store.GetProfile(context.Background(), "entrant-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing profile error = %v, want %v", err, storage.ErrNotFound)
	}

	now := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	if err := store.PutProfile(context.Background(), storage.ProfileRecord{
		EntrantID:            "entrant-1",
		NotificationsEnabled: false,
		UpdatedAt:            now,
	}); err != nil {
		t.Fatalf("put profile: %v", err)
	}

	got, err := store.GetProfile(context.Background(), "entrant-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.NotificationsEnabled {
		t.Fatal("expected notifications disabled")
	}

	if err := store.PutProfile(context.Background(), storage.ProfileRecord{
		EntrantID:            "entrant-1",
		NotificationsEnabled: true,
		UpdatedAt:            now.Add(time.Minute),
	}); err != nil {
		t.Fatalf("re-put profile: %v", err)
	}
	got, err = store.GetProfile(context.Background(), "entrant-1")
	if err != nil {
		t.Fatalf("get profile after upsert: %v", err)
	}
	if !got.NotificationsEnabled {
		t.Fatal("expected notifications re-enabled")
	}
}

func TestListEventsOrdersByCreation(t *testing.T) {
	store, err := Open(t.TempDir() + "/lottery.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	for i, eventID := range []string{"event-b", "event-a", "event-c"} {
		createdAt := base.Add(time.Duration(i) * time.Minute)
		if err := store.CreateEvent(context.Background(), storage.EventRecord{
			ID:        eventID,
			Name:      "Event " + eventID,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}); err != nil {
			t.Fatalf("create %s: %v", eventID, err)
		}
	}

	records, err := store.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	var ids []string
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	if want := []string{"event-b", "event-a", "event-c"}; !slices.Equal(ids, want) {
		t.Fatalf("event order = %v, want %v", ids, want)
	}
}
