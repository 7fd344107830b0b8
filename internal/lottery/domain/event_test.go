package domain

import (
	"errors"
	"testing"
	"time"
)

func TestStateOf_PrioritizesActiveStanding(t *testing.T) {
	t.Parallel()

	event := Event{
		Waiting:   []string{"waiting-1"},
		Invited:   []string{"invited-1"},
		Enrolled:  []string{"enrolled-1"},
		Cancelled: []string{"cancelled-1", "waiting-1"},
	}

	tests := []struct {
		entrantID string
		want      State
	}{
		{"enrolled-1", StateEnrolled},
		{"invited-1", StateInvited},
		{"waiting-1", StateWaiting},
		{"cancelled-1", StateCancelled},
		{"stranger", StateNone},
	}

	for _, tc := range tests {
		if got := StateOf(event, tc.entrantID); got != tc.want {
			t.Fatalf("StateOf(%q) = %s, want %s", tc.entrantID, StateLabel(got), StateLabel(tc.want))
		}
	}
}

func TestCreateEvent_GeneratesIDAndTimestamps(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	event, err := CreateEvent(CreateEventInput{Name: "Climbing Trip", Capacity: 8},
		fixedClock(now), sequentialIDGenerator("event-1"))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if event.ID != "event-1" {
		t.Fatalf("id = %q", event.ID)
	}
	if !event.CreatedAt.Equal(now) || !event.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps = %v / %v, want %v", event.CreatedAt, event.UpdatedAt, now)
	}
	if len(event.Waiting)+len(event.Invited)+len(event.Enrolled)+len(event.Cancelled) != 0 {
		t.Fatalf("new event has non-empty roster: %+v", event)
	}
}

func TestCreateEvent_PropagatesIDGeneratorFailure(t *testing.T) {
	t.Parallel()

	generatorErr := errors.New("entropy exhausted")
	_, err := CreateEvent(CreateEventInput{Name: "Climbing Trip"}, nil,
		func() (string, error) { return "", generatorErr })
	if !errors.Is(err, generatorErr) {
		t.Fatalf("error = %v, want wrapped %v", err, generatorErr)
	}
}

func TestNormalizeCreateEventInput(t *testing.T) {
	t.Parallel()

	normalized, err := NormalizeCreateEventInput(CreateEventInput{Name: "  Trip  ", Capacity: -1})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if normalized.Name != "Trip" {
		t.Fatalf("name = %q", normalized.Name)
	}
	if normalized.Capacity != 0 {
		t.Fatalf("capacity = %d, want 0", normalized.Capacity)
	}

	if _, err := NormalizeCreateEventInput(CreateEventInput{Name: "   "}); !errors.Is(err, ErrEmptyEventName) {
		t.Fatalf("error = %v, want %v", err, ErrEmptyEventName)
	}
}
