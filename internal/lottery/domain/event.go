package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sulfurevents/lottery/internal/platform/id"
)

// Event is one capacity-limited activity together with its roster sets.
//
// Waiting preserves insertion order (FIFO draws depend on it). Waiting,
// Invited and Enrolled are pairwise disjoint; Cancelled is a historical
// marker and does not block a later re-join.
type Event struct {
	ID        string
	Name      string
	Capacity  int
	Finalized bool
	Waiting   []string
	Invited   []string
	Enrolled  []string
	Cancelled []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// State describes one entrant's standing within one event.
type State int

const (
	// StateNone indicates the entrant has no standing in the event.
	StateNone State = iota
	// StateWaiting indicates the entrant is on the waiting list.
	StateWaiting
	// StateInvited indicates the entrant has a pending invitation.
	StateInvited
	// StateEnrolled indicates the entrant accepted an invitation.
	StateEnrolled
	// StateCancelled indicates the entrant declined or was cancelled.
	StateCancelled
)

// StateLabel returns the string label for an entrant state.
func StateLabel(state State) string {
	switch state {
	case StateWaiting:
		return "WAITING"
	case StateInvited:
		return "INVITED"
	case StateEnrolled:
		return "ENROLLED"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "NONE"
	}
}

// StateOf reports the entrant's standing in the event. The three active sets
// take priority over the cancelled marker.
func StateOf(event Event, entrantID string) State {
	switch {
	case slices.Contains(event.Enrolled, entrantID):
		return StateEnrolled
	case slices.Contains(event.Invited, entrantID):
		return StateInvited
	case slices.Contains(event.Waiting, entrantID):
		return StateWaiting
	case slices.Contains(event.Cancelled, entrantID):
		return StateCancelled
	default:
		return StateNone
	}
}

// CreateEventInput describes the metadata needed to create an event.
type CreateEventInput struct {
	Name     string
	Capacity int
}

// CreateEvent creates a new event with a generated ID, empty roster sets and
// timestamps. A capacity of zero or less means unbounded.
func CreateEvent(input CreateEventInput, now func() time.Time, idGenerator func() (string, error)) (Event, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateEventInput(input)
	if err != nil {
		return Event{}, err
	}

	eventID, err := idGenerator()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}

	createdAt := now().UTC()
	return Event{
		ID:        eventID,
		Name:      normalized.Name,
		Capacity:  normalized.Capacity,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// NormalizeCreateEventInput trims and validates event input metadata.
func NormalizeCreateEventInput(input CreateEventInput) (CreateEventInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateEventInput{}, ErrEmptyEventName
	}
	if input.Capacity < 0 {
		input.Capacity = 0
	}
	return input, nil
}

// without returns list with every occurrence of target removed.
func without(list []string, target string) []string {
	result := make([]string, 0, len(list))
	for _, item := range list {
		if item != target {
			result = append(result, item)
		}
	}
	return result
}

// appendMissing appends target to list unless already present.
func appendMissing(list []string, target string) []string {
	if slices.Contains(list, target) {
		return list
	}
	return append(list, target)
}
