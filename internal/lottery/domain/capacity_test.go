package domain

import "testing"

func TestOpenSeats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		event         Event
		wantSeats     int
		wantUnbounded bool
	}{
		{
			name:          "empty bounded event",
			event:         Event{Capacity: 5},
			wantSeats:     5,
			wantUnbounded: false,
		},
		{
			name: "invited and enrolled both consume seats",
			event: Event{
				Capacity: 5,
				Invited:  []string{"entrant-1", "entrant-2"},
				Enrolled: []string{"entrant-3"},
			},
			wantSeats: 2,
		},
		{
			name: "oversubscribed floors at zero",
			event: Event{
				Capacity: 1,
				Invited:  []string{"entrant-1"},
				Enrolled: []string{"entrant-2"},
			},
			wantSeats: 0,
		},
		{
			name:          "zero capacity is unbounded",
			event:         Event{Capacity: 0, Enrolled: []string{"entrant-1"}},
			wantUnbounded: true,
		},
		{
			name:          "negative capacity is unbounded",
			event:         Event{Capacity: -3},
			wantUnbounded: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			seats, unbounded := OpenSeats(tc.event)
			if unbounded != tc.wantUnbounded {
				t.Fatalf("unbounded = %v, want %v", unbounded, tc.wantUnbounded)
			}
			if !unbounded && seats != tc.wantSeats {
				t.Fatalf("seats = %d, want %d", seats, tc.wantSeats)
			}
		})
	}
}

func TestIsClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{
			name:  "open event",
			event: Event{Capacity: 2, Enrolled: []string{"entrant-1"}},
			want:  false,
		},
		{
			name:  "finalized",
			event: Event{Capacity: 2, Finalized: true},
			want:  true,
		},
		{
			name:  "enrollment at capacity",
			event: Event{Capacity: 2, Enrolled: []string{"entrant-1", "entrant-2"}},
			want:  true,
		},
		{
			name: "invitations alone do not close",
			event: Event{
				Capacity: 2,
				Invited:  []string{"entrant-1", "entrant-2"},
			},
			want: false,
		},
		{
			name:  "unbounded never closes on enrollment",
			event: Event{Enrolled: []string{"entrant-1", "entrant-2", "entrant-3"}},
			want:  false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := IsClosed(tc.event); got != tc.want {
				t.Fatalf("IsClosed = %v, want %v", got, tc.want)
			}
		})
	}
}
