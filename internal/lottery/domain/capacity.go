package domain

// OpenSeats reports how many invitations the event can still absorb:
// capacity minus everyone currently invited or enrolled, floored at zero.
// When the event has no capacity limit it reports unbounded=true and the
// seat count is meaningless.
func OpenSeats(event Event) (seats int, unbounded bool) {
	if event.Capacity <= 0 {
		return 0, true
	}
	seats = event.Capacity - len(event.Invited) - len(event.Enrolled)
	if seats < 0 {
		seats = 0
	}
	return seats, false
}

// IsClosed reports whether the event accepts no further joins or invites:
// either it was finalized, or enrollment reached capacity.
func IsClosed(event Event) bool {
	if event.Finalized {
		return true
	}
	return event.Capacity > 0 && len(event.Enrolled) >= event.Capacity
}
