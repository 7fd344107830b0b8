package domain

import (
	"context"
	"log"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/sulfurevents/lottery/internal/platform/id"
	"github.com/sulfurevents/lottery/internal/platform/random"
)

// RosterStore is the transactional persistence boundary for event rosters.
//
// UpdateEvent must run fn inside a single isolated transaction: read the
// current event, apply fn, and commit the returned event so that no
// concurrent caller observes an intermediate roster. An error returned by fn
// aborts the transaction and propagates unchanged. Implementations may
// invoke fn more than once when retrying conflicts, so fn must not rely on
// captured state from a previous attempt.
type RosterStore interface {
	CreateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, eventID string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	UpdateEvent(ctx context.Context, eventID string, fn func(Event) (Event, error)) (Event, error)
}

// ProfileStore resolves per-entrant notification preferences.
// A missing profile means notifications are enabled.
type ProfileStore interface {
	NotificationsEnabled(ctx context.Context, entrantID string) (bool, error)
	SetNotificationsEnabled(ctx context.Context, entrantID string, enabled bool) error
}

// Emitter is the sink for notification and audit records. It performs no
// policy checks of its own; the service gates notifications on the entrant's
// opt-out preference before calling it. Emission failures never roll back
// the committed roster mutation.
type Emitter interface {
	EmitNotification(ctx context.Context, notification Notification) error
	EmitAudit(ctx context.Context, entry AuditEntry) error
	// ClearPendingInvites withdraws unread INVITED notifications for the
	// entrant on the event, superseding a stale invite after a cancellation.
	ClearPendingInvites(ctx context.Context, eventID, recipientID string) error
}

// Service applies registration state machine transitions against the roster
// store and emits notification/audit side effects.
type Service struct {
	store    RosterStore
	profiles ProfileStore
	emitter  Emitter
	clock    func() time.Time
	newID    func() (string, error)
	newRand  func() (*rand.Rand, error)
}

// NewService constructs the registration state machine. clock, newID and
// newRand fall back to real time, random IDs and fresh ChaCha8 entropy when
// nil.
func NewService(store RosterStore, profiles ProfileStore, emitter Emitter,
	clock func() time.Time, newID func() (string, error), newRand func() (*rand.Rand, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	if newRand == nil {
		newRand = freshRand
	}
	return &Service{
		store:    store,
		profiles: profiles,
		emitter:  emitter,
		clock:    clock,
		newID:    newID,
		newRand:  newRand,
	}
}

func freshRand() (*rand.Rand, error) {
	key, err := random.NewChaCha8Key()
	if err != nil {
		return nil, err
	}
	return rand.New(rand.NewChaCha8(key)), nil
}

// CreateEvent stores a new event with empty roster sets.
func (s *Service) CreateEvent(ctx context.Context, input CreateEventInput) (Event, error) {
	if s == nil || s.store == nil {
		return Event{}, ErrStoreNotConfigured
	}
	event, err := CreateEvent(input, s.clock, s.newID)
	if err != nil {
		return Event{}, err
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// ListEvents returns every stored event ordered by creation time.
func (s *Service) ListEvents(ctx context.Context) ([]Event, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return s.store.ListEvents(ctx)
}

// Join appends the entrant to the waiting list. A previously cancelled
// entrant re-joins like a fresh one; the cancelled marker is historical and
// is left in place.
func (s *Service) Join(ctx context.Context, eventID, entrantID string) (Event, error) {
	if s == nil || s.store == nil {
		return Event{}, ErrStoreNotConfigured
	}
	eventID, entrantID, err := normalizeIDs(eventID, entrantID)
	if err != nil {
		return Event{}, err
	}

	return s.store.UpdateEvent(ctx, eventID, func(event Event) (Event, error) {
		if IsClosed(event) {
			return Event{}, ErrRegistrationClosed
		}
		switch StateOf(event, entrantID) {
		case StateEnrolled:
			return Event{}, ErrAlreadyEnrolled
		case StateInvited:
			return Event{}, ErrAlreadyInvited
		case StateWaiting:
			return Event{}, ErrAlreadyWaiting
		}
		event.Waiting = append(event.Waiting, entrantID)
		event.UpdatedAt = s.nowUTC()
		return event, nil
	})
}

// Leave removes the entrant from the waiting list. Removing an absent
// entrant is a no-op, so retries are safe.
func (s *Service) Leave(ctx context.Context, eventID, entrantID string) (Event, error) {
	if s == nil || s.store == nil {
		return Event{}, ErrStoreNotConfigured
	}
	eventID, entrantID, err := normalizeIDs(eventID, entrantID)
	if err != nil {
		return Event{}, err
	}

	return s.store.UpdateEvent(ctx, eventID, func(event Event) (Event, error) {
		if !slices.Contains(event.Waiting, entrantID) {
			return event, nil
		}
		event.Waiting = without(event.Waiting, entrantID)
		event.UpdatedAt = s.nowUTC()
		return event, nil
	})
}

// DrawOutcome reports why a draw did or did not invite anyone.
type DrawOutcome string

const (
	// DrawInvited means at least one entrant moved to invited.
	DrawInvited DrawOutcome = "INVITED"
	// DrawNoOpenSeats means every seat is already invited or enrolled.
	DrawNoOpenSeats DrawOutcome = "NO_OPEN_SEATS"
	// DrawNoCandidates means the eligible waiting pool was empty.
	DrawNoCandidates DrawOutcome = "NO_CANDIDATES"
)

// DrawInput describes one organizer-triggered draw.
// A Count of zero or less fills every open seat.
type DrawInput struct {
	EventID string
	Mode    DrawMode
	Count   int
	Actor   Actor
}

// DrawResult reports the entrants moved to invited by one draw.
type DrawResult struct {
	Outcome  DrawOutcome
	Selected []string
	Event    Event
}

// Draw moves up to min(count, open seats) eligible waiting entrants into
// invited, chosen by the requested mode. Zero-result draws report an outcome
// instead of failing so the organizer UI can show "nothing to do".
func (s *Service) Draw(ctx context.Context, input DrawInput) (DrawResult, error) {
	if s == nil || s.store == nil {
		return DrawResult{}, ErrStoreNotConfigured
	}
	eventID := strings.TrimSpace(input.EventID)
	if eventID == "" {
		return DrawResult{}, ErrEmptyEventID
	}
	if input.Mode != DrawModeRandom && input.Mode != DrawModeFIFO {
		return DrawResult{}, ErrInvalidDrawMode
	}

	rng, err := s.newRand()
	if err != nil {
		return DrawResult{}, err
	}

	var outcome DrawOutcome
	var selected []string
	event, err := s.store.UpdateEvent(ctx, eventID, func(event Event) (Event, error) {
		outcome, selected = "", nil

		if IsClosed(event) {
			return Event{}, ErrRegistrationClosed
		}

		seats, unbounded := OpenSeats(event)
		if !unbounded && seats == 0 {
			outcome = DrawNoOpenSeats
			return event, nil
		}

		pool := eligiblePool(event)
		if len(pool) == 0 {
			outcome = DrawNoCandidates
			return event, nil
		}

		limit := input.Count
		if limit <= 0 || (!unbounded && limit > seats) {
			limit = len(pool)
			if !unbounded {
				limit = seats
			}
		}

		chosen, err := SelectCandidates(pool, limit, input.Mode, rng)
		if err != nil {
			return Event{}, err
		}

		for _, entrantID := range chosen {
			event.Waiting = without(event.Waiting, entrantID)
			event.Invited = appendMissing(event.Invited, entrantID)
		}
		event.UpdatedAt = s.nowUTC()
		outcome = DrawInvited
		selected = chosen
		return event, nil
	})
	if err != nil {
		return DrawResult{}, err
	}

	for _, entrantID := range selected {
		s.notify(ctx, event, entrantID, NotificationInvited, InvitedMessage(event.Name))
		s.audit(ctx, input.Actor, event, entrantID, NotificationInvited, InvitedMessage(event.Name))
	}

	return DrawResult{Outcome: outcome, Selected: selected, Event: event}, nil
}

// Accept moves an invited entrant into enrolled. Re-accepting an enrolled
// entrant is an idempotent no-op. The capacity guard re-checks the roster
// inside the transaction, so racing accepts cannot overfill the event.
// Filling the last seat finalizes the event, clears the waiting list and
// notifies the cleared waiters they were not selected.
func (s *Service) Accept(ctx context.Context, eventID, entrantID string) (Event, error) {
	if s == nil || s.store == nil {
		return Event{}, ErrStoreNotConfigured
	}
	eventID, entrantID, err := normalizeIDs(eventID, entrantID)
	if err != nil {
		return Event{}, err
	}

	var clearedWaiters []string
	event, err := s.store.UpdateEvent(ctx, eventID, func(event Event) (Event, error) {
		clearedWaiters = nil

		if slices.Contains(event.Enrolled, entrantID) {
			return event, nil
		}
		if !slices.Contains(event.Invited, entrantID) {
			return Event{}, ErrInvitationNotFound
		}
		if event.Capacity > 0 && len(event.Enrolled) >= event.Capacity {
			return Event{}, ErrEventFull
		}

		event.Invited = without(event.Invited, entrantID)
		event.Waiting = without(event.Waiting, entrantID)
		event.Enrolled = appendMissing(event.Enrolled, entrantID)

		if event.Capacity > 0 && len(event.Enrolled) == event.Capacity {
			event.Finalized = true
			clearedWaiters = slices.Clone(event.Waiting)
			event.Waiting = nil
		}
		event.UpdatedAt = s.nowUTC()
		return event, nil
	})
	if err != nil {
		return Event{}, err
	}

	for _, waiterID := range clearedWaiters {
		s.notify(ctx, event, waiterID, NotificationNotSelected, NotSelectedMessage(event.Name))
	}

	return event, nil
}

// Decline moves an invited entrant into cancelled. It does not draw a
// replacement; backfilling a vacated seat is a separate organizer Draw.
func (s *Service) Decline(ctx context.Context, eventID, entrantID string) (Event, error) {
	if s == nil || s.store == nil {
		return Event{}, ErrStoreNotConfigured
	}
	eventID, entrantID, err := normalizeIDs(eventID, entrantID)
	if err != nil {
		return Event{}, err
	}

	return s.store.UpdateEvent(ctx, eventID, func(event Event) (Event, error) {
		if !slices.Contains(event.Invited, entrantID) {
			return Event{}, ErrInvitationNotFound
		}
		event.Invited = without(event.Invited, entrantID)
		event.Cancelled = appendMissing(event.Cancelled, entrantID)
		event.UpdatedAt = s.nowUTC()
		return event, nil
	})
}

// BulkCancelInput describes one organizer bulk cancellation.
type BulkCancelInput struct {
	EventID    string
	EntrantIDs []string
	Actor      Actor
}

// BulkCancelResult reports which entrants were actually cancelled.
type BulkCancelResult struct {
	Cancelled []string
	Event     Event
}

// BulkCancel moves each given invited entrant into cancelled in one atomic
// update. IDs with no pending invitation are skipped. Each cancellation
// supersedes the entrant's pending INVITED notifications and records a
// NOT_SELECTED notification plus an audit entry.
func (s *Service) BulkCancel(ctx context.Context, input BulkCancelInput) (BulkCancelResult, error) {
	if s == nil || s.store == nil {
		return BulkCancelResult{}, ErrStoreNotConfigured
	}
	eventID := strings.TrimSpace(input.EventID)
	if eventID == "" {
		return BulkCancelResult{}, ErrEmptyEventID
	}

	var cancelled []string
	event, err := s.store.UpdateEvent(ctx, eventID, func(event Event) (Event, error) {
		cancelled = nil
		for _, entrantID := range input.EntrantIDs {
			entrantID = strings.TrimSpace(entrantID)
			if entrantID == "" || !slices.Contains(event.Invited, entrantID) {
				continue
			}
			event.Invited = without(event.Invited, entrantID)
			event.Cancelled = appendMissing(event.Cancelled, entrantID)
			cancelled = append(cancelled, entrantID)
		}
		if len(cancelled) > 0 {
			event.UpdatedAt = s.nowUTC()
		}
		return event, nil
	})
	if err != nil {
		return BulkCancelResult{}, err
	}

	for _, entrantID := range cancelled {
		if s.emitter != nil {
			if err := s.emitter.ClearPendingInvites(ctx, event.ID, entrantID); err != nil {
				log.Printf("clear pending invites for %s on %s: %v", entrantID, event.ID, err)
			}
		}
		s.notify(ctx, event, entrantID, NotificationNotSelected, NotSelectedMessage(event.Name))
		s.audit(ctx, input.Actor, event, entrantID, NotificationNotSelected, NotSelectedMessage(event.Name))
	}

	return BulkCancelResult{Cancelled: cancelled, Event: event}, nil
}

// NotifyResult reports the waiting entrants cleared and notified.
type NotifyResult struct {
	Notified []string
	Event    Event
}

// NotifyNotSelectedIfFull clears the waiting list and notifies every cleared
// waiter once the event is effectively full (enrolled plus invited covers
// capacity). Re-running after the waiting list is empty is a no-op.
func (s *Service) NotifyNotSelectedIfFull(ctx context.Context, eventID string, actor Actor) (NotifyResult, error) {
	if s == nil || s.store == nil {
		return NotifyResult{}, ErrStoreNotConfigured
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return NotifyResult{}, ErrEmptyEventID
	}

	var notified []string
	event, err := s.store.UpdateEvent(ctx, eventID, func(event Event) (Event, error) {
		notified = nil

		if event.Capacity <= 0 {
			return event, nil
		}
		if len(event.Enrolled)+len(event.Invited) < event.Capacity {
			return event, nil
		}
		if len(event.Waiting) == 0 {
			return event, nil
		}

		notified = eligiblePool(event)
		event.Waiting = nil
		event.UpdatedAt = s.nowUTC()
		return event, nil
	})
	if err != nil {
		return NotifyResult{}, err
	}

	for _, entrantID := range notified {
		s.notify(ctx, event, entrantID, NotificationNotSelected, NotSelectedMessage(event.Name))
		s.audit(ctx, actor, event, entrantID, NotificationNotSelected, NotSelectedMessage(event.Name))
	}

	return NotifyResult{Notified: notified, Event: event}, nil
}

// BroadcastInput describes one organizer broadcast.
type BroadcastInput struct {
	EventID string
	Cohort  Cohort
	Message string
	Actor   Actor
}

// BroadcastResult reports the entrants a broadcast actually reached.
type BroadcastResult struct {
	Recipients []string
}

// Broadcast fans a message out to every cohort member whose notifications
// are enabled. It never mutates the roster.
func (s *Service) Broadcast(ctx context.Context, input BroadcastInput) (BroadcastResult, error) {
	if s == nil || s.store == nil {
		return BroadcastResult{}, ErrStoreNotConfigured
	}
	eventID := strings.TrimSpace(input.EventID)
	if eventID == "" {
		return BroadcastResult{}, ErrEmptyEventID
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return BroadcastResult{}, ErrEmptyBroadcastMessage
	}
	notificationType := broadcastType(input.Cohort)
	if notificationType == "" {
		return BroadcastResult{}, ErrInvalidCohort
	}

	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return BroadcastResult{}, err
	}

	var members []string
	switch input.Cohort {
	case CohortWaiting:
		members = slices.Clone(event.Waiting)
	case CohortSelected:
		members = slices.Clone(event.Invited)
		for _, entrantID := range event.Enrolled {
			members = appendMissing(members, entrantID)
		}
	case CohortCancelled:
		members = slices.Clone(event.Cancelled)
	}

	var recipients []string
	for _, entrantID := range members {
		if s.notify(ctx, event, entrantID, notificationType, message) {
			recipients = append(recipients, entrantID)
		}
		s.audit(ctx, input.Actor, event, entrantID, notificationType, message)
	}

	return BroadcastResult{Recipients: recipients}, nil
}

// RosterView is the read-only projection exposed for display.
// OpenSeats is nil for unbounded events.
type RosterView struct {
	EventID   string
	Name      string
	Capacity  int
	Finalized bool
	Closed    bool
	OpenSeats *int
	Waiting   []string
	Invited   []string
	Enrolled  []string
	Cancelled []string
}

// GetRosterView projects the current roster together with derived capacity
// state.
func (s *Service) GetRosterView(ctx context.Context, eventID string) (RosterView, error) {
	if s == nil || s.store == nil {
		return RosterView{}, ErrStoreNotConfigured
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return RosterView{}, ErrEmptyEventID
	}

	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return RosterView{}, err
	}

	view := RosterView{
		EventID:   event.ID,
		Name:      event.Name,
		Capacity:  event.Capacity,
		Finalized: event.Finalized,
		Closed:    IsClosed(event),
		Waiting:   slices.Clone(event.Waiting),
		Invited:   slices.Clone(event.Invited),
		Enrolled:  slices.Clone(event.Enrolled),
		Cancelled: slices.Clone(event.Cancelled),
	}
	if seats, unbounded := OpenSeats(event); !unbounded {
		view.OpenSeats = &seats
	}
	return view, nil
}

// SetNotificationsEnabled stores the entrant's opt-in/opt-out preference.
func (s *Service) SetNotificationsEnabled(ctx context.Context, entrantID string, enabled bool) error {
	if s == nil || s.profiles == nil {
		return ErrStoreNotConfigured
	}
	entrantID = strings.TrimSpace(entrantID)
	if entrantID == "" {
		return ErrEmptyEntrantID
	}
	return s.profiles.SetNotificationsEnabled(ctx, entrantID, enabled)
}

// notify emits one notification to the entrant unless they opted out.
// Reports whether the notification was emitted. Emission failures are
// logged; the roster mutation has already committed.
func (s *Service) notify(ctx context.Context, event Event, recipientID string, notificationType NotificationType, message string) bool {
	if s.emitter == nil {
		return false
	}
	if !s.notificationsAllowed(ctx, recipientID) {
		return false
	}

	notificationID, err := s.newID()
	if err != nil {
		log.Printf("generate notification id for %s: %v", recipientID, err)
		return false
	}
	notification := Notification{
		ID:          notificationID,
		EventID:     event.ID,
		EventName:   event.Name,
		RecipientID: recipientID,
		Type:        notificationType,
		Message:     message,
		Timestamp:   s.nowUTC(),
	}
	if err := s.emitter.EmitNotification(ctx, notification); err != nil {
		log.Printf("emit %s notification to %s on %s: %v", notificationType, recipientID, event.ID, err)
		return false
	}
	return true
}

// audit records one organizer action. Audit entries are not subject to the
// recipient's notification opt-out. Entries without an acting identity are
// skipped.
func (s *Service) audit(ctx context.Context, actor Actor, event Event, recipientID string, notificationType NotificationType, message string) {
	if s.emitter == nil {
		return
	}
	if strings.TrimSpace(actor.ID) == "" {
		return
	}

	entryID, err := s.newID()
	if err != nil {
		log.Printf("generate audit id for %s: %v", recipientID, err)
		return
	}
	entry := AuditEntry{
		ID:          entryID,
		SenderID:    actor.ID,
		SenderRole:  actor.Role,
		RecipientID: recipientID,
		EventID:     event.ID,
		EventName:   event.Name,
		Type:        notificationType,
		Message:     message,
		Timestamp:   s.nowUTC(),
	}
	if err := s.emitter.EmitAudit(ctx, entry); err != nil {
		log.Printf("emit audit entry for %s on %s: %v", recipientID, event.ID, err)
	}
}

// notificationsAllowed resolves the entrant's opt-out preference, defaulting
// to enabled when no profile store is wired or the lookup fails.
func (s *Service) notificationsAllowed(ctx context.Context, entrantID string) bool {
	if s.profiles == nil {
		return true
	}
	enabled, err := s.profiles.NotificationsEnabled(ctx, entrantID)
	if err != nil {
		log.Printf("resolve notification preference for %s: %v", entrantID, err)
		return true
	}
	return enabled
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func normalizeIDs(eventID, entrantID string) (string, string, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return "", "", ErrEmptyEventID
	}
	entrantID = strings.TrimSpace(entrantID)
	if entrantID == "" {
		return "", "", ErrEmptyEntrantID
	}
	return eventID, entrantID, nil
}
