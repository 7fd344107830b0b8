package domain

import (
	"fmt"
	"strings"
	"time"
)

// NotificationType identifies one entrant-facing notification kind.
type NotificationType string

const (
	// NotificationInvited tells an entrant they won a draw.
	NotificationInvited NotificationType = "INVITED"
	// NotificationNotSelected tells an entrant they lost out.
	NotificationNotSelected NotificationType = "NOT_SELECTED"
	// NotificationWaitingBroadcast is an organizer message to the waiting cohort.
	NotificationWaitingBroadcast NotificationType = "WAITING_BROADCAST"
	// NotificationSelectedBroadcast is an organizer message to invited and enrolled entrants.
	NotificationSelectedBroadcast NotificationType = "SELECTED_BROADCAST"
	// NotificationCancelledBroadcast is an organizer message to cancelled entrants.
	NotificationCancelledBroadcast NotificationType = "CANCELLED_BROADCAST"
)

// Notification is one entrant-facing notification record produced by a
// roster transition. The core produces these; durable storage and delivery
// belong to the emitter.
type Notification struct {
	ID          string
	EventID     string
	EventName   string
	RecipientID string
	Type        NotificationType
	Message     string
	Timestamp   time.Time
	Read        bool
}

// AuditEntry records one organizer- or admin-initiated roster action for the
// notification log.
type AuditEntry struct {
	ID          string
	SenderID    string
	SenderRole  string
	RecipientID string
	EventID     string
	EventName   string
	Type        NotificationType
	Message     string
	Timestamp   time.Time
}

// Actor identifies the organizer or admin performing an operation, for audit
// attribution only. Authorization is enforced outside the core.
type Actor struct {
	ID   string
	Role string
}

// Cohort identifies a broadcast audience.
type Cohort int

const (
	// CohortUnspecified represents an invalid cohort value.
	CohortUnspecified Cohort = iota
	// CohortWaiting targets every waiting entrant.
	CohortWaiting
	// CohortSelected targets invited and enrolled entrants.
	CohortSelected
	// CohortCancelled targets cancelled entrants.
	CohortCancelled
)

// CohortLabel returns the string label for a cohort.
func CohortLabel(cohort Cohort) string {
	switch cohort {
	case CohortWaiting:
		return "WAITING"
	case CohortSelected:
		return "SELECTED"
	case CohortCancelled:
		return "CANCELLED"
	default:
		return "UNSPECIFIED"
	}
}

// CohortFromLabel converts a cohort label to a Cohort value.
func CohortFromLabel(label string) Cohort {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "WAITING":
		return CohortWaiting
	case "SELECTED":
		return CohortSelected
	case "CANCELLED":
		return CohortCancelled
	default:
		return CohortUnspecified
	}
}

// broadcastType maps a cohort to its notification type.
func broadcastType(cohort Cohort) NotificationType {
	switch cohort {
	case CohortWaiting:
		return NotificationWaitingBroadcast
	case CohortSelected:
		return NotificationSelectedBroadcast
	case CohortCancelled:
		return NotificationCancelledBroadcast
	default:
		return ""
	}
}

// InvitedMessage is the entrant-facing text for a draw win.
func InvitedMessage(eventName string) string {
	return fmt.Sprintf("You were selected for %s. Tap to accept or decline.", displayName(eventName))
}

// NotSelectedMessage is the entrant-facing text for losing out on a seat.
func NotSelectedMessage(eventName string) string {
	return fmt.Sprintf("You were not selected for %s.", displayName(eventName))
}

func displayName(eventName string) string {
	eventName = strings.TrimSpace(eventName)
	if eventName == "" {
		return "this event"
	}
	return eventName
}
