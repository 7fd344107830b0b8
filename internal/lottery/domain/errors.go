package domain

import (
	"errors"

	apperrors "github.com/sulfurevents/lottery/internal/errors"
)

var (
	// ErrEventNotFound indicates the event does not exist.
	ErrEventNotFound = apperrors.New(apperrors.CodeEventNotFound, "event not found")
	// ErrRegistrationClosed indicates the event is finalized or filled to capacity.
	ErrRegistrationClosed = apperrors.New(apperrors.CodeRegistrationClosed, "registration is closed")
	// ErrAlreadyEnrolled indicates the entrant already accepted an invitation.
	ErrAlreadyEnrolled = apperrors.New(apperrors.CodeAlreadyEnrolled, "entrant is already enrolled")
	// ErrAlreadyInvited indicates the entrant has a pending invitation.
	ErrAlreadyInvited = apperrors.New(apperrors.CodeAlreadyInvited, "entrant is already invited")
	// ErrAlreadyWaiting indicates the entrant is already on the waiting list.
	ErrAlreadyWaiting = apperrors.New(apperrors.CodeAlreadyWaiting, "entrant is already on the waiting list")
	// ErrInvitationNotFound indicates an accept/decline for an entrant who is not invited.
	ErrInvitationNotFound = apperrors.New(apperrors.CodeInvitationNotFound, "no pending invitation for entrant")
	// ErrEventFull indicates an accept lost a capacity race.
	ErrEventFull = apperrors.New(apperrors.CodeEventFull, "event is at capacity")
	// ErrEmptyEventID indicates a missing event ID.
	ErrEmptyEventID = apperrors.New(apperrors.CodeEventIDEmpty, "event id is required")
	// ErrEmptyEntrantID indicates a missing entrant ID.
	ErrEmptyEntrantID = apperrors.New(apperrors.CodeEntrantIDEmpty, "entrant id is required")
	// ErrEmptyEventName indicates a missing event name.
	ErrEmptyEventName = apperrors.New(apperrors.CodeEventNameEmpty, "event name is required")
	// ErrInvalidDrawMode indicates a missing or unknown draw mode.
	ErrInvalidDrawMode = apperrors.New(apperrors.CodeInvalidDrawMode, "draw mode is required")
	// ErrInvalidCohort indicates a missing or unknown broadcast cohort.
	ErrInvalidCohort = apperrors.New(apperrors.CodeInvalidCohort, "broadcast cohort is required")
	// ErrEmptyBroadcastMessage indicates a broadcast with no message body.
	ErrEmptyBroadcastMessage = apperrors.New(apperrors.CodeBroadcastMsgEmpty, "broadcast message is required")
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("roster store is not configured")
	// ErrIDGeneratorNotConfigured indicates an ID generator is required.
	ErrIDGeneratorNotConfigured = errors.New("id generator is not configured")
)
