package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Event errors
	CodeEventNotFound  Code = "EVENT_NOT_FOUND"
	CodeEventNameEmpty Code = "EVENT_NAME_EMPTY"
	CodeEventIDEmpty   Code = "EVENT_ID_EMPTY"

	// Registration errors
	CodeRegistrationClosed Code = "REGISTRATION_CLOSED"
	CodeAlreadyEnrolled    Code = "ALREADY_ENROLLED"
	CodeAlreadyInvited     Code = "ALREADY_INVITED"
	CodeAlreadyWaiting     Code = "ALREADY_WAITING"
	CodeInvitationNotFound Code = "INVITATION_NOT_FOUND"
	CodeEventFull          Code = "EVENT_FULL"
	CodeEntrantIDEmpty     Code = "ENTRANT_ID_EMPTY"

	// Draw errors
	CodeInvalidDrawMode Code = "INVALID_DRAW_MODE"

	// Broadcast errors
	CodeInvalidCohort     Code = "INVALID_COHORT"
	CodeBroadcastMsgEmpty Code = "BROADCAST_MESSAGE_EMPTY"

	// Notification errors
	CodeNotificationNotFound Code = "NOTIFICATION_NOT_FOUND"

	// Storage errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeConflict         Code = "CONFLICT"
	CodeTransientFailure Code = "TRANSIENT_FAILURE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeEventNameEmpty,
		CodeEventIDEmpty,
		CodeEntrantIDEmpty,
		CodeInvalidDrawMode,
		CodeInvalidCohort,
		CodeBroadcastMsgEmpty:
		return http.StatusBadRequest

	// Conflict - state doesn't allow the operation
	case CodeRegistrationClosed,
		CodeAlreadyEnrolled,
		CodeAlreadyInvited,
		CodeAlreadyWaiting,
		CodeEventFull,
		CodeConflict:
		return http.StatusConflict

	// Not found - resource doesn't exist
	case CodeEventNotFound,
		CodeInvitationNotFound,
		CodeNotificationNotFound,
		CodeNotFound:
		return http.StatusNotFound

	// Service unavailable - caller may retry
	case CodeTransientFailure:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
