package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGetCodeExtractsDomainCode(t *testing.T) {
	t.Parallel()

	err := New(CodeEventFull, "event is at capacity")
	if got := GetCode(err); got != CodeEventFull {
		t.Fatalf("code = %q, want %q", got, CodeEventFull)
	}
}

func TestGetCodeSurvivesWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("accept entrant: %w", New(CodeRegistrationClosed, "registration is closed"))
	if got := GetCode(err); got != CodeRegistrationClosed {
		t.Fatalf("code = %q, want %q", got, CodeRegistrationClosed)
	}
	if !IsCode(err, CodeRegistrationClosed) {
		t.Fatal("expected IsCode match through wrapping")
	}
}

func TestGetCodeUnknownForPlainError(t *testing.T) {
	t.Parallel()

	if got := GetCode(stderrors.New("boom")); got != CodeUnknown {
		t.Fatalf("code = %q, want %q", got, CodeUnknown)
	}
}

func TestSentinelMatchingByCode(t *testing.T) {
	t.Parallel()

	sentinel := New(CodeAlreadyWaiting, "entrant already on waiting list")
	got := sentinel.WithMetadata(map[string]string{"entrant_id": "device-1"})
	if !stderrors.Is(got, sentinel) {
		t.Fatal("expected metadata copy to match sentinel by code")
	}
	if !stderrors.Is(fmt.Errorf("join: %w", got), sentinel) {
		t.Fatal("expected wrapped metadata copy to match sentinel")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("disk full")
	err := Wrap(CodeTransientFailure, "commit roster update", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be matchable")
	}
}

func TestGetMetadata(t *testing.T) {
	t.Parallel()

	err := New(CodeEventNotFound, "event not found").WithMetadata(map[string]string{"event_id": "evt-1"})
	meta := GetMetadata(err)
	if meta["event_id"] != "evt-1" {
		t.Fatalf("metadata = %v, want event_id evt-1", meta)
	}
	if GetMetadata(stderrors.New("plain")) != nil {
		t.Fatal("expected nil metadata for plain error")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code Code
		want int
	}{
		{CodeEventNotFound, http.StatusNotFound},
		{CodeInvitationNotFound, http.StatusNotFound},
		{CodeRegistrationClosed, http.StatusConflict},
		{CodeAlreadyEnrolled, http.StatusConflict},
		{CodeAlreadyInvited, http.StatusConflict},
		{CodeAlreadyWaiting, http.StatusConflict},
		{CodeEventFull, http.StatusConflict},
		{CodeEntrantIDEmpty, http.StatusBadRequest},
		{CodeInvalidDrawMode, http.StatusBadRequest},
		{CodeInvalidCohort, http.StatusBadRequest},
		{CodeTransientFailure, http.StatusServiceUnavailable},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Fatalf("%s status = %d, want %d", tt.code, got, tt.want)
		}
	}
}
