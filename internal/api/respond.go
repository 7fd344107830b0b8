package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/sulfurevents/lottery/internal/errors"
	notifdomain "github.com/sulfurevents/lottery/internal/notifications/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := code.HTTPStatus()
	message := err.Error()

	if code == apperrors.CodeUnknown {
		switch {
		case errors.Is(err, notifdomain.ErrNotFound):
			code = apperrors.CodeNotificationNotFound
			status = http.StatusNotFound
		case errors.Is(err, notifdomain.ErrRecipientIDRequired),
			errors.Is(err, notifdomain.ErrNotificationIDRequired),
			errors.Is(err, notifdomain.ErrEventIDRequired),
			errors.Is(err, notifdomain.ErrTypeRequired):
			status = http.StatusBadRequest
		default:
			// Internal failures keep their code but not their details.
			message = "internal error"
		}
	}

	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Code:    string(code),
		Message: message,
	}})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{
		Code:    string(apperrors.CodeUnknown),
		Message: message,
	}})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
