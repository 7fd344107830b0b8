package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sulfurevents/lottery/internal/lottery/domain"
)

type createEventRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type eventResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Finalized bool      `json:"finalized"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type rosterResponse struct {
	EventID   string   `json:"event_id"`
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Finalized bool     `json:"finalized"`
	Closed    bool     `json:"closed"`
	OpenSeats *int     `json:"open_seats"`
	Waiting   []string `json:"waiting"`
	Invited   []string `json:"invited"`
	Enrolled  []string `json:"enrolled"`
	Cancelled []string `json:"cancelled"`
}

type drawRequest struct {
	Mode  string `json:"mode"`
	Count int    `json:"count"`
}

type drawResponse struct {
	Outcome  string   `json:"outcome"`
	Selected []string `json:"selected"`
}

type bulkCancelRequest struct {
	EntrantIDs []string `json:"entrant_ids"`
	Backfill   bool     `json:"backfill"`
}

type bulkCancelResponse struct {
	Cancelled []string      `json:"cancelled"`
	Backfill  *drawResponse `json:"backfill,omitempty"`
}

type notifyResponse struct {
	Notified []string `json:"notified"`
}

type broadcastRequest struct {
	Cohort  string `json:"cohort"`
	Message string `json:"message"`
}

type broadcastResponse struct {
	Recipients []string `json:"recipients"`
}

type auditEntryResponse struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	SenderRole  string    `json:"sender_role"`
	RecipientID string    `json:"recipient_id"`
	EventID     string    `json:"event_id"`
	EventName   string    `json:"event_name"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	event, err := h.lottery.CreateEvent(r.Context(), domain.CreateEventInput{
		Name:     req.Name,
		Capacity: req.Capacity,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(event))
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.lottery.ListEvents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	responses := make([]eventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, toEventResponse(event))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) getRoster(w http.ResponseWriter, r *http.Request) {
	view, err := h.lottery.GetRosterView(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rosterResponse{
		EventID:   view.EventID,
		Name:      view.Name,
		Capacity:  view.Capacity,
		Finalized: view.Finalized,
		Closed:    view.Closed,
		OpenSeats: view.OpenSeats,
		Waiting:   emptyIfNil(view.Waiting),
		Invited:   emptyIfNil(view.Invited),
		Enrolled:  emptyIfNil(view.Enrolled),
		Cancelled: emptyIfNil(view.Cancelled),
	})
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	event, err := h.lottery.Join(r.Context(), chi.URLParam(r, "eventID"), chi.URLParam(r, "entrantID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *Handler) leave(w http.ResponseWriter, r *http.Request) {
	event, err := h.lottery.Leave(r.Context(), chi.URLParam(r, "eventID"), chi.URLParam(r, "entrantID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *Handler) draw(w http.ResponseWriter, r *http.Request) {
	var req drawRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	result, err := h.lottery.Draw(r.Context(), domain.DrawInput{
		EventID: chi.URLParam(r, "eventID"),
		Mode:    domain.DrawModeFromLabel(req.Mode),
		Count:   req.Count,
		Actor:   actorFrom(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drawResponse{
		Outcome:  string(result.Outcome),
		Selected: emptyIfNil(result.Selected),
	})
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	event, err := h.lottery.Accept(r.Context(), chi.URLParam(r, "eventID"), chi.URLParam(r, "entrantID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *Handler) decline(w http.ResponseWriter, r *http.Request) {
	event, err := h.lottery.Decline(r.Context(), chi.URLParam(r, "eventID"), chi.URLParam(r, "entrantID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *Handler) bulkCancel(w http.ResponseWriter, r *http.Request) {
	var req bulkCancelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	eventID := chi.URLParam(r, "eventID")
	actor := actorFrom(r)

	result, err := h.lottery.BulkCancel(r.Context(), domain.BulkCancelInput{
		EventID:    eventID,
		EntrantIDs: req.EntrantIDs,
		Actor:      actor,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response := bulkCancelResponse{Cancelled: emptyIfNil(result.Cancelled)}
	if req.Backfill && len(result.Cancelled) > 0 {
		draw, err := h.lottery.Draw(r.Context(), domain.DrawInput{
			EventID: eventID,
			Mode:    domain.DrawModeFIFO,
			Count:   len(result.Cancelled),
			Actor:   actor,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		response.Backfill = &drawResponse{
			Outcome:  string(draw.Outcome),
			Selected: emptyIfNil(draw.Selected),
		}
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) notifyNotSelected(w http.ResponseWriter, r *http.Request) {
	result, err := h.lottery.NotifyNotSelectedIfFull(r.Context(), chi.URLParam(r, "eventID"), actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifyResponse{Notified: emptyIfNil(result.Notified)})
}

func (h *Handler) broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	result, err := h.lottery.Broadcast(r.Context(), domain.BroadcastInput{
		EventID: chi.URLParam(r, "eventID"),
		Cohort:  domain.CohortFromLabel(req.Cohort),
		Message: req.Message,
		Actor:   actorFrom(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, broadcastResponse{Recipients: emptyIfNil(result.Recipients)})
}

func (h *Handler) listAuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.notifications.ListAuditLog(r.Context(), chi.URLParam(r, "eventID"), 0)
	if err != nil {
		writeError(w, err)
		return
	}
	response := make([]auditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, auditEntryResponse{
			ID:          entry.ID,
			SenderID:    entry.SenderID,
			SenderRole:  entry.SenderRole,
			RecipientID: entry.RecipientID,
			EventID:     entry.EventID,
			EventName:   entry.EventName,
			Type:        entry.Type,
			Message:     entry.Message,
			Timestamp:   entry.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func toEventResponse(event domain.Event) eventResponse {
	return eventResponse{
		ID:        event.ID,
		Name:      event.Name,
		Capacity:  event.Capacity,
		Finalized: event.Finalized,
		CreatedAt: event.CreatedAt,
		UpdatedAt: event.UpdatedAt,
	}
}

// emptyIfNil keeps list fields as [] instead of null in JSON.
func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
