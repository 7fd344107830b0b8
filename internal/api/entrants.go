package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	notifdomain "github.com/sulfurevents/lottery/internal/notifications/domain"
)

type notificationResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	EventName string    `json:"event_name"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

type inboxResponse struct {
	Notifications []notificationResponse `json:"notifications"`
	NextPageToken string                 `json:"next_page_token,omitempty"`
	UnreadCount   int                    `json:"unread_count"`
}

type profileRequest struct {
	NotificationsEnabled bool `json:"notifications_enabled"`
}

type profileResponse struct {
	EntrantID            string `json:"entrant_id"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

func (h *Handler) listInbox(w http.ResponseWriter, r *http.Request) {
	pageSize := 0
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "page_size must be an integer")
			return
		}
		pageSize = parsed
	}

	page, err := h.notifications.ListInbox(r.Context(), notifdomain.ListInboxInput{
		RecipientID: chi.URLParam(r, "entrantID"),
		PageSize:    pageSize,
		PageToken:   r.URL.Query().Get("page_token"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response := inboxResponse{
		Notifications: make([]notificationResponse, 0, len(page.Notifications)),
		NextPageToken: page.NextPageToken,
		UnreadCount:   page.UnreadCount,
	}
	for _, notification := range page.Notifications {
		response.Notifications = append(response.Notifications, toNotificationResponse(notification))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	notification, err := h.notifications.MarkRead(
		r.Context(),
		chi.URLParam(r, "entrantID"),
		chi.URLParam(r, "notificationID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNotificationResponse(notification))
}

func (h *Handler) setProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	entrantID := chi.URLParam(r, "entrantID")
	if err := h.lottery.SetNotificationsEnabled(r.Context(), entrantID, req.NotificationsEnabled); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		EntrantID:            entrantID,
		NotificationsEnabled: req.NotificationsEnabled,
	})
}

func toNotificationResponse(notification notifdomain.Notification) notificationResponse {
	return notificationResponse{
		ID:        notification.ID,
		EventID:   notification.EventID,
		EventName: notification.EventName,
		Type:      notification.Type,
		Message:   notification.Message,
		Timestamp: notification.Timestamp,
		Read:      notification.Read,
	}
}
