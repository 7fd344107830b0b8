// Package api exposes the lottery and notification services over HTTP.
//
// Routing uses chi. Organizer identity arrives in X-Actor-Id / X-Actor-Role
// headers and feeds audit rows only; authentication is enforced upstream.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	lotterydomain "github.com/sulfurevents/lottery/internal/lottery/domain"
	notifdomain "github.com/sulfurevents/lottery/internal/notifications/domain"
)

// Handler holds the HTTP handlers for the registration API.
type Handler struct {
	lottery       *lotterydomain.Service
	notifications *notifdomain.Service
}

// NewHandler constructs the API handler set.
func NewHandler(lottery *lotterydomain.Service, notifications *notifdomain.Service) *Handler {
	return &Handler{
		lottery:       lottery,
		notifications: notifications,
	}
}

// Router builds the chi route tree.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/", h.createEvent)
			r.Get("/", h.listEvents)
			r.Route("/{eventID}", func(r chi.Router) {
				r.Get("/roster", h.getRoster)
				r.Post("/waitlist/{entrantID}", h.join)
				r.Delete("/waitlist/{entrantID}", h.leave)
				r.Post("/draws", h.draw)
				r.Post("/invitations/{entrantID}/accept", h.accept)
				r.Post("/invitations/{entrantID}/decline", h.decline)
				r.Post("/cancellations", h.bulkCancel)
				r.Post("/notify-not-selected", h.notifyNotSelected)
				r.Post("/broadcasts", h.broadcast)
				r.Get("/audit", h.listAuditLog)
			})
		})
		r.Route("/entrants/{entrantID}", func(r chi.Router) {
			r.Get("/notifications", h.listInbox)
			r.Post("/notifications/{notificationID}/read", h.markRead)
			r.Put("/profile", h.setProfile)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func actorFrom(r *http.Request) lotterydomain.Actor {
	return lotterydomain.Actor{
		ID:   r.Header.Get("X-Actor-Id"),
		Role: r.Header.Get("X-Actor-Role"),
	}
}
