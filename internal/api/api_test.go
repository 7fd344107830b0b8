package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	lotteryapp "github.com/sulfurevents/lottery/internal/lottery/app"
	lotterydomain "github.com/sulfurevents/lottery/internal/lottery/domain"
	lotterysqlite "github.com/sulfurevents/lottery/internal/lottery/storage/sqlite"
	notifapp "github.com/sulfurevents/lottery/internal/notifications/app"
	notifdomain "github.com/sulfurevents/lottery/internal/notifications/domain"
	notifsqlite "github.com/sulfurevents/lottery/internal/notifications/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	lotteryStore, err := lotterysqlite.Open(dir + "/lottery.db")
	if err != nil {
		t.Fatalf("open lottery store: %v", err)
	}
	t.Cleanup(func() { _ = lotteryStore.Close() })

	notifStore, err := notifsqlite.Open(dir + "/notifications.db")
	if err != nil {
		t.Fatalf("open notifications store: %v", err)
	}
	t.Cleanup(func() { _ = notifStore.Close() })

	notifService := notifdomain.NewService(notifapp.NewDomainStoreAdapter(notifStore), nil, nil)
	storeAdapter := lotteryapp.NewDomainStoreAdapter(lotteryStore, nil)
	lotteryService := lotterydomain.NewService(
		storeAdapter,
		storeAdapter,
		lotteryapp.NewNotificationEmitter(notifService),
		nil, nil, nil,
	)

	server := httptest.NewServer(NewHandler(lotteryService, notifService).Router())
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-Id", "organizer-1")
	req.Header.Set("X-Actor-Role", "organizer")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func TestListEventsReturnsCreatedEvents(t *testing.T) {
	server := newTestServer(t)

	for _, name := range []string{"Pottery Class", "Swim Lessons"} {
		var created struct {
			ID string `json:"id"`
		}
		status := doJSON(t, http.MethodPost, server.URL+"/v1/events",
			map[string]any{"name": name, "capacity": 5}, &created)
		if status != http.StatusCreated {
			t.Fatalf("create %s: expected status 201, got %d", name, status)
		}
	}

	var events []struct {
		Name string `json:"name"`
	}
	status := doJSON(t, http.MethodGet, server.URL+"/v1/events", nil, &events)
	if status != http.StatusOK {
		t.Fatalf("list events: expected status 200, got %d", status)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	names := map[string]bool{events[0].Name: true, events[1].Name: true}
	if !names["Pottery Class"] || !names["Swim Lessons"] {
		t.Fatalf("unexpected event names: %v", names)
	}
}

func TestCapacityOneLifecycle(t *testing.T) {
	server := newTestServer(t)

	var event struct {
		ID string `json:"id"`
	}
	status := doJSON(t, http.MethodPost, server.URL+"/v1/events",
		map[string]any{"name": "Pottery Workshop", "capacity": 1}, &event)
	if status != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", status, http.StatusCreated)
	}
	if event.ID == "" {
		t.Fatal("expected generated event id")
	}
	base := server.URL + "/v1/events/" + event.ID

	for _, entrantID := range []string{"entrant-1", "entrant-2"} {
		if status := doJSON(t, http.MethodPost, base+"/waitlist/"+entrantID, nil, nil); status != http.StatusOK {
			t.Fatalf("join %s status = %d", entrantID, status)
		}
	}

	var draw struct {
		Outcome  string   `json:"outcome"`
		Selected []string `json:"selected"`
	}
	if status := doJSON(t, http.MethodPost, base+"/draws",
		map[string]any{"mode": "FIFO", "count": 1}, &draw); status != http.StatusOK {
		t.Fatalf("draw status = %d", status)
	}
	if draw.Outcome != "INVITED" || len(draw.Selected) != 1 || draw.Selected[0] != "entrant-1" {
		t.Fatalf("draw = %+v", draw)
	}

	if status := doJSON(t, http.MethodPost, base+"/invitations/entrant-1/accept", nil, nil); status != http.StatusOK {
		t.Fatalf("accept status = %d", status)
	}

	var roster struct {
		Closed    bool     `json:"closed"`
		Finalized bool     `json:"finalized"`
		OpenSeats *int     `json:"open_seats"`
		Waiting   []string `json:"waiting"`
		Enrolled  []string `json:"enrolled"`
	}
	if status := doJSON(t, http.MethodGet, base+"/roster", nil, &roster); status != http.StatusOK {
		t.Fatalf("roster status = %d", status)
	}
	if !roster.Closed || !roster.Finalized {
		t.Fatalf("roster should be closed and finalized: %+v", roster)
	}
	if len(roster.Waiting) != 0 {
		t.Fatalf("waiting should be cleared on finalize, got %v", roster.Waiting)
	}
	if len(roster.Enrolled) != 1 || roster.Enrolled[0] != "entrant-1" {
		t.Fatalf("enrolled = %v", roster.Enrolled)
	}
	if roster.OpenSeats == nil || *roster.OpenSeats != 0 {
		t.Fatalf("open seats = %v, want 0", roster.OpenSeats)
	}

	// The cleared waiter got a NOT_SELECTED inbox item.
	var inbox struct {
		Notifications []struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"notifications"`
		UnreadCount int `json:"unread_count"`
	}
	if status := doJSON(t, http.MethodGet, server.URL+"/v1/entrants/entrant-2/notifications", nil, &inbox); status != http.StatusOK {
		t.Fatalf("inbox status = %d", status)
	}
	if inbox.UnreadCount != 1 || len(inbox.Notifications) != 1 {
		t.Fatalf("inbox = %+v", inbox)
	}
	if inbox.Notifications[0].Type != "NOT_SELECTED" {
		t.Fatalf("notification type = %s", inbox.Notifications[0].Type)
	}
	if want := "You were not selected for Pottery Workshop."; inbox.Notifications[0].Message != want {
		t.Fatalf("message = %q, want %q", inbox.Notifications[0].Message, want)
	}

	// Joining a closed event fails with the closed-registration code.
	var joinErr struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if status := doJSON(t, http.MethodPost, base+"/waitlist/entrant-3", nil, &joinErr); status != http.StatusConflict {
		t.Fatalf("closed join status = %d, want %d", status, http.StatusConflict)
	}
	if joinErr.Error.Code != "REGISTRATION_CLOSED" {
		t.Fatalf("closed join code = %q", joinErr.Error.Code)
	}
}

func TestBulkCancelWithBackfill(t *testing.T) {
	server := newTestServer(t)

	var event struct {
		ID string `json:"id"`
	}
	doJSON(t, http.MethodPost, server.URL+"/v1/events",
		map[string]any{"name": "Climbing Trip", "capacity": 2}, &event)
	base := server.URL + "/v1/events/" + event.ID

	for _, entrantID := range []string{"entrant-1", "entrant-2", "entrant-3", "entrant-4"} {
		doJSON(t, http.MethodPost, base+"/waitlist/"+entrantID, nil, nil)
	}
	doJSON(t, http.MethodPost, base+"/draws", map[string]any{"mode": "FIFO", "count": 2}, nil)

	var result struct {
		Cancelled []string `json:"cancelled"`
		Backfill  *struct {
			Outcome  string   `json:"outcome"`
			Selected []string `json:"selected"`
		} `json:"backfill"`
	}
	status := doJSON(t, http.MethodPost, base+"/cancellations", map[string]any{
		"entrant_ids": []string{"entrant-1", "entrant-2"},
		"backfill":    true,
	}, &result)
	if status != http.StatusOK {
		t.Fatalf("bulk cancel status = %d", status)
	}
	if len(result.Cancelled) != 2 {
		t.Fatalf("cancelled = %v", result.Cancelled)
	}
	if result.Backfill == nil || result.Backfill.Outcome != "INVITED" {
		t.Fatalf("backfill = %+v", result.Backfill)
	}
	if len(result.Backfill.Selected) != 2 ||
		result.Backfill.Selected[0] != "entrant-3" || result.Backfill.Selected[1] != "entrant-4" {
		t.Fatalf("backfill selected = %v", result.Backfill.Selected)
	}
}

func TestBroadcastHonorsOptOut(t *testing.T) {
	server := newTestServer(t)

	var event struct {
		ID string `json:"id"`
	}
	doJSON(t, http.MethodPost, server.URL+"/v1/events",
		map[string]any{"name": "Climbing Trip", "capacity": 5}, &event)
	base := server.URL + "/v1/events/" + event.ID

	for _, entrantID := range []string{"entrant-1", "entrant-2"} {
		doJSON(t, http.MethodPost, base+"/waitlist/"+entrantID, nil, nil)
	}
	if status := doJSON(t, http.MethodPut, server.URL+"/v1/entrants/entrant-2/profile",
		map[string]any{"notifications_enabled": false}, nil); status != http.StatusOK {
		t.Fatalf("profile status = %d", status)
	}

	var result struct {
		Recipients []string `json:"recipients"`
	}
	status := doJSON(t, http.MethodPost, base+"/broadcasts", map[string]any{
		"cohort":  "WAITING",
		"message": "Doors open at noon.",
	}, &result)
	if status != http.StatusOK {
		t.Fatalf("broadcast status = %d", status)
	}
	if len(result.Recipients) != 1 || result.Recipients[0] != "entrant-1" {
		t.Fatalf("recipients = %v", result.Recipients)
	}
}

func TestMarkReadFlow(t *testing.T) {
	server := newTestServer(t)

	var event struct {
		ID string `json:"id"`
	}
	doJSON(t, http.MethodPost, server.URL+"/v1/events",
		map[string]any{"name": "Climbing Trip", "capacity": 2}, &event)
	base := server.URL + "/v1/events/" + event.ID

	doJSON(t, http.MethodPost, base+"/waitlist/entrant-1", nil, nil)
	doJSON(t, http.MethodPost, base+"/draws", map[string]any{"mode": "RANDOM", "count": 1}, nil)

	var inbox struct {
		Notifications []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
			Read bool   `json:"read"`
		} `json:"notifications"`
		UnreadCount int `json:"unread_count"`
	}
	doJSON(t, http.MethodGet, server.URL+"/v1/entrants/entrant-1/notifications", nil, &inbox)
	if len(inbox.Notifications) != 1 || inbox.Notifications[0].Type != "INVITED" {
		t.Fatalf("inbox = %+v", inbox)
	}

	var marked struct {
		Read bool `json:"read"`
	}
	url := fmt.Sprintf("%s/v1/entrants/entrant-1/notifications/%s/read", server.URL, inbox.Notifications[0].ID)
	if status := doJSON(t, http.MethodPost, url, nil, &marked); status != http.StatusOK {
		t.Fatalf("mark read status = %d", status)
	}
	if !marked.Read {
		t.Fatal("expected notification marked read")
	}

	doJSON(t, http.MethodGet, server.URL+"/v1/entrants/entrant-1/notifications", nil, &inbox)
	if inbox.UnreadCount != 0 {
		t.Fatalf("unread = %d, want 0", inbox.UnreadCount)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	server := newTestServer(t)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}

	status := doJSON(t, http.MethodGet, server.URL+"/v1/events/missing/roster", nil, &envelope)
	if status != http.StatusNotFound || envelope.Error.Code != "EVENT_NOT_FOUND" {
		t.Fatalf("missing roster = %d %q", status, envelope.Error.Code)
	}

	var event struct {
		ID string `json:"id"`
	}
	doJSON(t, http.MethodPost, server.URL+"/v1/events",
		map[string]any{"name": "Trip", "capacity": 2}, &event)
	base := server.URL + "/v1/events/" + event.ID

	doJSON(t, http.MethodPost, base+"/waitlist/entrant-1", nil, nil)
	status = doJSON(t, http.MethodPost, base+"/waitlist/entrant-1", nil, &envelope)
	if status != http.StatusConflict || envelope.Error.Code != "ALREADY_WAITING" {
		t.Fatalf("duplicate join = %d %q", status, envelope.Error.Code)
	}

	status = doJSON(t, http.MethodPost, base+"/draws", map[string]any{"mode": "LIFO"}, &envelope)
	if status != http.StatusBadRequest {
		t.Fatalf("bad draw mode status = %d", status)
	}

	status = doJSON(t, http.MethodPost, base+"/invitations/entrant-1/accept", nil, &envelope)
	if status != http.StatusNotFound || envelope.Error.Code != "INVITATION_NOT_FOUND" {
		t.Fatalf("accept without invite = %d %q", status, envelope.Error.Code)
	}
}
