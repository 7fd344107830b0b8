package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestServer_HealthRoundTrip(t *testing.T) {
	dir := t.TempDir()

	srv, err := NewWithAddr("127.0.0.1:0", Options{
		Backend:             BackendBBolt,
		EventsDBPath:        dir + "/events.db",
		NotificationsDBPath: dir + "/notifications.db",
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.Serve(runCtx)
	}()
	t.Cleanup(func() {
		runCancel()
		select {
		case serveErr := <-serveDone:
			if serveErr != nil {
				t.Fatalf("serve: %v", serveErr)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for server shutdown")
		}
	})

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %q", body["status"])
	}
}

func TestServer_UnknownBackend(t *testing.T) {
	dir := t.TempDir()

	_, err := NewWithAddr("127.0.0.1:0", Options{
		Backend:             "postgres",
		EventsDBPath:        dir + "/events.db",
		NotificationsDBPath: dir + "/notifications.db",
	})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
