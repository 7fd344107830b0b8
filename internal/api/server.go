package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	lotteryapp "github.com/sulfurevents/lottery/internal/lottery/app"
	lotterydomain "github.com/sulfurevents/lottery/internal/lottery/domain"
	lotterystorage "github.com/sulfurevents/lottery/internal/lottery/storage"
	lotterybbolt "github.com/sulfurevents/lottery/internal/lottery/storage/bbolt"
	lotterysqlite "github.com/sulfurevents/lottery/internal/lottery/storage/sqlite"
	notifapp "github.com/sulfurevents/lottery/internal/notifications/app"
	notifdomain "github.com/sulfurevents/lottery/internal/notifications/domain"
	notifsqlite "github.com/sulfurevents/lottery/internal/notifications/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

// Storage backend selectors for the roster database.
const (
	BackendSQLite = "sqlite"
	BackendBBolt  = "bbolt"
)

// Options configures a lottery HTTP server.
type Options struct {
	Port                int
	Backend             string
	EventsDBPath        string
	NotificationsDBPath string
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Backend) == "" {
		o.Backend = BackendSQLite
	}
	if strings.TrimSpace(o.EventsDBPath) == "" {
		o.EventsDBPath = filepath.Join("data", "events.db")
	}
	if strings.TrimSpace(o.NotificationsDBPath) == "" {
		o.NotificationsDBPath = filepath.Join("data", "notifications.db")
	}
	return o
}

// Server hosts the lottery HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	eventStore lotterystorage.Store
	notifStore *notifsqlite.Store
}

// New creates a configured lottery server listening on the options port.
func New(opts Options) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", opts.Port), opts)
}

// NewWithAddr creates a configured lottery server for the provided address.
func NewWithAddr(addr string, opts Options) (*Server, error) {
	opts = opts.withDefaults()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	eventStore, err := openEventStore(opts.Backend, opts.EventsDBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	if err := ensureStorageDir(opts.NotificationsDBPath); err != nil {
		_ = listener.Close()
		_ = eventStore.Close()
		return nil, err
	}
	notifStore, err := notifsqlite.Open(opts.NotificationsDBPath)
	if err != nil {
		_ = listener.Close()
		_ = eventStore.Close()
		return nil, fmt.Errorf("open notifications store: %w", err)
	}

	notifications := notifdomain.NewService(notifapp.NewDomainStoreAdapter(notifStore), nil, nil)
	roster := lotteryapp.NewDomainStoreAdapter(eventStore, nil)
	emitter := lotteryapp.NewNotificationEmitter(notifications)
	lottery := lotterydomain.NewService(roster, roster, emitter, nil, nil, nil)

	handler := NewHandler(lottery, notifications)
	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           handler.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		eventStore: eventStore,
		notifStore: notifStore,
	}, nil
}

func openEventStore(backend, path string) (lotterystorage.Store, error) {
	if err := ensureStorageDir(path); err != nil {
		return nil, err
	}
	switch backend {
	case BackendSQLite:
		store, err := lotterysqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open events store: %w", err)
		}
		return store, nil
	case BackendBBolt:
		store, err := lotterybbolt.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open events store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func ensureStorageDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}
	return nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a lottery server until context cancellation.
func Run(ctx context.Context, opts Options) error {
	server, err := New(opts)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("lottery server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.notifStore != nil {
		_ = s.notifStore.Close()
	}
	if s.eventStore != nil {
		_ = s.eventStore.Close()
	}
}
