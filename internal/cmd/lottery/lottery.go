// Package lottery parses lottery service flags and launches the service.
package lottery

import (
	"context"
	"flag"

	"github.com/sulfurevents/lottery/internal/api"
	entrypoint "github.com/sulfurevents/lottery/internal/platform/cmd"
)

// Config holds lottery command configuration.
type Config struct {
	Port                int    `env:"SULFUR_EVENTS_LOTTERY_PORT" envDefault:"8080"`
	Backend             string `env:"SULFUR_EVENTS_STORAGE_BACKEND" envDefault:"sqlite"`
	EventsDBPath        string `env:"SULFUR_EVENTS_EVENTS_DB_PATH"`
	NotificationsDBPath string `env:"SULFUR_EVENTS_NOTIFICATIONS_DB_PATH"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The lottery HTTP server port")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "Roster storage backend (sqlite or bbolt)")
	fs.StringVar(&cfg.EventsDBPath, "events-db", cfg.EventsDBPath, "Path to the events database file")
	fs.StringVar(&cfg.NotificationsDBPath, "notifications-db", cfg.NotificationsDBPath, "Path to the notifications database file")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the lottery HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceLottery, func(context.Context) error {
		return api.Run(ctx, api.Options{
			Port:                cfg.Port,
			Backend:             cfg.Backend,
			EventsDBPath:        cfg.EventsDBPath,
			NotificationsDBPath: cfg.NotificationsDBPath,
		})
	})
}
