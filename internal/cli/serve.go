package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voxhall/tavus-relay/internal/config"
	"github.com/voxhall/tavus-relay/internal/dispatch"
	"github.com/voxhall/tavus-relay/internal/eventlog"
	"github.com/voxhall/tavus-relay/internal/logging"
	"github.com/voxhall/tavus-relay/internal/roster"
	"github.com/voxhall/tavus-relay/internal/storage"
	"github.com/voxhall/tavus-relay/internal/store"
	"github.com/voxhall/tavus-relay/internal/tavus"
	"github.com/voxhall/tavus-relay/internal/webhook"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		bind string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook relay server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			if port != 0 {
				cfg.Server.Port = port
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}

			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				for _, issue := range issues {
					log.Error().Str("path", issue.Path).Msg(issue.Message)
				}
				return fmt.Errorf("config validation failed with %d issue(s)", len(issues))
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			// Rebuild the logger with the configured level and style.
			log = logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.ConsoleStyle)

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Roster store (SQLite or in-memory)
			var rosterStore roster.Store
			if cfg.Roster.Store == "sqlite" {
				dbPath := filepath.Join(paths.Data, "relay.db")
				db, err := store.Open(dbPath, log)
				if err != nil {
					return fmt.Errorf("opening database: %w", err)
				}
				defer db.Close()
				rosterStore = store.NewSQLiteRosterStore(db)
				log.Info().Str("path", dbPath).Msg("using SQLite roster store")
			} else {
				rosterStore = roster.NewMemoryStore()
				log.Info().Msg("using in-memory roster store")
			}

			engine := roster.NewEngine(rosterStore, log)

			registry := dispatch.NewRegistry(log)
			dispatch.RegisterBuiltins(registry, engine, log)
			dispatcher := dispatch.NewDispatcher(registry, log)
			log.Info().Int("tools", registry.Count()).Msg("tool registry ready")

			var opts []webhook.ServerOption

			if cfg.EventLog.EventLogEnabled() {
				dir := cfg.EventLog.Dir
				if dir == "" {
					dir = filepath.Join(paths.Logs, "webhook")
				}
				opts = append(opts, webhook.WithEventLog(eventlog.New(dir, log)))
				log.Info().Str("dir", dir).Msg("event log enabled")
			}

			if cfg.Tavus.APIKey != "" {
				opts = append(opts, webhook.WithTavus(tavus.NewClient(cfg.Tavus.APIKey, cfg.Tavus.BaseURL, log)))
			} else if cfg.Roster.AnnounceJoins {
				log.Warn().Msg("announceJoins is on but tavus.apiKey is unset; join announcements disabled")
			}

			if cfg.Recording.Bucket != "" {
				opts = append(opts, webhook.WithUploader(storage.NewUploader(cfg.Recording, log)))
				log.Info().Str("bucket", cfg.Recording.Bucket).Msg("recording uploads enabled")
			}

			srv := webhook.New(cfg, log, engine, dispatcher, opts...)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server port")
	cmd.Flags().StringVar(&bind, "bind", "", "override bind mode (loopback, lan, custom)")

	return cmd
}
