/*
main.go - Application entry point

PURPOSE:
  Command-line interface for the PTO tracker: runs the HTTP server, applies
  or rolls back migrations, and loads demo scenarios.

COMMANDS:
  serve              Start the HTTP API (default when no command is given)
  migrate up|down    Apply or roll back the database schema
  seed               Reset the database and load a demo scenario

FLAGS:
  --config   Config file (default: ./config.yaml if present)
  --db       SQLite database path, overrides database.path
             Use ":memory:" for an in-memory database
  --port     HTTP port for serve, overrides http.port

STARTUP SEQUENCE (serve):
  1. Load configuration (file, then PTO_* environment)
  2. Build the zap logger
  3. Open the SQLite store (migrations run on open)
  4. Create the API handler and router
  5. Start the snapshot scheduler
  6. Start the server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the snapshot scheduler
  2. Stop accepting new connections
  3. Wait for active requests (http.shutdown_timeout)
  4. Close the database

EXAMPLES:
  pto-tracker serve --db=./data/pto.db
  pto-tracker serve --db=":memory:" --port=3000
  pto-tracker migrate up
  pto-tracker seed --scenario carryover

SEE ALSO:
  - config/config.go: Configuration keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/warp/pto-tracker/api"
	"github.com/warp/pto-tracker/config"
	"github.com/warp/pto-tracker/logger"
	"github.com/warp/pto-tracker/pto"
	"github.com/warp/pto-tracker/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the flags shared by every command.
type options struct {
	configFile string
	dbPath     string
	port       string

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "pto-tracker",
		Short:        "PTO tracker API server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path, overrides database.path")
	root.PersistentFlags().StringVar(&opts.port, "port", "", "HTTP server port, overrides http.port")

	root.AddCommand(newServeCmd(opts), newMigrateCmd(opts), newSeedCmd(opts))
	return root
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
}

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := sqlite.Open(opts.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			migrator, err := sqlite.NewMigrator(db, opts.log)
			if err != nil {
				return err
			}
			if args[0] == "down" {
				return migrator.Down()
			}
			return migrator.Up()
		},
	}
}

func newSeedCmd(opts *options) *cobra.Command {
	var scenario string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Reset the database and load a demo scenario",
		Long: `Deletes all data and loads one of the demo scenarios:
  standard, carryover, mid-year-hire, overdrawn`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.New(opts.cfg.Database.Path, opts.log)
			if err != nil {
				return err
			}
			defer store.Close()

			h := newHandler(store, opts)
			return h.Seed(cmd.Context(), scenario)
		},
	}
	cmd.Flags().StringVar(&scenario, "scenario", "standard", "scenario to load")
	return cmd
}

// load reads configuration, applies flag overrides and builds the logger.
func (o *options) load() error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	if o.port != "" {
		cfg.HTTP.Port = o.port
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	o.cfg = cfg
	o.log = log.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))
	return nil
}

func newHandler(store pto.Store, opts *options) *api.Handler {
	calc := pto.Calculator{FloorCarryover: opts.cfg.Balance.FloorCarryover}
	return api.NewHandler(store, calc, opts.log)
}

func serve(ctx context.Context, opts *options) error {
	cfg, log := opts.cfg, opts.log

	store, err := sqlite.New(cfg.Database.Path, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	handler := newHandler(store, opts)
	router := api.NewRouter(handler, api.RouterOptions{CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins})

	scheduler := api.NewSnapshotScheduler(handler, cfg.Balance.SnapshotInterval)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("database", cfg.Database.Path),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
