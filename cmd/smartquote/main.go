// SmartQuote CLI - catalog-grounded pricing for custom furniture and signage
//
// Usage:
//
//	smartquote catalog list [--category materials]
//	smartquote catalog add --category materials --name "Ván MDF" --unit m2 --price 250000
//	smartquote quote --cabinet-type trên --width 2.4 --material "Ván MDF" [--format table]
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"smart-pricing/db/clickhouse"
	"smart-pricing/db/memory"
	"smart-pricing/db/postgres"
	"smart-pricing/db/sqlite"
	"smart-pricing/decision/catalog"
	perrors "smart-pricing/pkg/errors"
	"smart-pricing/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "smartquote",
		Usage:   "Smart pricing for custom furniture and signage",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		// Catalog names may contain commas.
		DisableSliceFlagSeparator: true,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "smartquote.yaml",
				Usage:   "Path to YAML config file (optional)",
				EnvVars: []string{"SMARTPRICING_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Catalog storage backend (sqlite, postgres, clickhouse, memory)",
			},
			&cli.StringFlag{
				Name:  "sqlite-path",
				Usage: "SQLite database file",
			},
			&cli.StringFlag{
				Name:  "postgres-dsn",
				Usage: "PostgreSQL connection string",
			},
			&cli.StringFlag{
				Name:  "clickhouse-host",
				Usage: "ClickHouse host",
			},
			&cli.IntFlag{
				Name:  "clickhouse-port",
				Usage: "ClickHouse native port",
			},
			&cli.StringFlag{
				Name:  "clickhouse-database",
				Usage: "ClickHouse database",
			},
			&cli.StringFlag{
				Name:  "clickhouse-user",
				Usage: "ClickHouse user",
			},
			&cli.StringFlag{
				Name:  "clickhouse-password",
				Usage: "ClickHouse password",
			},
		},

		Commands: []*cli.Command{
			catalogCommand(),
			quoteCommand(),
		},
	}
}

// =============================================================================
// RUNTIME WIRING
// =============================================================================

// runtime is what every command needs: resolved config, logger and a
// loaded catalog.
type runtime struct {
	cfg    *platform.Config
	logger zerolog.Logger
	store  *catalog.Store
}

func (r *runtime) Close() {
	if err := r.store.Close(); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to close catalog backend")
	}
}

// loadConfig reads the config file and applies global flags on top.
func loadConfig(c *cli.Context) (*platform.Config, error) {
	cfg, err := platform.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	if c.IsSet("backend") {
		cfg.Storage.Backend = c.String("backend")
	}
	if c.IsSet("sqlite-path") {
		cfg.Storage.SQLitePath = c.String("sqlite-path")
	}
	if c.IsSet("postgres-dsn") {
		cfg.Storage.PostgresDSN = c.String("postgres-dsn")
	}
	ch := &cfg.Storage.ClickHouse
	if c.IsSet("clickhouse-host") {
		ch.Host = c.String("clickhouse-host")
	}
	if c.IsSet("clickhouse-port") {
		ch.Port = c.Int("clickhouse-port")
	}
	if c.IsSet("clickhouse-database") {
		ch.Database = c.String("clickhouse-database")
	}
	if c.IsSet("clickhouse-user") {
		ch.Username = c.String("clickhouse-user")
	}
	if c.IsSet("clickhouse-password") {
		ch.Password = c.String("clickhouse-password")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openRuntime resolves config, opens the backend and loads the catalog.
// Load warnings are logged and never fatal.
func openRuntime(c *cli.Context) (*runtime, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	logger := platform.InitLogger(cfg.Logging)

	backend, err := openBackend(c, cfg)
	if err != nil {
		return nil, err
	}

	store := catalog.NewStore(backend, logger)
	for _, w := range store.Load(c.Context) {
		fmt.Fprintf(c.App.ErrWriter, "⚠️  %v\n", w)
	}
	return &runtime{cfg: cfg, logger: logger, store: store}, nil
}

func openBackend(c *cli.Context, cfg *platform.Config) (catalog.Backend, error) {
	switch cfg.Storage.Backend {
	case platform.BackendMemory:
		return memory.NewStore(), nil
	case platform.BackendSQLite:
		return sqlite.NewStore(cfg.Storage.SQLitePath)
	case platform.BackendPostgres:
		return postgres.NewStore(c.Context, cfg.Storage.PostgresDSN)
	case platform.BackendClickHouse:
		ch := cfg.Storage.ClickHouse
		return clickhouse.NewStore(c.Context, &clickhouse.Config{
			Host:     ch.Host,
			Port:     ch.Port,
			Database: ch.Database,
			Username: ch.Username,
			Password: ch.Password,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// userError shows the user-facing message and keeps the pricing error
// reachable through errors.Is.
type userError struct {
	err error
}

func (e *userError) Error() string { return perrors.UserMessage(e.err) }
func (e *userError) Unwrap() error { return e.err }

// reportMutation turns a catalog mutation error into the command result:
// persist failures are warnings, everything else fails the command.
func reportMutation(c *cli.Context, rt *runtime, err error) error {
	if err == nil {
		return nil
	}
	if perrors.IsWarning(err) {
		rt.logger.Debug().Err(err).Msg("Catalog mutation kept in memory only")
		fmt.Fprintf(c.App.ErrWriter, "⚠️  %s\n", perrors.UserMessage(err))
		return nil
	}
	var pe *perrors.PricingError
	if errors.As(err, &pe) {
		return &userError{err: err}
	}
	return err
}
