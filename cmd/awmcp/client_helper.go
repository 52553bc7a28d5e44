package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"awmcp/internal/aql"
	"awmcp/internal/aw"
	"awmcp/internal/categories"
	"awmcp/internal/clients"
	"awmcp/internal/config"
	"awmcp/internal/paths"
	"awmcp/internal/slogutil"
	"awmcp/internal/storage"
	"awmcp/internal/timespan"
)

var (
	configOnce   sync.Once
	sharedConfig *config.Config
	configErr    error
)

// getConfig loads the shared configuration once. A missing config file is
// not an error; defaults and AWMCP_* env overrides still apply.
func getConfig() (*config.Config, error) {
	configOnce.Do(func() {
		sharedConfig, configErr = config.LoadConfig()
	})
	return sharedConfig, configErr
}

// loadConfig returns the shared configuration, falling back to defaults when
// the config file is unreadable. CLI commands keep working with a broken
// config; `awmcp config validate` reports what is wrong with it.
func loadConfig(logger *slog.Logger) *config.Config {
	cfg, err := getConfig()
	if err != nil {
		logger.Warn("Failed to load config, using defaults", "error", err)
		return config.DefaultConfig()
	}
	return cfg
}

// newCLILogger creates a stderr logger for CLI commands.
func newCLILogger() *slog.Logger {
	cfg, err := getConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return slogutil.NewLoggerFactory(cfg, cliLogLevel()).CLILogger()
}

// newAwClient creates an ActivityWatch client honoring the --server flag.
func newAwClient(cfg *config.Config, logger *slog.Logger) *aw.Client {
	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	return aw.NewClient(resolveServerURL(cfg), timeout, logger)
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}

// mustParseRange parses a start/end expression pair or exits.
func mustParseRange(start, end string) timespan.Range {
	r, err := timespan.ParseRange(start, end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing time range: %v\n", err)
		os.Exit(1)
	}
	return r
}

// sweepWindow fetches window events from every window bucket on the server
// for the given range. Buckets that fail to respond are reported in the
// result, not fatal.
func sweepWindow(ctx context.Context, client *aw.Client, r timespan.Range, limit int) (aw.SweepResult, error) {
	buckets, err := client.ListBuckets(ctx)
	if err != nil {
		return aw.SweepResult{}, err
	}

	opts := aw.EventOptions{
		Limit: limit,
		Start: r.StartISO(),
		End:   r.EndISO(),
	}
	return aw.SweepEvents(ctx, client, aw.WindowBuckets(buckets), opts), nil
}

// loadClients reads the client detection rules, falling back to the default
// personal-only configuration when the file is broken.
func loadClients(cfg *config.Config, logger *slog.Logger) *clients.Config {
	var (
		rules *clients.Config
		err   error
	)
	if cfg.ClientsFile != "" {
		rules, err = clients.LoadFrom(cfg.ClientsFile)
	} else {
		rules, err = clients.Load()
	}
	if err != nil {
		logger.Warn("Failed to load clients config, using defaults", "error", err)
		return clients.DefaultConfig()
	}
	return rules
}

// loadCategorizer reads the category rules, falling back to the built-ins.
func loadCategorizer(cfg *config.Config, logger *slog.Logger) *categories.Categorizer {
	var (
		categorizer *categories.Categorizer
		err         error
	)
	if cfg.CategoriesFile != "" {
		categorizer, err = categories.LoadFrom(cfg.CategoriesFile)
	} else {
		categorizer, err = categories.Load()
	}
	if err != nil {
		logger.Warn("Failed to load categories config, using defaults", "error", err)
		return categories.Default()
	}
	return categorizer
}

// loadQueries reads the query template library, falling back to the built-ins.
func loadQueries(cfg *config.Config, logger *slog.Logger) *aql.Library {
	var (
		library *aql.Library
		err     error
	)
	if cfg.QueriesFile != "" {
		library, err = aql.LoadFrom(cfg.QueriesFile)
	} else {
		library, err = aql.Load()
	}
	if err != nil {
		logger.Warn("Failed to load query templates, using built-ins", "error", err)
		return aql.Builtin()
	}
	return library
}

// openMetricsDB opens the tool metrics database at the configured path.
func openMetricsDB(cfg *config.Config, logger *slog.Logger) (*storage.DB, error) {
	path := cfg.Metrics.Path
	if path == "" {
		var err error
		path, err = paths.GetMetricsDBPath()
		if err != nil {
			return nil, err
		}
	}
	return storage.Open(path, logger)
}
