package slogutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"awmcp/internal/config"
	"awmcp/internal/paths"
)

// LoggerFactory creates appropriately configured loggers for the MCP server
// and the CLI. It respects the configuration precedence: CLI flags >
// subsystem config > global config.
type LoggerFactory struct {
	config   *config.Config
	cliLevel *slog.Level // from CLI flags (nil means not set)
	closers  []io.Closer
}

// NewLoggerFactory creates a new logger factory.
// cliLevel should be nil if no CLI override was specified.
func NewLoggerFactory(cfg *config.Config, cliLevel *slog.Level) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{
		config:   cfg,
		cliLevel: cliLevel,
		closers:  make([]io.Closer, 0),
	}
}

// MCPLogger creates a logger for the MCP server.
// Records are teed to <awmcp home>/logs/mcp.log and stderr; stdout stays
// reserved for the protocol stream. Falls back to stderr-only when the log
// file cannot be opened.
func (f *LoggerFactory) MCPLogger() *slog.Logger {
	level := f.effectiveLevel("mcp")
	stderr := NewAwHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	logPath := f.config.Logging.File
	if logPath == "" {
		logsDir, err := paths.EnsureLogsDir()
		if err != nil {
			return slog.New(stderr)
		}
		logPath = filepath.Join(logsDir, "mcp.log")
	}

	w, closer, err := f.openLogWriter(logPath)
	if err != nil {
		return slog.New(stderr)
	}
	f.closers = append(f.closers, closer)

	file := NewAwHandler(w, &slog.HandlerOptions{Level: level})
	return NewTeeLogger(file, stderr)
}

// CLILogger creates a stderr logger for CLI commands.
func (f *LoggerFactory) CLILogger() *slog.Logger {
	return NewLogger(os.Stderr, f.effectiveLevel("cli"))
}

// openLogWriter opens the log file, with rotation when the config asks for it.
func (f *LoggerFactory) openLogWriter(path string) (io.Writer, io.Closer, error) {
	if size := ParseSize(f.config.Logging.MaxSize); size > 0 {
		rf, err := OpenRotatingFile(path, size, f.config.Logging.MaxBackups)
		if err != nil {
			return nil, nil, err
		}
		return rf, rf, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}

// effectiveLevel returns the effective log level for a subsystem.
// Precedence: CLI flag > subsystem config > global config > default (info)
func (f *LoggerFactory) effectiveLevel(subsystem string) slog.Level {
	// CLI flag takes highest precedence
	if f.cliLevel != nil {
		return *f.cliLevel
	}

	// Check subsystem-specific config
	var subsystemLevel string
	switch subsystem {
	case "mcp":
		subsystemLevel = f.config.Logging.MCP
	case "cli":
		subsystemLevel = f.config.Logging.CLI
	}

	if subsystemLevel != "" {
		return LevelFromString(subsystemLevel)
	}

	// Fall back to global config level
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}

	// Default
	return slog.LevelInfo
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
