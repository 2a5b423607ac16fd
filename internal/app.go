// Package internal provides the App struct that wires all components of
// dbrain together and initializes the CLI layer.
package internal

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dbrainhq/dbrain/internal/backend"
	"github.com/dbrainhq/dbrain/internal/cli"
	"github.com/dbrainhq/dbrain/internal/core"
	"github.com/dbrainhq/dbrain/internal/observability"
	"github.com/dbrainhq/dbrain/internal/storage"
	"github.com/dbrainhq/dbrain/pkg/models"
	"github.com/rs/zerolog"
)

// App holds all service dependencies for dbrain.
type App struct {
	BasePath string
	Config   *models.GlobalConfig
	Logger   zerolog.Logger

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Dispatch targets
	Backends core.BackendSet

	// Core services
	Processor  *core.BatchProcessor
	Rebalancer *core.Rebalancer

	// Storage layer
	ReportStore storage.ReportStoreManager

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components. basePath is the directory
// holding .dbrain.yaml, credentials, and the report archive (typically
// ~/.dbrain or DBRAIN_HOME).
func NewApp(basePath string) (*App, error) {
	app := &App{
		BasePath: basePath,
		Logger:   newLogger(),
	}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Dispatch targets ---
	if cfg.TickTick.AccessToken != "" {
		app.Backends.Personal = backend.NewTickTick(cfg.TickTick, app.Logger)
	}
	if cfg.Planfix.Account != "" && cfg.Planfix.Token != "" {
		app.Backends.Team = backend.NewPlanfix(cfg.Planfix, app.Logger)
	}
	if cfg.Calendar.CalendarID != "" {
		// A missing Google token leaves the calendar backend unset; calendar
		// entries then fail with a configuration error instead of a panic.
		if srv, err := backend.NewCalendarService(context.Background(), basePath); err == nil {
			app.Backends.Calendar = backend.NewCalendar(srv, app.Logger)
		} else {
			app.Logger.Warn().Err(err).Msg("calendar backend disabled")
		}
	}

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".dbrain_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: dispatch works without the event log.
		app.Logger.Warn().Err(err).Msg("event log disabled")
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if cfg.Telegram.Enabled {
		app.Notifier = observability.NewTelegramNotifier(cfg.Telegram)
	}

	// --- Core services ---
	var events core.EventLogger
	if app.EventLog != nil {
		events = app.EventLog
	}
	app.Processor = core.NewBatchProcessor(app.Backends, cfg, events, app.Logger)
	app.Rebalancer = core.NewRebalancer(app.Backends, cfg, events, app.Logger)

	// --- Storage layer ---
	app.ReportStore = storage.NewReportStoreManager(basePath)
	_ = app.ReportStore.Load() // Non-fatal: empty store on first use.

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = cfg
	cli.Logger = app.Logger
	cli.Processor = app.Processor
	cli.Rebalancer = app.Rebalancer
	cli.ReportStore = app.ReportStore
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log handle.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// newLogger builds the process logger. DBRAIN_LOG=debug enables debug output.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if os.Getenv("DBRAIN_LOG") == "debug" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// ResolveBasePath determines the dbrain data directory. It checks the
// DBRAIN_HOME env var, then walks up from the current directory looking for
// .dbrain.yaml, then falls back to ~/.dbrain.
func ResolveBasePath() string {
	if home := os.Getenv("DBRAIN_HOME"); home != "" {
		return home
	}

	dir, err := os.Getwd()
	if err == nil {
		for d := dir; ; d = filepath.Dir(d) {
			if _, err := os.Stat(filepath.Join(d, ".dbrain.yaml")); err == nil {
				return d
			}
			if filepath.Dir(d) == d {
				break
			}
		}
	}

	if userHome, err := os.UserHomeDir(); err == nil {
		return filepath.Join(userHome, ".dbrain")
	}
	return "."
}
