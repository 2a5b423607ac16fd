package cli

import (
	"github.com/dbrainhq/dbrain/internal/core"
	"github.com/dbrainhq/dbrain/internal/observability"
	"github.com/dbrainhq/dbrain/internal/storage"
	"github.com/dbrainhq/dbrain/pkg/models"
	"github.com/rs/zerolog"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Config   *models.GlobalConfig
	Logger   zerolog.Logger

	Processor  *core.BatchProcessor
	Rebalancer *core.Rebalancer

	ReportStore storage.ReportStoreManager

	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
