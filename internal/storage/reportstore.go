// Package storage persists batch reports under the dbrain home directory
// as YAML files with a single index.
package storage

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dbrainhq/dbrain/pkg/models"
	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"
)

// ReportStoreManager defines the interface for archiving and retrieving
// batch reports under reports/.
type ReportStoreManager interface {
	SaveReport(report *models.BatchReport) (string, error)
	GetReport(id string) (*models.BatchReport, error)
	ListReports() ([]models.ReportEntry, error)
	GetLatest() (*models.BatchReport, error)
	Load() error
}

type fileReportStore struct {
	basePath string
	index    models.ReportIndex

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewReportStoreManager creates a ReportStoreManager backed by YAML files
// under reports/ in the given base directory.
func NewReportStoreManager(basePath string) ReportStoreManager {
	return &fileReportStore{
		basePath: basePath,
		index: models.ReportIndex{
			Version: "1.0",
		},
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (s *fileReportStore) reportsDir() string {
	return filepath.Join(s.basePath, "reports")
}

func (s *fileReportStore) indexPath() string {
	return filepath.Join(s.reportsDir(), "index.yaml")
}

func (s *fileReportStore) reportPath(id string) string {
	return filepath.Join(s.reportsDir(), id+".yaml")
}

// generateID returns a new ULID. Lexicographic order matches creation order,
// so sorted directory listings read chronologically.
func (s *fileReportStore) generateID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// Load reads the report index from disk. A missing index is an empty store.
func (s *fileReportStore) Load() error {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading report index: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.index); err != nil {
		return fmt.Errorf("parsing report index: %w", err)
	}
	return nil
}

// SaveReport archives one report, assigning it an ID when it has none, and
// updates the index. Reports are immutable once written.
func (s *fileReportStore) SaveReport(report *models.BatchReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("saving report: report is nil")
	}
	if report.ID == "" {
		report.ID = s.generateID()
	}

	for _, existing := range s.index.Reports {
		if existing.ID == report.ID {
			return "", fmt.Errorf("saving report: %s already exists", report.ID)
		}
	}

	if err := os.MkdirAll(s.reportsDir(), 0o755); err != nil {
		return "", fmt.Errorf("saving report: creating directory: %w", err)
	}

	if err := s.saveYAML(s.reportPath(report.ID), report); err != nil {
		return "", fmt.Errorf("saving report: writing report: %w", err)
	}

	counts := report.Counts()
	s.index.Reports = append(s.index.Reports, models.ReportEntry{
		ID:          report.ID,
		RunDate:     report.RunDate,
		GeneratedAt: report.GeneratedAt,
		Created:     counts[models.OutcomeCreated],
		Skipped:     counts[models.OutcomeSkippedDuplicate],
		Rescheduled: counts[models.OutcomeRescheduled],
		Failed:      counts[models.OutcomeFailed],
	})

	if err := s.saveYAML(s.indexPath(), &s.index); err != nil {
		return "", fmt.Errorf("saving report: writing index: %w", err)
	}
	return report.ID, nil
}

// GetReport loads the full report by ID.
func (s *fileReportStore) GetReport(id string) (*models.BatchReport, error) {
	data, err := os.ReadFile(s.reportPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("report %s not found", id)
		}
		return nil, fmt.Errorf("reading report %s: %w", id, err)
	}

	var report models.BatchReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", id, err)
	}
	return &report, nil
}

// ListReports returns the index rows, newest first.
func (s *fileReportStore) ListReports() ([]models.ReportEntry, error) {
	entries := make([]models.ReportEntry, len(s.index.Reports))
	copy(entries, s.index.Reports)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].GeneratedAt.After(entries[j].GeneratedAt)
	})
	return entries, nil
}

// GetLatest loads the most recently generated report, or nil when the store
// is empty.
func (s *fileReportStore) GetLatest() (*models.BatchReport, error) {
	entries, err := s.ListReports()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return s.GetReport(entries[0].ID)
}

func (s *fileReportStore) saveYAML(path string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
