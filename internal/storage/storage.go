package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/dance-events/internal/pipeline"
)

const latestFile = "latest.json"

// Storage handles persistence of run reports
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}

	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the resolved data directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

func (s *Storage) reportPath(runID string) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("report_%s.json", runID))
}

// SaveReport writes the report under its run ID and as the latest report.
// It returns the path of the per-run file.
func (s *Storage) SaveReport(report pipeline.Report) (string, error) {
	if report.RunID == "" {
		return "", fmt.Errorf("report has no run ID")
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	path := s.reportPath(report.RunID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	// latest.json is replaced by rename, never written in place.
	tmp := filepath.Join(s.dataDir, latestFile+".tmp")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("writing latest report: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dataDir, latestFile)); err != nil {
		return "", fmt.Errorf("replacing latest report: %w", err)
	}

	return path, nil
}

// LoadLatest loads the most recently saved report. It returns nil and no
// error when no run has been saved yet.
func (s *Storage) LoadLatest() (*pipeline.Report, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, latestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading latest report: %w", err)
	}

	var report pipeline.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing latest report: %w", err)
	}

	if report.Total.Skipped == nil {
		report.Total.Skipped = make(map[pipeline.SkipReason]int)
	}

	return &report, nil
}
