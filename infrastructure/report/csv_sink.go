package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/carlosrabelo/swhealth/domain/entities"
)

const (
	timestampLayout = "2006-01-02_15-04-05"
	maxNameAttempts = 100
)

// CSVSink writes each run to <dir>/<prefix>_<timestamp>.csv
type CSVSink struct {
	dir    string
	prefix string
}

// NewCSVSink creates a sink writing under dir
func NewCSVSink(dir, prefix string) *CSVSink {
	return &CSVSink{dir: dir, prefix: prefix}
}

// FileName returns the report file name for a run started at startedAt
func (s *CSVSink) FileName(startedAt time.Time) string {
	return fmt.Sprintf("%s_%s.csv", s.prefix, startedAt.Format(timestampLayout))
}

// Write creates the output directory if needed and writes the header plus rows
func (s *CSVSink) Write(startedAt time.Time, rows []entities.ReportRow) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", s.dir, err)
	}

	path, file, err := s.create(startedAt)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(entities.ReportColumns); err != nil {
		return "", fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.Values()); err != nil {
			return "", fmt.Errorf("failed to write report row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to flush report %s: %w", path, err)
	}

	return path, file.Close()
}

// create opens a new report file and never overwrites an existing one.
// Runs started within the same second get a numeric suffix.
func (s *CSVSink) create(startedAt time.Time) (string, *os.File, error) {
	name := s.FileName(startedAt)
	base := strings.TrimSuffix(name, ".csv")

	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		if attempt > 1 {
			name = fmt.Sprintf("%s_%d.csv", base, attempt)
		}
		path := filepath.Join(s.dir, name)

		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return path, file, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", nil, fmt.Errorf("failed to create report %s: %w", path, err)
		}
	}

	return "", nil, fmt.Errorf("failed to create report %s: too many reports in the same second", base)
}
