package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// OutputManager writes windowed stats to CSV files under a directory.
type OutputManager struct {
	dir  string
	file *os.File

	headerWritten bool
}

// NewOutputManager creates the output directory and opens telemetry.csv.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}

	return &OutputManager{dir: dir, file: f}, nil
}

// WriteWindows appends window stats records to telemetry.csv.
func (om *OutputManager) WriteWindows(windows []WindowStats) error {
	if om == nil || len(windows) == 0 {
		return nil
	}

	if !om.headerWritten {
		if err := gocsv.Marshal(windows, om.file); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		om.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(windows, om.file); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// Close flushes and closes the CSV file.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return om.file.Close()
}
