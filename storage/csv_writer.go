package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"any-democrat/models"
)

// CSVWriter exports feeds to a CSV file, rewriting it on every call.
// It is safe for concurrent use.
type CSVWriter struct {
	mu   sync.Mutex
	path string
}

// NewCSVWriter prepares a writer for path. Intermediate directories are
// created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{path: path}, nil
}

// WriteFeed truncates the file and writes the feed head followed by its rows.
// Null values are written as empty cells.
func (c *CSVWriter) WriteFeed(feed *models.Feed) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", c.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(feed.Head); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	record := make([]string, len(feed.Head))
	for _, row := range feed.Rows {
		record = record[:0]
		for _, v := range row {
			if v == nil {
				record = append(record, "")
				continue
			}
			record = append(record, fmt.Sprint(v))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush: %w", err)
	}
	return f.Close()
}
