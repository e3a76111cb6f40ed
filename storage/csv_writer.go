package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"turo-scraper/models"
)

// CSVWriter dumps each window's assembled batch to a CSV file alongside the
// warehouse load. Failures here are non-fatal to the run.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates the output directory if needed.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{dir: dir}, nil
}

// WriteBatch writes one batch to "<dir>/<dataset>_<MM_DD_YYYY>.csv",
// truncating any previous dump for the same window. Returns the file path.
func (c *CSVWriter) WriteBatch(dataset string, batch *models.Batch) (string, error) {
	path := filepath.Join(c.dir, dataset+"_"+batch.Window.TableName()+".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(batch.Columns); err != nil {
		return "", fmt.Errorf("csv: write header: %w", err)
	}

	for _, row := range batch.Rows {
		record := make([]string, len(row))
		for i, val := range row {
			record[i] = formatValue(val)
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("csv: flush: %w", err)
	}
	return path, nil
}

// formatValue renders a cell; nil (unknown/NULL) becomes an empty string.
func formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", v)
	}
}
