package storage

import "turo-scraper/models"

// BatchWriter is the sink contract: accept one window's batch and durably
// replace the corresponding destination table. WriteBatch returns the
// fully-qualified table identifier for the run report.
type BatchWriter interface {
	WriteBatch(dataset string, batch *models.Batch) (string, error)
	Close() error
}
