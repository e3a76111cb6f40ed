package services

import (
	"time"

	"turo-scraper/models"
	"turo-scraper/utils"
)

// Assembler merges summaries and details into enriched records and folds
// them into per-window batches with a uniform column set.
type Assembler struct {
	logger *utils.Logger
}

// NewAssembler creates an Assembler with the given logger.
func NewAssembler(logger *utils.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Assemble produces one immutable record from a summary and its detail,
// tagged with the window it was collected for and the capture date.
func (a *Assembler) Assemble(summary models.ListingSummary, detail models.ListingDetail,
	window models.Window, capturedAt time.Time) *models.EnrichedRecord {
	return &models.EnrichedRecord{
		Summary:      summary,
		Detail:       detail,
		Window:       window,
		DateAccessed: capturedAt,
	}
}

// Append adds a record to the batch. The batch's column set is fixed by the
// first record; later records are aligned to it — a missing column is padded
// with NULL and warned about, an extra column is warned about and ignored.
func (a *Assembler) Append(batch *models.Batch, record *models.EnrichedRecord) {
	fields := record.Fields()

	if batch.Columns == nil {
		batch.Columns = record.Columns()
	}

	known := make(map[string]struct{}, len(batch.Columns))
	row := make([]any, len(batch.Columns))
	for i, col := range batch.Columns {
		known[col] = struct{}{}
		val, ok := fields[col]
		if !ok {
			a.logger.Warn("[assembler] %s: record missing column %q — padding with NULL",
				record.Summary.VehicleURL, col)
			val = nil
		}
		row[i] = val
	}
	for col := range fields {
		if _, ok := known[col]; !ok {
			a.logger.Warn("[assembler] %s: record carries unexpected column %q — ignored",
				record.Summary.VehicleURL, col)
		}
	}

	batch.Rows = append(batch.Rows, row)
	batch.Records = append(batch.Records, record)
}
