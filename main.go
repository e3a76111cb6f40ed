package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"turo-scraper/config"
	"turo-scraper/geocode"
	"turo-scraper/models"
	"turo-scraper/scraper/turo"
	"turo-scraper/services"
	"turo-scraper/storage"
	"turo-scraper/utils"
)

func main() {
	weekends := flag.Int("weekends", 0, "number of future weekends to scan (required, positive)")
	zipCode := flag.String("zip", "", "US zip code to search around (required)")
	maxMiles := flag.Int("max-miles", 20, "maximum search radius in miles")
	verbose := flag.Bool("verbose", false, "enable debug output")
	flag.Parse()

	if *weekends <= 0 || *zipCode == "" {
		fmt.Fprintln(os.Stderr, "usage: turo-scraper -weekends N -zip CODE [-max-miles M] [-verbose]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := utils.NewLogger()
	logger.SetVerbose(*verbose)
	cfg := config.Load()

	logger.Info("=== Turo Weekend Scraper starting ===")
	logger.Info("Config — weekends: %d | zip: %s | radius: %d mi | concurrency: %d | rate: %dms",
		*weekends, *zipCode, *maxMiles, cfg.MaxConcurrency, cfg.RateLimitMs)

	// Input fault: an unresolvable zip aborts before any fetch.
	geocoder := geocode.NewClient(geocode.WithBaseURL(cfg.GeocodeBaseURL))
	loc, err := geocoder.Lookup(*zipCode)
	if err != nil {
		logger.Error("Zip code lookup failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Resolved zip %s to (%.4f, %.4f)", loc.PostalCode, loc.Latitude, loc.Longitude)

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputDir)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer pgWriter.Close()

	turoScraper := turo.New(cfg, logger)
	assembler := services.NewAssembler(logger)
	reportSvc := services.NewReportService(logger)
	report := &models.RunReport{PostalCode: loc.PostalCode}

	for _, window := range services.UpcomingWeekends(*weekends, time.Now()) {
		if ok := runWindow(window, loc, *maxMiles, turoScraper, assembler, reportSvc,
			csvWriter, pgWriter, report, logger); !ok {
			report.FailedWindows = append(report.FailedWindows, window.TableName())
		}
	}

	reportSvc.Print(report)

	if len(report.FailedWindows) > 0 {
		os.Exit(1)
	}
}

// runWindow performs one full search→enrich→assemble→load cycle. Returns
// false when the window could not be uploaded; other windows still proceed.
func runWindow(window models.Window, loc geocode.Location, maxMiles int,
	turoScraper *turo.Scraper, assembler *services.Assembler, reportSvc *services.ReportService,
	csvWriter *storage.CSVWriter, pgWriter *storage.PostgresWriter,
	report *models.RunReport, logger *utils.Logger) bool {

	logger.Info("Getting listings for weekend of %s.", window.Start.Format("2006-01-02"))

	summaries, err := turoScraper.SearchListings(window, loc, maxMiles)
	if err != nil {
		logger.Error("Search failed for weekend of %s: %v", window.Start.Format("2006-01-02"), err)
		return false
	}
	if len(summaries) == 0 {
		logger.Warn("No listings for weekend of %s — skipping window.", window.Start.Format("2006-01-02"))
		return false
	}
	logger.Info("Found %d candidate listings — enriching...", len(summaries))

	details := turoScraper.FetchDetails(summaries)

	batch := models.NewBatch(window)
	captureDate := time.Now()
	excluded := 0
	for i := range summaries {
		if details[i] == nil {
			excluded++
			continue
		}
		record := assembler.Assemble(summaries[i], *details[i], window, captureDate)
		assembler.Append(batch, record)
	}

	if batch.Len() == 0 {
		logger.Error("Every listing failed enrichment for weekend of %s.", window.Start.Format("2006-01-02"))
		return false
	}
	logger.Info("Assembled batch: %d records (%d excluded)", batch.Len(), excluded)

	if path, err := csvWriter.WriteBatch(loc.PostalCode, batch); err != nil {
		logger.Warn("CSV dump failed: %v", err)
	} else {
		logger.Info("Batch dumped to %s", path)
	}

	tableID, err := pgWriter.WriteBatch(loc.PostalCode, batch)
	if err != nil {
		logger.Error("PostgreSQL load failed for %s: %v", window.TableName(), err)
		return false
	}

	if count, err := pgWriter.CountRows(loc.PostalCode, window.TableName()); err == nil {
		logger.Info("Loaded table %s (%d rows)", tableID, count)
	} else {
		logger.Info("Loaded table %s", tableID)
	}

	report.UploadedTables = append(report.UploadedTables, tableID)
	report.Windows = append(report.Windows, reportSvc.Summarize(batch, excluded, tableID))
	return true
}
