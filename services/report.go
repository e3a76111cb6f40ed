package services

import (
	"fmt"
	"strings"

	"turo-scraper/models"
	"turo-scraper/utils"
)

// ReportService computes per-window statistics and prints the final run report.
type ReportService struct {
	logger *utils.Logger
}

// NewReportService creates a ReportService with the given logger.
func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Summarize computes the deal statistics for one uploaded window.
func (s *ReportService) Summarize(batch *models.Batch, excluded int, tableID string) models.WindowStat {
	stat := models.WindowStat{
		Window:   batch.Window,
		TableID:  tableID,
		Records:  len(batch.Records),
		Excluded: excluded,
	}

	var total float64
	for _, r := range batch.Records {
		price := r.Summary.AverageDailyPrice
		total += price
		if stat.CheapestURL == "" || price < stat.MinPrice {
			stat.MinPrice = price
			stat.CheapestURL = r.Summary.VehicleURL
		}
		if r.Detail.PerformanceTrim {
			stat.PerformanceCount++
		}
	}
	if len(batch.Records) > 0 {
		stat.AvgPrice = round2(total / float64(len(batch.Records)))
		stat.MinPrice = round2(stat.MinPrice)
	}

	return stat
}

// Print renders the run report: per-window deal stats, the uploaded table
// list, and any windows that could not be completed.
func (s *ReportService) Print(r *models.RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  🚗 TURO WEEKEND SCRAPE — zip %s\033[0m\n", r.PostalCode)
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	for _, w := range r.Windows {
		fmt.Printf("\033[1;33m  Weekend of %s\033[0m\n", w.Window.Start.Format("2006-01-02"))
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  Listings uploaded  : \033[1m%d\033[0m\n", w.Records)
		if w.Excluded > 0 {
			fmt.Printf("  Listings excluded  : \033[1;31m%d\033[0m\n", w.Excluded)
		}
		if w.Records > 0 {
			fmt.Printf("  Cheapest daily rate: \033[1;32m$%.2f\033[0m\n", w.MinPrice)
			fmt.Printf("  Average daily rate : \033[1;32m$%.2f\033[0m\n", w.AvgPrice)
			fmt.Printf("  Performance trims  : \033[1m%d\033[0m\n", w.PerformanceCount)
			fmt.Printf("  Cheapest listing   : %s\n", w.CheapestURL)
		}
		fmt.Println()
	}

	fmt.Printf("\033[1;33m  Uploaded Tables\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.UploadedTables) == 0 {
		fmt.Printf("  No tables were uploaded\n")
	} else {
		for _, t := range r.UploadedTables {
			fmt.Printf("  ✓ %s\n", t)
		}
	}
	fmt.Println()

	if len(r.FailedWindows) > 0 {
		fmt.Printf("\033[1;31m  Failed Windows\033[0m\n")
		fmt.Printf("  %s\n", thin)
		for _, w := range r.FailedWindows {
			fmt.Printf("  ✗ %s\n", w)
		}
		fmt.Println()
	}

	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
