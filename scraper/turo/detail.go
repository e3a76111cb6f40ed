package turo

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"

	"turo-scraper/models"
	"turo-scraper/utils"
)

var (
	// trimRegexp matches the closed trim vocabulary inside a vehicle label.
	trimRegexp = regexp.MustCompile(`(?i)(performance|standard|long)`)
	// mileageRegexp matches the reservation box's distance-included block.
	mileageRegexp = regexp.MustCompile(
		`Distance includedDay(\d+ mi|Unlimited)Week(\d+ mi|Unlimited)Month(\d+ mi|Unlimited)`)
)

// FetchDetail fetches and parses one listing's detail page. The fetch shares
// the search retry policy; a parse failure is terminal for the listing and
// never retried.
func (s *Scraper) FetchDetail(detailURL string) (models.ListingDetail, error) {
	var doc *goquery.Document

	err := s.retry.Do("detail "+detailURL, func() error {
		req, err := http.NewRequest(http.MethodGet, detailURL, nil)
		if err != nil {
			return fmt.Errorf("turo: build detail request: %w", err)
		}
		s.setHeaders(req)

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("turo: detail request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("turo: detail returned status %d", resp.StatusCode)
		}

		parsed, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return fmt.Errorf("turo: read detail page: %w", err)
		}
		doc = parsed
		return nil
	})
	if err != nil {
		return models.ListingDetail{}, err
	}

	return s.parseDetail(doc)
}

// parseDetail extracts the enrichment fields from a detail document. Every
// selection rule is document-order deterministic: the first matching label
// decides the trim and the first description fragment is canonical.
func (s *Scraper) parseDetail(doc *goquery.Document) (models.ListingDetail, error) {
	detail := models.ListingDetail{}

	doc.Find("div.vehicleLabel").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		match := trimRegexp.FindString(strings.ToLower(sel.Text()))
		if match == "" {
			return true
		}
		detail.Trim = models.Trim(match)
		return false
	})
	detail.PerformanceTrim = detail.Trim == models.TrimPerformance
	if detail.PerformanceTrim {
		detail.PerformanceScore++
	}

	descNode := doc.Find("div.vehicleDetails-descriptionText").First()
	if descNode.Length() == 0 {
		return models.ListingDetail{}, fmt.Errorf("turo: detail page has no description")
	}
	detail.Description = printable(descNode.Text())
	detail.PerformanceDescription = strings.Contains(strings.ToLower(detail.Description), "performance")
	if detail.PerformanceDescription {
		detail.PerformanceScore++
	}

	detail.DayMiles, detail.WeekMiles, detail.MonthMiles = parseMileage(
		doc.Find("div.reservationBox").First().Text())

	return detail, nil
}

// parseMileage applies the fixed distance-included pattern. A missing or
// non-matching fragment yields unknown for all three allowances.
func parseMileage(reservationBox string) (day, week, month models.Mileage) {
	m := mileageRegexp.FindStringSubmatch(reservationBox)
	if m == nil {
		return models.UnknownMileage(), models.UnknownMileage(), models.UnknownMileage()
	}
	return parseAllowance(m[1]), parseAllowance(m[2]), parseAllowance(m[3])
}

func parseAllowance(raw string) models.Mileage {
	if raw == "Unlimited" {
		return models.UnlimitedMileage()
	}
	n, err := strconv.Atoi(strings.TrimSuffix(raw, " mi"))
	if err != nil {
		return models.UnknownMileage()
	}
	return models.BoundedMileage(n)
}

// printable strips characters outside the printable ASCII set, keeping
// ordinary whitespace.
func printable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 0x20 && r <= 0x7e) || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FetchDetails enriches every summary through the rate-limited worker pool.
// The result slice is index-aligned with the input, so downstream order is
// the original search order regardless of completion order; a nil entry
// marks a listing whose enrichment failed.
func (s *Scraper) FetchDetails(summaries []models.ListingSummary) []*models.ListingDetail {
	pool := utils.NewWorkerPool(s.cfg.MaxConcurrency, s.cfg.RateLimitMs)
	details := make([]*models.ListingDetail, len(summaries))

	var processed int64

	for i := range summaries {
		i := i
		pool.Submit(func() {
			detail, err := s.FetchDetail(summaries[i].VehicleURL)
			if err != nil {
				s.logger.Warn("[turo] Excluding listing %s: %v", summaries[i].VehicleURL, err)
			} else {
				details[i] = &detail
			}

			done := atomic.AddInt64(&processed, 1)
			if done%5 == 0 {
				s.logger.Info("[turo] Processed %d listings of %d.", done, len(summaries))
			}
		})
	}
	pool.Wait()

	return details
}
