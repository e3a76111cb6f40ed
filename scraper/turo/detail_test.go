package turo

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"turo-scraper/models"
	"turo-scraper/utils"
)

const detailPage = `<html><body>
	<div class="vehicleLabel">Tesla Model 3</div>
	<div class="vehicleLabel">Performance AWD</div>
	<div class="vehicleDetails-descriptionText">Blisteringly quick performance trim` + "—" + `garage kept.</div>
	<div class="reservationBox">$89/day Distance includedDay300 miWeek1000 miMonthUnlimited Insurance included</div>
</body></html>`

func TestFetchDetailParsesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(detailPage))
	}))
	defer server.Close()

	s := New(testConfig(server.URL), utils.NewLogger())
	detail, err := s.FetchDetail(server.URL + "/vehicle/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if detail.Trim != models.TrimPerformance {
		t.Errorf("Trim: got %q, want performance", detail.Trim)
	}
	if !detail.PerformanceTrim {
		t.Error("PerformanceTrim should be true")
	}
	if !detail.PerformanceDescription {
		t.Error("PerformanceDescription should be true")
	}
	if detail.PerformanceScore != 2 {
		t.Errorf("PerformanceScore: got %d, want 2", detail.PerformanceScore)
	}
	// The em dash is outside printable ASCII and must be stripped.
	if strings.ContainsRune(detail.Description, '—') {
		t.Errorf("non-printable characters not stripped: %q", detail.Description)
	}
	if !strings.Contains(detail.Description, "garage kept") {
		t.Errorf("description lost content: %q", detail.Description)
	}

	if miles, ok := detail.DayMiles.Miles(); !ok || miles != 300 {
		t.Errorf("DayMiles: got %v", detail.DayMiles)
	}
	if miles, ok := detail.WeekMiles.Miles(); !ok || miles != 1000 {
		t.Errorf("WeekMiles: got %v", detail.WeekMiles)
	}
	if !detail.MonthMiles.Unlimited() {
		t.Errorf("MonthMiles: got %v, want Unlimited", detail.MonthMiles)
	}
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse test document: %v", err)
	}
	return doc
}

func TestParseDetailAmbiguousTrimFirstMatchWins(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div class="vehicleLabel">Long Range AWD</div>
		<div class="vehicleLabel">Performance</div>
		<div class="vehicleDetails-descriptionText">Comfortable commuter.</div>
	</body></html>`)

	s := New(testConfig("https://turo.com"), utils.NewLogger())
	detail, err := s.parseDetail(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Trim != models.TrimLong {
		t.Errorf("Trim: got %q, want long (first match in document order)", detail.Trim)
	}
	if detail.PerformanceTrim {
		t.Error("PerformanceTrim must be false when the selected trim is not performance")
	}
	if detail.PerformanceScore != 0 {
		t.Errorf("PerformanceScore: got %d, want 0", detail.PerformanceScore)
	}
}

func TestParseDetailNoTrimIsUnknown(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div class="vehicleLabel">Tesla Model 3</div>
		<div class="vehicleDetails-descriptionText">Great car.</div>
	</body></html>`)

	s := New(testConfig("https://turo.com"), utils.NewLogger())
	detail, err := s.parseDetail(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Trim != models.TrimUnknown {
		t.Errorf("Trim: got %q, want unknown", detail.Trim)
	}
}

func TestParseDetailMissingMileageIsUnknownNotError(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div class="vehicleLabel">Standard Range</div>
		<div class="vehicleDetails-descriptionText">Daily driver.</div>
	</body></html>`)

	s := New(testConfig("https://turo.com"), utils.NewLogger())
	detail, err := s.parseDetail(doc)
	if err != nil {
		t.Fatalf("missing mileage fragment must not fail enrichment: %v", err)
	}
	if detail.DayMiles.Known() || detail.WeekMiles.Known() || detail.MonthMiles.Known() {
		t.Errorf("all mileage fields should be unknown, got %v/%v/%v",
			detail.DayMiles, detail.WeekMiles, detail.MonthMiles)
	}
}

func TestParseDetailMissingDescriptionFails(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div class="vehicleLabel">Performance</div>
	</body></html>`)

	s := New(testConfig("https://turo.com"), utils.NewLogger())
	if _, err := s.parseDetail(doc); err == nil {
		t.Error("missing description must be an enrichment failure")
	}
}

func TestParseDetailMultipleDescriptionsFirstWins(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div class="vehicleDetails-descriptionText">First fragment.</div>
		<div class="vehicleDetails-descriptionText">Second fragment.</div>
	</body></html>`)

	s := New(testConfig("https://turo.com"), utils.NewLogger())
	detail, err := s.parseDetail(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Description != "First fragment." {
		t.Errorf("Description: got %q, want first fragment in document order", detail.Description)
	}
}

func TestFetchDetailsIsolatesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/vehicle/bad" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(detailPage))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 2
	s := New(cfg, utils.NewLogger())

	summaries := []models.ListingSummary{
		{VehicleURL: server.URL + "/vehicle/good"},
		{VehicleURL: server.URL + "/vehicle/bad"},
	}

	details := s.FetchDetails(summaries)
	if len(details) != 2 {
		t.Fatalf("details: got %d entries, want 2 (index-aligned)", len(details))
	}
	if details[0] == nil {
		t.Error("enrichable listing should have a detail")
	}
	if details[1] != nil {
		t.Error("listing with exhausted retries should be nil, not aborted")
	}
}
