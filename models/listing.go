package models

import (
	"strconv"
	"time"
)

// Window is one Friday–Sunday rental period targeted for a scrape cycle.
// Start and End are date-only values (midnight, local).
type Window struct {
	Start time.Time
	End   time.Time
}

// TableName renders the window start as the destination table name, e.g. "08_28_2026".
func (w Window) TableName() string {
	return w.Start.Format("01_02_2006")
}

// StartParam renders the window start for the search query, e.g. "08/28/2026".
func (w Window) StartParam() string {
	return w.Start.Format("01/02/2006")
}

// EndParam renders the window end for the search query.
func (w Window) EndParam() string {
	return w.End.Format("01/02/2006")
}

// Trim is the normalized vehicle trim classification.
type Trim string

const (
	TrimUnknown     Trim = ""
	TrimPerformance Trim = "performance"
	TrimStandard    Trim = "standard"
	TrimLong        Trim = "long"
)

type mileageKind int

const (
	mileageUnknown mileageKind = iota
	mileageUnlimited
	mileageBounded
)

// Mileage is a per-period distance allowance: a bounded number of miles,
// unlimited, or unknown when the detail page carried no mileage fragment.
// The zero value is unknown.
type Mileage struct {
	kind  mileageKind
	miles int
}

func BoundedMileage(miles int) Mileage { return Mileage{kind: mileageBounded, miles: miles} }
func UnlimitedMileage() Mileage        { return Mileage{kind: mileageUnlimited} }
func UnknownMileage() Mileage          { return Mileage{} }

// Known reports whether the allowance was present on the detail page.
func (m Mileage) Known() bool { return m.kind != mileageUnknown }

// Unlimited reports whether the allowance is unlimited.
func (m Mileage) Unlimited() bool { return m.kind == mileageUnlimited }

// Miles returns the bounded allowance and whether one exists.
func (m Mileage) Miles() (int, bool) {
	if m.kind != mileageBounded {
		return 0, false
	}
	return m.miles, true
}

// String renders the allowance the way the detail page does ("300 mi",
// "Unlimited") or "unknown".
func (m Mileage) String() string {
	switch m.kind {
	case mileageBounded:
		return strconv.Itoa(m.miles) + " mi"
	case mileageUnlimited:
		return "Unlimited"
	default:
		return "unknown"
	}
}

// ListingSummary holds the fields available directly from the search response.
type ListingSummary struct {
	InstantBook       bool
	Latitude          float64
	Longitude         float64
	AllStarHost       bool
	AverageDailyPrice float64
	Rating            *float64 // nil when the listing has no rating yet
	ReviewCount       int
	RenterTripsTaken  int
	VehicleTrim       string
	VehicleYear       int
	VehicleURL        string
}

// ListingDetail holds the fields recoverable only from the detail page.
type ListingDetail struct {
	Trim                   Trim
	PerformanceTrim        bool
	Description            string
	PerformanceDescription bool
	PerformanceScore       int // 0..2
	DayMiles               Mileage
	WeekMiles              Mileage
	MonthMiles             Mileage
}

// EnrichedRecord is the unit of output: one summary merged with its detail,
// tagged with the window it was collected for and the capture date.
// Immutable once assembled.
type EnrichedRecord struct {
	Summary      ListingSummary
	Detail       ListingDetail
	Window       Window
	DateAccessed time.Time
}

// recordColumns is the canonical column order of the destination table.
var recordColumns = []string{
	"date_accessed",
	"instant_book",
	"latitude",
	"longitude",
	"all_star_host",
	"average_daily_price",
	"rating",
	"review_count",
	"renter_trips_taken",
	"vehicle_trim",
	"vehicle_year",
	"vehicle_url",
	"performance_score",
	"trim",
	"performance_trim",
	"description",
	"performance_description",
	"day_miles",
	"week_miles",
	"month_miles",
	"weekend",
}

// Columns returns the record's column names in canonical order.
func (r *EnrichedRecord) Columns() []string {
	cols := make([]string, len(recordColumns))
	copy(cols, recordColumns)
	return cols
}

// Fields maps column names to values. Unknown trim, rating, and mileage
// become nil so they load as SQL NULL rather than a numeric sentinel.
func (r *EnrichedRecord) Fields() map[string]any {
	var rating any
	if r.Summary.Rating != nil {
		rating = *r.Summary.Rating
	}
	var trim any
	if r.Detail.Trim != TrimUnknown {
		trim = string(r.Detail.Trim)
	}

	return map[string]any{
		"date_accessed":           r.DateAccessed,
		"instant_book":            r.Summary.InstantBook,
		"latitude":                r.Summary.Latitude,
		"longitude":               r.Summary.Longitude,
		"all_star_host":           r.Summary.AllStarHost,
		"average_daily_price":     r.Summary.AverageDailyPrice,
		"rating":                  rating,
		"review_count":            r.Summary.ReviewCount,
		"renter_trips_taken":      r.Summary.RenterTripsTaken,
		"vehicle_trim":            r.Summary.VehicleTrim,
		"vehicle_year":            r.Summary.VehicleYear,
		"vehicle_url":             r.Summary.VehicleURL,
		"performance_score":       r.Detail.PerformanceScore,
		"trim":                    trim,
		"performance_trim":        r.Detail.PerformanceTrim,
		"description":             r.Detail.Description,
		"performance_description": r.Detail.PerformanceDescription,
		"day_miles":               mileageField(r.Detail.DayMiles),
		"week_miles":              mileageField(r.Detail.WeekMiles),
		"month_miles":             mileageField(r.Detail.MonthMiles),
		"weekend":                 r.Window.Start,
	}
}

func mileageField(m Mileage) any {
	if !m.Known() {
		return nil
	}
	return m.String()
}

// Batch is the full set of enriched records for one window, destined for one
// destination table. Columns are fixed from the first appended record; every
// row conforms to that column set.
type Batch struct {
	Window  Window
	Columns []string
	Rows    [][]any
	Records []*EnrichedRecord
}

// NewBatch creates an empty batch for the given window.
func NewBatch(w Window) *Batch {
	return &Batch{Window: w}
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int { return len(b.Rows) }

// WindowStat holds the per-window figures for the final run report.
type WindowStat struct {
	Window           Window
	TableID          string
	Records          int
	Excluded         int
	MinPrice         float64
	AvgPrice         float64
	CheapestURL      string
	PerformanceCount int
}

// RunReport accumulates the outcome of one full invocation.
type RunReport struct {
	PostalCode     string
	Windows        []WindowStat
	UploadedTables []string
	FailedWindows  []string
}
