package turo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"turo-scraper/config"
	"turo-scraper/geocode"
	"turo-scraper/models"
	"turo-scraper/utils"
)

// Scraper fetches search results and detail pages from the rental site.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	client *http.Client
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
			Logger:      logger,
		},
	}
}

type searchListing struct {
	InstantBookDisplayed bool `json:"instantBookDisplayed"`
	Location             struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	Owner struct {
		AllStarHost bool `json:"allStarHost"`
	} `json:"owner"`
	Rate struct {
		AverageDailyPrice float64 `json:"averageDailyPrice"`
	} `json:"rate"`
	Rating           *float64 `json:"rating"`
	ReviewCount      int      `json:"reviewCount"`
	RenterTripsTaken int      `json:"renterTripsTaken"`
	Vehicle          struct {
		Trim string `json:"trim"`
		Year int    `json:"year"`
		URL  string `json:"url"`
	} `json:"vehicle"`
}

type searchResponse struct {
	// Pointer so an absent "list" key (malformed body) is distinguishable
	// from a well-formed empty result.
	List *[]searchListing `json:"list"`
}

// SearchListings fetches one page of candidates for a window and location,
// in upstream relevance order. Transport failures are retried with back-off;
// a well-formed empty list is a valid "no listings" outcome. Summaries
// without a detail URL are rejected, and duplicate detail URLs are skipped
// (first occurrence wins).
func (s *Scraper) SearchListings(window models.Window, loc geocode.Location, maxMiles int) ([]models.ListingSummary, error) {
	var raw []searchListing

	err := s.retry.Do("search-"+window.TableName(), func() error {
		listings, err := s.fetchSearchPage(window, loc, maxMiles)
		if err != nil {
			return err
		}
		raw = listings
		return nil
	})
	if err != nil {
		return nil, err
	}

	seen := utils.NewURLSet()
	summaries := make([]models.ListingSummary, 0, len(raw))
	for _, l := range raw {
		if l.Vehicle.URL == "" {
			s.logger.Warn("[turo] Rejecting listing without a detail URL (year %d, trim %q)",
				l.Vehicle.Year, l.Vehicle.Trim)
			continue
		}
		detailURL := s.absoluteURL(l.Vehicle.URL)
		if !seen.Add(detailURL) {
			s.logger.Debug("[turo] Duplicate detail URL skipped: %s", detailURL)
			continue
		}
		summaries = append(summaries, models.ListingSummary{
			InstantBook:       l.InstantBookDisplayed,
			Latitude:          l.Location.Latitude,
			Longitude:         l.Location.Longitude,
			AllStarHost:       l.Owner.AllStarHost,
			AverageDailyPrice: l.Rate.AverageDailyPrice,
			Rating:            l.Rating,
			ReviewCount:       l.ReviewCount,
			RenterTripsTaken:  l.RenterTripsTaken,
			VehicleTrim:       l.Vehicle.Trim,
			VehicleYear:       l.Vehicle.Year,
			VehicleURL:        detailURL,
		})
	}

	if len(raw) >= s.cfg.ItemsPerPage {
		s.logger.Warn("[turo] Result count hit the page cap (%d) — further listings are not fetched",
			s.cfg.ItemsPerPage)
	}

	return summaries, nil
}

func (s *Scraper) fetchSearchPage(window models.Window, loc geocode.Location, maxMiles int) ([]searchListing, error) {
	params := url.Values{}
	params.Set("country", "US")
	params.Set("startDate", window.StartParam())
	params.Set("startTime", s.cfg.PickupTime)
	params.Set("endDate", window.EndParam())
	params.Set("endTime", s.cfg.PickupTime)
	params.Set("itemsPerPage", strconv.Itoa(s.cfg.ItemsPerPage))
	params.Set("location", loc.PostalCode)
	params.Set("locationType", "ZIP")
	params.Set("maximumDistanceInMiles", strconv.Itoa(maxMiles))
	params.Set("Latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	params.Set("Longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	params.Set("sortType", "RELEVANCE")
	params.Set("makes", s.cfg.SearchMake)
	params.Set("models", s.cfg.SearchModel)

	searchURL := s.cfg.TuroBaseURL + "/api/search?" + params.Encode()
	s.logger.Debug("[turo] Requesting %s", searchURL)

	req, err := http.NewRequest(http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("turo: build search request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("turo: search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("turo: search returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("turo: decode search response: %w", err)
	}
	if body.List == nil {
		return nil, fmt.Errorf("turo: search response has no listing key")
	}

	return *body.List, nil
}

func (s *Scraper) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,es-US;q=0.8,es;")
	req.Header.Set("Referer", s.cfg.TuroBaseURL+"/search?")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
}

// absoluteURL resolves relative detail references against the base URL.
func (s *Scraper) absoluteURL(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return s.cfg.TuroBaseURL + ref
}
