package geocode

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"
)

// DefaultBaseURL is the public Zippopotam postal-code API.
const DefaultBaseURL = "https://api.zippopotam.us"

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// Location is a resolved postal code with coordinates.
type Location struct {
	PostalCode string
	Latitude   float64
	Longitude  float64
}

// Geocoder resolves a US postal code to coordinates. A resolution failure is
// an input fault: the caller aborts the run before any fetch occurs.
type Geocoder interface {
	Lookup(postalCode string) (Location, error)
}

// Client is an HTTP Geocoder backed by the Zippopotam API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (tests point this at a local server).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient creates a Geocoder client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		userAgent:  "turo-scraper/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup resolves a 5-digit US zip code to its coordinates.
func (c *Client) Lookup(postalCode string) (Location, error) {
	if !zipPattern.MatchString(postalCode) {
		return Location{}, fmt.Errorf("geocode: %q is not a valid US zip code", postalCode)
	}

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/us/"+postalCode, nil)
	if err != nil {
		return Location{}, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Location{}, fmt.Errorf("geocode: zip code %s not found", postalCode)
	}
	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		PostCode string `json:"post code"`
		Places   []struct {
			Latitude  string `json:"latitude"`
			Longitude string `json:"longitude"`
		} `json:"places"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(body.Places) == 0 {
		return Location{}, fmt.Errorf("geocode: no places for zip code %s", postalCode)
	}

	lat, err := strconv.ParseFloat(body.Places[0].Latitude, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocode: parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(body.Places[0].Longitude, 64)
	if err != nil {
		return Location{}, fmt.Errorf("geocode: parse longitude: %w", err)
	}

	return Location{PostalCode: postalCode, Latitude: lat, Longitude: lon}, nil
}
