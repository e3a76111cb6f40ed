package geocode

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupResolvesZip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/us/95014" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"post code": "95014",
			"country": "United States",
			"places": [{"place name": "Cupertino", "latitude": "37.318", "longitude": "-122.0449"}]
		}`))
	}))
	defer server.Close()

	loc, err := NewClient(WithBaseURL(server.URL)).Lookup("95014")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.PostalCode != "95014" {
		t.Errorf("PostalCode: got %s", loc.PostalCode)
	}
	if loc.Latitude != 37.318 {
		t.Errorf("Latitude: got %f", loc.Latitude)
	}
	if loc.Longitude != -122.0449 {
		t.Errorf("Longitude: got %f", loc.Longitude)
	}
}

func TestLookupUnknownZip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	if _, err := NewClient(WithBaseURL(server.URL)).Lookup("00000"); err == nil {
		t.Error("expected error for unknown zip")
	}
}

func TestLookupRejectsMalformedZip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("malformed zip should be rejected before any request")
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	for _, zip := range []string{"", "abcde", "1234", "123456", "12 34"} {
		if _, err := client.Lookup(zip); err == nil {
			t.Errorf("Lookup(%q): expected error", zip)
		}
	}
}

func TestLookupEmptyPlaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"post code": "95014", "places": []}`))
	}))
	defer server.Close()

	if _, err := NewClient(WithBaseURL(server.URL)).Lookup("95014"); err == nil {
		t.Error("expected error for empty places")
	}
}
