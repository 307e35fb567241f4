package geocode

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Result is one forward-geocoding hit.
type Result struct {
	Latitude  float64
	Longitude float64
}

// Address is a reverse-geocoding result.
type Address struct {
	Street string
	City   string
	Zip    string
	Region string
}

// Geocoder is the external address resolution service. Search performs a
// country-restricted forward lookup and returns zero or more ranked
// results; Reverse resolves coordinates back to a structured address.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]Result, error)
	Reverse(ctx context.Context, lat, lon float64) (*Address, error)
}

// ErrNoUserAgent is returned when the client is constructed without the
// identifier string the service's usage policy requires.
var ErrNoUserAgent = errors.New("geocode: user agent identifier is required")

// nominatimResult mirrors the wire format: coordinates arrive as strings.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type nominatimReverse struct {
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
	Address struct {
		Road     string `json:"road"`
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		Postcode string `json:"postcode"`
		State    string `json:"state"`
	} `json:"address"`
}

// NominatimClient calls a Nominatim-compatible geocoding endpoint.
type NominatimClient struct {
	http        *resty.Client
	countryCode string
}

// NewNominatimClient builds a client for the given endpoint. userAgent must
// be a descriptive identifier; countryCode restricts forward searches.
func NewNominatimClient(baseURL, userAgent, countryCode string, timeout time.Duration) (*NominatimClient, error) {
	if userAgent == "" {
		return nil, ErrNoUserAgent
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &NominatimClient{
		http:        client,
		countryCode: countryCode,
	}, nil
}

// Search performs a single-result forward lookup for the query.
func (c *NominatimClient) Search(ctx context.Context, query string) ([]Result, error) {
	var raw []nominatimResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":            query,
			"format":       "json",
			"limit":        "1",
			"countrycodes": c.countryCode,
		}).
		SetResult(&raw).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("geocoder search failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("geocoder search returned %d", resp.StatusCode())
	}

	results := make([]Result, 0, len(raw))
	for _, r := range raw {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("geocoder returned bad latitude %q: %w", r.Lat, err)
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("geocoder returned bad longitude %q: %w", r.Lon, err)
		}
		results = append(results, Result{Latitude: lat, Longitude: lon})
	}
	return results, nil
}

// Reverse resolves coordinates to a structured address.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lon float64) (*Address, error) {
	var raw nominatimReverse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":    strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":    strconv.FormatFloat(lon, 'f', -1, 64),
			"format": "json",
		}).
		SetResult(&raw).
		Get("/reverse")
	if err != nil {
		return nil, fmt.Errorf("geocoder reverse failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("geocoder reverse returned %d", resp.StatusCode())
	}

	city := raw.Address.City
	if city == "" {
		city = raw.Address.Town
	}
	if city == "" {
		city = raw.Address.Village
	}

	return &Address{
		Street: raw.Address.Road,
		City:   city,
		Zip:    raw.Address.Postcode,
		Region: raw.Address.State,
	}, nil
}
