package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/circleats/donation-service/internal/config"
)

// Geocoder resolves a coordinate pair into a human-readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// Client is a Nominatim-style reverse geocoding client. Lookups are bounded
// by the configured HTTP timeout; any failure is returned to the caller
// rather than hanging the request.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a reverse-geocoding client from config.
func NewClient(cfg config.GeocoderConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// ReverseGeocode calls the upstream service and returns the display address.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode status %d", resp.StatusCode)
	}

	var parsed reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parse reverse geocode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("reverse geocode: %s", parsed.Error)
	}
	if parsed.DisplayName == "" {
		return "", fmt.Errorf("reverse geocode: empty address for %f,%f", lat, lon)
	}
	return parsed.DisplayName, nil
}
