package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"energy-advisor/internal/config"
	"energy-advisor/internal/model"
)

// GeocodeClient resolves addresses through a Nominatim-style search API.
type GeocodeClient struct {
	cfg        config.GeocodeConfig
	httpClient *http.Client
	log        *zap.SugaredLogger
}

// NewGeocodeClient creates a geocoding client.
func NewGeocodeClient(cfg config.GeocodeConfig, log *zap.SugaredLogger) *GeocodeClient {
	return &GeocodeClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

var _ Geocoder = (*GeocodeClient)(nil)

type geocodeResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Geocode resolves a free-form address. Returns model.ErrAddressNotFound
// when the search yields no usable result.
func (c *GeocodeClient) Geocode(ctx context.Context, address string) (*GeoPoint, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	endpoint := strings.TrimSuffix(c.cfg.APIBase, "/") + "/search?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "energy-advisor/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode API returned status %d", resp.StatusCode)
	}

	var results []geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return nil, model.ErrAddressNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}

	return &GeoPoint{
		DisplayAddress: results[0].DisplayName,
		Lat:            lat,
		Lon:            lon,
	}, nil
}
