// Package geocoder resolves free-form addresses and zipcodes into coordinates.
package geocoder

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/PuerkitoBio/rehttp"
)

// EarthRadiusMiles is used to turn a distance into an angular radius
const EarthRadiusMiles = 3963.0

var (
	// ErrNoResults is returned when the provider could not resolve the address
	ErrNoResults = errors.New("no geocoding results")
	// ErrDisabled is returned when no provider is configured
	ErrDisabled = errors.New("geocoder is not configured")
)

// Location is one geocoding match
type Location struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	StreetName       string
	City             string
	StateCode        string
	Zipcode          string
	CountryCode      string
}

// Geocoder looks up an address
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]Location, error)
}

// Config selects and configures a provider
type Config struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// New returns the configured provider, or a disabled geocoder when no API key is set
func New(cfg Config) (Geocoder, error) {
	if cfg.APIKey == "" {
		return Disabled{}, nil
	}

	switch cfg.Provider {
	case "", "mapquest":
		return NewMapQuest(cfg, NewRetryingClient(cfg.Timeout, cfg.MaxRetries)), nil
	default:
		return nil, errors.New("unsupported geocoder provider: " + cfg.Provider)
	}
}

// NewRetryingClient builds an HTTP client that retries transient failures
// with exponential backoff.
func NewRetryingClient(timeout time.Duration, maxRetries int) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	retry := rehttp.RetryAll(
		rehttp.RetryMaxRetries(maxRetries),
		rehttp.RetryAny(
			rehttp.RetryTemporaryErr(),
			rehttp.RetryStatuses(http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout),
		),
	)

	return &http.Client{
		Timeout:   timeout,
		Transport: rehttp.NewTransport(http.DefaultTransport, retry, rehttp.ExpJitterDelay(100*time.Millisecond, 2*time.Second)),
	}
}

// Disabled is used when no provider is configured
type Disabled struct{}

// Geocode always fails with ErrDisabled
func (Disabled) Geocode(context.Context, string) ([]Location, error) {
	return nil, ErrDisabled
}
