package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/yigit/devcamper/internal/pkg/logger"
)

const defaultMapQuestURL = "https://www.mapquestapi.com"

// MapQuest geocodes through the MapQuest geocoding API
type MapQuest struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewMapQuest creates a MapQuest geocoder using client for requests
func NewMapQuest(cfg Config, client *http.Client) *MapQuest {
	base := cfg.BaseURL
	if base == "" {
		base = defaultMapQuestURL
	}
	return &MapQuest{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(base, "/"),
		client:  client,
	}
}

type mapQuestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			AdminArea5 string `json:"adminArea5"` // city
			AdminArea3 string `json:"adminArea3"` // state
			AdminArea1 string `json:"adminArea1"` // country
			PostalCode string `json:"postalCode"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

// Geocode resolves address into matching locations, best match first
func (m *MapQuest) Geocode(ctx context.Context, address string) ([]Location, error) {
	q := url.Values{}
	q.Set("key", m.apiKey)
	q.Set("location", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/geocoding/v1/address?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request failed with status %d", resp.StatusCode)
	}

	var body mapQuestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if body.Info.StatusCode != 0 {
		return nil, fmt.Errorf("geocoder returned status %d: %s", body.Info.StatusCode, strings.Join(body.Info.Messages, "; "))
	}

	var locations []Location
	for _, result := range body.Results {
		for _, l := range result.Locations {
			locations = append(locations, Location{
				Latitude:         l.LatLng.Lat,
				Longitude:        l.LatLng.Lng,
				FormattedAddress: formatAddress(l.Street, l.AdminArea5, l.AdminArea3, l.PostalCode, l.AdminArea1),
				StreetName:       l.Street,
				City:             l.AdminArea5,
				StateCode:        l.AdminArea3,
				Zipcode:          l.PostalCode,
				CountryCode:      l.AdminArea1,
			})
		}
	}

	if len(locations) == 0 {
		return nil, ErrNoResults
	}

	logger.Debug().Str("address", address).Int("matches", len(locations)).Msg("Address geocoded")
	return locations, nil
}

// "street, city, state zipcode, country" skipping blanks
func formatAddress(street, city, state, zipcode, country string) string {
	stateZip := strings.TrimSpace(state + " " + zipcode)

	var parts []string
	for _, p := range []string{street, city, stateZip, country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
