package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bostonResponse = `{
  "info": {"statuscode": 0, "messages": []},
  "results": [{
    "locations": [{
      "street": "233 Bay State Rd",
      "adminArea5": "Boston",
      "adminArea3": "MA",
      "adminArea1": "US",
      "postalCode": "02215",
      "latLng": {"lat": 42.350846, "lng": -71.103699}
    }]
  }]
}`

func TestMapQuestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocoding/v1/address", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "233 Bay State Rd Boston MA 02215", r.URL.Query().Get("location"))
		_, _ = w.Write([]byte(bostonResponse))
	}))
	defer srv.Close()

	g := NewMapQuest(Config{APIKey: "secret", BaseURL: srv.URL}, srv.Client())
	locs, err := g.Geocode(context.Background(), "233 Bay State Rd Boston MA 02215")
	require.NoError(t, err)
	require.Len(t, locs, 1)

	assert.InDelta(t, 42.350846, locs[0].Latitude, 1e-9)
	assert.InDelta(t, -71.103699, locs[0].Longitude, 1e-9)
	assert.Equal(t, "Boston", locs[0].City)
	assert.Equal(t, "MA", locs[0].StateCode)
	assert.Equal(t, "02215", locs[0].Zipcode)
	assert.Equal(t, "US", locs[0].CountryCode)
	assert.Equal(t, "233 Bay State Rd, Boston, MA 02215, US", locs[0].FormattedAddress)
}

func TestMapQuestNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"info":{"statuscode":0},"results":[{"locations":[]}]}`))
	}))
	defer srv.Close()

	g := NewMapQuest(Config{APIKey: "secret", BaseURL: srv.URL}, srv.Client())
	_, err := g.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestMapQuestProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"info":{"statuscode":403,"messages":["bad key"]},"results":[]}`))
	}))
	defer srv.Close()

	g := NewMapQuest(Config{APIKey: "wrong", BaseURL: srv.URL}, srv.Client())
	_, err := g.Geocode(context.Background(), "02118")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestRetryingClientRetriesUnavailable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(bostonResponse))
	}))
	defer srv.Close()

	g := NewMapQuest(Config{APIKey: "secret", BaseURL: srv.URL}, NewRetryingClient(5*time.Second, 3))
	locs, err := g.Geocode(context.Background(), "02215")
	require.NoError(t, err)
	assert.Len(t, locs, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNewWithoutKeyIsDisabled(t *testing.T) {
	g, err := New(Config{Provider: "mapquest"})
	require.NoError(t, err)

	_, err = g.Geocode(context.Background(), "02215")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "carrier-pigeon", APIKey: "x"})
	assert.Error(t, err)
}
