package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchnm/cutplan/core/model"
)

func TestForecastFoldsHourlyIntoDays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "40.0000", r.URL.Query().Get("latitude"))
		assert.Equal(t, "precipitation,precipitation_probability,weather_code", r.URL.Query().Get("hourly"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hourly": {
				"time": ["2026-06-01T05:00", "2026-06-01T06:00", "2026-06-02T05:00"],
				"precipitation": [2.5, 0, 0],
				"precipitation_probability": [80, 20, 10],
				"weather_code": [63, 0, 95]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(Config{ForecastURL: srv.URL, ForecastDays: 2})
	days, err := c.Forecast(context.Background(), model.Coordinates{Lat: 40, Lon: -75})
	require.NoError(t, err)
	require.Len(t, days, 2)

	first := days[0]
	assert.Equal(t, "2026-06-01", first.Date)
	require.Len(t, first.Hourly, 2)
	assert.Equal(t, 5, first.Hourly[0].Hour24)
	assert.Equal(t, 2.5, first.Hourly[0].RainAmountMm)
	assert.Equal(t, "rain", first.Hourly[0].Description)
	assert.Equal(t, 80, first.PrecipitationChance)

	second := days[1]
	assert.Equal(t, "2026-06-02", second.Date)
	assert.Equal(t, "thunderstorm", second.Hourly[0].Description)
}

func TestForecastServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{ForecastURL: srv.URL})
	_, err := c.Forecast(context.Background(), model.Coordinates{})
	require.Error(t, err)
}

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Springfield", r.URL.Query().Get("name"))
		assert.Equal(t, "1", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [{"name": "Springfield", "latitude": 39.8, "longitude": -89.65}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{GeocodingURL: srv.URL})
	coords, err := c.Geocode(context.Background(), "Springfield")
	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.Equal(t, 39.8, coords.Lat)
	assert.Equal(t, -89.65, coords.Lon)
	assert.Equal(t, "Springfield", coords.Name)
}

func TestGeocodeNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	c := NewClient(Config{GeocodingURL: srv.URL})
	coords, err := c.Geocode(context.Background(), "Nowhereville")
	require.NoError(t, err)
	assert.Nil(t, coords)
}

func TestDescribeUnknownCode(t *testing.T) {
	assert.Equal(t, "unknown", describe(77))
}
