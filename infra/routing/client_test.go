package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchnm/cutplan/core/route"
)

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestDriveTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/drivetime", r.URL.Path)
		assert.Equal(t, "100 Oak Lane", r.URL.Query().Get("from"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"duration_minutes": 12, "duration_text": "12 mins"}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)
	dt, err := c.DriveTime(context.Background(), "100 Oak Lane", "900 Pine Drive")
	require.NoError(t, err)
	require.NotNil(t, dt)
	assert.Equal(t, 12, dt.DurationMinutes)
	assert.Equal(t, "12 mins", dt.DurationText)
}

func TestDriveTimeNotFoundMeansNoEstimate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	dt, err := c.DriveTime(context.Background(), "A", "B")
	require.NoError(t, err)
	assert.Nil(t, dt)
}

func TestDriveTimeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.DriveTime(context.Background(), "A", "B")
	require.Error(t, err)
}

func TestOptimizeRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/optimize", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "1 Depot Way", req["origin"])
		assert.Len(t, req["stops"], 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"stops": [
				{"id": "j2", "address": "450 Oak Lane", "order": 1},
				{"id": "j1", "address": "120 Oak Lane", "order": 2}
			],
			"segments": [
				{"from_address": "1 Depot Way", "to_address": "450 Oak Lane", "duration_minutes": 9, "duration_text": "9 mins"},
				{"from_address": "450 Oak Lane", "to_address": "120 Oak Lane", "duration_minutes": 5, "duration_text": "5 mins"}
			],
			"total_minutes": 14
		}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	res, err := c.OptimizeRoute(context.Background(), "1 Depot Way", []route.Stop{
		{ID: "j1", Address: "120 Oak Lane", Order: 1},
		{ID: "j2", Address: "450 Oak Lane", Order: 2},
	})
	require.NoError(t, err)
	require.Len(t, res.Stops, 2)
	assert.Equal(t, "j2", res.Stops[0].ID)
	require.Len(t, res.Legs, 2)
	assert.Equal(t, 9, res.Legs[0].DurationMinutes)
	assert.Equal(t, 14, res.TotalMinutes)
}
