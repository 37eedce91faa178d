// Package weather adapts the Open-Meteo HTTP APIs to the core weather
// Provider port. Failures are returned to the caller, which treats an
// empty forecast as "no suggestions" rather than an error condition.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/branchnm/cutplan/core/logger"
	"github.com/branchnm/cutplan/core/model"
	infralogger "github.com/branchnm/cutplan/infra/logger"
)

// Config defines the Open-Meteo endpoints.
type Config struct {
	ForecastURL  string `json:"forecast_url"`
	GeocodingURL string `json:"geocoding_url"`
	ForecastDays int    `json:"forecast_days"`
}

// SetDefaults applies the public endpoints.
func (c *Config) SetDefaults() {
	if c.ForecastURL == "" {
		c.ForecastURL = "https://api.open-meteo.com/v1/forecast"
	}
	if c.GeocodingURL == "" {
		c.GeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	}
	if c.ForecastDays <= 0 {
		c.ForecastDays = 5
	}
}

// Client implements the core weather Provider against Open-Meteo.
type Client struct {
	cfg    Config
	client *http.Client
	log    logger.Logger
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    infralogger.New("weather-client"),
	}
}

type forecastResponse struct {
	Hourly struct {
		Time                     []string  `json:"time"`
		Precipitation            []float64 `json:"precipitation"`
		PrecipitationProbability []int     `json:"precipitation_probability"`
		WeatherCode              []int     `json:"weather_code"`
	} `json:"hourly"`
}

// weatherDescriptions maps WMO weather codes to display text. Codes the
// classifier treats as severe must contain "thunder", "heavy" or "storm".
var weatherDescriptions = map[int]string{
	0: "clear sky", 1: "mainly clear", 2: "partly cloudy", 3: "overcast",
	45: "fog", 48: "rime fog",
	51: "light drizzle", 53: "drizzle", 55: "dense drizzle",
	61: "light rain", 63: "rain", 65: "heavy rain",
	80: "rain showers", 81: "rain showers", 82: "heavy rain showers",
	95: "thunderstorm", 96: "thunderstorm with hail", 99: "thunderstorm with heavy hail",
}

func describe(code int) string {
	if d, ok := weatherDescriptions[code]; ok {
		return d
	}
	return "unknown"
}

// Forecast fetches the hourly forecast and folds it into per-day samples,
// today first.
func (c *Client) Forecast(ctx context.Context, coords model.Coordinates) ([]model.WeatherDay, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(coords.Lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(coords.Lon, 'f', 4, 64))
	q.Set("hourly", "precipitation,precipitation_probability,weather_code")
	q.Set("forecast_days", strconv.Itoa(c.cfg.ForecastDays))
	q.Set("timezone", "auto")

	var resp forecastResponse
	if err := c.getJSON(ctx, c.cfg.ForecastURL+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}

	byDate := make(map[string]*model.WeatherDay)
	var order []string
	for i, ts := range resp.Hourly.Time {
		// Hourly timestamps look like "2026-08-31T05:00".
		date, hourPart, ok := strings.Cut(ts, "T")
		if !ok {
			continue
		}
		hour, err := strconv.Atoi(strings.SplitN(hourPart, ":", 2)[0])
		if err != nil {
			continue
		}
		day, seen := byDate[date]
		if !seen {
			day = &model.WeatherDay{Date: date}
			byDate[date] = day
			order = append(order, date)
		}
		h := model.HourlyForecast{Hour24: hour}
		if i < len(resp.Hourly.Precipitation) {
			h.RainAmountMm = resp.Hourly.Precipitation[i]
		}
		if i < len(resp.Hourly.WeatherCode) {
			h.Description = describe(resp.Hourly.WeatherCode[i])
		}
		if i < len(resp.Hourly.PrecipitationProbability) {
			if p := resp.Hourly.PrecipitationProbability[i]; p > day.PrecipitationChance {
				day.PrecipitationChance = p
			}
		}
		day.Hourly = append(day.Hourly, h)
	}

	out := make([]model.WeatherDay, 0, len(order))
	for _, date := range order {
		out = append(out, *byDate[date])
	}
	return out, nil
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Geocode resolves a free-form address. A nil result means no match.
func (c *Client) Geocode(ctx context.Context, query string) (*model.Coordinates, error) {
	q := url.Values{}
	q.Set("name", query)
	q.Set("count", "1")

	var resp geocodeResponse
	if err := c.getJSON(ctx, c.cfg.GeocodingURL+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	r := resp.Results[0]
	return &model.Coordinates{Lat: r.Latitude, Lon: r.Longitude, Name: r.Name}, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warnf("close response body: %v", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
