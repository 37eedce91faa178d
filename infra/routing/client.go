// Package routing adapts an external route service to the drive-time
// Provider and multi-stop Optimizer ports.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/branchnm/cutplan/core/drivetime"
	"github.com/branchnm/cutplan/core/logger"
	"github.com/branchnm/cutplan/core/route"
	infralogger "github.com/branchnm/cutplan/infra/logger"
)

// Config defines the route service connection.
type Config struct {
	BaseURL        string `json:"base_url"`
	APIKey         string `json:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("routing base_url is required")
	}
	return nil
}

// Client talks to the external route service.
type Client struct {
	cfg    Config
	client *http.Client
	log    logger.Logger
}

// NewClient creates a Client.
func NewClient(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:    infralogger.New("routing-client"),
	}, nil
}

type driveTimeResponse struct {
	DurationMinutes int    `json:"duration_minutes"`
	DurationText    string `json:"duration_text"`
}

// DriveTime resolves one directional pair. A nil result with nil error
// means the service had no estimate.
func (c *Client) DriveTime(ctx context.Context, from, to string) (*drivetime.DriveTime, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/drivetime?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var resp driveTimeResponse
	status, err := c.do(req, &resp)
	if err != nil {
		return nil, fmt.Errorf("drive time %q -> %q: %w", from, to, err)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	return &drivetime.DriveTime{
		DurationMinutes: resp.DurationMinutes,
		DurationText:    resp.DurationText,
	}, nil
}

type optimizeRequest struct {
	Origin string `json:"origin"`
	Stops  []struct {
		ID      string `json:"id"`
		Address string `json:"address"`
		Order   int    `json:"order"`
	} `json:"stops"`
}

type optimizeResponse struct {
	Stops []struct {
		ID      string `json:"id"`
		Address string `json:"address"`
		Order   int    `json:"order"`
	} `json:"stops"`
	Segments []struct {
		FromAddress     string `json:"from_address"`
		ToAddress       string `json:"to_address"`
		DurationMinutes int    `json:"duration_minutes"`
		DurationText    string `json:"duration_text"`
	} `json:"segments"`
	TotalMinutes int `json:"total_minutes"`
}

// OptimizeRoute submits one day's stops and returns the visiting order
// with per-leg durations.
func (c *Client) OptimizeRoute(ctx context.Context, origin string, stops []route.Stop) (*route.Result, error) {
	body := optimizeRequest{Origin: origin}
	for _, s := range stops {
		body.Stops = append(body.Stops, struct {
			ID      string `json:"id"`
			Address string `json:"address"`
			Order   int    `json:"order"`
		}{ID: s.ID, Address: s.Address, Order: s.Order})
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/optimize", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp optimizeResponse
	if _, err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("optimize route from %q: %w", origin, err)
	}

	out := &route.Result{TotalMinutes: resp.TotalMinutes}
	for _, s := range resp.Stops {
		out.Stops = append(out.Stops, route.Stop{ID: s.ID, Address: s.Address, Order: s.Order})
	}
	for _, seg := range resp.Segments {
		out.Legs = append(out.Legs, route.Leg{
			FromAddress:     seg.FromAddress,
			ToAddress:       seg.ToAddress,
			DurationMinutes: seg.DurationMinutes,
			DurationText:    seg.DurationText,
		})
	}
	return out, nil
}

func (c *Client) do(req *http.Request, out any) (int, error) {
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warnf("close response body: %v", cerr)
		}
	}()
	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
}
