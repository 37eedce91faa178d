package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/branchnm/cutplan/core/drivetime"
	"github.com/branchnm/cutplan/core/route"
	"github.com/branchnm/cutplan/core/schedule"
	"github.com/branchnm/cutplan/core/suggest"
	coreweather "github.com/branchnm/cutplan/core/weather"
	"github.com/branchnm/cutplan/infra/notify"
	"github.com/branchnm/cutplan/infra/routing"
	infraweather "github.com/branchnm/cutplan/infra/weather"
)

// Config is the full engine configuration.
type Config struct {
	// HomeBase is the crew's starting address for route optimization.
	HomeBase string `json:"home_base"`
	// ServiceArea is geocoded once to anchor forecast lookups.
	ServiceArea string `json:"service_area"`

	Storage    StorageConfig       `json:"storage"`
	Classifier coreweather.Config  `json:"classifier"`
	Suggest    suggest.Config      `json:"suggestions"`
	Route      route.Config        `json:"route"`
	Schedule   schedule.Config     `json:"schedule"`
	DriveTime  drivetime.Heuristic `json:"drive_time"`
	Weather    infraweather.Config `json:"weather"`
	Routing    routing.Config      `json:"routing"`
	Metrics    MetricsConfig       `json:"metrics"`
	Notify     notify.Config       `json:"notify"`
}

// StorageConfig selects the persistence backend for the reference CLI.
type StorageConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `json:"backend"`
	// Path is the database location for the sqlite backend.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *StorageConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "sqlite"
	}
	if c.Path == "" {
		c.Path = "cutplan.db"
	}
}

// Validate checks mandatory fields.
func (c StorageConfig) Validate() error {
	if c.Backend != "memory" && c.Backend != "sqlite" {
		return fmt.Errorf("unknown storage backend %s", c.Backend)
	}
	if c.Backend == "sqlite" && c.Path == "" {
		return fmt.Errorf("storage path is required")
	}
	return nil
}

// MetricsConfig enables the metrics sinks.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = "2112"
	}
}

// Load reads the configuration from a JSON or YAML file with optional
// CUTPLAN_ environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("CUTPLAN_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "cutplan_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Storage.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Weather.SetDefaults()
	cfg.Routing.SetDefaults()
	cfg.Notify.SetDefaults()
	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Notify.Validate(); err != nil {
		return nil, err
	}
	if cfg.Routing.BaseURL != "" {
		if err := cfg.Routing.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
