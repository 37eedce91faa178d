package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
home_base: "1 Depot Way"
service_area: "Springfield"
storage:
  backend: memory
classifier:
  bad_fraction: 0.8
route:
  horizon_days: 14
  offline_fallback: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1 Depot Way", cfg.HomeBase)
	assert.Equal(t, "Springfield", cfg.ServiceArea)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 0.8, cfg.Classifier.BadFraction)
	assert.Equal(t, 14, cfg.Route.HorizonDays)
	assert.True(t, cfg.Route.OfflineFallback)
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "home_base": "1 Depot Way",
  "storage": {"backend": "memory"}
}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1 Depot Way", cfg.HomeBase)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `home_base: "1 Depot Way"`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "cutplan.db", cfg.Storage.Path)
	assert.Equal(t, "2112", cfg.Metrics.PrometheusPort)
	assert.Equal(t, "cutplan", cfg.Notify.TopicPrefix)
	assert.NotEmpty(t, cfg.Weather.ForecastURL)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", `home_base: "1 Depot Way"`)
	t.Setenv("CUTPLAN_HOME_BASE", "2 Yard Street")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2 Yard Street", cfg.HomeBase)
}

func TestLoadNestedEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", `home_base: "1 Depot Way"`)
	t.Setenv("CUTPLAN_STORAGE__BACKEND", "memory")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.toml", `home_base = "x"`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadInvalidStorageBackend(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
storage:
  backend: redis
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadNotifyEnabledNeedsBroker(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
notify:
  enabled: true
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
