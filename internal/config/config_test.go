package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://restapi.amap.com", cfg.AMap.BaseURL)
	assert.InDelta(t, 5.0, cfg.AMap.RateLimit.RPS, 0.001)
	assert.Equal(t, 4, cfg.AMap.RateLimit.MaxConcurrent)
	assert.InDelta(t, 1.0, cfg.Anthropic.RateLimit.RPS, 0.001)
	assert.Equal(t, 1, cfg.Anthropic.RateLimit.Burst)
	assert.Equal(t, 2, cfg.Anthropic.RateLimit.MaxConcurrent)
	assert.InDelta(t, 50.0, cfg.Directions.RadiusKM, 0.001)
	assert.Equal(t, 50000, cfg.Directions.SearchRadiusM)
	assert.Equal(t, "综合医院", cfg.Directions.Category)
	assert.Equal(t, 8, cfg.Directions.MaxPages)
	assert.True(t, cfg.Directions.ExactType)
	assert.Equal(t, 5000, cfg.Survey.RadiusM)
	assert.True(t, cfg.Survey.CityLimit)
	assert.Equal(t, DefaultSurveyGroups, cfg.Survey.Groups)
	assert.Equal(t, "rules", cfg.Dedup.Oracle)
	assert.InDelta(t, 2.0, cfg.Dedup.PartnerRadiusKM, 0.001)
	assert.InDelta(t, 1000.0, cfg.Route.MinStepM, 0.001)
	assert.Equal(t, 32, cfg.Route.Strategy)
	assert.Equal(t, 32, cfg.Route.MaxRegions)
	assert.Equal(t, 16, cfg.Route.MaxPoints)
	assert.Equal(t, "csv", cfg.Sink.Driver)
	assert.Equal(t, "artifacts", cfg.Sink.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
sink:
  driver: sqlite
  dsn: records.db
log:
  level: debug
  format: console
survey:
  groups:
    - name: medical
      big_class: 医疗保健服务
selector:
  tier1: [人民医院]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Sink.Driver)
	assert.Equal(t, "records.db", cfg.Sink.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, []GroupConfig{{Name: "medical", BigClass: "医疗保健服务"}}, cfg.Survey.Groups)
	assert.Equal(t, []string{"人民医院"}, cfg.Selector.Tier1)
	// Defaults still apply for unset values
	assert.Equal(t, 8, cfg.Directions.MaxPages)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
sink:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("RESCUE_SINK_DRIVER", "none")
	t.Setenv("RESCUE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "none", cfg.Sink.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("RESCUE_SERVER_PORT", "3000")
	t.Setenv("RESCUE_AMAP_KEY", "amap-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "amap-key", cfg.AMap.Key)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with the defaults validation relies on.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.AMap.Key = "amap-key"
	cfg.AMap.RateLimit = RateLimitConfig{RPS: 5, Burst: 1, MaxConcurrent: 4}
	cfg.Directions.RadiusKM = 50
	cfg.Directions.Category = "综合医院"
	cfg.Dedup.Oracle = "rules"
	cfg.Dedup.PartnerRadiusKM = 2
	cfg.Route.MinStepM = 1000
	cfg.Sink.Driver = "csv"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidate_AllModes(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"points", "survey", "plan", "serve"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidate_PointsNeedsNoKey(t *testing.T) {
	cfg := validDefaults()
	cfg.AMap.Key = ""
	assert.NoError(t, cfg.Validate("points"))

	err := cfg.Validate("survey")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amap.key is required")
}

func TestValidate_SinkDSN(t *testing.T) {
	cfg := validDefaults()
	cfg.Sink.Driver = "postgres"

	err := cfg.Validate("survey")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink.dsn is required for driver postgres")

	cfg.Sink.Driver = "parquet"
	err = cfg.Validate("survey")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestValidate_AnthropicOracle(t *testing.T) {
	cfg := validDefaults()
	cfg.Dedup.Oracle = "anthropic"

	err := cfg.Validate("plan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")

	cfg.Anthropic.Key = "sk-ant-key"
	assert.NoError(t, cfg.Validate("plan"))
}

func TestValidate_Plan(t *testing.T) {
	cfg := validDefaults()
	cfg.Directions.RadiusKM = 0
	cfg.Directions.Category = ""

	err := cfg.Validate("plan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directions.radius_km must be > 0")
	assert.Contains(t, err.Error(), "directions.category is required")
}

func TestValidate_ServePort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidate_RateLimitBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.AMap.RateLimit.MaxConcurrent = 65

	err := cfg.Validate("points")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amap.rate_limit.max_concurrent must be between 0 and 64")

	cfg = validDefaults()
	cfg.Anthropic.RateLimit.RPS = -1
	err = cfg.Validate("points")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.rate_limit.rps must be >= 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
