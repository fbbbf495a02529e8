package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	AMap       AMapConfig       `yaml:"amap" mapstructure:"amap"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Tables     TablesConfig     `yaml:"tables" mapstructure:"tables"`
	Directions DirectionsConfig `yaml:"directions" mapstructure:"directions"`
	Survey     SurveyConfig     `yaml:"survey" mapstructure:"survey"`
	Dedup      DedupConfig      `yaml:"dedup" mapstructure:"dedup"`
	Selector   SelectorConfig   `yaml:"selector" mapstructure:"selector"`
	Route      RouteConfig      `yaml:"route" mapstructure:"route"`
	Sink       SinkConfig       `yaml:"sink" mapstructure:"sink"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// AMapConfig holds AMap web-service credentials and pacing.
type AMapConfig struct {
	Key         string          `yaml:"key" mapstructure:"key"`
	BaseURL     string          `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int             `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// RateLimitConfig paces outbound provider calls.
type RateLimitConfig struct {
	RPS           float64 `yaml:"rps" mapstructure:"rps"`
	Burst         int     `yaml:"burst" mapstructure:"burst"`
	MaxConcurrent int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// AnthropicConfig holds Anthropic API settings for the LLM dedup oracle.
type AnthropicConfig struct {
	Key       string          `yaml:"key" mapstructure:"key"`
	BaseURL   string          `yaml:"base_url" mapstructure:"base_url"`
	Model     string          `yaml:"model" mapstructure:"model"`
	MaxTokens int64           `yaml:"max_tokens" mapstructure:"max_tokens"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// TablesConfig points at the category and city tables. Empty paths use the
// embedded defaults.
type TablesConfig struct {
	Categories string `yaml:"categories" mapstructure:"categories"`
	Cities     string `yaml:"cities" mapstructure:"cities"`
}

// DirectionsConfig configures the per-direction facility search.
type DirectionsConfig struct {
	RadiusKM      float64 `yaml:"radius_km" mapstructure:"radius_km"`
	SearchRadiusM int     `yaml:"search_radius_m" mapstructure:"search_radius_m"`
	Category      string  `yaml:"category" mapstructure:"category"`
	PageSize      int     `yaml:"page_size" mapstructure:"page_size"`
	MaxPages      int     `yaml:"max_pages" mapstructure:"max_pages"`
	ExactType     bool    `yaml:"exact_type" mapstructure:"exact_type"`
}

// SurveyConfig configures the surroundings survey.
type SurveyConfig struct {
	RadiusM   int           `yaml:"radius_m" mapstructure:"radius_m"`
	PageSize  int           `yaml:"page_size" mapstructure:"page_size"`
	MaxPages  int           `yaml:"max_pages" mapstructure:"max_pages"`
	CityLimit bool          `yaml:"city_limit" mapstructure:"city_limit"`
	Groups    []GroupConfig `yaml:"groups" mapstructure:"groups"`
}

// GroupConfig selects categories by class.
type GroupConfig struct {
	Name     string `yaml:"name" mapstructure:"name"`
	BigClass string `yaml:"big_class" mapstructure:"big_class"`
	MidClass string `yaml:"mid_class" mapstructure:"mid_class"`
}

// Dedup oracle modes.
const (
	OracleRules     = "rules"
	OracleAnthropic = "anthropic"
)

// DedupConfig configures the deduplication engine. Oracle "rules" leaves
// judgment to the name policy; "anthropic" asks the model and post-filters
// its answer.
type DedupConfig struct {
	Oracle          string  `yaml:"oracle" mapstructure:"oracle"`
	PartnerRadiusKM float64 `yaml:"partner_radius_km" mapstructure:"partner_radius_km"`
}

// SelectorConfig overrides the authoritative selector's name markers.
type SelectorConfig struct {
	Tier1    []string `yaml:"tier1" mapstructure:"tier1"`
	General  []string `yaml:"general" mapstructure:"general"`
	Exclude  []string `yaml:"exclude" mapstructure:"exclude"`
	Excluded []string `yaml:"excluded" mapstructure:"excluded"`
}

// RouteConfig configures the route composer.
type RouteConfig struct {
	MinStepM   float64 `yaml:"min_step_m" mapstructure:"min_step_m"`
	Strategy   int     `yaml:"strategy" mapstructure:"strategy"`
	MaxRegions int     `yaml:"max_regions" mapstructure:"max_regions"`
	MaxPoints  int     `yaml:"max_points" mapstructure:"max_points"`
}

// SinkConfig selects where aggregated tables are persisted.
type SinkConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
	Table  string `yaml:"table" mapstructure:"table"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultSurveyGroups mirrors the peripheral information categories.
var DefaultSurveyGroups = []GroupConfig{
	{Name: "places", BigClass: "地名地址信息"},
	{Name: "government", BigClass: "政府机构及社会团体"},
	{Name: "public", BigClass: "公共设施"},
	{Name: "events", BigClass: "事件活动"},
	{Name: "lodging", BigClass: "住宿服务"},
	{Name: "schools", MidClass: "学校"},
	{Name: "sports", BigClass: "体育休闲服务"},
	{Name: "culture", BigClass: "科教文化服务"},
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RESCUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("amap.key", "")
	v.SetDefault("amap.base_url", "https://restapi.amap.com")
	v.SetDefault("amap.timeout_secs", 15)
	v.SetDefault("amap.rate_limit.rps", 5.0)
	v.SetDefault("amap.rate_limit.burst", 1)
	v.SetDefault("amap.rate_limit.max_concurrent", 4)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.rate_limit.rps", 1.0)
	v.SetDefault("anthropic.rate_limit.burst", 1)
	v.SetDefault("anthropic.rate_limit.max_concurrent", 2)
	v.SetDefault("tables.categories", "")
	v.SetDefault("tables.cities", "")
	v.SetDefault("directions.radius_km", 50.0)
	v.SetDefault("directions.search_radius_m", 50000)
	v.SetDefault("directions.category", "综合医院")
	v.SetDefault("directions.page_size", 25)
	v.SetDefault("directions.max_pages", 8)
	v.SetDefault("directions.exact_type", true)
	v.SetDefault("survey.radius_m", 5000)
	v.SetDefault("survey.page_size", 10)
	v.SetDefault("survey.max_pages", 1)
	v.SetDefault("survey.city_limit", true)
	v.SetDefault("dedup.oracle", OracleRules)
	v.SetDefault("dedup.partner_radius_km", 2.0)
	v.SetDefault("route.min_step_m", 1000.0)
	v.SetDefault("route.strategy", 32)
	v.SetDefault("route.max_regions", 32)
	v.SetDefault("route.max_points", 16)
	v.SetDefault("sink.driver", "csv")
	v.SetDefault("sink.dir", "artifacts")
	v.SetDefault("sink.dsn", "")
	v.SetDefault("sink.table", "poi_records")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if len(cfg.Survey.Groups) == 0 {
		cfg.Survey.Groups = append([]GroupConfig(nil), DefaultSurveyGroups...)
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
