package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LV95 is the Swiss CH1903+/LV95 (EPSG:2056) definition used when a
// shapefile ships without a .prj sidecar.
const LV95 = "+proj=somerc +lat_0=46.95240555555556 +lon_0=7.439583333333333 +k_0=1 " +
	"+x_0=2600000 +y_0=1200000 +ellps=bessel +towgs84=674.374,15.056,405.346,0,0,0,0 +units=m +no_defs"

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Assets AssetsConfig `yaml:"assets" mapstructure:"assets"`
	Map    MapConfig    `yaml:"map" mapstructure:"map"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the prediction datasets.
type DataConfig struct {
	Dir           string   `yaml:"dir" mapstructure:"dir"`
	Segments      string   `yaml:"segments" mapstructure:"segments"`
	Grid          string   `yaml:"grid" mapstructure:"grid"`
	SourceProj    string   `yaml:"source_proj" mapstructure:"source_proj"`
	TooltipFields []string `yaml:"tooltip_fields" mapstructure:"tooltip_fields"`
}

// SegmentsPath returns the segment dataset path resolved against Dir.
func (d DataConfig) SegmentsPath() string { return d.resolve(d.Segments) }

// GridPath returns the grid dataset path resolved against Dir.
func (d DataConfig) GridPath() string { return d.resolve(d.Grid) }

func (d DataConfig) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.Dir, name)
}

// AssetsConfig locates the pre-rendered chart images.
type AssetsConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	LayoutFile string `yaml:"layout_file" mapstructure:"layout_file"`
}

// MapConfig configures the deck.gl map.
type MapConfig struct {
	Style    string  `yaml:"style" mapstructure:"style"`
	Provider string  `yaml:"provider" mapstructure:"provider"`
	Zoom     float64 `yaml:"zoom" mapstructure:"zoom"`
	Pitch    float64 `yaml:"pitch" mapstructure:"pitch"`
}

// CacheConfig configures the dataset and deck caches.
type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries" mapstructure:"max_entries"`
	TTL        time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ServerConfig configures the dashboard server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst       int      `yaml:"burst" mapstructure:"burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RISKMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.segments", "segment_model_final.shp")
	v.SetDefault("data.grid", "grid_model_final.shp")
	v.SetDefault("data.source_proj", LV95)
	v.SetDefault("data.tooltip_fields", []string{})
	v.SetDefault("assets.dir", "data")
	v.SetDefault("assets.layout_file", "")
	v.SetDefault("map.style", "light")
	v.SetDefault("map.provider", "carto")
	v.SetDefault("map.zoom", 13)
	v.SetDefault("map.pitch", 0)
	v.SetDefault("cache.max_entries", 16)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("server.port", 8501)
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.burst", 20)
	v.SetDefault("server.cors_origins", []string{"*"})
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

	return &cfg, nil
}

// Validate checks the settings the dashboard cannot run without.
func (c *Config) Validate() error {
	var problems []string
	if c.Data.Segments == "" {
		problems = append(problems, "data.segments is required")
	}
	if c.Data.Grid == "" {
		problems = append(problems, "data.grid is required")
	}
	if c.Data.SourceProj == "" {
		problems = append(problems, "data.source_proj is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be > 0 and <= 65535")
	}
	if c.Server.RateLimit < 0 {
		problems = append(problems, "server.rate_limit must be >= 0")
	}
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		problems = append(problems, "server.burst must be >= 1 when rate limiting")
	}
	if c.Cache.MaxEntries < 1 {
		problems = append(problems, "cache.max_entries must be >= 1")
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 24 {
		problems = append(problems, "map.zoom must be between 0 and 24")
	}
	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
