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
	Scrape ScrapeConfig `yaml:"scrape" mapstructure:"scrape"`
	Render RenderConfig `yaml:"render" mapstructure:"render"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ScrapeConfig configures the extraction run.
type ScrapeConfig struct {
	MaxPages     int      `yaml:"max_pages" mapstructure:"max_pages"`
	DelayMin     float64  `yaml:"delay_min" mapstructure:"delay_min"` // seconds
	DelayMax     float64  `yaml:"delay_max" mapstructure:"delay_max"` // seconds
	Concurrency  int      `yaml:"concurrency" mapstructure:"concurrency"`
	ListName     string   `yaml:"list_name" mapstructure:"list_name"`
	Out          string   `yaml:"out" mapstructure:"out"`
	ProfilesFile string   `yaml:"profiles_file" mapstructure:"profiles_file"`
	DebugDir     string   `yaml:"debug_dir" mapstructure:"debug_dir"`
	MaxNameLen   int      `yaml:"max_name_len" mapstructure:"max_name_len"`
	DenyNames    []string `yaml:"deny_names" mapstructure:"deny_names"`
}

// RenderConfig configures the page-rendering backends.
type RenderConfig struct {
	// Mode selects the backend: auto (static with chrome fallback),
	// static, or chrome.
	Mode        string  `yaml:"mode" mapstructure:"mode"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PerHostRate float64 `yaml:"per_host_rate" mapstructure:"per_host_rate"`
}

// ServerConfig configures the scrape-as-a-service HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("scrape.max_pages", 3)
	v.SetDefault("scrape.delay_min", 0.8)
	v.SetDefault("scrape.delay_max", 1.6)
	v.SetDefault("scrape.concurrency", 1)
	v.SetDefault("scrape.list_name", "Default")
	v.SetDefault("scrape.out", "leads.json")
	v.SetDefault("scrape.max_name_len", 120)
	v.SetDefault("render.mode", "auto")
	v.SetDefault("render.timeout_secs", 30)
	v.SetDefault("render.per_host_rate", 2.0)
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

	return &cfg, nil
}

// Validate rejects configurations that would produce misleading partial
// output. Runs at startup, before any navigation.
func (c *Config) Validate() error {
	if c.Scrape.MaxPages <= 0 {
		return eris.Errorf("config: scrape.max_pages must be positive, got %d", c.Scrape.MaxPages)
	}
	if c.Scrape.DelayMin < 0 {
		return eris.Errorf("config: scrape.delay_min must be non-negative, got %v", c.Scrape.DelayMin)
	}
	if c.Scrape.DelayMax < c.Scrape.DelayMin {
		return eris.Errorf("config: scrape.delay_max (%v) must be >= scrape.delay_min (%v)",
			c.Scrape.DelayMax, c.Scrape.DelayMin)
	}
	if c.Scrape.Concurrency <= 0 {
		return eris.Errorf("config: scrape.concurrency must be positive, got %d", c.Scrape.Concurrency)
	}
	switch c.Render.Mode {
	case "auto", "static", "chrome":
	default:
		return eris.Errorf("config: render.mode must be auto, static, or chrome, got %q", c.Render.Mode)
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
