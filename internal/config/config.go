package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Summarize SummarizeConfig `yaml:"summarize" mapstructure:"summarize"`
	Rescore   RescoreConfig   `yaml:"rescore" mapstructure:"rescore"`
	QC        QCConfig        `yaml:"qc" mapstructure:"qc"`
	Repair    RepairConfig    `yaml:"repair" mapstructure:"repair"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SearchConfig holds the external HTML search interface settings.
// An empty base URL disables live search; discovery then relies on seeds.
type SearchConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// FetchConfig configures posting fetches and the politeness limiter.
type FetchConfig struct {
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Concurrency    int    `yaml:"concurrency" mapstructure:"concurrency"`
	RateIntervalMS int    `yaml:"rate_interval_ms" mapstructure:"rate_interval_ms"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	ProbeTimeoutMS int    `yaml:"probe_timeout_ms" mapstructure:"probe_timeout_ms"`
}

// Timeout returns the fetch timeout as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// RateInterval returns the minimum spacing between request starts.
func (f FetchConfig) RateInterval() time.Duration {
	return time.Duration(f.RateIntervalMS) * time.Millisecond
}

// ProbeTimeout returns the QC reachability probe timeout.
func (f FetchConfig) ProbeTimeout() time.Duration {
	return time.Duration(f.ProbeTimeoutMS) * time.Millisecond
}

// DiscoveryConfig configures search-query construction and seeding.
type DiscoveryConfig struct {
	MaxResults int      `yaml:"max_results" mapstructure:"max_results"`
	SeedURLs   []string `yaml:"seed_urls" mapstructure:"seed_urls"`
}

// SummarizeConfig configures the hosted summarizer. An empty key selects
// the local extractive fallback.
type SummarizeConfig struct {
	AnthropicKey string `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	Model        string `yaml:"model" mapstructure:"model"`
	MaxSentences int    `yaml:"max_sentences" mapstructure:"max_sentences"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the hosted summarizer call deadline.
func (s SummarizeConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// RescoreConfig configures the optional semantic augmentation service.
// An empty endpoint is equivalent to the identity rescorer.
type RescoreConfig struct {
	Endpoint    string `yaml:"endpoint" mapstructure:"endpoint"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// QCConfig configures the QC engine.
type QCConfig struct {
	TiersPath         string  `yaml:"tiers_path" mapstructure:"tiers_path"`
	AutoShipThreshold float64 `yaml:"auto_ship_threshold" mapstructure:"auto_ship_threshold"`
}

// RepairConfig configures the repair loop.
type RepairConfig struct {
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// ServerConfig configures the HTTP API server.
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
	v.SetEnvPrefix("JOBSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "jobscout.db")
	v.SetDefault("search.timeout_secs", 15)
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.concurrency", 3)
	v.SetDefault("fetch.rate_interval_ms", 1000)
	v.SetDefault("fetch.probe_timeout_ms", 6000)
	v.SetDefault("fetch.user_agent", "jobscout/1.0")
	v.SetDefault("discovery.max_results", 25)
	v.SetDefault("discovery.seed_urls", []string{})
	// Explicit bind: AutomaticEnv alone does not surface env-only keys
	// during Unmarshal. The env value is a comma-separated list.
	_ = v.BindEnv("discovery.seed_urls")
	v.SetDefault("summarize.model", "claude-haiku-4-5-20251001")
	v.SetDefault("summarize.max_sentences", 3)
	v.SetDefault("summarize.timeout_secs", 10)
	v.SetDefault("rescore.timeout_secs", 10)
	v.SetDefault("qc.auto_ship_threshold", 0.82)
	v.SetDefault("repair.max_attempts", 2)
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
