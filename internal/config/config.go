// Package config loads Claim Auditor's configuration and initializes the
// global structured logger.
package config

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	FinancialData FinancialDataConfig `yaml:"financial_data" mapstructure:"financial_data" json:"financial_data"`
	Extraction    ExtractionConfig    `yaml:"extraction" mapstructure:"extraction" json:"extraction"`
	Store         StoreConfig         `yaml:"store" mapstructure:"store" json:"store"`
	Verification  VerificationConfig  `yaml:"verification" mapstructure:"verification" json:"verification"`
	Pipeline      PipelineConfig      `yaml:"pipeline" mapstructure:"pipeline" json:"pipeline"`
	Retry         RetryConfig         `yaml:"retry" mapstructure:"retry" json:"retry"`
	Log           LogConfig           `yaml:"log" mapstructure:"log" json:"log"`
}

// FinancialDataConfig holds the upstream financial-data provider settings
// (spec §6 "Upstream financial-data source").
type FinancialDataConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key" json:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url" json:"base_url"`
	// CacheDir and FallbackDir are {root}/cache and {root}/transcripts for
	// the response cache and the filesystem transcript fallback (spec §4.6, §6).
	CacheDir    string `yaml:"cache_dir" mapstructure:"cache_dir" json:"cache_dir"`
	FallbackDir string `yaml:"fallback_dir" mapstructure:"fallback_dir" json:"fallback_dir"`
}

// ExtractionConfig holds the structured-extraction service settings (spec §4.7, §6).
type ExtractionConfig struct {
	APIKey                 string `yaml:"api_key" mapstructure:"api_key" json:"api_key"`
	Model                  string `yaml:"model" mapstructure:"model" json:"model"`
	MaxClaimsPerTranscript int    `yaml:"max_claims_per_transcript" mapstructure:"max_claims_per_transcript" json:"max_claims_per_transcript"`
}

// StoreConfig configures the persistent store backend (spec §6 "Persistent
// store"). DatabaseURL selects the driver: a "postgres://" DSN uses
// PostgresStore; anything else (a bare path or "file:" DSN) uses SQLiteStore.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url" json:"database_url"`
}

// VerificationConfig holds the verdict tolerance thresholds (spec §4.3, §6),
// threaded into verdict.Tolerances.
type VerificationConfig struct {
	VerificationTolerance float64 `yaml:"verification_tolerance" mapstructure:"verification_tolerance" json:"verification_tolerance"`
	ApproximateTolerance  float64 `yaml:"approximate_tolerance" mapstructure:"approximate_tolerance" json:"approximate_tolerance"`
	MisleadingThreshold   float64 `yaml:"misleading_threshold" mapstructure:"misleading_threshold" json:"misleading_threshold"`
}

// PipelineConfig configures orchestrator behavior (spec §5, §6).
type PipelineConfig struct {
	TargetTickers  []string `yaml:"target_tickers" mapstructure:"target_tickers" json:"target_tickers"`
	TargetQuarters []string `yaml:"target_quarters" mapstructure:"target_quarters" json:"target_quarters"`
	MaxWorkers     int      `yaml:"max_workers" mapstructure:"max_workers" json:"max_workers"`
}

// RetryConfig configures retry/backoff and circuit-breaker behavior for
// external calls (spec §6).
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts" json:"max_attempts"`
	BaseDelayMS int `yaml:"base_delay_ms" mapstructure:"base_delay_ms" json:"base_delay_ms"`
	// CircuitFailureThreshold/CircuitResetTimeoutSecs tune the per-endpoint
	// circuit breaker guarding the upstream financial-data provider.
	CircuitFailureThreshold int `yaml:"circuit_failure_threshold" mapstructure:"circuit_failure_threshold" json:"circuit_failure_threshold"`
	CircuitResetTimeoutSecs int `yaml:"circuit_reset_timeout_secs" mapstructure:"circuit_reset_timeout_secs" json:"circuit_reset_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" json:"level"`
	Format string `yaml:"format" mapstructure:"format" json:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AUDITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The API keys have no default, so AutomaticEnv alone would not surface
	// them to Unmarshal; bind them explicitly.
	_ = v.BindEnv("financial_data.api_key")
	_ = v.BindEnv("extraction.api_key")

	// Defaults
	v.SetDefault("financial_data.base_url", "https://financialmodelingprep.com/api/v3")
	v.SetDefault("financial_data.cache_dir", "./data/cache")
	v.SetDefault("financial_data.fallback_dir", "./data/transcripts")
	v.SetDefault("extraction.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("extraction.max_claims_per_transcript", 50)
	v.SetDefault("store.database_url", "./data/auditor.db")
	v.SetDefault("verification.verification_tolerance", 0.02)
	v.SetDefault("verification.approximate_tolerance", 0.10)
	v.SetDefault("verification.misleading_threshold", 0.25)
	v.SetDefault("pipeline.max_workers", 4)
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.base_delay_ms", 250)
	v.SetDefault("retry.circuit_failure_threshold", 5)
	v.SetDefault("retry.circuit_reset_timeout_secs", 30)
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

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate enforces spec §7's "Configuration error" kind: missing required
// keys are fatal at startup, not a per-record skip.
func (c *Config) validate() error {
	if c.FinancialData.APIKey == "" {
		return eris.New("config: financial_data.api_key is required")
	}
	if c.Extraction.APIKey == "" {
		return eris.New("config: extraction.api_key is required")
	}
	return nil
}

// Redacted returns c marshaled to JSON with both API keys blanked out, safe
// to log at startup for troubleshooting (spec §6 "never log credentials").
func (c *Config) Redacted() (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", eris.Wrap(err, "config: marshal for redaction")
	}

	redacted, err := sjson.SetBytes(raw, "financial_data.api_key", "***")
	if err != nil {
		return "", eris.Wrap(err, "config: redact financial_data.api_key")
	}
	redacted, err = sjson.SetBytes(redacted, "extraction.api_key", "***")
	if err != nil {
		return "", eris.Wrap(err, "config: redact extraction.api_key")
	}

	return string(redacted), nil
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
