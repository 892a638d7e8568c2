package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Veraticus/spends/internal/common"
)

var validate = validator.New()

// Config is the typed view of the application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// LLMConfig selects and tunes the text generation backend.
type LLMConfig struct {
	Provider     string        `mapstructure:"provider" validate:"oneof=none gemini openai anthropic"`
	Model        string        `mapstructure:"model"`
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	ImageTimeout time.Duration `mapstructure:"image_timeout" validate:"gt=0"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout" validate:"gt=0"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
	RateLimit    int           `mapstructure:"rate_limit" validate:"gte=0"`
	MaxTokens    int           `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature  float64       `mapstructure:"temperature" validate:"gte=0,lte=2"`
}

// ProcessingConfig tunes the batch orchestrator and message source.
type ProcessingConfig struct {
	MessagesFile string        `mapstructure:"messages_file"`
	Location     string        `mapstructure:"location"`
	ChunkSize    int           `mapstructure:"chunk_size" validate:"gte=1"`
	MessageLimit int           `mapstructure:"message_limit" validate:"gte=1"`
	MinJitter    time.Duration `mapstructure:"min_jitter" validate:"gte=0"`
	MaxJitter    time.Duration `mapstructure:"max_jitter" validate:"gtefield=MinJitter"`
	ChunkPause   time.Duration `mapstructure:"chunk_pause" validate:"gte=0"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// MetricsConfig configures Prometheus export for CLI runs.
type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "$HOME/.local/share/spends/spends.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("llm.provider", "none")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.image_timeout", 60*time.Second)
	v.SetDefault("llm.ready_timeout", 30*time.Second)
	v.SetDefault("llm.cache_ttl", time.Hour)
	v.SetDefault("llm.rate_limit", 60)
	v.SetDefault("llm.max_tokens", 512)
	v.SetDefault("llm.temperature", 0.0)

	v.SetDefault("processing.messages_file", "")
	v.SetDefault("processing.location", "")
	v.SetDefault("processing.chunk_size", 10)
	v.SetDefault("processing.message_limit", 100)
	v.SetDefault("processing.min_jitter", 50*time.Millisecond)
	v.SetDefault("processing.max_jitter", 200*time.Millisecond)
	v.SetDefault("processing.chunk_pause", 200*time.Millisecond)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("metrics.textfile", "")
}

// Load reads v into a validated Config. Paths are expanded.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	if cfg.LLM.Provider != "none" && cfg.LLM.Provider != "openai" && cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("%w: llm.api_key is required for provider %s", common.ErrMissingConfig, cfg.LLM.Provider)
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Processing.MessagesFile = ExpandPath(cfg.Processing.MessagesFile)
	cfg.Metrics.TextfilePath = ExpandPath(cfg.Metrics.TextfilePath)

	return &cfg, nil
}

// TimeLocation resolves the configured zone, defaulting to the local zone.
func (p ProcessingConfig) TimeLocation() (*time.Location, error) {
	if p.Location == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(p.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: processing.location: %w", common.ErrInvalidConfig, err)
	}
	return loc, nil
}
