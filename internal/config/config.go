package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/liliang-cn/sitechat/internal/domain"
	"github.com/spf13/viper"
)

// Config holds all configuration for SiteChat
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	CORS      CORSConfig      `mapstructure:"cors"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Booking   BookingConfig   `mapstructure:"booking"`
	Context   ContextConfig   `mapstructure:"context"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// AppConfig holds process-level settings
type AppConfig struct {
	Env string `mapstructure:"env"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CORSConfig holds the origin allow-list for the chat endpoint
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// LLMConfig holds completion provider configuration
type LLMConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// BookingConfig holds the booking webhook configuration.
// An empty WebhookURL disables the booking path.
type BookingConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Timezone   string        `mapstructure:"timezone"`
}

// ContextConfig points at the static site-context text file
type ContextConfig struct {
	Path     string `mapstructure:"path"`
	MaxBytes int    `mapstructure:"max_bytes"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	RequestsPerHour int  `mapstructure:"requests_per_hour"`
	Burst           int  `mapstructure:"burst"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SITECHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names used by the serverless deployments this service replaces.
	if err := v.BindEnv("llm.api_key", "SITECHAT_LLM_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}
	if err := v.BindEnv("booking.webhook_url", "SITECHAT_BOOKING_WEBHOOK_URL", "BOOKING_WEBHOOK_URL", "N8N_WEBHOOK_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORS.AllowOrigins = splitOrigins(cfg.CORS.AllowOrigins)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gpt-4.1-mini")
	v.SetDefault("llm.timeout", 45*time.Second)

	v.SetDefault("booking.webhook_url", "")
	v.SetDefault("booking.timeout", 30*time.Second)
	v.SetDefault("booking.timezone", "Europe/Madrid")

	v.SetDefault("context.path", "./data/site_context.txt")
	v.SetDefault("context.max_bytes", 64*1024)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_hour", 120)
	v.SetDefault("rate_limit.burst", 10)
}

// splitOrigins accepts both list values and a single comma-separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

// Validate reports settings the service cannot work without.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("%w: completion provider API key is not set", domain.ErrConfiguration)
	}
	return nil
}

// BookingEnabled reports whether booking intents are forwarded.
func (c *Config) BookingEnabled() bool {
	return c.Booking.WebhookURL != ""
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
