package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Relay    RelayConfig    `mapstructure:"relay"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Client   ClientConfig   `mapstructure:"client"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port" validate:"gt=0,lt=65536"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout" validate:"gte=0"`
}

// RelayConfig drives the proxy's upstream call
type RelayConfig struct {
	Provider        string          `mapstructure:"provider" validate:"oneof=openai deepseek anthropic gemini ollama"`
	Model           string          `mapstructure:"model"`
	Brand           string          `mapstructure:"brand" validate:"required"`
	MaxTokens       int             `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature     float64         `mapstructure:"temperature" validate:"gte=0,lte=2"`
	UpstreamTimeout time.Duration   `mapstructure:"upstream_timeout" validate:"gte=0"`
	OpenAI          ProviderConfig  `mapstructure:"openai"`
	DeepSeek        ProviderConfig  `mapstructure:"deepseek"`
	Anthropic       ProviderConfig  `mapstructure:"anthropic"`
	Gemini          GeminiConfig    `mapstructure:"gemini"`
	Ollama          OllamaConfig    `mapstructure:"ollama"`
	Cache           CacheConfig     `mapstructure:"cache"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// ProviderConfig covers the HTTP chat providers
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Host  string `mapstructure:"host"`
	Model string `mapstructure:"model"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" validate:"gte=0"`
	Burst             int  `mapstructure:"burst" validate:"gte=0"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig points at the Postgres instance backing the postgres store
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns" validate:"gte=0"`
	MinConns int32  `mapstructure:"min_conns" validate:"gte=0"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// ClientConfig configures the command-line client
type ClientConfig struct {
	RelayEndpoint  string        `mapstructure:"relay_endpoint"`
	CatalogSource  string        `mapstructure:"catalog_source" validate:"required"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
	Profile        string        `mapstructure:"profile" validate:"required"`
	Store          StoreConfig   `mapstructure:"store"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=memory bolt sqlite redis postgres"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format" validate:"oneof=console json"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

var validate = validator.New()

// Validate checks the loaded values against their constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !c.Redis.Enabled && (c.Relay.Cache.Enabled || c.Relay.RateLimit.Enabled) {
		return fmt.Errorf("invalid configuration: relay cache and rate limit require redis.enabled")
	}
	if c.Client.Store.Backend == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("invalid configuration: client store backend redis requires redis.enabled")
	}
	return nil
}

// Load reads configuration from the file named by CONFIG_PATH and environment variables
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from the given YAML file and environment variables.
// A missing file is not an error; defaults and environment apply.
func LoadFile(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.middleware_timeout", "0s")

	// Relay
	v.SetDefault("relay.provider", "openai")
	v.SetDefault("relay.brand", "L'Oréal")
	v.SetDefault("relay.max_tokens", 800)
	v.SetDefault("relay.temperature", 0.7)
	v.SetDefault("relay.upstream_timeout", "0s")
	v.SetDefault("relay.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("relay.openai.model", "gpt-4o")
	v.SetDefault("relay.deepseek.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("relay.deepseek.model", "deepseek-chat")
	v.SetDefault("relay.anthropic.base_url", "https://api.anthropic.com/v1")
	v.SetDefault("relay.anthropic.model", "claude-3-5-sonnet-20241022")
	v.SetDefault("relay.gemini.model", "gemini-2.5-flash")
	v.SetDefault("relay.ollama.model", "llama3")
	v.SetDefault("relay.cache.enabled", false)
	v.SetDefault("relay.cache.ttl", "10m")
	v.SetDefault("relay.rate_limit.enabled", false)
	v.SetDefault("relay.rate_limit.requests_per_minute", 30)
	v.SetDefault("relay.rate_limit.burst", 5)

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "advisor")
	v.SetDefault("database.database", "advisor")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)

	// Client
	v.SetDefault("client.relay_endpoint", "http://localhost:8080/")
	v.SetDefault("client.catalog_source", "products.json")
	v.SetDefault("client.request_timeout", "0s")
	v.SetDefault("client.profile", "default")
	v.SetDefault("client.store.backend", "bolt")
	v.SetDefault("client.store.path", "./data/client.bolt")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_age", "168h") // 7 days
	v.SetDefault("logging.rotation_time", "24h")
}

func bindEnvVars(v *viper.Viper) {
	// Database
	v.BindEnv("database.password", "POSTGRES_PASSWORD")

	// Redis
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// LLM API Keys
	v.BindEnv("relay.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("relay.deepseek.api_key", "DEEPSEEK_API_KEY")
	v.BindEnv("relay.anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("relay.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("relay.ollama.host", "OLLAMA_HOST")
	v.BindEnv("relay.provider", "RELAY_PROVIDER")

	// Client
	v.BindEnv("client.relay_endpoint", "RELAY_ENDPOINT")
	v.BindEnv("client.catalog_source", "CATALOG_SOURCE")
}
