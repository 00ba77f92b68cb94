package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/luca-assistant/")
	v.AddConfigPath("$HOME/.luca-assistant")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("LUCA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Assistant defaults
	v.SetDefault("assistant.language", "tn")
	v.SetDefault("assistant.continuous", false)
	v.SetDefault("assistant.default_city", "Tunis")
	v.SetDefault("assistant.collaborator_timeout", "10s")

	// Wake word defaults
	v.SetDefault("wake.confidence", 0.7)

	// NLU defaults
	v.SetDefault("nlu.threshold", 0.5)
	v.SetDefault("nlu.cross_language", true)
	v.SetDefault("nlu.fallback_provider", "")
	v.SetDefault("nlu.fallback_timeout", "10s")

	// Memory defaults
	v.SetDefault("memory.store", "memory")
	v.SetDefault("memory.persistence", true)
	v.SetDefault("memory.max_short_term", 50)
	v.SetDefault("memory.cleanup_days", 30)
	v.SetDefault("memory.cleanup_frequency", "1h")
	v.SetDefault("memory.sqlite_path", "luca_memory.db")
	v.SetDefault("memory.mysql_dsn", "user:password@tcp(localhost:3306)/luca")
	v.SetDefault("memory.redis_addr", "localhost:6379")
	v.SetDefault("memory.redis_password", "")
	v.SetDefault("memory.redis_db", 0)

	// Email defaults
	v.SetDefault("email.provider", "memory")
	v.SetDefault("email.gmail_credentials", "credentials.json")
	v.SetDefault("email.smtp_addr", "smtp.gmail.com:587")
	v.SetDefault("email.smtp_from", "")
	v.SetDefault("email.smtp_username", "")
	v.SetDefault("email.smtp_password", "")

	// Weather defaults
	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.base_url", "")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.2)
	v.SetDefault("bedrock.top_p", 0.9)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.2)
	v.SetDefault("gemini.top_p", 0.9)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.2)
	v.SetDefault("openai.top_p", 0.9)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
