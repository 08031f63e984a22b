// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	GenAI         GenAIConfig         `mapstructure:"genai"`
	Prompt        PromptConfig        `mapstructure:"prompt"`
	Transport     TransportConfig     `mapstructure:"transport"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Plan Pipeline Configuration ---

// GenAIConfig holds the external generative model settings.
// The model is fixed per deployment.
type GenAIConfig struct {
	Provider       string  `mapstructure:"provider"` // gemini | openai | ollama
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	Timeout        int     `mapstructure:"timeout"`         // milliseconds
	MaxRetries     int     `mapstructure:"max_retries"`     // extra attempts, 0 = single attempt
	InitialBackoff int     `mapstructure:"initial_backoff"` // milliseconds
	MaxBackoff     int     `mapstructure:"max_backoff"`     // milliseconds
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
}

// RequiresAPIKey reports whether the provider is a hosted API that needs a credential.
func (g GenAIConfig) RequiresAPIKey() bool {
	return g.Provider != "ollama"
}

// CallBudget is the longest one plan request can spend on the model, retries and backoff included.
func (g GenAIConfig) CallBudget() time.Duration {
	retries := time.Duration(g.MaxRetries)
	return GetDuration(g.Timeout)*(retries+1) + GetDuration(g.MaxBackoff)*retries
}

// PromptConfig selects the instruction template variant.
type PromptConfig struct {
	Variant      string `mapstructure:"variant"`
	RegistryPath string `mapstructure:"registry_path"`
	WatchChanges bool   `mapstructure:"watch_changes"`
}

// TransportConfig controls how results travel to the results view.
type TransportConfig struct {
	Mode      string `mapstructure:"mode"` // url | redis
	TTL       int    `mapstructure:"ttl"`  // milliseconds, redis mode only
	KeyPrefix string `mapstructure:"key_prefix"`
}

// UsesStore reports whether results are also kept server-side.
func (t TransportConfig) UsesStore() bool {
	return t.Mode == "redis"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ObservabilityConfig holds metrics and tracing settings.
type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}
