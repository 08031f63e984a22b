// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// writeTimeoutMargin leaves the plan handler time to write its error response after the model budget runs out.
const writeTimeoutMargin = 5 * time.Second

var (
	validProviders = map[string]bool{"gemini": true, "openai": true, "ollama": true}
	validModes     = map[string]bool{"url": true, "redis": true}
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml and applies env overrides.
// A missing model credential is a load error so the process fails at startup.
func Load() (*Config, error) {
	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	return load(env, "./configs", "../../configs", ".")
}

// LoadEnvironment reads config.yaml from dir and merges config.<env>.yaml over it.
func LoadEnvironment(dir, env string) (*Config, error) {
	return load(env, dir)
}

func load(env string, dirs ...string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// the per-environment file is optional, a broken one is not
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading %s config: %w", env, err)
		}
	}

	return finalize(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(v)
}

func finalize(v *viper.Viper) (*Config, error) {
	// set through viper so an explicit zero in the file is kept
	v.SetDefault("genai.temperature", 0.7)

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// env overrides first so defaults only fill what is still empty
	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or any parent up to the project root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				fmt.Printf("Loaded .env from: %s\n", path)
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills values still empty after expansion from well-known env vars.
func overrideEmptyConfig(cfg *Config) {
	if cfg.GenAI.APIKey == "" {
		for _, name := range []string{"GOOGLE_API_KEY", "GENAI_API_KEY"} {
			if val := os.Getenv(name); val != "" {
				cfg.GenAI.APIKey = val
				break
			}
		}
	}
	if cfg.GenAI.Model == "" {
		if val := os.Getenv("GENAI_MODEL"); val != "" {
			cfg.GenAI.Model = val
		}
	}
	if cfg.Database.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Database.Redis.Address = val
		}
	}
	if val := os.Getenv("PORT"); val != "" && cfg.Server.Port == 0 {
		var port int
		if _, err := fmt.Sscanf(val, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "trip-planner"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	// Server defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 45000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	// GenAI defaults
	if cfg.GenAI.Provider == "" {
		cfg.GenAI.Provider = "gemini"
	}
	if cfg.GenAI.Model == "" {
		switch cfg.GenAI.Provider {
		case "ollama":
			cfg.GenAI.Model = "llama3"
		case "openai":
			cfg.GenAI.Model = "gpt-4o-mini"
		default:
			cfg.GenAI.Model = "gemini-1.5-flash-latest"
		}
	}
	if cfg.GenAI.Timeout == 0 {
		cfg.GenAI.Timeout = 30000
	}
	if cfg.GenAI.InitialBackoff == 0 {
		cfg.GenAI.InitialBackoff = 200
	}
	if cfg.GenAI.MaxBackoff == 0 {
		cfg.GenAI.MaxBackoff = 2000
	}
	if cfg.GenAI.MaxTokens == 0 {
		cfg.GenAI.MaxTokens = 2048
	}

	// Prompt defaults
	if cfg.Prompt.Variant == "" {
		cfg.Prompt.Variant = "compact"
	}

	// Transport defaults
	if cfg.Transport.Mode == "" {
		cfg.Transport.Mode = "url"
	}
	if cfg.Transport.TTL == 0 {
		cfg.Transport.TTL = 3600000
	}
	if cfg.Transport.KeyPrefix == "" {
		cfg.Transport.KeyPrefix = "plan:result:"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if !validProviders[cfg.GenAI.Provider] {
		return fmt.Errorf("genai.provider %q is not supported", cfg.GenAI.Provider)
	}
	if cfg.GenAI.RequiresAPIKey() && cfg.GenAI.APIKey == "" {
		return fmt.Errorf("genai.api_key is required (set GOOGLE_API_KEY)")
	}
	if cfg.GenAI.MaxRetries < 0 {
		return fmt.Errorf("genai.max_retries must not be negative")
	}
	if cfg.GenAI.Timeout < 0 {
		return fmt.Errorf("genai.timeout must not be negative")
	}

	if !validModes[cfg.Transport.Mode] {
		return fmt.Errorf("transport.mode %q is not supported", cfg.Transport.Mode)
	}
	if cfg.Transport.UsesStore() && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when transport.mode is redis")
	}

	if budget := cfg.GenAI.CallBudget(); GetDuration(cfg.Server.WriteTimeout) < budget+writeTimeoutMargin {
		return fmt.Errorf("server.write_timeout %s must exceed the model call budget %s by at least %s",
			GetDuration(cfg.Server.WriteTimeout), budget, writeTimeoutMargin)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", cfg.Server.Port)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
