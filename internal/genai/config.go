package genai

import (
	"strings"
	"time"

	"trip-planner/internal/common/config"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

var defaultBaseURLs = map[string]string{
	ProviderGemini: "https://generativelanguage.googleapis.com/v1beta/openai",
	ProviderOpenAI: "https://api.openai.com/v1",
	ProviderOllama: "http://localhost:11434",
}

// Config holds the adapter settings. The model is fixed per deployment.
type Config struct {
	Provider       string
	BaseURL        string
	APIKey         string
	Model          string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Temperature    float32
	MaxTokens      int
}

// ConfigFromApp converts the loaded application config.
func ConfigFromApp(c config.GenAIConfig) Config {
	return Config{
		Provider:       c.Provider,
		BaseURL:        c.BaseURL,
		APIKey:         c.APIKey,
		Model:          c.Model,
		Timeout:        config.GetDuration(c.Timeout),
		MaxRetries:     c.MaxRetries,
		InitialBackoff: config.GetDuration(c.InitialBackoff),
		MaxBackoff:     config.GetDuration(c.MaxBackoff),
		Temperature:    c.Temperature,
		MaxTokens:      c.MaxTokens,
	}
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return defaultBaseURLs[c.Provider]
}
