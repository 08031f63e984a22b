// internal/handlers/generate-plan/config.go
package generateplan

import "time"

type Config struct {
	// Timeout bounds the whole pipeline for one request, retries included.
	Timeout time.Duration
	// StoreTimeout bounds saving the result when the result store is enabled.
	StoreTimeout time.Duration
	// ResultsPath is where the results view is mounted.
	ResultsPath string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		StoreTimeout: 3 * time.Second,
		ResultsPath:  "/results",
	}
}
