package config

import (
	"sync"
	"time"
)

// BackendConfig holds the origins of the three remote collaborators.
type BackendConfig struct {
	PrimaryURL         string
	MatchURL           string
	RatingURL          string
	MatchTopN          int
	RatingBypassHeader string
	Timeout            time.Duration
}

var (
	backendConfig *BackendConfig
	backendOnce   sync.Once
)

func LoadBackendConfig() *BackendConfig {
	backendOnce.Do(func() {
		backendConfig = &BackendConfig{
			PrimaryURL:         getEnv("PRIMARY_API_URL", "http://localhost:8080"),
			MatchURL:           getEnv("MATCH_API_URL", "http://localhost:8000"),
			RatingURL:          getEnv("RATING_API_URL", "http://localhost:8000"),
			MatchTopN:          getEnvInt("MATCH_TOP_N", 5),
			RatingBypassHeader: getEnv("RATING_BYPASS_HEADER", "ngrok-skip-browser-warning"),
			Timeout:            time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		}
	})
	return backendConfig
}
