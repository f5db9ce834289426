package config

import (
	"strings"
	"sync"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ScoringConfig selects the scoring backend. The OpenAI-compatible fields
// also cover OpenRouter, which is the default base URL.
type ScoringConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

var (
	scoringConfig *ScoringConfig
	scoringOnce   sync.Once
)

func LoadScoringConfig() *ScoringConfig {
	scoringOnce.Do(func() {
		v := env()
		v.SetDefault("SCORING_PROVIDER", ProviderOpenAI)
		v.SetDefault("OPENAI_BASE_URL", "https://openrouter.ai/api/v1")
		v.SetDefault("SCORING_MODEL", "openai/gpt-4o-mini")
		v.SetDefault("SCORING_TIMEOUT", "90s")

		apiKey := v.GetString("OPENAI_API_KEY")
		if apiKey == "" {
			apiKey = v.GetString("OPENROUTER_API_KEY")
		}

		scoringConfig = &ScoringConfig{
			Provider: strings.ToLower(strings.TrimSpace(v.GetString("SCORING_PROVIDER"))),
			APIKey:   apiKey,
			BaseURL:  strings.TrimRight(v.GetString("OPENAI_BASE_URL"), "/"),
			Model:    v.GetString("SCORING_MODEL"),
			Timeout:  v.GetDuration("SCORING_TIMEOUT"),
		}
	})
	return scoringConfig
}
