package config

import (
	"sync"
)

type GeminiConfig struct {
	APIKey string
	Model  string
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		v := env()
		v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")

		geminiConfig = &GeminiConfig{
			APIKey: v.GetString("GEMINI_API_KEY"),
			Model:  v.GetString("GEMINI_MODEL"),
		}
	})
	return geminiConfig
}
