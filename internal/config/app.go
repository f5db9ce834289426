package config

import (
	"log"
	"sync"
)

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	BaseURL  string
	LogJSON  bool
	LogDebug bool
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		v := env()
		v.SetDefault("APP_NAME", "career-intel")
		v.SetDefault("APP_PORT", ":8080")
		v.SetDefault("LOG_JSON", false)
		v.SetDefault("LOG_DEBUG", false)

		appEnv := v.GetString("APP_ENV")
		if appEnv == "" {
			appEnv = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", appEnv)
		}
		appConfig = &AppConfig{
			Name:     v.GetString("APP_NAME"),
			Env:      appEnv,
			Port:     v.GetString("APP_PORT"),
			BaseURL:  v.GetString("APP_URL"),
			LogJSON:  v.GetBool("LOG_JSON"),
			LogDebug: v.GetBool("LOG_DEBUG"),
		}
	})
	return appConfig
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
