package config

import (
	"strings"
	"sync"

	"github.com/spf13/viper"
)

var (
	envReader *viper.Viper
	envOnce   sync.Once
)

// env returns the process-wide viper instance bound to the environment.
// godotenv has already populated os.Environ from .env by the time it runs.
func env() *viper.Viper {
	envOnce.Do(func() {
		envReader = viper.New()
		envReader.AutomaticEnv()
	})
	return envReader
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
