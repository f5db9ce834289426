package config

import (
	"fmt"
	"sync"
)

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string

	// AutoMigrate creates the application tables; off by default since the
	// application store is usually owned by another service.
	AutoMigrate bool
}

var (
	dbConfig *DBConfig
	dbOnce   sync.Once
)

func LoadDBConfig() *DBConfig {
	dbOnce.Do(func() {
		v := env()
		v.SetDefault("DB_PORT", "5432")
		v.SetDefault("DB_SSLMODE", "disable")
		v.SetDefault("DB_TIMEZONE", "Asia/Jakarta")
		v.SetDefault("DB_AUTO_MIGRATE", false)

		dbConfig = &DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			TimeZone: v.GetString("DB_TIMEZONE"),

			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		}
	})
	return dbConfig
}

// DSN renders the postgres connection string for gorm.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
		c.TimeZone,
	)
}
