package config

import (
	"strings"
	"sync"
	"time"
)

// ReportStoreConfig points at the PostgREST endpoint that holds career reports.
type ReportStoreConfig struct {
	BaseURL string
	APIKey  string
	Table   string
	Timeout time.Duration
}

var (
	reportStoreConfig *ReportStoreConfig
	reportStoreOnce   sync.Once
)

func LoadReportStoreConfig() *ReportStoreConfig {
	reportStoreOnce.Do(func() {
		v := env()
		v.SetDefault("REPORT_STORE_TABLE", "career_intelligence_reports")
		v.SetDefault("REPORT_STORE_TIMEOUT", "30s")

		reportStoreConfig = &ReportStoreConfig{
			BaseURL: strings.TrimRight(v.GetString("REPORT_STORE_URL"), "/"),
			APIKey:  v.GetString("REPORT_STORE_KEY"),
			Table:   v.GetString("REPORT_STORE_TABLE"),
			Timeout: v.GetDuration("REPORT_STORE_TIMEOUT"),
		}
	})
	return reportStoreConfig
}
