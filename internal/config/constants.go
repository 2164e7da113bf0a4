package config

import (
	"time"

	"healthstats/pkg/contracts"
)

// Application constants
const (
	AppName    = "healthstats"
	EnvPrefix  = "HEALTHSTATS"
	AppVersion = contracts.Version

	// Currency conversion applied to USD-denominated sources
	DefaultUSDToEURRate = 0.97

	// Reporting date of the COVID excess deaths snapshot
	DefaultCovidSnapshotDay = "2024-02-15"

	// Year window of the GDP and healthcare join. Zero leaves a side open.
	DefaultGDPHealthcareFromYear = 2000
	DefaultGDPHealthcareToYear   = 2021

	// Concurrent per-year file writes
	DefaultWriteConcurrency = 4

	// File Paths (relative to the working directory)
	DefaultDatasetsDir = "datasets"
	DefaultLogsDir     = "logs"

	// Server
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRateLimit       = 100
	DefaultBurstSize       = 50
)

// DefaultCountryAliases reconciles GDP country names with the names used by
// the life expectancy dataset.
func DefaultCountryAliases() map[string]string {
	return map[string]string{
		"Macedonia, FYR":  "North Macedonia",
		"Russia":          "Russian Federation",
		"Slovak Republic": "Slovakia",
		"Czech Republic":  "Czechia",
	}
}
