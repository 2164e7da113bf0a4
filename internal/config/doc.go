// Package config provides centralized configuration for the healthstats
// pipeline and its read API.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//	1. Default values (Default)
//	2. A YAML file (explicit path, or config.yaml / configs/config.yaml)
//	3. Environment variables with the HEALTHSTATS_ prefix
//
// For example:
//
//	HEALTHSTATS_PATHS_DATASETS_DIR=/data/datasets
//	HEALTHSTATS_PIPELINE_USD_TO_EUR_RATE=0.92
//	HEALTHSTATS_PIPELINE_STRICT_SERIES=true
//	HEALTHSTATS_LOGGING_LEVEL=debug
//
// Country aliases contain commas ("Macedonia, FYR") and can only be set
// from the YAML file, where they extend the default alias table.
//
// # Path Management
//
// Paths resolves every input and output file of the datasets tree:
//
//	paths := config.NewPaths(cfg.Paths.DatasetsDir)
//	paths.LifeExpectancyByYear(2001)
//	// datasets/life-expectancy-population/by-years/life-expectancy-population-2001.csv
package config
