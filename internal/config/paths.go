package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Topic directories under the datasets root
const (
	GDPDir            = "gdp"
	HealthcareDir     = "healthcare"
	LifeExpectancyDir = "life-expectancy-population"
	CovidDir          = "covid"
	CombinedDir       = "combined"
)

// Paths contains every input and output location of the pipeline.
// This is the single source of truth for dataset file names.
type Paths struct {
	DatasetsDir string
	LogsDir     string

	GDPDir            string
	HealthcareDir     string
	LifeExpectancyDir string
	CovidDir          string
	CombinedDir       string

	// Per-year partition directories
	LifeExpectancyByYearDir string
	HealthcareByYearDir     string
	GDPHealthcareByYearDir  string

	// Raw sources
	LifeExpectancyWideCSV string
	GDPRawCSV             string
	HealthExpenditureTXT  string
	CovidExcessDeathsCSV  string

	// Outputs (GDPEuroCSV is also the GDP normalizer's input)
	LifeExpectancyCSV    string
	GDPEuroCSV           string
	GDPLifeExpectancyCSV string
	CovidSnapshotCSV     string
	WorkbookXLSX         string

	// Run bookkeeping
	RunManifestJSON string
	RunHistoryCSV   string
}

// NewPaths lays out the datasets tree under root
func NewPaths(root string) *Paths {
	gdpDir := filepath.Join(root, GDPDir)
	healthDir := filepath.Join(root, HealthcareDir)
	lifeDir := filepath.Join(root, LifeExpectancyDir)
	covidDir := filepath.Join(root, CovidDir)
	combinedDir := filepath.Join(root, CombinedDir)

	return &Paths{
		DatasetsDir: root,
		LogsDir:     DefaultLogsDir,

		GDPDir:            gdpDir,
		HealthcareDir:     healthDir,
		LifeExpectancyDir: lifeDir,
		CovidDir:          covidDir,
		CombinedDir:       combinedDir,

		LifeExpectancyByYearDir: filepath.Join(lifeDir, "by-years"),
		HealthcareByYearDir:     filepath.Join(healthDir, "with-life-expectancy-by-years"),
		GDPHealthcareByYearDir:  filepath.Join(gdpDir, "with-healthcare-by-years"),

		LifeExpectancyWideCSV: filepath.Join(lifeDir, "EU-life-expectancy-population-(1960-2023)-wide.csv"),
		GDPRawCSV:             filepath.Join(gdpDir, "GDP-per_capita-Dataset.csv"),
		HealthExpenditureTXT:  filepath.Join(healthDir, "healthcare-expenditure-per-capita.txt"),
		CovidExcessDeathsCSV:  filepath.Join(covidDir, "estimated-cumulative-excess-deaths-per-100000-people-during-covid-19.csv"),

		LifeExpectancyCSV:    filepath.Join(lifeDir, "EU-life-expectancy-population-(1960-2023).csv"),
		GDPEuroCSV:           filepath.Join(gdpDir, "GDP-per_capita-Dataset-euro.csv"),
		GDPLifeExpectancyCSV: filepath.Join(gdpDir, "merged-gdp-life_expectancy.csv"),
		CovidSnapshotCSV:     filepath.Join(covidDir, "covid-2024.csv"),
		WorkbookXLSX:         filepath.Join(combinedDir, "healthstats.xlsx"),

		RunManifestJSON: filepath.Join(combinedDir, "run-manifest.json"),
		RunHistoryCSV:   filepath.Join(combinedDir, "run-history.csv"),
	}
}

// PathsFromConfig resolves the paths section of cfg
func PathsFromConfig(cfg PathsConfig) *Paths {
	p := NewPaths(cfg.DatasetsDir)
	if cfg.LogsDir != "" {
		p.LogsDir = cfg.LogsDir
	}
	return p
}

// LifeExpectancyByYear returns the per-year life expectancy/population file
func (p *Paths) LifeExpectancyByYear(year int) string {
	return filepath.Join(p.LifeExpectancyByYearDir, fmt.Sprintf("life-expectancy-population-%d.csv", year))
}

// HealthcareByYear returns the per-year healthcare and life expectancy file
func (p *Paths) HealthcareByYear(year int) string {
	return filepath.Join(p.HealthcareByYearDir, fmt.Sprintf("life-expectancy-health-expenditure-%d.csv", year))
}

// GDPHealthcareByYear returns the per-year GDP and healthcare file
func (p *Paths) GDPHealthcareByYear(year int) string {
	return filepath.Join(p.GDPHealthcareByYearDir, fmt.Sprintf("gdp-healthcare-%d.csv", year))
}

// EnsureDirectories creates all output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.GDPDir,
		p.HealthcareDir,
		p.LifeExpectancyDir,
		p.CovidDir,
		p.CombinedDir,
		p.LifeExpectancyByYearDir,
		p.HealthcareByYearDir,
		p.GDPHealthcareByYearDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved dataset layout
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("datasets", p.DatasetsDir),
			slog.String("gdp", p.GDPDir),
			slog.String("healthcare", p.HealthcareDir),
			slog.String("life_expectancy", p.LifeExpectancyDir),
			slog.String("covid", p.CovidDir),
		),
		slog.Group("sources",
			slog.String("life_expectancy_wide", p.LifeExpectancyWideCSV),
			slog.String("health_expenditure", p.HealthExpenditureTXT),
			slog.String("gdp_euro", p.GDPEuroCSV),
			slog.String("covid", p.CovidExcessDeathsCSV),
		))
}
