package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DatasetsDir string `yaml:"datasets_dir" envconfig:"DATASETS_DIR" validate:"required"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// PipelineConfig tunes the transformation stages
type PipelineConfig struct {
	USDToEURRate          float64           `yaml:"usd_to_eur_rate" envconfig:"USD_TO_EUR_RATE" validate:"gt=0"`
	CountryAliases        map[string]string `yaml:"country_aliases" ignored:"true"`
	StrictSeries          bool              `yaml:"strict_series" envconfig:"STRICT_SERIES"`
	CovidSnapshotDay      string            `yaml:"covid_snapshot_day" envconfig:"COVID_SNAPSHOT_DAY" validate:"required,datetime=2006-01-02"`
	GDPHealthcareFromYear int               `yaml:"gdp_healthcare_from_year" envconfig:"GDP_HEALTHCARE_FROM_YEAR" validate:"gte=0"`
	GDPHealthcareToYear   int               `yaml:"gdp_healthcare_to_year" envconfig:"GDP_HEALTHCARE_TO_YEAR" validate:"gte=0"`
	ConvertRawGDP         bool              `yaml:"convert_raw_gdp" envconfig:"CONVERT_RAW_GDP"`
	ExportWorkbook        bool              `yaml:"export_workbook" envconfig:"EXPORT_WORKBOOK"`
	WriteConcurrency      int               `yaml:"write_concurrency" envconfig:"WRITE_CONCURRENCY" validate:"min=1,max=64"`
}

// ServerConfig contains HTTP server configuration for the read API
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// TelemetryConfig controls tracing and metrics
type TelemetryConfig struct {
	ServiceName     string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	EnableTracing   bool   `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter   string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	EnableMetrics   bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment. An empty path searches the usual locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyFallbacks()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyFallbacks fills values that cannot be zero after overlaying
func (c *Config) applyFallbacks() {
	if len(c.Pipeline.CountryAliases) == 0 {
		c.Pipeline.CountryAliases = DefaultCountryAliases()
	}
	if c.Logging.FilePath == "" && c.Paths.LogsDir != "" {
		c.Logging.FilePath = filepath.Join(c.Paths.LogsDir, "healthstats.log")
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = AppName
	}
}

// Validate checks struct constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	p := c.Pipeline
	if p.GDPHealthcareFromYear > 0 && p.GDPHealthcareToYear > 0 && p.GDPHealthcareFromYear > p.GDPHealthcareToYear {
		return fmt.Errorf("gdp_healthcare_from_year %d is after gdp_healthcare_to_year %d",
			p.GDPHealthcareFromYear, p.GDPHealthcareToYear)
	}

	// A single rename pass is only total when no target is itself renamed.
	for from, to := range p.CountryAliases {
		if from == "" || to == "" {
			return fmt.Errorf("country alias %q -> %q has an empty side", from, to)
		}
		if _, chained := p.CountryAliases[to]; chained {
			return fmt.Errorf("country alias %q -> %q chains into another alias", from, to)
		}
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "",
		},
		Paths: PathsConfig{
			DatasetsDir: DefaultDatasetsDir,
			LogsDir:     DefaultLogsDir,
		},
		Pipeline: PipelineConfig{
			USDToEURRate:          DefaultUSDToEURRate,
			CountryAliases:        DefaultCountryAliases(),
			CovidSnapshotDay:      DefaultCovidSnapshotDay,
			GDPHealthcareFromYear: DefaultGDPHealthcareFromYear,
			GDPHealthcareToYear:   DefaultGDPHealthcareToYear,
			WriteConcurrency:      DefaultWriteConcurrency,
		},
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Telemetry: TelemetryConfig{
			ServiceName:   AppName,
			EnableTracing: false,
			TraceExporter: "none",
			EnableMetrics: true,
		},
	}
}
