package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"healthstats/internal/config"
	"healthstats/internal/operations"
	"healthstats/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     *config.Paths
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
}

// ReadinessStatus reports whether the datasets tree holds a finished run
type ReadinessStatus struct {
	Ready   bool      `json:"ready"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	LastRun string    `json:"last_run,omitempty"`
	Checked time.Time `json:"checked"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		paths:     paths,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	build := contracts.GetBuildInfo()
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"go_version":  build.GoVersion,
			"platform":    build.Platform,
			"data_format": contracts.DataFormatVersion,
			"goroutines":  runtime.NumGoroutine(),
		},
	}
}

// ReadinessCheck is ready once the datasets root exists and the last run
// left a manifest behind
func (hs *HealthService) ReadinessCheck(ctx context.Context) ReadinessStatus {
	status := ReadinessStatus{Checked: time.Now()}

	if !config.FileExists(hs.paths.DatasetsDir) {
		status.Status = "not_ready"
		status.Message = "datasets directory missing"
		return status
	}
	if !config.FileExists(hs.paths.RunManifestJSON) {
		status.Status = "not_ready"
		status.Message = "no pipeline run recorded"
		return status
	}

	manifest, err := operations.LoadManifestFromFile(hs.paths.RunManifestJSON)
	if err != nil {
		hs.logger.WarnContext(ctx, "readiness check could not read manifest",
			slog.String("error", err.Error()))
		status.Status = "not_ready"
		status.Message = "run manifest unreadable"
		return status
	}

	status.Ready = true
	status.Status = "ready"
	status.LastRun = manifest.Status
	return status
}
