package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthstats/internal/config"
	"healthstats/internal/operations"
	"healthstats/internal/services"
)

func TestHealthCheck(t *testing.T) {
	svc := services.NewHealthService("1.2.3", config.NewPaths(t.TempDir()), nil)

	status := svc.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Contains(t, status.Runtime, "go_version")
	assert.Equal(t, "v1", status.Runtime["data_format"])
}

func TestReadinessCheck(t *testing.T) {
	paths := config.NewPaths(t.TempDir())
	svc := services.NewHealthService("1.2.3", paths, nil)
	ctx := context.Background()

	status := svc.ReadinessCheck(ctx)
	assert.False(t, status.Ready)
	assert.Equal(t, "no pipeline run recorded", status.Message)

	writeFile(t, paths.RunManifestJSON, "{not json")
	status = svc.ReadinessCheck(ctx)
	assert.False(t, status.Ready)
	assert.Equal(t, "run manifest unreadable", status.Message)

	manifest := &operations.RunManifest{Status: string(operations.OperationStatusFailed)}
	require.NoError(t, manifest.SaveToFile(paths.RunManifestJSON))
	status = svc.ReadinessCheck(ctx)
	assert.True(t, status.Ready)
	assert.Equal(t, "failed", status.LastRun)
}

func TestReadinessCheckMissingRoot(t *testing.T) {
	svc := services.NewHealthService("1.2.3", config.NewPaths("/nonexistent/healthstats"), nil)

	status := svc.ReadinessCheck(context.Background())
	assert.False(t, status.Ready)
	assert.Equal(t, "datasets directory missing", status.Message)
}
