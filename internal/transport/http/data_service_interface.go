package http

import (
	"context"

	"healthstats/internal/services"
)

// DatasetServiceInterface defines the dataset reads the handlers need
type DatasetServiceInterface interface {
	ListDatasets(ctx context.Context) (*services.DatasetList, error)
	LifeExpectancy(ctx context.Context, f services.LifeExpectancyFilter) (*services.TableResponse, error)
	Healthcare(ctx context.Context, year int) (*services.TableResponse, error)
	GDPHealthcare(ctx context.Context, year int) (*services.TableResponse, error)
	GDPLifeExpectancy(ctx context.Context, country string) (*services.TableResponse, error)
	CovidSnapshot(ctx context.Context) (*services.TableResponse, error)
}

// HealthServiceInterface defines the health checks the handlers need
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.ReadinessStatus
}
