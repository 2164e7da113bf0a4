package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"healthstats/internal/config"
	"healthstats/internal/dataprocessing"
	apperrors "healthstats/internal/errors"
	"healthstats/internal/operations"
	"healthstats/pkg/contracts/domain"
)

// Dataset names exposed by the read API
const (
	DatasetLifeExpectancy    = "life-expectancy"
	DatasetHealthcare        = "healthcare"
	DatasetGDPHealthcare     = "gdp-healthcare"
	DatasetGDPLifeExpectancy = "gdp-life-expectancy"
	DatasetCovidSnapshot     = "covid-snapshot"
)

// TableResponse is a dataset rendered as JSON rows. Missing cells are null.
type TableResponse struct {
	Dataset string                   `json:"dataset"`
	Year    int                      `json:"year,omitempty"`
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
	Count   int                      `json:"count"`
}

// DatasetList describes what the processor has written so far
type DatasetList struct {
	Datasets []domain.DatasetInfo    `json:"datasets"`
	Count    int                     `json:"count"`
	LastRun  *operations.RunManifest `json:"last_run,omitempty"`
}

// LifeExpectancyFilter narrows the all-years life expectancy table. Zero
// values match everything.
type LifeExpectancyFilter struct {
	Country string
	Year    int
	Total   string
}

// DatasetService reads pipeline outputs from the datasets tree
type DatasetService struct {
	paths  *config.Paths
	logger *slog.Logger
	loads  singleflight.Group
}

// NewDatasetService creates a dataset service rooted at paths
func NewDatasetService(paths *config.Paths, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		paths:  paths,
		logger: logger.With(slog.String("component", "dataset_service")),
	}
}

// ListDatasets lists every output file and the manifest of the last run,
// when there is one
func (s *DatasetService) ListDatasets(ctx context.Context) (*DatasetList, error) {
	infos, err := operations.ScanDatasets(s.paths.DatasetsDir)
	if err != nil {
		return nil, err
	}
	list := &DatasetList{Datasets: infos, Count: len(infos)}

	if config.FileExists(s.paths.RunManifestJSON) {
		manifest, err := operations.LoadManifestFromFile(s.paths.RunManifestJSON)
		if err != nil {
			s.logger.WarnContext(ctx, "run manifest unreadable",
				slog.String("path", s.paths.RunManifestJSON),
				slog.String("error", err.Error()))
		} else {
			list.LastRun = manifest
		}
	}
	return list, nil
}

// LifeExpectancy returns the all-years life expectancy table filtered by f
func (s *DatasetService) LifeExpectancy(ctx context.Context, f LifeExpectancyFilter) (*TableResponse, error) {
	t, err := s.load(ctx, DatasetLifeExpectancy, s.paths.LifeExpectancyCSV)
	if err != nil {
		return nil, err
	}

	year := ""
	if f.Year != 0 {
		year = strconv.Itoa(f.Year)
	}
	filtered := t.Filter(func(r dataprocessing.Row) bool {
		if f.Country != "" && !strings.EqualFold(r.Get(domain.ColCountry), f.Country) {
			return false
		}
		if year != "" && r.Get(domain.ColYear) != year {
			return false
		}
		if f.Total != "" && !strings.EqualFold(r.Get(domain.ColTotal), f.Total) {
			return false
		}
		return true
	})
	return toResponse(DatasetLifeExpectancy, f.Year, filtered), nil
}

// Healthcare returns the combined healthcare table for year
func (s *DatasetService) Healthcare(ctx context.Context, year int) (*TableResponse, error) {
	t, err := s.load(ctx, DatasetHealthcare, s.paths.HealthcareByYear(year))
	if err != nil {
		return nil, err
	}
	return toResponse(DatasetHealthcare, year, t), nil
}

// GDPHealthcare returns the GDP and healthcare table for year
func (s *DatasetService) GDPHealthcare(ctx context.Context, year int) (*TableResponse, error) {
	t, err := s.load(ctx, DatasetGDPHealthcare, s.paths.GDPHealthcareByYear(year))
	if err != nil {
		return nil, err
	}
	return toResponse(DatasetGDPHealthcare, year, t), nil
}

// GDPLifeExpectancy returns the merged GDP and life expectancy table,
// optionally restricted to one country
func (s *DatasetService) GDPLifeExpectancy(ctx context.Context, country string) (*TableResponse, error) {
	t, err := s.load(ctx, DatasetGDPLifeExpectancy, s.paths.GDPLifeExpectancyCSV)
	if err != nil {
		return nil, err
	}
	if country != "" {
		t = t.Filter(func(r dataprocessing.Row) bool {
			return strings.EqualFold(r.Get(domain.ColCountry), country)
		})
	}
	return toResponse(DatasetGDPLifeExpectancy, 0, t), nil
}

// CovidSnapshot returns the COVID excess deaths snapshot
func (s *DatasetService) CovidSnapshot(ctx context.Context) (*TableResponse, error) {
	t, err := s.load(ctx, DatasetCovidSnapshot, s.paths.CovidSnapshotCSV)
	if err != nil {
		return nil, err
	}
	return toResponse(DatasetCovidSnapshot, 0, t), nil
}

// load reads path once per concurrent burst of requests. Tables are never
// mutated, so callers share the result.
func (s *DatasetService) load(ctx context.Context, dataset, path string) (*dataprocessing.Table, error) {
	v, err, shared := s.loads.Do(path, func() (interface{}, error) {
		t, _, err := dataprocessing.ReadCSV(path, dataprocessing.ReadOptions{Logger: s.logger})
		return t, err
	})
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeNotFound) {
			s.logger.DebugContext(ctx, "dataset not produced yet",
				slog.String("dataset", dataset),
				slog.String("path", path))
			return nil, fmt.Errorf("%s: %w", dataset, stderrors.Join(ErrDatasetNotFound, err))
		}
		s.logger.ErrorContext(ctx, "failed to load dataset",
			slog.String("dataset", dataset),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.DebugContext(ctx, "dataset loaded",
		slog.String("dataset", dataset),
		slog.Bool("shared", shared))
	return v.(*dataprocessing.Table), nil
}

func toResponse(dataset string, year int, t *dataprocessing.Table) *TableResponse {
	resp := &TableResponse{
		Dataset: dataset,
		Year:    year,
		Columns: t.Columns,
		Rows:    make([]map[string]interface{}, 0, t.Len()),
		Count:   t.Len(),
	}
	for i := 0; i < t.Len(); i++ {
		cells := t.Row(i).Cells()
		row := make(map[string]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			row[col] = dataprocessing.TypedValue(cells[j])
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp
}
