package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"healthstats/internal/dataprocessing"
	"healthstats/pkg/contracts/domain"
)

// YearlyExporter writes one CSV file per year with bounded concurrency.
type YearlyExporter struct {
	csvWriter   *CSVWriter
	concurrency int
	logger      *slog.Logger
}

// NewYearlyExporter creates a per-year exporter. Concurrency below one
// means sequential writes.
func NewYearlyExporter(csvWriter *CSVWriter, concurrency int, logger *slog.Logger) *YearlyExporter {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &YearlyExporter{
		csvWriter:   csvWriter,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ExportByYear writes tables[year] to pathFor(year) for every year. The
// returned infos are sorted by year. The first write error cancels the
// remaining writes.
func (y *YearlyExporter) ExportByYear(ctx context.Context, tables map[int]*dataprocessing.Table, pathFor func(int) string) ([]domain.DatasetInfo, error) {
	years := make([]int, 0, len(tables))
	for year := range tables {
		years = append(years, year)
	}
	sort.Ints(years)

	infos := make([]domain.DatasetInfo, len(years))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(y.concurrency)

	for i, year := range years {
		i, year := i, year
		table := tables[year]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := pathFor(year)
			if err := y.csvWriter.WriteTable(path, table); err != nil {
				return fmt.Errorf("failed to write partition for %d: %w", year, err)
			}
			infos[i] = domain.DatasetInfo{
				Name:    table.Name,
				Path:    path,
				Year:    year,
				Rows:    table.Len(),
				Columns: table.Columns,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	y.logger.Info("Exported yearly partitions",
		slog.Int("files", len(infos)),
		slog.Int("concurrency", y.concurrency))
	return infos, nil
}
