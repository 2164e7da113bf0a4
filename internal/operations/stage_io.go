package operations

import (
	"context"
	"log/slog"
	"path/filepath"

	"healthstats/internal/config"
	"healthstats/internal/dataprocessing"
	"healthstats/internal/exporter"
	"healthstats/internal/infrastructure"
	"healthstats/pkg/contracts/domain"
)

// StageOptions carries everything the pipeline stages share
type StageOptions struct {
	Paths    *config.Paths
	Pipeline config.PipelineConfig

	CSVWriter *exporter.CSVWriter
	Yearly    *exporter.YearlyExporter
	Workbook  *exporter.WorkbookExporter

	// Metrics may be nil
	Metrics *infrastructure.PipelineMetrics
}

// NewStageOptions wires the exporters for paths and pipeline
func NewStageOptions(paths *config.Paths, pipeline config.PipelineConfig, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *StageOptions {
	csvWriter := exporter.NewCSVWriter(logger)
	return &StageOptions{
		Paths:     paths,
		Pipeline:  pipeline,
		CSVWriter: csvWriter,
		Yearly:    exporter.NewYearlyExporter(csvWriter, pipeline.WriteConcurrency, logger),
		Workbook:  exporter.NewWorkbookExporter(logger),
		Metrics:   metrics,
	}
}

// stageIO reads and writes datasets for one stage, keeping the step's
// metrics and summary current.
type stageIO struct {
	stepID  string
	options *StageOptions
	logger  *slog.Logger
	summary domain.StepSummary
	written []domain.DatasetInfo
}

func newStageIO(stepID string, options *StageOptions, logger *slog.Logger) *stageIO {
	return &stageIO{
		stepID:  stepID,
		options: options,
		logger:  logger,
		summary: domain.StepSummary{StepID: stepID, Files: []string{}},
	}
}

// read loads a CSV source
func (s *stageIO) read(ctx context.Context, path string, skipMalformed bool) (*dataprocessing.Table, error) {
	table, stats, err := dataprocessing.ReadCSV(path, dataprocessing.ReadOptions{
		SkipMalformed: skipMalformed,
		Logger:        s.logger,
	})
	if err != nil {
		return nil, err
	}
	s.countRead(ctx, stats.Rows)
	if stats.Skipped > 0 {
		s.countDropped(ctx, stats.Skipped)
		s.logger.WarnContext(ctx, "Skipped malformed lines",
			slog.String("file_path", path),
			slog.Int("skipped", stats.Skipped))
	}
	return table, nil
}

// write saves table to path and records it
func (s *stageIO) write(ctx context.Context, path string, table *dataprocessing.Table) error {
	if err := s.options.CSVWriter.WriteTable(path, table); err != nil {
		return err
	}
	s.recordWritten(ctx, domain.DatasetInfo{
		Name:    table.Name,
		Path:    path,
		Rows:    table.Len(),
		Columns: table.Columns,
	})
	return nil
}

// writeByYear saves one file per year and records them
func (s *stageIO) writeByYear(ctx context.Context, tables map[int]*dataprocessing.Table, pathFor func(int) string) error {
	infos, err := s.options.Yearly.ExportByYear(ctx, tables, pathFor)
	if err != nil {
		return err
	}
	s.recordWritten(ctx, infos...)
	return nil
}

func (s *stageIO) recordWritten(ctx context.Context, infos ...domain.DatasetInfo) {
	for _, info := range infos {
		s.summary.RowsWritten += info.Rows
		s.summary.Files = append(s.summary.Files, info.Path)
		s.written = append(s.written, info)
		if m := s.options.Metrics; m != nil {
			m.RowsWritten.Add(ctx, int64(info.Rows), infrastructure.StepAttributes(s.stepID))
			m.FilesWritten.Add(ctx, 1, infrastructure.StepAttributes(s.stepID))
		}
	}
}

func (s *stageIO) countRead(ctx context.Context, rows int) {
	s.summary.RowsRead += rows
	if m := s.options.Metrics; m != nil {
		m.RowsRead.Add(ctx, int64(rows), infrastructure.StepAttributes(s.stepID))
	}
}

func (s *stageIO) countDropped(ctx context.Context, rows int) {
	if m := s.options.Metrics; m != nil && rows > 0 {
		m.RowsDropped.Add(ctx, int64(rows), infrastructure.StepAttributes(s.stepID))
	}
}

// finish publishes the summary to the operation state
func (s *stageIO) finish(state *OperationState) {
	state.RecordSummary(s.summary, s.written...)
	if stepState := state.GetStage(s.stepID); stepState != nil {
		stepState.SetMetadata("rows_read", s.summary.RowsRead)
		stepState.SetMetadata("rows_written", s.summary.RowsWritten)
		stepState.SetMetadata("files", len(s.summary.Files))
	}
}

// contextTable returns a table an upstream step left in memory
func contextTable(state *OperationState, key string) (*dataprocessing.Table, bool) {
	v, ok := state.GetContext(key)
	if !ok {
		return nil, false
	}
	t, ok := v.(*dataprocessing.Table)
	return t, ok && t != nil
}

// addSheets queues tables for the workbook export
func addSheets(state *OperationState, sheets ...exporter.Sheet) {
	var queued []exporter.Sheet
	if v, ok := state.GetContext(ContextKeyWorkbookSheets); ok {
		queued, _ = v.([]exporter.Sheet)
	}
	queued = append(queued, sheets...)
	state.SetContext(ContextKeyWorkbookSheets, queued)
}

// tableName names a table after its output file
func tableName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
