// Package validation checks the pipeline's raw sources and output tree
// before a run touches them.
package validation

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"healthstats/internal/config"
	apperrors "healthstats/internal/errors"
	"healthstats/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// Source is one raw input of the pipeline and the header columns it must carry.
type Source struct {
	Name     string
	Path     string
	Required []string
}

// SourceReport is the outcome of validating one Source.
type SourceReport struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Columns int      `json:"columns"`
	Missing []string `json:"missing,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// OK reports whether the source passed every check
func (r SourceReport) OK() bool {
	return r.Error == ""
}

// PipelineSources lists the raw inputs a full run reads under cfg.
func PipelineSources(paths *config.Paths, cfg config.PipelineConfig) []Source {
	gdp := Source{
		Name:     "gdp",
		Path:     paths.GDPEuroCSV,
		Required: []string{domain.ColCountry, domain.ColYear, domain.ColIncomePerPerson, domain.ColTotalGDP},
	}
	if cfg.ConvertRawGDP {
		gdp = Source{
			Name:     "gdp-raw",
			Path:     paths.GDPRawCSV,
			Required: []string{domain.ColCountry, domain.ColYear, domain.RawColIncomePerPerson, domain.RawColGDPTotal},
		}
	}

	return []Source{
		{Name: "life-expectancy-wide", Path: paths.LifeExpectancyWideCSV, Required: domain.WideSeriesIDColumns},
		gdp,
		{Name: "healthcare-expenditure", Path: paths.HealthExpenditureTXT, Required: domain.WideIndicatorIDColumns},
		{Name: "covid-excess-deaths", Path: paths.CovidExcessDeathsCSV, Required: domain.CovidSnapshotColumns},
	}
}

// SourceValidator runs the pre-flight checks
type SourceValidator struct {
	logger *slog.Logger
}

// NewSourceValidator creates a validator logging to logger
func NewSourceValidator(logger *slog.Logger) *SourceValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceValidator{logger: logger}
}

// ValidateFile checks that path exists, is a regular file and can be opened
func (v *SourceValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Source file does not exist", slog.String("file", path))
		return apperrors.NewNotFoundError(path).WithContext("path", path)
	}
	if err != nil {
		return apperrors.NewStorageError("stat "+path, err)
	}
	if info.IsDir() {
		v.logger.Error("Source path is a directory", slog.String("path", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	f, err := os.Open(path)
	if err != nil {
		v.logger.Error("Source file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("open "+path, err)
	}
	f.Close()

	v.logger.Debug("Source file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateSource checks src's file and header. The report is filled even
// when an error is returned.
func (v *SourceValidator) ValidateSource(src Source) (SourceReport, error) {
	report := SourceReport{Name: src.Name, Path: src.Path}
	fail := func(err error) (SourceReport, error) {
		report.Error = err.Error()
		return report, fmt.Errorf("%s: %w", src.Name, err)
	}

	if err := v.ValidateFile(src.Path); err != nil {
		return fail(err)
	}

	header, err := readHeader(src.Path)
	if err != nil {
		return fail(err)
	}
	report.Columns = len(header)

	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	for _, col := range src.Required {
		if !present[col] {
			report.Missing = append(report.Missing, col)
		}
	}
	if len(report.Missing) > 0 {
		v.logger.Error("Source is missing columns",
			slog.String("source", src.Name),
			slog.Any("missing", report.Missing))
		return fail(apperrors.NewMissingColumnError(src.Path, report.Missing[0]).
			WithContext("missing", report.Missing))
	}

	v.logger.Info("Source validated",
		slog.String("source", src.Name),
		slog.Int("columns", report.Columns))
	return report, nil
}

// ValidateSources checks every source. All of them are checked even after
// a failure; the returned error joins the individual ones.
func (v *SourceValidator) ValidateSources(sources []Source) ([]SourceReport, error) {
	reports := make([]SourceReport, 0, len(sources))
	var errs []error
	for _, src := range sources {
		report, err := v.ValidateSource(src)
		reports = append(reports, report)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return reports, stderrors.Join(errs...)
}

// ValidateOutputDirectory ensures dir exists and is writable
func (v *SourceValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("create "+dir, err)
	}

	marker := filepath.Join(dir, ".write_test")
	f, err := os.Create(marker)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(dir+" is not writable", err)
	}
	f.Close()
	os.Remove(marker)
	return nil
}

// readHeader returns the first CSV record of path
func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("open "+path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s is empty", path), err)
	}
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("read header of %s", path), err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return header, nil
}
