package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"healthstats/internal/config"
	"healthstats/internal/dataprocessing"
	apperrors "healthstats/internal/errors"
	"healthstats/internal/exporter"
	"healthstats/pkg/contracts/domain"
)

// Dataset labels used in year-availability errors
const (
	datasetLifePartitions       = "life-expectancy-population"
	datasetHealthcarePartitions = "healthcare"
)

// Workbook sheet names
const (
	sheetLifeExpectancy    = "life-expectancy"
	sheetGDPLifeExpectancy = "gdp-life-expectancy"
	sheetCovidSnapshot     = "covid-snapshot"
	sheetGDPHealthcare     = "gdp-healthcare-%d"
)

func stageLogger(logger *slog.Logger, stageID string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("step", stageID))
}

// GDPCurrencyStage converts the raw GDP source to euro
type GDPCurrencyStage struct {
	BaseStage
	logger  *slog.Logger
	options *StageOptions
}

// NewGDPCurrencyStage creates the raw GDP conversion step
func NewGDPCurrencyStage(options *StageOptions, logger *slog.Logger) *GDPCurrencyStage {
	p := options.Paths
	return &GDPCurrencyStage{
		BaseStage: NewBaseStage(StageIDGDPCurrency, StageNameGDPCurrency, nil).WithData(
			[]DataRequirement{{Location: p.GDPRawCSV}},
			[]DataOutput{{Dataset: ContextKeyGDPEuro, Location: p.GDPEuroCSV}},
		),
		logger:  stageLogger(logger, StageIDGDPCurrency),
		options: options,
	}
}

// Execute renames the raw columns and multiplies the money columns by the
// configured USD to EUR rate
func (s *GDPCurrencyStage) Execute(ctx context.Context, state *OperationState) error {
	io := newStageIO(s.ID(), s.options, s.logger)
	p := s.options.Paths

	raw, err := io.read(ctx, p.GDPRawCSV, false)
	if err != nil {
		return err
	}
	euro, err := dataprocessing.ConvertGDPToEuro(raw, s.options.Pipeline.USDToEURRate)
	if err != nil {
		return err
	}
	euro = euro.WithName(tableName(p.GDPEuroCSV))

	if err := io.write(ctx, p.GDPEuroCSV, euro); err != nil {
		return err
	}
	state.SetContext(ContextKeyGDPEuro, euro)

	s.logger.InfoContext(ctx, "Converted GDP to euro",
		slog.Float64("rate", s.options.Pipeline.USDToEURRate),
		slog.Int("rows", euro.Len()))
	io.finish(state)
	return nil
}

// LifeExpectancyStage reshapes the wide life expectancy/population source
type LifeExpectancyStage struct {
	BaseStage
	logger     *slog.Logger
	options    *StageOptions
	classifier *dataprocessing.SeriesClassifier
}

// NewLifeExpectancyStage creates the life expectancy reshape step
func NewLifeExpectancyStage(options *StageOptions, logger *slog.Logger) *LifeExpectancyStage {
	p := options.Paths
	return &LifeExpectancyStage{
		BaseStage: NewBaseStage(StageIDLifeExpectancy, StageNameLifeExpectancy, nil).WithData(
			[]DataRequirement{{Location: p.LifeExpectancyWideCSV}},
			[]DataOutput{
				{Dataset: ContextKeyLifeExpectancy, Location: p.LifeExpectancyCSV},
				{Dataset: ContextKeyLifeByYear, Location: p.LifeExpectancyByYearDir, Pattern: "life-expectancy-population-*.csv"},
			},
		),
		logger:     stageLogger(logger, StageIDLifeExpectancy),
		options:    options,
		classifier: dataprocessing.DefaultSeriesClassifier(),
	}
}

// Execute writes the all-years table and one partition per year except the
// most recent one
func (s *LifeExpectancyStage) Execute(ctx context.Context, state *OperationState) error {
	io := newStageIO(s.ID(), s.options, s.logger)
	p := s.options.Paths

	wide, err := io.read(ctx, p.LifeExpectancyWideCSV, false)
	if err != nil {
		return err
	}

	reshaper := dataprocessing.NewLifeExpectancyReshaper(dataprocessing.LifeExpectancyOptions{
		Classifier:   s.classifier,
		StrictSeries: s.options.Pipeline.StrictSeries,
		Logger:       s.logger,
	})
	result, err := reshaper.Reshape(wide)
	if err != nil {
		return err
	}
	stats := result.Stats
	io.countDropped(ctx, stats.RowsMissing+stats.RowsUnknown+stats.Duplicates)

	s.logger.InfoContext(ctx, "Distinct countries",
		slog.Int("count", len(result.Countries)),
		slog.Any("countries", result.Countries))

	all := dataprocessing.LifeExpectancyTable(tableName(p.LifeExpectancyCSV), result.Records)
	if err := io.write(ctx, p.LifeExpectancyCSV, all); err != nil {
		return err
	}

	partitions := make(map[int]*dataprocessing.Table, len(result.ByYear))
	for year, records := range result.ByYear {
		partitions[year] = dataprocessing.LifeExpectancyTable(tableName(p.LifeExpectancyByYear(year)), records)
	}
	if err := io.writeByYear(ctx, partitions, p.LifeExpectancyByYear); err != nil {
		return err
	}

	state.SetContext(ContextKeyLifeExpectancy, all)
	state.SetContext(ContextKeyLifeByYear, result.ByYear)
	addSheets(state, exporter.Sheet{Name: sheetLifeExpectancy, Table: all})

	if stepState := state.GetStage(s.ID()); stepState != nil {
		stepState.SetMetadata("final_year", result.FinalYear)
		stepState.SetMetadata("unknown_series", stats.UnknownSeries)
		stepState.SetMetadata("duplicates", stats.Duplicates)
	}
	s.logger.InfoContext(ctx, "Reshaped life expectancy",
		slog.Int("rows_melted", stats.RowsMelted),
		slog.Int("rows_missing", stats.RowsMissing),
		slog.Int("rows_unknown_series", stats.RowsUnknown),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("records", len(result.Records)),
		slog.Int("final_year", result.FinalYear))
	io.finish(state)
	return nil
}

// GDPNormalizeStage rewrites GDP country aliases in place
type GDPNormalizeStage struct {
	BaseStage
	logger  *slog.Logger
	options *StageOptions
}

// NewGDPNormalizeStage creates the GDP country normalization step
func NewGDPNormalizeStage(options *StageOptions, logger *slog.Logger) *GDPNormalizeStage {
	p := options.Paths
	return &GDPNormalizeStage{
		BaseStage: NewBaseStage(StageIDGDPNormalize, StageNameGDPNormalize, []string{StageIDGDPCurrency}).WithData(
			[]DataRequirement{{Dataset: ContextKeyGDPEuro, Location: p.GDPEuroCSV}},
			[]DataOutput{{Dataset: ContextKeyGDPNormalized, Location: p.GDPEuroCSV}},
		),
		logger:  stageLogger(logger, StageIDGDPNormalize),
		options: options,
	}
}

// Execute applies the alias table to the Country column
func (s *GDPNormalizeStage) Execute(ctx context.Context, state *OperationState) error {
	io := newStageIO(s.ID(), s.options, s.logger)
	p := s.options.Paths

	gdp, ok := contextTable(state, ContextKeyGDPEuro)
	if ok {
		io.countRead(ctx, gdp.Len())
	} else {
		var err error
		if gdp, err = io.read(ctx, p.GDPEuroCSV, false); err != nil {
			return err
		}
	}

	normalized, changed, err := dataprocessing.NormalizeCountries(gdp, s.options.Pipeline.CountryAliases)
	if err != nil {
		return err
	}
	normalized = normalized.WithName(tableName(p.GDPEuroCSV))
	if err := io.write(ctx, p.GDPEuroCSV, normalized); err != nil {
		return err
	}
	state.SetContext(ContextKeyGDPNormalized, normalized)

	if stepState := state.GetStage(s.ID()); stepState != nil {
		stepState.SetMetadata("renamed_cells", changed)
	}
	s.logger.InfoContext(ctx, "Normalized GDP countries",
		slog.Int("renamed_cells", changed),
		slog.Int("aliases", len(s.options.Pipeline.CountryAliases)))
	io.finish(state)
	return nil
}

// HealthcareStage joins health expenditure with each year's life
// expectancy partition
type HealthcareStage struct {
	BaseStage
	logger  *slog.Logger
	options *StageOptions
}

// NewHealthcareStage creates the healthcare melt and join step
func NewHealthcareStage(options *StageOptions, logger *slog.Logger) *HealthcareStage {
	p := options.Paths
	return &HealthcareStage{
		BaseStage: NewBaseStage(StageIDHealthcare, StageNameHealthcare, []string{StageIDLifeExpectancy}).WithData(
			[]DataRequirement{
				{Location: p.HealthExpenditureTXT},
				{Dataset: ContextKeyLifeByYear, Location: p.LifeExpectancyByYearDir},
			},
			[]DataOutput{{Dataset: ContextKeyHealthcare, Location: p.HealthcareByYearDir, Pattern: "life-expectancy-health-expenditure-*.csv"}},
		),
		logger:  stageLogger(logger, StageIDHealthcare),
		options: options,
	}
}

// Execute writes one combined table per year found in the expenditure source
func (s *HealthcareStage) Execute(ctx context.Context, state *OperationState) error {
	io := newStageIO(s.ID(), s.options, s.logger)
	p := s.options.Paths

	wide, err := io.read(ctx, p.HealthExpenditureTXT, true)
	if err != nil {
		return err
	}
	records, stats, err := dataprocessing.MeltHealthExpenditure(wide, s.options.Pipeline.USDToEURRate)
	if err != nil {
		return err
	}
	io.countDropped(ctx, stats.RowsMissing)

	combined, err := dataprocessing.CombineHealthcare(records, stats.Years, s.lifeSource(ctx, state, io))
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tables := make(map[int]*dataprocessing.Table, len(combined))
	for year, rows := range combined {
		tables[year] = dataprocessing.HealthcareTable(tableName(p.HealthcareByYear(year)), rows)
	}
	if err := io.writeByYear(ctx, tables, p.HealthcareByYear); err != nil {
		return err
	}
	state.SetContext(ContextKeyHealthcare, tables)

	s.logger.InfoContext(ctx, "Combined healthcare with life expectancy",
		slog.Int("rows_melted", stats.RowsMelted),
		slog.Int("rows_missing", stats.RowsMissing),
		slog.Any("years", stats.Years))
	io.finish(state)
	return nil
}

// lifeSource serves life partitions from memory when the life expectancy
// step ran in this operation, from the partition files otherwise
func (s *HealthcareStage) lifeSource(ctx context.Context, state *OperationState, io *stageIO) dataprocessing.LifePartitionSource {
	if v, ok := state.GetContext(ContextKeyLifeByYear); ok {
		if byYear, ok := v.(map[int][]domain.LifeExpectancyPopulation); ok {
			return func(year int) ([]domain.LifeExpectancyPopulation, error) {
				records, ok := byYear[year]
				if !ok {
					return nil, apperrors.NewYearNotAvailableError(datasetLifePartitions, year)
				}
				return records, nil
			}
		}
	}

	return func(year int) ([]domain.LifeExpectancyPopulation, error) {
		path := s.options.Paths.LifeExpectancyByYear(year)
		if !config.FileExists(path) {
			return nil, apperrors.NewYearNotAvailableError(datasetLifePartitions, year).
				WithContext("path", path)
		}
		t, err := io.read(ctx, path, false)
		if err != nil {
			return nil, err
		}
		return dataprocessing.LifeExpectancyFromTable(t)
	}
}

// GDPLifeExpectancyStage joins GDP with the all-years life table
type GDPLifeExpectancyStage struct {
	BaseStage
	logger  *slog.Logger
	options *StageOptions
}

// NewGDPLifeExpectancyStage creates the GDP and life expectancy join step
func NewGDPLifeExpectancyStage(options *StageOptions, logger *slog.Logger) *GDPLifeExpectancyStage {
	p := options.Paths
	return &GDPLifeExpectancyStage{
		BaseStage: NewBaseStage(StageIDGDPLifeExpectancy, StageNameGDPLifeExpectancy,
			[]string{StageIDLifeExpectancy, StageIDGDPNormalize}).WithData(
			[]DataRequirement{
				{Dataset: ContextKeyGDPNormalized, Location: p.GDPEuroCSV},
				{Dataset: ContextKeyLifeExpectancy, Location: p.LifeExpectancyCSV},
			},
			[]DataOutput{{Location: p.GDPLifeExpectancyCSV}},
		),
		logger:  stageLogger(logger, StageIDGDPLifeExpectancy),
		options: options,
	}
}

// Execute writes the merged table
func (s *GDPLifeExpectancyStage) Execute(ctx context.Context, state *OperationState) error {
	io := newStageIO(s.ID(), s.options, s.logger)
	p := s.options.Paths

	gdp, err := loadTable(ctx, state, io, ContextKeyGDPNormalized, p.GDPEuroCSV)
	if err != nil {
		return err
	}
	life, err := loadTable(ctx, state, io, ContextKeyLifeExpectancy, p.LifeExpectancyCSV)
	if err != nil {
		return err
	}

	merged, err := dataprocessing.JoinGDPLifeExpectancy(gdp, life)
	if err != nil {
		return err
	}
	merged = merged.WithName(tableName(p.GDPLifeExpectancyCSV))
	if err := io.write(ctx, p.GDPLifeExpectancyCSV, merged); err != nil {
		return err
	}
	addSheets(state, exporter.Sheet{Name: sheetGDPLifeExpectancy, Table: merged})

	s.logger.InfoContext(ctx, "Joined GDP with life expectancy",
		slog.Int("gdp_rows", gdp.Len()),
		slog.Int("life_rows", life.Len()),
		slog.Int("merged_rows", merged.Len()))
	io.finish(state)
	return nil
}

// GDPHealthcareStage joins each year's GDP with that year's healthcare table
type GDPHealthcareStage struct {
	BaseStage
	logger  *slog.Logger
	options *StageOptions
}

// NewGDPHealthcareStage creates the per-year GDP and healthcare join step
func NewGDPHealthcareStage(options *StageOptions, logger *slog.Logger) *GDPHealthcareStage {
	p := options.Paths
	return &GDPHealthcareStage{
		BaseStage: NewBaseStage(StageIDGDPHealthcare, StageNameGDPHealthcare,
			[]string{StageIDHealthcare, StageIDGDPNormalize}).WithData(
			[]DataRequirement{
				{Dataset: ContextKeyGDPNormalized, Location: p.GDPEuroCSV},
				{Dataset: ContextKeyHealthcare, Location: p.HealthcareByYearDir},
			},
			[]DataOutput{{Location: p.GDPHealthcareByYearDir, Pattern: "gdp-healthcare-*.csv"}},
		),
		logger:  stageLogger(logger, StageIDGDPHealthcare),
		options: options,
	}
}

// Execute joins every year in the configured range. The range is checked
// against the years that have healthcare data before anything is written.
func (s *GDPHealthcareStage) Execute(ctx context.Context, state *OperationState) error {
	io := newStageIO(s.ID(), s.options, s.logger)
	p := s.options.Paths

	gdp, err := loadTable(ctx, state, io, ContextKeyGDPNormalized, p.GDPEuroCSV)
	if err != nil {
		return err
	}

	healthcare, err := s.healthcareTables(state)
	if err != nil {
		return err
	}
	available := make([]int, 0, len(healthcare))
	for year := range healthcare {
		available = append(available, year)
	}
	years, err := dataprocessing.ResolveYears(datasetHealthcarePartitions, available,
		s.options.Pipeline.GDPHealthcareFromYear, s.options.Pipeline.GDPHealthcareToYear)
	if err != nil {
		return err
	}

	joined := make(map[int]*dataprocessing.Table, len(years))
	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return err
		}
		health, err := healthcare[year](ctx, io)
		if err != nil {
			return err
		}
		table, err := dataprocessing.JoinGDPHealthcare(gdp, health, year)
		if err != nil {
			return err
		}
		joined[year] = table.WithName(tableName(p.GDPHealthcareByYear(year)))
	}

	if err := io.writeByYear(ctx, joined, p.GDPHealthcareByYear); err != nil {
		return err
	}
	for _, year := range years {
		addSheets(state, exporter.Sheet{Name: fmt.Sprintf(sheetGDPHealthcare, year), Table: joined[year]})
	}

	s.logger.InfoContext(ctx, "Joined GDP with healthcare",
		slog.Int("years", len(years)),
		slog.Int("available_years", len(available)))
	io.finish(state)
	return nil
}

// healthcareLoader produces one year's combined healthcare table
type healthcareLoader func(ctx context.Context, io *stageIO) (*dataprocessing.Table, error)

// healthcareTables indexes the combined healthcare tables by year, from
// memory when available and from the partition directory otherwise
func (s *GDPHealthcareStage) healthcareTables(state *OperationState) (map[int]healthcareLoader, error) {
	loaders := make(map[int]healthcareLoader)

	if v, ok := state.GetContext(ContextKeyHealthcare); ok {
		if tables, ok := v.(map[int]*dataprocessing.Table); ok {
			for year, table := range tables {
				table := table
				loaders[year] = func(ctx context.Context, io *stageIO) (*dataprocessing.Table, error) {
					io.countRead(ctx, table.Len())
					return table, nil
				}
			}
			return loaders, nil
		}
	}

	pattern := filepath.Join(s.options.Paths.HealthcareByYearDir, "life-expectancy-health-expenditure-*.csv")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, apperrors.NewStorageError("scan "+pattern, err)
	}
	for _, file := range files {
		year, ok := trailingYear(tableName(file))
		if !ok {
			continue
		}
		path := file
		loaders[year] = func(ctx context.Context, io *stageIO) (*dataprocessing.Table, error) {
			return io.read(ctx, path, false)
		}
	}
	return loaders, nil
}

// CovidSnapshotStage keeps one day of the COVID excess deaths source
type CovidSnapshotStage struct {
	BaseStage
	logger  *slog.Logger
	options *StageOptions
}

// NewCovidSnapshotStage creates the COVID snapshot step
func NewCovidSnapshotStage(options *StageOptions, logger *slog.Logger) *CovidSnapshotStage {
	p := options.Paths
	return &CovidSnapshotStage{
		BaseStage: NewBaseStage(StageIDCovidSnapshot, StageNameCovidSnapshot, nil).WithData(
			[]DataRequirement{{Location: p.CovidExcessDeathsCSV}},
			[]DataOutput{{Location: p.CovidSnapshotCSV}},
		),
		logger:  stageLogger(logger, StageIDCovidSnapshot),
		options: options,
	}
}

// Execute writes the rows of the configured snapshot day
func (s *CovidSnapshotStage) Execute(ctx context.Context, state *OperationState) error {
	io := newStageIO(s.ID(), s.options, s.logger)
	p := s.options.Paths
	day := s.options.Pipeline.CovidSnapshotDay

	source, err := io.read(ctx, p.CovidExcessDeathsCSV, false)
	if err != nil {
		return err
	}
	snapshot, err := dataprocessing.CovidSnapshot(source, day)
	if err != nil {
		return err
	}
	snapshot = snapshot.WithName(tableName(p.CovidSnapshotCSV))
	io.countDropped(ctx, source.Len()-snapshot.Len())

	if snapshot.Len() == 0 {
		s.logger.WarnContext(ctx, "No rows for snapshot day", slog.String("day", day))
	}
	if err := io.write(ctx, p.CovidSnapshotCSV, snapshot); err != nil {
		return err
	}
	addSheets(state, exporter.Sheet{Name: sheetCovidSnapshot, Table: snapshot})

	s.logger.InfoContext(ctx, "Filtered COVID snapshot",
		slog.String("day", day),
		slog.Int("rows", snapshot.Len()))
	io.finish(state)
	return nil
}

// WorkbookStage collects the combined outputs into one Excel workbook
type WorkbookStage struct {
	BaseStage
	logger  *slog.Logger
	options *StageOptions
}

// NewWorkbookStage creates the workbook export step
func NewWorkbookStage(options *StageOptions, logger *slog.Logger) *WorkbookStage {
	p := options.Paths
	return &WorkbookStage{
		BaseStage: NewBaseStage(StageIDWorkbook, StageNameWorkbook,
			[]string{StageIDLifeExpectancy, StageIDGDPLifeExpectancy, StageIDGDPHealthcare, StageIDCovidSnapshot}).WithData(
			[]DataRequirement{{Dataset: ContextKeyWorkbookSheets, Optional: true}},
			[]DataOutput{{Location: p.WorkbookXLSX}},
		),
		logger:  stageLogger(logger, StageIDWorkbook),
		options: options,
	}
}

// Execute writes the sheets queued by earlier steps, or the output files
// already on disk when run on its own
func (s *WorkbookStage) Execute(ctx context.Context, state *OperationState) error {
	io := newStageIO(s.ID(), s.options, s.logger)
	p := s.options.Paths

	var sheets []exporter.Sheet
	if v, ok := state.GetContext(ContextKeyWorkbookSheets); ok {
		sheets, _ = v.([]exporter.Sheet)
	}
	if len(sheets) == 0 {
		var err error
		if sheets, err = s.sheetsFromDisk(ctx, io); err != nil {
			return err
		}
	}
	if len(sheets) == 0 {
		return apperrors.NewNotFoundError("workbook datasets").WithContext("datasets_dir", p.DatasetsDir)
	}

	if err := s.options.Workbook.Export(p.WorkbookXLSX, sheets); err != nil {
		return err
	}

	rows := 0
	for _, sheet := range sheets {
		rows += sheet.Table.Len()
	}
	io.recordWritten(ctx, domain.DatasetInfo{
		Name: tableName(p.WorkbookXLSX),
		Path: p.WorkbookXLSX,
		Rows: rows,
	})
	s.logger.InfoContext(ctx, "Exported workbook",
		slog.String("file_path", p.WorkbookXLSX),
		slog.Int("sheets", len(sheets)))
	io.finish(state)
	return nil
}

func (s *WorkbookStage) sheetsFromDisk(ctx context.Context, io *stageIO) ([]exporter.Sheet, error) {
	p := s.options.Paths
	fixed := []struct {
		name string
		path string
	}{
		{sheetLifeExpectancy, p.LifeExpectancyCSV},
		{sheetGDPLifeExpectancy, p.GDPLifeExpectancyCSV},
		{sheetCovidSnapshot, p.CovidSnapshotCSV},
	}

	var sheets []exporter.Sheet
	for _, f := range fixed {
		if !config.FileExists(f.path) {
			continue
		}
		t, err := io.read(ctx, f.path, false)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, exporter.Sheet{Name: f.name, Table: t})
	}

	files, err := filepath.Glob(filepath.Join(p.GDPHealthcareByYearDir, "gdp-healthcare-*.csv"))
	if err != nil {
		return nil, apperrors.NewStorageError("scan gdp healthcare partitions", err)
	}
	sort.Strings(files)
	for _, file := range files {
		year, ok := trailingYear(tableName(file))
		if !ok {
			continue
		}
		t, err := io.read(ctx, file, false)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, exporter.Sheet{Name: fmt.Sprintf(sheetGDPHealthcare, year), Table: t})
	}
	return sheets, nil
}

// loadTable returns the in-memory table under key, or reads path
func loadTable(ctx context.Context, state *OperationState, io *stageIO, key, path string) (*dataprocessing.Table, error) {
	if t, ok := contextTable(state, key); ok {
		io.countRead(ctx, t.Len())
		return t, nil
	}
	return io.read(ctx, path, false)
}

// StageFactory creates every pipeline step
func StageFactory(options *StageOptions, logger *slog.Logger) map[string]Step {
	return map[string]Step{
		StageIDGDPCurrency:       NewGDPCurrencyStage(options, logger),
		StageIDLifeExpectancy:    NewLifeExpectancyStage(options, logger),
		StageIDGDPNormalize:      NewGDPNormalizeStage(options, logger),
		StageIDHealthcare:        NewHealthcareStage(options, logger),
		StageIDGDPLifeExpectancy: NewGDPLifeExpectancyStage(options, logger),
		StageIDGDPHealthcare:     NewGDPHealthcareStage(options, logger),
		StageIDCovidSnapshot:     NewCovidSnapshotStage(options, logger),
		StageIDWorkbook:          NewWorkbookStage(options, logger),
	}
}

// PipelineStageIDs lists the steps enabled by cfg in registration order
func PipelineStageIDs(cfg config.PipelineConfig) []string {
	var ids []string
	if cfg.ConvertRawGDP {
		ids = append(ids, StageIDGDPCurrency)
	}
	ids = append(ids,
		StageIDLifeExpectancy,
		StageIDGDPNormalize,
		StageIDHealthcare,
		StageIDGDPLifeExpectancy,
		StageIDGDPHealthcare,
		StageIDCovidSnapshot,
	)
	if cfg.ExportWorkbook {
		ids = append(ids, StageIDWorkbook)
	}
	return ids
}

// RegisterPipeline registers the steps enabled by options.Pipeline
func RegisterPipeline(registry *Registry, options *StageOptions, logger *slog.Logger) error {
	steps := StageFactory(options, logger)
	for _, id := range PipelineStageIDs(options.Pipeline) {
		if err := registry.Register(steps[id]); err != nil {
			return fmt.Errorf("failed to register step %s: %w", id, err)
		}
	}
	return nil
}

var (
	_ Step = (*GDPCurrencyStage)(nil)
	_ Step = (*LifeExpectancyStage)(nil)
	_ Step = (*GDPNormalizeStage)(nil)
	_ Step = (*HealthcareStage)(nil)
	_ Step = (*GDPLifeExpectancyStage)(nil)
	_ Step = (*GDPHealthcareStage)(nil)
	_ Step = (*CovidSnapshotStage)(nil)
	_ Step = (*WorkbookStage)(nil)
)
