package dataprocessing

import (
	stderrors "errors"
	"log/slog"
	"sort"

	apperrors "healthstats/internal/errors"
	"healthstats/pkg/contracts/domain"
)

// LifeExpectancyColumns is the column layout of the reshaped table.
var LifeExpectancyColumns = []string{
	domain.ColCountry,
	domain.ColYear,
	domain.ColTotal,
	domain.ColLifeExpectancy,
	domain.ColPopulation,
}

// ReshapeStats counts rows through the reshape.
type ReshapeStats struct {
	RowsMelted    int
	RowsMissing   int
	RowsUnknown   int
	Duplicates    int
	UnknownSeries []string
}

// LifeExpectancyResult is the output of LifeExpectancyReshaper.Reshape.
type LifeExpectancyResult struct {
	// Records are sorted by Country, Year, Total.
	Records []domain.LifeExpectancyPopulation
	// ByYear holds one partition per year, except FinalYear.
	ByYear    map[int][]domain.LifeExpectancyPopulation
	Years     []int
	FinalYear int
	Countries []string
	Stats     ReshapeStats
}

// PartitionYears returns the years that have a partition, ascending.
func (r *LifeExpectancyResult) PartitionYears() []int {
	years := make([]int, 0, len(r.ByYear))
	for y := range r.ByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// LifeExpectancyOptions configures the reshaper.
type LifeExpectancyOptions struct {
	Classifier *SeriesClassifier
	// StrictSeries fails the reshape on a series no rule recognizes instead
	// of excluding it.
	StrictSeries bool
	Logger       *slog.Logger
}

// LifeExpectancyReshaper turns the wide (Country, Series) x Year source into
// one row per (Country, Year, Total) with life expectancy and population
// side by side.
type LifeExpectancyReshaper struct {
	classifier *SeriesClassifier
	strict     bool
	logger     *slog.Logger
}

// NewLifeExpectancyReshaper creates a reshaper. A nil classifier means
// DefaultSeriesClassifier.
func NewLifeExpectancyReshaper(opts LifeExpectancyOptions) *LifeExpectancyReshaper {
	classifier := opts.Classifier
	if classifier == nil {
		classifier = DefaultSeriesClassifier()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LifeExpectancyReshaper{classifier: classifier, strict: opts.StrictSeries, logger: logger}
}

// Reshape runs melt, cleanup, classification, de-duplication and pivot.
func (r *LifeExpectancyReshaper) Reshape(wide *Table) (*LifeExpectancyResult, error) {
	if err := wide.Require(domain.WideSeriesIDColumns...); err != nil {
		return nil, err
	}
	long, err := Melt(wide, domain.WideSeriesIDColumns, domain.ColYear, domain.ColValue)
	if err != nil {
		return nil, err
	}

	result := &LifeExpectancyResult{ByYear: make(map[int][]domain.LifeExpectancyPopulation)}
	result.Stats.RowsMelted = long.Len()

	type classification struct {
		measure   domain.Measure
		breakdown domain.Breakdown
		err       error
	}
	classified := make(map[string]classification)

	var observations []domain.LongObservation
	valuesPerCountry := make(map[string]int)

	for i := range long.Rows {
		row := long.Row(i)
		year, okYear := ExtractYear(row.Get(domain.ColYear))
		value, okValue := ParseNumber(row.Get(domain.ColValue))
		if !okYear || !okValue {
			result.Stats.RowsMissing++
			continue
		}

		series := row.Get(domain.ColSeriesName)
		c, seen := classified[series]
		if !seen {
			measure, breakdown, err := r.classifier.Classify(series)
			c = classification{measure: measure, breakdown: breakdown, err: err}
			classified[series] = c
			if err != nil && stderrors.Is(err, apperrors.ErrUnknownSeries) {
				if r.strict {
					return nil, err
				}
				r.logger.Warn("excluding unrecognized series", slog.String("series", series))
				result.Stats.UnknownSeries = append(result.Stats.UnknownSeries, series)
			}
		}
		if c.err != nil {
			if stderrors.Is(c.err, apperrors.ErrUnknownSeries) {
				result.Stats.RowsUnknown++
				continue
			}
			return nil, c.err
		}

		country := row.Get(domain.ColCountryName)
		observations = append(observations, domain.LongObservation{
			Country: country,
			Year:    year,
			Type:    c.measure,
			Total:   c.breakdown,
			Value:   value,
		})
		valuesPerCountry[country]++
	}

	seen := make(map[domain.ObservationKey]bool, len(observations))
	pivot := make(map[pivotKey]*domain.LifeExpectancyPopulation)
	for _, o := range observations {
		if valuesPerCountry[o.Country] == 0 {
			continue
		}
		if seen[o.Key()] {
			result.Stats.Duplicates++
			continue
		}
		seen[o.Key()] = true

		k := pivotKey{country: o.Country, year: o.Year, total: o.Total}
		rec, ok := pivot[k]
		if !ok {
			rec = &domain.LifeExpectancyPopulation{Country: o.Country, Year: o.Year, Total: o.Total}
			pivot[k] = rec
		}
		v := o.Value
		switch o.Type {
		case domain.MeasureLifeExpectancy:
			rec.LifeExpectancy = &v
		case domain.MeasurePopulation:
			rec.Population = &v
		}
	}

	result.Records = make([]domain.LifeExpectancyPopulation, 0, len(pivot))
	for _, rec := range pivot {
		result.Records = append(result.Records, *rec)
	}
	SortLifeExpectancy(result.Records)

	countries := make(map[string]bool)
	years := make(map[int]bool)
	for _, rec := range result.Records {
		if !countries[rec.Country] {
			countries[rec.Country] = true
			result.Countries = append(result.Countries, rec.Country)
		}
		years[rec.Year] = true
	}
	for y := range years {
		result.Years = append(result.Years, y)
	}
	sort.Ints(result.Years)

	if n := len(result.Years); n > 0 {
		result.FinalYear = result.Years[n-1]
		for _, rec := range result.Records {
			if rec.Year == result.FinalYear {
				continue
			}
			result.ByYear[rec.Year] = append(result.ByYear[rec.Year], rec)
		}
	}
	return result, nil
}

type pivotKey struct {
	country string
	year    int
	total   domain.Breakdown
}

// SortLifeExpectancy orders records by Country, Year, Total.
func SortLifeExpectancy(records []domain.LifeExpectancyPopulation) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Total < b.Total
	})
}
