package dataprocessing

import (
	"regexp"
	"strings"

	apperrors "healthstats/internal/errors"
	"healthstats/pkg/contracts/domain"
)

// SeriesRule maps series names matching Pattern to a measure.
type SeriesRule struct {
	Pattern *regexp.Regexp
	Measure domain.Measure
}

// SeriesClassifier assigns a measure and a breakdown to a series name.
// Rules are tried in order; the first match wins.
type SeriesClassifier struct {
	rules []SeriesRule
}

// NewSeriesClassifier creates a classifier from explicit rules.
func NewSeriesClassifier(rules ...SeriesRule) *SeriesClassifier {
	return &SeriesClassifier{rules: rules}
}

// DefaultSeriesClassifier recognizes the life expectancy and population
// series of the World Development Indicators export.
func DefaultSeriesClassifier() *SeriesClassifier {
	return NewSeriesClassifier(
		SeriesRule{Pattern: regexp.MustCompile(`Life expectancy`), Measure: domain.MeasureLifeExpectancy},
		SeriesRule{Pattern: regexp.MustCompile(`Population`), Measure: domain.MeasurePopulation},
	)
}

// Measure returns the measure for series, or an ErrUnknownSeries error.
func (c *SeriesClassifier) Measure(series string) (domain.Measure, error) {
	for _, r := range c.rules {
		if r.Pattern.MatchString(series) {
			return r.Measure, nil
		}
	}
	return "", apperrors.NewUnknownSeriesError(series)
}

// Classify returns the measure and standardized breakdown of series.
func (c *SeriesClassifier) Classify(series string) (domain.Measure, domain.Breakdown, error) {
	measure, err := c.Measure(series)
	if err != nil {
		return "", "", err
	}
	label := BreakdownLabel(series)
	breakdown, ok := StandardizeBreakdown(label)
	if !ok {
		return "", "", apperrors.NewUnknownBreakdownError(label, series)
	}
	return measure, breakdown, nil
}

// BreakdownLabel returns the text after the last comma of a series name,
// trimmed. A name without a comma is returned whole.
func BreakdownLabel(series string) string {
	if i := strings.LastIndex(series, ","); i >= 0 {
		series = series[i+1:]
	}
	return strings.TrimSpace(series)
}

// StandardizeBreakdown maps a free-text label to female, male or total.
// "female" is tested first since it contains "male".
func StandardizeBreakdown(label string) (domain.Breakdown, bool) {
	lower := strings.ToLower(label)
	for _, b := range domain.Breakdowns {
		if strings.Contains(lower, string(b)) {
			return b, true
		}
	}
	return "", false
}
