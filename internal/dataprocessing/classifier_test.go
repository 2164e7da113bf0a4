package dataprocessing

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "healthstats/internal/errors"
	"healthstats/pkg/contracts/domain"
)

func TestStandardizeBreakdown(t *testing.T) {
	tests := []struct {
		label  string
		want   domain.Breakdown
		wantOK bool
	}{
		{"female (years)", domain.BreakdownFemale, true},
		{"male (years)", domain.BreakdownMale, true},
		{"total (years)", domain.BreakdownTotal, true},
		{"total", domain.BreakdownTotal, true},
		{"Female", domain.BreakdownFemale, true},
		{"ages 15-64", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := StandardizeBreakdown(tt.label)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBreakdownLabel(t *testing.T) {
	assert.Equal(t, "total (years)", BreakdownLabel("Life expectancy at birth, total (years)"))
	assert.Equal(t, "female", BreakdownLabel("Population, female"))
	assert.Equal(t, "Population", BreakdownLabel("Population"))
}

func TestSeriesClassifier(t *testing.T) {
	c := DefaultSeriesClassifier()

	tests := []struct {
		series      string
		wantMeasure domain.Measure
		wantTotal   domain.Breakdown
		wantErr     error
	}{
		{"Life expectancy at birth, total (years)", domain.MeasureLifeExpectancy, domain.BreakdownTotal, nil},
		{"Life expectancy at birth, female (years)", domain.MeasureLifeExpectancy, domain.BreakdownFemale, nil},
		{"Population, male", domain.MeasurePopulation, domain.BreakdownMale, nil},
		{"Population, total", domain.MeasurePopulation, domain.BreakdownTotal, nil},
		{"GDP (current US$)", "", "", apperrors.ErrUnknownSeries},
		{"Population ages 65 and above", "", "", apperrors.ErrUnknownBreakdown},
	}
	for _, tt := range tests {
		t.Run(tt.series, func(t *testing.T) {
			measure, total, err := c.Classify(tt.series)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMeasure, measure)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestSeriesClassifierRuleOrder(t *testing.T) {
	c := NewSeriesClassifier(
		SeriesRule{Pattern: regexp.MustCompile(`^Population`), Measure: domain.MeasurePopulation},
		SeriesRule{Pattern: regexp.MustCompile(`.*`), Measure: domain.MeasureLifeExpectancy},
	)
	m, err := c.Measure("Population, total")
	require.NoError(t, err)
	assert.Equal(t, domain.MeasurePopulation, m)

	m, err = c.Measure("anything else")
	require.NoError(t, err)
	assert.Equal(t, domain.MeasureLifeExpectancy, m)
}
