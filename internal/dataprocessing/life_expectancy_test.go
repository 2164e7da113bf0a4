package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "healthstats/internal/errors"
	"healthstats/pkg/contracts/domain"
)

const wideLifeFixture = `Country Name,Country Code,Series Name,Series Code,2000 [YR2000],2001 [YR2001],2002 [YR2002]
A,AAA,"Life expectancy at birth, total (years)",SP.DYN.LE00.IN,70,71,72
A,AAA,"Population, total",SP.POP.TOTL,100,110,..
A,AAA,"Life expectancy at birth, female (years)",SP.DYN.LE00.FE.IN,75,..,76
B,BBB,"Life expectancy at birth, total (years)",SP.DYN.LE00.IN,60,,62
B,BBB,GDP (current US$),NY.GDP.MKTP.CD,1,2,3
C,CCC,"Life expectancy at birth, total (years)",SP.DYN.LE00.IN,..,..,..
A,AAA,"Life expectancy at birth, total (years)",SP.DYN.LE00.IN,99,99,99
`

func f64(v float64) *float64 { return &v }

func TestLifeExpectancyReshape(t *testing.T) {
	wide := parseTable(t, "life", wideLifeFixture)

	result, err := NewLifeExpectancyReshaper(LifeExpectancyOptions{}).Reshape(wide)
	require.NoError(t, err)

	want := []domain.LifeExpectancyPopulation{
		{Country: "A", Year: 2000, Total: domain.BreakdownFemale, LifeExpectancy: f64(75)},
		{Country: "A", Year: 2000, Total: domain.BreakdownTotal, LifeExpectancy: f64(70), Population: f64(100)},
		{Country: "A", Year: 2001, Total: domain.BreakdownTotal, LifeExpectancy: f64(71), Population: f64(110)},
		{Country: "A", Year: 2002, Total: domain.BreakdownFemale, LifeExpectancy: f64(76)},
		{Country: "A", Year: 2002, Total: domain.BreakdownTotal, LifeExpectancy: f64(72)},
		{Country: "B", Year: 2000, Total: domain.BreakdownTotal, LifeExpectancy: f64(60)},
		{Country: "B", Year: 2002, Total: domain.BreakdownTotal, LifeExpectancy: f64(62)},
	}
	assert.Equal(t, want, result.Records)

	t.Run("first duplicate wins", func(t *testing.T) {
		assert.Equal(t, 3, result.Stats.Duplicates)
		for _, r := range result.Records {
			if r.LifeExpectancy != nil {
				assert.NotEqual(t, 99.0, *r.LifeExpectancy)
			}
		}
	})

	t.Run("countries without values are dropped", func(t *testing.T) {
		assert.Equal(t, []string{"A", "B"}, result.Countries)
	})

	t.Run("unknown series excluded", func(t *testing.T) {
		assert.Equal(t, []string{"GDP (current US$)"}, result.Stats.UnknownSeries)
		assert.Equal(t, 3, result.Stats.RowsUnknown)
	})

	t.Run("final year has no partition", func(t *testing.T) {
		assert.Equal(t, []int{2000, 2001, 2002}, result.Years)
		assert.Equal(t, 2002, result.FinalYear)
		assert.Equal(t, []int{2000, 2001}, result.PartitionYears())
		assert.Len(t, result.ByYear[2000], 3)
		assert.Len(t, result.ByYear[2001], 1)
		_, ok := result.ByYear[2002]
		assert.False(t, ok)
	})

	t.Run("table round trip", func(t *testing.T) {
		table := LifeExpectancyTable("life", result.Records)
		assert.Equal(t, LifeExpectancyColumns, table.Columns)
		assert.Equal(t, []string{"A", "2000", "total", "70.0", "100.0"}, table.Rows[1])
		assert.Equal(t, []string{"A", "2002", "total", "72.0", ""}, table.Rows[4])

		back, err := LifeExpectancyFromTable(table)
		require.NoError(t, err)
		assert.Equal(t, result.Records, back)
	})
}

func TestLifeExpectancyReshapeStrictSeries(t *testing.T) {
	wide := parseTable(t, "life", wideLifeFixture)

	_, err := NewLifeExpectancyReshaper(LifeExpectancyOptions{StrictSeries: true}).Reshape(wide)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnknownSeries))
}

func TestLifeExpectancyReshapeUnknownBreakdown(t *testing.T) {
	wide := parseTable(t, "life", `Country Name,Country Code,Series Name,Series Code,2000
A,AAA,"Life expectancy at birth, all (years)",X,70
`)

	_, err := NewLifeExpectancyReshaper(LifeExpectancyOptions{}).Reshape(wide)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnknownBreakdown))
}

func TestLifeExpectancyReshapeMissingColumn(t *testing.T) {
	wide := parseTable(t, "life", "Country Name,Series Name,2000\nA,Population,1\n")

	_, err := NewLifeExpectancyReshaper(LifeExpectancyOptions{}).Reshape(wide)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMissingColumn))
}

func TestLifeExpectancyFromTableInvalidYear(t *testing.T) {
	table := parseTable(t, "life", "Country,Year,Total,Life_expectancy,Population\nA,abc,total,70,\n")
	_, err := LifeExpectancyFromTable(table)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}
