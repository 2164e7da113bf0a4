package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "healthstats/internal/errors"
)

var testAliases = map[string]string{
	"Macedonia, FYR":  "North Macedonia",
	"Russia":          "Russian Federation",
	"Slovak Republic": "Slovakia",
	"Czech Republic":  "Czechia",
}

func TestNormalizeCountries(t *testing.T) {
	gdp := parseTable(t, "gdp", `Country,Year,Income_per_Person,Total_GDP
Russia,2000,10.0,100.0
"Macedonia, FYR",2000,20.0,200.0
France,2000,30.0,300.0
`)

	once, changed, err := NormalizeCountries(gdp, testAliases)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)
	assert.Equal(t, []string{"Russian Federation", "North Macedonia", "France"}, once.Column("Country"))
	assert.Equal(t, "Russia", gdp.Get(0, "Country"))

	twice, changed, err := NormalizeCountries(once, testAliases)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
	assert.Equal(t, once.Rows, twice.Rows)
	assert.Equal(t, once.Columns, twice.Columns)

	_, _, err = NormalizeCountries(parseTable(t, "bad", "Name\nA\n"), testAliases)
	assert.True(t, errors.Is(err, apperrors.ErrMissingColumn))
}

func TestConvertGDPToEuro(t *testing.T) {
	raw := parseTable(t, "gdp-raw", `Country,Year,Income per person (ppp$2021),GDP total,GDP per capita growth (%)
A,2000,100,1000,
B,2000,,2000,1.5
`)

	out, err := ConvertGDPToEuro(raw, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Country", "Year", "Income_per_Person", "Total_GDP", "GDP_per_Capita_Growth_(%)"}, out.Columns)
	assert.Equal(t, [][]string{
		{"A", "2000", "50.0", "500.0", "0.0"},
		{"B", "2000", "0.0", "1000.0", "1.5"},
	}, out.Rows)
}

func TestConvertGDPToEuroFillsTextColumnsWithPlainZero(t *testing.T) {
	raw := parseTable(t, "gdp-raw", `Country,Year,Income per person (ppp$2021),GDP total,Region
A,2000,100,1000,
B,,100,1000,Europe
`)

	out, err := ConvertGDPToEuro(raw, 1)
	require.NoError(t, err)
	assert.Equal(t, "0", out.Get(0, "Region"))
	assert.Equal(t, "0.0", out.Get(1, "Year"))
}

func TestGDPRecordsForYear(t *testing.T) {
	gdp := parseTable(t, "gdp", `Country,Year,Income_per_Person,Total_GDP,GDP_per_Capita_Growth_(%)
A,2000,50,500.0,1.0
A,2001.0,55.0,,1.0
B,2001,60.0,600.0,1.0
C,n/a,1.0,1.0,1.0
`)

	records, err := GDPRecordsForYear(gdp, 2001)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Country)
	assert.Equal(t, 2001, records[0].Year)
	require.NotNil(t, records[0].IncomePerPerson)
	assert.Equal(t, 55.0, *records[0].IncomePerPerson)
	assert.Nil(t, records[0].TotalGDP)

	subset, err := GDPForYear(gdp, 2000)
	require.NoError(t, err)
	assert.Equal(t, []string{"Country", "Year", "Income_per_Person", "Total_GDP"}, subset.Columns)
	assert.Equal(t, [][]string{{"A", "2000", "50.0", "500.0"}}, subset.Rows)

	_, err = GDPRecordsForYear(parseTable(t, "bad", `Country,Year
A,2000
`), 2000)
	assert.True(t, errors.Is(err, apperrors.ErrMissingColumn))
}

func TestJoinGDPLifeExpectancy(t *testing.T) {
	gdp := parseTable(t, "gdp", `Country,Year,Income_per_Person,Total_GDP,GDP_per_Capita_Growth_(%)
A,2000,50.0,500.0,1.0
C,2000,10.0,100.0,2.0
`)
	life := parseTable(t, "life", `Country,Year,Total,Life_expectancy,Population
A,2000,female,75.0,
A,2000,total,70.0,100.0
B,2000,total,60.0,
`)

	out, err := JoinGDPLifeExpectancy(gdp, life)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Country", "Year", "Income_per_Person", "Total_GDP", "GDP_per_Capita_Growth_(%)",
		"Total", "Life_expectancy", "Population",
	}, out.Columns)
	assert.Equal(t, [][]string{
		{"A", "2000", "50.0", "500.0", "1.0", "female", "75.0", ""},
		{"A", "2000", "50.0", "500.0", "1.0", "total", "70.0", "100.0"},
	}, out.Rows)
}

func TestJoinGDPHealthcare(t *testing.T) {
	gdp := parseTable(t, "gdp", `Country,Year,Income_per_Person,Total_GDP,GDP_per_Capita_Growth_(%)
A,2000,50.0,500.0,1.0
A,2001,55.0,550.0,1.0
B,2001,60.0,600.0,1.0
`)
	health := parseTable(t, "healthcare-2001", `Country,Year,Life_expectancy,Population,Health Expenditure per Capita,Total Health Expenditure
B,2001,61.0,200.0,15.0,3000.0
Z,2001,50.0,10.0,1.0,10.0
`)

	out, err := JoinGDPHealthcare(gdp, health, 2001)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Country", "Year", "Income_per_Person", "Total_GDP",
		"Life_expectancy", "Population", "Health Expenditure per Capita", "Total Health Expenditure",
	}, out.Columns)
	assert.Equal(t, [][]string{
		{"B", "2001", "60.0", "600.0", "61.0", "200.0", "15.0", "3000.0"},
	}, out.Rows)
}

func TestResolveYears(t *testing.T) {
	available := []int{2002, 2000, 2001, 2003}

	tests := []struct {
		name     string
		from, to int
		want     []int
		wantErr  bool
	}{
		{name: "open range", want: []int{2000, 2001, 2002, 2003}},
		{name: "narrowed", from: 2001, to: 2002, want: []int{2001, 2002}},
		{name: "open upper bound", from: 2002, want: []int{2002, 2003}},
		{name: "beyond data", from: 2000, to: 2005, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveYears("healthcare", available, tt.from, tt.to)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrYearNotAvailable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
