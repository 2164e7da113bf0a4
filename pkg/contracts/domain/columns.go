package domain

// Column names shared between pipeline stages. Downstream joins match on
// these names, so renaming one here changes every produced file.
const (
	ColCountry     = "Country"
	ColCountryName = "Country Name"
	ColCountryCode = "Country Code"
	ColYear        = "Year"
	ColValue       = "Value"

	ColSeriesName = "Series Name"
	ColSeriesCode = "Series Code"

	ColIndicatorName = "Indicator Name"
	ColIndicatorCode = "Indicator Code"

	ColTotal          = "Total"
	ColLifeExpectancy = "Life_expectancy"
	ColPopulation     = "Population"

	ColIncomePerPerson    = "Income_per_Person"
	ColTotalGDP           = "Total_GDP"
	ColGDPPerCapitaGrowth = "GDP_per_Capita_Growth_(%)"

	ColHealthExpenditure          = "Health Expenditure"
	ColHealthExpenditurePerCapita = "Health Expenditure per Capita"
	ColTotalHealthExpenditure     = "Total Health Expenditure"

	ColEntity = "Entity"
	ColDay    = "Day"
)

// Raw GDP source columns before conversion to euro.
const (
	RawColIncomePerPerson    = "Income per person (ppp$2021)"
	RawColGDPTotal           = "GDP total"
	RawColGDPPerCapitaGrowth = "GDP per capita growth (%)"
)

// WideSeriesIDColumns identify a row of the wide life expectancy/population source.
var WideSeriesIDColumns = []string{ColCountryName, ColCountryCode, ColSeriesName, ColSeriesCode}

// WideIndicatorIDColumns identify a row of the wide healthcare expenditure source.
var WideIndicatorIDColumns = []string{ColCountryName, ColCountryCode, ColIndicatorName, ColIndicatorCode}

// JoinKey is the (Country, Year) key every stage joins on.
var JoinKey = []string{ColCountry, ColYear}

// GDPJoinColumns is the GDP subset carried into the healthcare join.
var GDPJoinColumns = []string{ColCountry, ColYear, ColIncomePerPerson, ColTotalGDP}

// CovidSnapshotColumns are the columns kept by the COVID snapshot filter.
var CovidSnapshotColumns = []string{
	ColEntity,
	ColDay,
	"Cumulative excess deaths per 100,000 people (central estimate)",
	"Cumulative excess deaths per 100,000 people (95% CI, lower bound)",
	"Cumulative excess deaths per 100,000 people (95% CI, upper bound)",
	"Total confirmed deaths due to COVID-19 per 100,000 people",
}
