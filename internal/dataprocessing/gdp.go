package dataprocessing

import (
	"sort"
	"strconv"

	apperrors "healthstats/internal/errors"
	"healthstats/pkg/contracts/domain"
)

// NormalizeCountries rewrites GDP country names that have an alias. It
// returns the normalized table and the number of cells changed. With a
// non-chaining alias table, applying it twice yields the same table.
func NormalizeCountries(gdp *Table, aliases map[string]string) (*Table, int, error) {
	changed := 0
	out, err := gdp.MapColumn(domain.ColCountry, func(name string) string {
		if canonical, ok := aliases[name]; ok && canonical != name {
			changed++
			return canonical
		}
		return name
	})
	if err != nil {
		return nil, 0, err
	}
	return out, changed, nil
}

// ConvertGDPToEuro prepares the raw GDP source: it renames the raw columns,
// coerces income and total GDP to numbers, multiplies them by rate and
// fills every remaining missing cell with zero. The zero is "0.0" in a column
// whose other cells are all numbers and "0" in a text column.
func ConvertGDPToEuro(raw *Table, rate float64) (*Table, error) {
	renamed := raw.Rename(map[string]string{
		domain.RawColIncomePerPerson:    domain.ColIncomePerPerson,
		domain.RawColGDPTotal:           domain.ColTotalGDP,
		domain.RawColGDPPerCapitaGrowth: domain.ColGDPPerCapitaGrowth,
	})
	if err := renamed.Require(domain.ColCountry, domain.ColIncomePerPerson, domain.ColTotalGDP); err != nil {
		return nil, err
	}

	convert := func(cell string) string {
		v, ok := ParseNumber(cell)
		if !ok {
			return FormatFloat(0)
		}
		return FormatFloat(v * rate)
	}
	out, err := renamed.MapColumn(domain.ColIncomePerPerson, convert)
	if err != nil {
		return nil, err
	}
	if out, err = out.MapColumn(domain.ColTotalGDP, convert); err != nil {
		return nil, err
	}

	for j := range out.Columns {
		zero := "0"
		if numericColumn(out, j) {
			zero = FormatFloat(0)
		}
		for _, row := range out.Rows {
			if row[j] == "" {
				row[j] = zero
			}
		}
	}
	return out, nil
}

// numericColumn reports whether every non-empty cell of column j is a number.
func numericColumn(t *Table, j int) bool {
	for _, row := range t.Rows {
		if row[j] == "" {
			continue
		}
		if _, ok := ParseNumber(row[j]); !ok {
			return false
		}
	}
	return true
}

// JoinGDPLifeExpectancy inner-joins every GDP column with every life
// expectancy column on (Country, Year). Each GDP row fans out to one row
// per matching breakdown.
func JoinGDPLifeExpectancy(gdp, life *Table) (*Table, error) {
	if err := gdp.Require(domain.JoinKey...); err != nil {
		return nil, err
	}
	return InnerJoin(gdp, life, On(domain.JoinKey...))
}

// GDPRecordsForYear decodes the GDP rows of year. Rows whose Year cell is
// not a number never match.
func GDPRecordsForYear(gdp *Table, year int) ([]domain.GDPRecord, error) {
	if err := gdp.Require(domain.GDPJoinColumns...); err != nil {
		return nil, err
	}
	want := strconv.Itoa(year)
	var out []domain.GDPRecord
	for i := range gdp.Rows {
		row := gdp.Row(i)
		if canonicalKey(row.Get(domain.ColYear)) != want {
			continue
		}
		out = append(out, domain.GDPRecord{
			Country:         row.Get(domain.ColCountry),
			Year:            year,
			IncomePerPerson: ParseOptional(row.Get(domain.ColIncomePerPerson)),
			TotalGDP:        ParseOptional(row.Get(domain.ColTotalGDP)),
		})
	}
	return out, nil
}

// GDPForYear returns the GDPJoinColumns subset of gdp restricted to year.
func GDPForYear(gdp *Table, year int) (*Table, error) {
	records, err := GDPRecordsForYear(gdp, year)
	if err != nil {
		return nil, err
	}
	return GDPTable(gdp.Name, records), nil
}

// JoinGDPHealthcare joins one year's GDP subset with that year's healthcare
// table on (Country, Year).
func JoinGDPHealthcare(gdp, healthcare *Table, year int) (*Table, error) {
	subset, err := GDPForYear(gdp, year)
	if err != nil {
		return nil, err
	}
	return InnerJoin(subset, healthcare, On(domain.JoinKey...))
}

// ResolveYears narrows the available years to [from, to]. Zero bounds are
// open. Every year inside explicit bounds must be available.
func ResolveYears(dataset string, available []int, from, to int) ([]int, error) {
	years := append([]int(nil), available...)
	sort.Ints(years)
	if len(years) == 0 {
		if from != 0 {
			return nil, apperrors.NewYearNotAvailableError(dataset, from)
		}
		return nil, nil
	}
	if from == 0 {
		from = years[0]
	}
	if to == 0 {
		to = years[len(years)-1]
	}

	have := make(map[int]bool, len(years))
	for _, y := range years {
		have[y] = true
	}
	var out []int
	for y := from; y <= to; y++ {
		if !have[y] {
			return nil, apperrors.NewYearNotAvailableError(dataset, y)
		}
		out = append(out, y)
	}
	return out, nil
}
