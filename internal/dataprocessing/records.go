package dataprocessing

import (
	"fmt"
	"strconv"

	apperrors "healthstats/internal/errors"
	"healthstats/pkg/contracts/domain"
)

// HealthcareColumns is the column layout of a per-year healthcare table.
var HealthcareColumns = []string{
	domain.ColCountry,
	domain.ColYear,
	domain.ColLifeExpectancy,
	domain.ColPopulation,
	domain.ColHealthExpenditurePerCapita,
	domain.ColTotalHealthExpenditure,
}

// LifeExpectancyTable renders records in LifeExpectancyColumns layout.
func LifeExpectancyTable(name string, records []domain.LifeExpectancyPopulation) *Table {
	t := NewTable(name, LifeExpectancyColumns)
	t.Rows = make([][]string, 0, len(records))
	for _, r := range records {
		t.Append(
			r.Country,
			strconv.Itoa(r.Year),
			string(r.Total),
			FormatOptional(r.LifeExpectancy),
			FormatOptional(r.Population),
		)
	}
	return t
}

// LifeExpectancyFromTable parses a table previously written by
// LifeExpectancyTable.
func LifeExpectancyFromTable(t *Table) ([]domain.LifeExpectancyPopulation, error) {
	if err := t.Require(LifeExpectancyColumns...); err != nil {
		return nil, err
	}
	out := make([]domain.LifeExpectancyPopulation, 0, t.Len())
	for i := range t.Rows {
		row := t.Row(i)
		year, ok := ParseYear(row.Get(domain.ColYear))
		if !ok {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("%s row %d: invalid year %q", t.Name, i+1, row.Get(domain.ColYear)), nil)
		}
		out = append(out, domain.LifeExpectancyPopulation{
			Country:        row.Get(domain.ColCountry),
			Year:           year,
			Total:          domain.Breakdown(row.Get(domain.ColTotal)),
			LifeExpectancy: ParseOptional(row.Get(domain.ColLifeExpectancy)),
			Population:     ParseOptional(row.Get(domain.ColPopulation)),
		})
	}
	return out, nil
}

// GDPTable renders records in GDPJoinColumns layout.
func GDPTable(name string, records []domain.GDPRecord) *Table {
	t := NewTable(name, domain.GDPJoinColumns)
	t.Rows = make([][]string, 0, len(records))
	for _, r := range records {
		t.Append(
			r.Country,
			strconv.Itoa(r.Year),
			FormatOptional(r.IncomePerPerson),
			FormatOptional(r.TotalGDP),
		)
	}
	return t
}

// HealthcareTable renders combined records in HealthcareColumns layout.
func HealthcareTable(name string, records []domain.CombinedHealthLifeRecord) *Table {
	t := NewTable(name, HealthcareColumns)
	t.Rows = make([][]string, 0, len(records))
	for _, r := range records {
		t.Append(
			r.Country,
			strconv.Itoa(r.Year),
			FormatOptional(r.LifeExpectancy),
			FormatOptional(r.Population),
			FormatFloat(r.PerCapita),
			FormatOptional(r.TotalHealthExpenditure),
		)
	}
	return t
}
