package dataprocessing

import (
	"healthstats/pkg/contracts/domain"
)

// HealthcareStats counts rows through the healthcare melt.
type HealthcareStats struct {
	RowsMelted  int
	RowsMissing int
	// Years lists the distinct years with data, in first-appearance order.
	Years []int
}

// MeltHealthExpenditure unpivots the wide health expenditure source, drops
// missing values and converts per-capita spending with rate.
func MeltHealthExpenditure(wide *Table, rate float64) ([]domain.HealthExpenditureRecord, HealthcareStats, error) {
	var stats HealthcareStats

	long, err := Melt(wide, domain.WideIndicatorIDColumns, domain.ColYear, domain.ColHealthExpenditure)
	if err != nil {
		return nil, stats, err
	}
	stats.RowsMelted = long.Len()

	seenYear := make(map[int]bool)
	records := make([]domain.HealthExpenditureRecord, 0, long.Len())
	for i := range long.Rows {
		row := long.Row(i)
		year, okYear := ExtractYear(row.Get(domain.ColYear))
		value, okValue := ParseNumber(row.Get(domain.ColHealthExpenditure))
		if !okYear || !okValue {
			stats.RowsMissing++
			continue
		}
		if !seenYear[year] {
			seenYear[year] = true
			stats.Years = append(stats.Years, year)
		}
		records = append(records, domain.HealthExpenditureRecord{
			Country:   row.Get(domain.ColCountryName),
			Year:      year,
			PerCapita: value * rate,
		})
	}
	return records, stats, nil
}

// LifePartitionSource returns the life expectancy partition of a year, or
// an ErrYearNotAvailable error when none exists.
type LifePartitionSource func(year int) ([]domain.LifeExpectancyPopulation, error)

// CombineHealthcare joins each year's health expenditure with the "total"
// rows of that year's life expectancy partition. Countries missing on
// either side are dropped. Rows follow the partition order.
func CombineHealthcare(health []domain.HealthExpenditureRecord, years []int, life LifePartitionSource) (map[int][]domain.CombinedHealthLifeRecord, error) {
	type key struct {
		country string
		year    int
	}
	byKey := make(map[key][]domain.HealthExpenditureRecord)
	for _, h := range health {
		k := key{country: h.Country, year: h.Year}
		byKey[k] = append(byKey[k], h)
	}

	out := make(map[int][]domain.CombinedHealthLifeRecord, len(years))
	for _, year := range years {
		partition, err := life(year)
		if err != nil {
			return nil, err
		}
		combined := []domain.CombinedHealthLifeRecord{}
		for _, l := range partition {
			if l.Year != year || l.Total != domain.BreakdownTotal {
				continue
			}
			for _, h := range byKey[key{country: l.Country, year: l.Year}] {
				combined = append(combined, domain.NewCombinedHealthLifeRecord(l, h))
			}
		}
		out[year] = combined
	}
	return out, nil
}
