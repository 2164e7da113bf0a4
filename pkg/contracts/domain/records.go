package domain

// GDPRecord is one row of the euro-denominated GDP dataset. Missing amounts
// are nil.
type GDPRecord struct {
	Country         string   `json:"country"`
	Year            int      `json:"year"`
	IncomePerPerson *float64 `json:"income_per_person,omitempty"`
	TotalGDP        *float64 `json:"total_gdp,omitempty"`
}

// HealthExpenditureRecord is per-capita health spending, already converted to euro.
type HealthExpenditureRecord struct {
	Country   string  `json:"country"`
	Year      int     `json:"year"`
	PerCapita float64 `json:"health_expenditure_per_capita"`
}

// CombinedHealthLifeRecord joins the "total" life expectancy row of a country
// and year with its health expenditure.
type CombinedHealthLifeRecord struct {
	Country                string   `json:"country"`
	Year                   int      `json:"year"`
	LifeExpectancy         *float64 `json:"life_expectancy,omitempty"`
	Population             *float64 `json:"population,omitempty"`
	PerCapita              float64  `json:"health_expenditure_per_capita"`
	TotalHealthExpenditure *float64 `json:"total_health_expenditure,omitempty"`
}

// NewCombinedHealthLifeRecord derives the total expenditure from population.
func NewCombinedHealthLifeRecord(life LifeExpectancyPopulation, health HealthExpenditureRecord) CombinedHealthLifeRecord {
	rec := CombinedHealthLifeRecord{
		Country:        life.Country,
		Year:           life.Year,
		LifeExpectancy: life.LifeExpectancy,
		Population:     life.Population,
		PerCapita:      health.PerCapita,
	}
	if life.Population != nil {
		total := health.PerCapita * *life.Population
		rec.TotalHealthExpenditure = &total
	}
	return rec
}
