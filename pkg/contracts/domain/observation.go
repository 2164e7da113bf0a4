package domain

// Measure is the kind of value a series carries.
type Measure string

const (
	MeasureLifeExpectancy Measure = ColLifeExpectancy
	MeasurePopulation     Measure = ColPopulation
)

// Breakdown is the demographic slice a series describes.
type Breakdown string

const (
	BreakdownFemale Breakdown = "female"
	BreakdownMale   Breakdown = "male"
	BreakdownTotal  Breakdown = "total"
)

// Breakdowns lists the standardized labels in matching order. "female" is
// tested before "male" because it contains it.
var Breakdowns = []Breakdown{BreakdownFemale, BreakdownMale, BreakdownTotal}

// LongObservation is one (Country, Year, Type, Total) value of the long table.
type LongObservation struct {
	Country string    `json:"country"`
	Year    int       `json:"year"`
	Type    Measure   `json:"type"`
	Total   Breakdown `json:"total"`
	Value   float64   `json:"value"`
}

// ObservationKey identifies a LongObservation. At most one value exists per key.
type ObservationKey struct {
	Country string
	Year    int
	Type    Measure
	Total   Breakdown
}

// Key returns the de-duplication key of the observation.
func (o LongObservation) Key() ObservationKey {
	return ObservationKey{Country: o.Country, Year: o.Year, Type: o.Type, Total: o.Total}
}

// LifeExpectancyPopulation is one (Country, Year, Total) row after pivoting.
// A nil measure means the source had no value for it.
type LifeExpectancyPopulation struct {
	Country        string    `json:"country"`
	Year           int       `json:"year"`
	Total          Breakdown `json:"total"`
	LifeExpectancy *float64  `json:"life_expectancy,omitempty"`
	Population     *float64  `json:"population,omitempty"`
}
