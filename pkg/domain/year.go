package domain

// Year is an integer calendar year. The current planning scope runs from 2021
// through 2030; years at or before the cutoff are historical, years after it
// belong to the forecast horizon.
type Year int

const (
	// FirstHistoricalYear is the first year for which historical observations exist.
	FirstHistoricalYear Year = 2021
	// DefaultCutoffYear is the last historical year in the current scope.
	DefaultCutoffYear Year = 2025
	// FinalForecastYear is the last year of the current planning scope.
	FinalForecastYear Year = 2030
)

// IsHistorical reports whether the year is at or before the given cutoff.
func (y Year) IsHistorical(cutoff Year) bool { return y <= cutoff }

// ForecastYears returns the horizon of forecast years following cutoff,
// in ascending order.
func ForecastYears(cutoff Year, horizon int) []Year {
	years := make([]Year, 0, horizon)
	for i := 1; i <= horizon; i++ {
		years = append(years, cutoff+Year(i))
	}

	return years
}
