package model

// YearPoint is a single (year, value) pair.
type YearPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// YearlySeries is an ordered sequence of year/value pairs spanning the
// projection horizon. Every series carries exactly one entry per horizon
// year, in increasing year order, with no gaps.
type YearlySeries []YearPoint

// NewSeries builds a series of length horizon starting at baseYear, with
// values produced by f(i) for year index i.
func NewSeries(baseYear, horizon int, f func(i int) float64) YearlySeries {
	s := make(YearlySeries, horizon)
	for i := 0; i < horizon; i++ {
		s[i] = YearPoint{Year: baseYear + i, Value: f(i)}
	}
	return s
}

// ConstantSeries builds a series holding the same value for every year.
func ConstantSeries(baseYear, horizon int, v float64) YearlySeries {
	return NewSeries(baseYear, horizon, func(int) float64 { return v })
}

// Sum returns the total across all years.
func (s YearlySeries) Sum() float64 {
	var total float64
	for _, p := range s {
		total += p.Value
	}
	return total
}

// At returns the value for the given calendar year, or 0 if outside the
// horizon.
func (s YearlySeries) At(year int) float64 {
	for _, p := range s {
		if p.Year == year {
			return p.Value
		}
	}
	return 0
}

// First returns the first-year value, or 0 for an empty series.
func (s YearlySeries) First() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[0].Value
}

// Map returns a new series with f applied pointwise.
func (s YearlySeries) Map(f func(year int, v float64) float64) YearlySeries {
	out := make(YearlySeries, len(s))
	for i, p := range s {
		out[i] = YearPoint{Year: p.Year, Value: f(p.Year, p.Value)}
	}
	return out
}
