package model

// MetricDelta is the signed change of one headline metric between two
// computed results.
type MetricDelta struct {
	Metric     string  `json:"metric"`
	Before     float64 `json:"before"`
	After      float64 `json:"after"`
	Delta      float64 `json:"delta"`
	PercentChg float64 `json:"percent_change"`
}

// SimulationResult bundles a freshly computed metric set with the diff
// against the previous working result. Superseded, never updated, by the
// next simulation.
type SimulationResult struct {
	Result     *MetricBundle    `json:"result"`
	Comparison []MetricDelta    `json:"comparison"`
	Applied    []ParameterDelta `json:"applied_deltas"`
	Skipped    []ParameterDelta `json:"skipped_deltas,omitempty"`
}

// Compare diffs two metric bundles over the fixed scalar metric order.
// Metrics in a sentinel state on either side are omitted.
func Compare(prev, next *MetricBundle) []MetricDelta {
	if prev == nil || next == nil {
		return nil
	}
	before := prev.Scalars()
	after := next.Scalars()

	var out []MetricDelta
	for _, name := range scalarOrder {
		b, okB := before[name]
		a, okA := after[name]
		if !okB || !okA {
			continue
		}
		md := MetricDelta{Metric: name, Before: b, After: a, Delta: a - b}
		if b != 0 {
			md.PercentChg = (a - b) / b * 100
		}
		out = append(out, md)
	}
	return out
}
