package model

import "time"

// AnalysisStatus tracks the lifecycle of a stored analysis.
type AnalysisStatus string

const (
	AnalysisStatusActive   AnalysisStatus = "active"
	AnalysisStatusArchived AnalysisStatus = "archived"
)

// Analysis is the persisted record of one resolved and computed business
// case: the immutable baseline parameters, the current working parameters
// and the latest result.
type Analysis struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Archetype Archetype      `json:"archetype"`
	Status    AnalysisStatus `json:"status"`
	Baseline  []FieldValue   `json:"baseline"`
	Working   []FieldValue   `json:"working"`
	Result    *MetricBundle  `json:"result,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BaselineSet reconstructs the baseline parameter set.
func (a *Analysis) BaselineSet() *ParameterSet {
	return setFromValues(a.Archetype, a.Baseline)
}

// WorkingSet reconstructs the working parameter set. Falls back to the
// baseline when no simulation has run yet.
func (a *Analysis) WorkingSet() *ParameterSet {
	if len(a.Working) == 0 {
		return a.BaselineSet()
	}
	return setFromValues(a.Archetype, a.Working)
}

func setFromValues(arch Archetype, values []FieldValue) *ParameterSet {
	ps := NewParameterSet()
	ps.Archetype = arch
	for _, fv := range values {
		ps.Put(fv)
	}
	return ps
}

// SimulationRecord is one persisted simulation step against an analysis.
type SimulationRecord struct {
	ID          string           `json:"id"`
	AnalysisID  string           `json:"analysis_id"`
	Instruction string           `json:"instruction"`
	Deltas      []ParameterDelta `json:"deltas"`
	Comparison  []MetricDelta    `json:"comparison"`
	CreatedAt   time.Time        `json:"created_at"`
}
