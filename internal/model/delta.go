package model

import "fmt"

// DeltaOp is the kind of change a parameter delta applies.
type DeltaOp string

const (
	OpSet         DeltaOp = "set"
	OpIncreasePct DeltaOp = "increase_pct"
	OpDecreasePct DeltaOp = "decrease_pct"
	OpIncreaseAbs DeltaOp = "increase_abs"
	OpDecreaseAbs DeltaOp = "decrease_abs"
)

// ParameterDelta is a structured instruction to change one field.
type ParameterDelta struct {
	Field     string  `json:"field"`
	Op        DeltaOp `json:"operation"`
	Magnitude float64 `json:"magnitude"`
}

// Apply returns the new value produced by applying the delta to old.
func (d ParameterDelta) Apply(old float64) float64 {
	switch d.Op {
	case OpSet:
		return d.Magnitude
	case OpIncreasePct:
		return old * (1 + d.Magnitude/100)
	case OpDecreasePct:
		return old * (1 - d.Magnitude/100)
	case OpIncreaseAbs:
		return old + d.Magnitude
	case OpDecreaseAbs:
		return old - d.Magnitude
	default:
		return old
	}
}

func (d ParameterDelta) String() string {
	return fmt.Sprintf("%s %s %g", d.Field, d.Op, d.Magnitude)
}
