package model

import "fmt"

// Tier is the provenance rank of a resolved field value. Higher tiers
// always beat lower ones during resolution.
type Tier int

const (
	TierDefault Tier = iota
	TierHeuristic
	TierModel
	TierExplicit
)

// String returns the tier name as stored in audit logs and exports.
func (t Tier) String() string {
	switch t {
	case TierExplicit:
		return "explicit"
	case TierModel:
		return "model"
	case TierHeuristic:
		return "heuristic"
	default:
		return "default"
	}
}

// Canonical field keys for the parameter set. The delta extractor maps
// user-facing aliases onto these.
const (
	FieldProjectName     = "project_name"
	FieldAnnualValue     = "annual_value"
	FieldUnitVolume      = "unit_volume"
	FieldUnitPrice       = "unit_price"
	FieldGrowthRate      = "growth_rate"
	FieldDevelopmentCost = "development_cost"
	FieldRoyaltyRate     = "royalty_rate"
	FieldTakeRate        = "take_rate"
	FieldMarketCoverage  = "market_coverage"
	FieldCOGSPerUnit     = "cogs_per_unit"
	FieldSavingsSignal   = "savings_signal"
	FieldExplicitTAM     = "explicit_tam"
	FieldExplicitSAM     = "explicit_sam"
	FieldExplicitSOM     = "explicit_som"
)

// FieldValue is a tagged value with provenance tier and confidence.
// Instances are immutable once resolution completes; a simulation produces
// a new FieldValue rather than mutating an existing one.
type FieldValue struct {
	Field      string  `json:"field"`
	Value      any     `json:"value"`
	Tier       Tier    `json:"tier"`
	Confidence float64 `json:"confidence"` // 0-100
	Note       string  `json:"note,omitempty"`
}

// Float returns the numeric value. The second return is false when the
// value is absent or not a number.
func (fv FieldValue) Float() (float64, bool) {
	switch v := fv.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Num returns the numeric value, or 0 when not numeric.
func (fv FieldValue) Num() float64 {
	f, _ := fv.Float()
	return f
}

// Bool reports whether the value is truthy (non-zero number or true).
func (fv FieldValue) Bool() bool {
	if b, ok := fv.Value.(bool); ok {
		return b
	}
	f, ok := fv.Float()
	return ok && f != 0
}

// Text returns the value as a string, or "" when not a string.
func (fv FieldValue) Text() string {
	s, _ := fv.Value.(string)
	return s
}

func (fv FieldValue) String() string {
	return fmt.Sprintf("%s=%v (%s, conf %.0f)", fv.Field, fv.Value, fv.Tier, fv.Confidence)
}
