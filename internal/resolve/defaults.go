package resolve

import "github.com/fincase/bizcase-cli/internal/model"

// DefaultsVersion identifies the industry-default catalog revision. Values
// below are never changed silently; any edit bumps this version.
const DefaultsVersion = "2025-08"

// fieldDefaults holds the tier-4 industry-standard constant per field.
// annual_value deliberately has no entry: a case with no stated, estimated
// or derivable annual figure cannot be analyzed and must fail resolution.
var fieldDefaults = map[string]any{
	model.FieldProjectName:     "Business Analysis",
	model.FieldGrowthRate:      5.0,  // % per year
	model.FieldRoyaltyRate:     0.0,  // %
	model.FieldTakeRate:        10.0, // %
	model.FieldMarketCoverage:  50.0, // %
	model.FieldDevelopmentCost: 0.0,  // EUR; savings branch derives 10% of Y1 savings
	model.FieldUnitPrice:       500.0,
	model.FieldUnitVolume:      0.0,
	model.FieldCOGSPerUnit:     0.0, // revenue branch derives 25% of unit price
	model.FieldSavingsSignal:   false,
}

// optionalFields resolve to nothing rather than erroring when every tier
// fails: they are per-metric overrides, not calculator inputs.
var optionalFields = map[string]bool{
	model.FieldExplicitTAM: true,
	model.FieldExplicitSAM: true,
	model.FieldExplicitSOM: true,
}

// CanonicalFields is the resolution order for a full parameter set.
// Fields consumed by derivation heuristics come before their dependents.
var CanonicalFields = []string{
	model.FieldProjectName,
	model.FieldSavingsSignal,
	model.FieldUnitVolume,
	model.FieldUnitPrice,
	model.FieldRoyaltyRate,
	model.FieldTakeRate,
	model.FieldMarketCoverage,
	model.FieldGrowthRate,
	model.FieldCOGSPerUnit,
	model.FieldDevelopmentCost,
	model.FieldExplicitTAM,
	model.FieldExplicitSAM,
	model.FieldExplicitSOM,
	model.FieldAnnualValue,
}
