package model

// Archetype selects which formula branch the calculator uses. It is
// derived from the parameter set and recomputed whenever a discriminating
// field changes, never hand-edited.
type Archetype string

const (
	ArchetypeSavings Archetype = "savings"
	ArchetypeRoyalty Archetype = "royalty"
	ArchetypeRevenue Archetype = "revenue"
)

// fieldsByArchetype lists the fields the calculator reads per branch.
// Deltas targeting fields outside the active set are skipped.
var fieldsByArchetype = map[Archetype][]string{
	ArchetypeSavings: {
		FieldAnnualValue, FieldGrowthRate, FieldDevelopmentCost,
		FieldUnitVolume, FieldMarketCoverage, FieldTakeRate,
		FieldExplicitTAM, FieldExplicitSAM, FieldExplicitSOM,
		FieldSavingsSignal, FieldRoyaltyRate,
	},
	ArchetypeRoyalty: {
		FieldUnitVolume, FieldUnitPrice, FieldRoyaltyRate,
		FieldMarketCoverage, FieldTakeRate, FieldGrowthRate,
		FieldDevelopmentCost, FieldCOGSPerUnit, FieldAnnualValue,
		FieldExplicitTAM, FieldExplicitSAM, FieldExplicitSOM,
		FieldSavingsSignal,
	},
	ArchetypeRevenue: {
		FieldUnitVolume, FieldUnitPrice, FieldMarketCoverage,
		FieldTakeRate, FieldGrowthRate, FieldDevelopmentCost,
		FieldCOGSPerUnit, FieldAnnualValue,
		FieldExplicitTAM, FieldExplicitSAM, FieldExplicitSOM,
		FieldSavingsSignal, FieldRoyaltyRate,
	},
}

// FieldsFor returns the field keys the given archetype's formulas consume.
func FieldsFor(a Archetype) []string {
	return fieldsByArchetype[a]
}

// AcceptsField reports whether a field participates in the archetype's
// required set.
func (a Archetype) AcceptsField(field string) bool {
	for _, f := range fieldsByArchetype[a] {
		if f == field {
			return true
		}
	}
	return false
}

// DiscriminatingFields are the fields whose change forces reclassification.
var DiscriminatingFields = []string{FieldSavingsSignal, FieldRoyaltyRate}
