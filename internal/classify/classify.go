// Package classify routes a resolved parameter set to the calculation
// archetype governing which formula branch applies.
package classify

import (
	"go.uber.org/zap"

	"github.com/fincase/bizcase-cli/internal/model"
)

// Classify picks the archetype for a resolved parameter set. The decision
// order is a deliberate, documented tie-break: savings signals beat royalty
// formulas, which beat the generic revenue path.
func Classify(ps *model.ParameterSet) model.Archetype {
	arch := model.ArchetypeRevenue

	switch {
	case savingsSignaled(ps):
		arch = model.ArchetypeSavings
	case royaltyResolved(ps):
		arch = model.ArchetypeRoyalty
	}

	zap.L().Debug("classify: archetype selected",
		zap.String("archetype", string(arch)),
	)
	return arch
}

// savingsSignaled reports a truthy savings signal at the explicit or model
// tier. Heuristic and default tiers are not trusted to flip the branch.
func savingsSignaled(ps *model.ParameterSet) bool {
	fv, ok := ps.Get(model.FieldSavingsSignal)
	if !ok || !fv.Bool() {
		return false
	}
	return fv.Tier == model.TierExplicit || fv.Tier == model.TierModel
}

// royaltyResolved reports a royalty rate resolved above the default tier.
func royaltyResolved(ps *model.ParameterSet) bool {
	fv, ok := ps.Get(model.FieldRoyaltyRate)
	if !ok {
		return false
	}
	return fv.Tier != model.TierDefault && fv.Num() > 0
}
