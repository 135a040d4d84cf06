// Package calc computes the full financial metric set for a resolved
// parameter set over the projection horizon. Compute is a pure function:
// no hidden state, deterministic, and re-runnable with identical input
// producing identical output.
package calc

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/fincase/bizcase-cli/internal/model"
)

// Defaults for calculator construction.
const (
	DefaultBaseYear        = 2025
	DefaultHorizon         = 7
	DefaultOverflowCeiling = 1e15
)

// Calculator projects metrics over a fixed horizon starting at BaseYear.
type Calculator struct {
	BaseYear        int
	Horizon         int
	OverflowCeiling float64
}

// New creates a Calculator, filling zero fields with defaults.
func New(baseYear, horizon int, ceiling float64) *Calculator {
	c := &Calculator{BaseYear: baseYear, Horizon: horizon, OverflowCeiling: ceiling}
	if c.BaseYear == 0 {
		c.BaseYear = DefaultBaseYear
	}
	if c.Horizon <= 0 {
		c.Horizon = DefaultHorizon
	}
	if c.OverflowCeiling <= 0 {
		c.OverflowCeiling = DefaultOverflowCeiling
	}
	return c
}

// inputs is the numeric view of a parameter set read once per compute.
type inputs struct {
	annual   float64
	volume   float64
	price    float64
	growth   float64
	dev      float64
	royalty  float64
	take     float64
	coverage float64
	cogsPU   float64
	cogsTier model.Tier

	tamOv, samOv, somOv *float64 // explicit per-metric overrides
}

func readInputs(ps *model.ParameterSet) inputs {
	in := inputs{
		annual:   ps.Num(model.FieldAnnualValue),
		volume:   ps.Num(model.FieldUnitVolume),
		price:    ps.Num(model.FieldUnitPrice),
		growth:   ps.Num(model.FieldGrowthRate),
		dev:      ps.Num(model.FieldDevelopmentCost),
		royalty:  ps.Num(model.FieldRoyaltyRate),
		take:     ps.Num(model.FieldTakeRate),
		coverage: ps.Num(model.FieldMarketCoverage),
		cogsPU:   ps.Num(model.FieldCOGSPerUnit),
	}
	if fv, ok := ps.Get(model.FieldCOGSPerUnit); ok {
		in.cogsTier = fv.Tier
	}
	in.tamOv = explicitOverride(ps, model.FieldExplicitTAM)
	in.samOv = explicitOverride(ps, model.FieldExplicitSAM)
	in.somOv = explicitOverride(ps, model.FieldExplicitSOM)
	return in
}

// explicitOverride returns the override value only when the field resolved
// at the explicit tier. Override priority is absolute and per-metric.
func explicitOverride(ps *model.ParameterSet, field string) *float64 {
	fv, ok := ps.Get(field)
	if !ok || fv.Tier != model.TierExplicit {
		return nil
	}
	v, ok := fv.Float()
	if !ok {
		return nil
	}
	return &v
}

// branch holds the year-one anchor values each archetype branch produces.
// The shared derivation step turns it into the full metric bundle.
type branch struct {
	tam, sam, som  float64
	revenueY1      float64
	unitsY1        float64
	volumeConstant bool // savings: context volume does not compound
	devCost        float64
	cogsPerUnit    float64

	// costFn returns the year's cost components. vol and revenue are the
	// already-compounded values for that year index.
	costFn func(yearIdx int, vol, revenue float64) model.YearCost
}

// Compute produces the complete metric bundle for the parameter set's
// archetype. It never returns a bundle with missing or NaN metrics.
func (c *Calculator) Compute(ps *model.ParameterSet) (*model.MetricBundle, error) {
	if ps == nil {
		return nil, eris.New("calc: nil parameter set")
	}
	in := readInputs(ps)

	var br branch
	switch ps.Archetype {
	case model.ArchetypeSavings:
		br = c.savingsBranch(in)
	case model.ArchetypeRoyalty:
		br = c.royaltyBranch(in)
	case model.ArchetypeRevenue, "":
		br = c.revenueBranch(in)
	default:
		return nil, eris.Errorf("calc: unknown archetype %q", ps.Archetype)
	}

	return c.derive(ps.Archetype, in, br), nil
}

// overflowTracker clamps compounded values to the ceiling and records a
// single warning for the bundle.
type overflowTracker struct {
	ceiling float64
	warned  bool
}

func (t *overflowTracker) clamp(v float64) float64 {
	if math.Abs(v) <= t.ceiling && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	t.warned = true
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return -t.ceiling
	}
	return t.ceiling
}

// compounded builds a horizon series of base compounded yearly by growthPct.
func (c *Calculator) compounded(base, growthPct float64, t *overflowTracker) model.YearlySeries {
	g := 1 + growthPct/100
	return model.NewSeries(c.BaseYear, c.Horizon, func(i int) float64 {
		return t.clamp(base * math.Pow(g, float64(i)))
	})
}

func override(ov *float64, computed float64) float64 {
	if ov != nil {
		return *ov
	}
	return computed
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
