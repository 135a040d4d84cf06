package calc

import "github.com/fincase/bizcase-cli/internal/model"

// Cost rates per unit, by branch. Recovered from the reference cost model:
// royalty projects carry lighter per-transaction costs than unit sales.
const (
	royaltyCACPerUnit   = 12.0
	royaltyOpsPerUnit   = 6.0
	royaltyAfterPerUnit = 4.0

	revenueOpsPerUnit   = 15.0
	revenueCACPerUnit   = 10.0
	revenueAfterPerUnit = 5.0

	savingsDevShare         = 0.10 // implied implementation cost when none stated
	savingsMaintenanceShare = 0.20 // of dev cost, from year 2
	savingsOpsShare         = 0.05 // of that year's savings
	savingsChangeShare      = 0.02
	savingsAdminShare       = 0.01

	defaultCOGSShare = 0.25 // of unit price, when no per-unit cost resolved
)

// savingsBranch: TAM = SAM = SOM = validated annual savings, with explicit
// per-metric overrides winning individually. Costs are shares of the
// savings stream, not unit-based.
func (c *Calculator) savingsBranch(in inputs) branch {
	base := in.annual
	som := override(in.somOv, base)
	tam := override(in.tamOv, base)
	sam := override(in.samOv, base)

	dev := in.dev
	if dev == 0 && som > 0 {
		dev = som * savingsDevShare
	}

	return branch{
		tam: tam, sam: sam, som: som,
		revenueY1:      som,
		unitsY1:        in.volume,
		volumeConstant: true,
		devCost:        dev,
		cogsPerUnit:    0,
		costFn: func(yearIdx int, _, savings float64) model.YearCost {
			yc := model.YearCost{
				CustomerAcquisition: savings * savingsChangeShare,
				DistributionOps:     savings * savingsOpsShare,
				AfterSales:          savings * savingsAdminShare,
			}
			if yearIdx == 0 {
				yc.Development = dev
			} else {
				yc.AfterSales += dev * savingsMaintenanceShare
			}
			return yc
		},
	}
}

// royaltyBranch: gross GMV chain volume × price × coverage × take rate,
// with royalty revenue as the slice of captured GMV. COGS comes from the
// independently resolved per-unit cost field.
func (c *Calculator) royaltyBranch(in inputs) branch {
	tam := override(in.tamOv, in.volume*in.price)
	sam := override(in.samOv, tam*in.coverage/100)
	som := override(in.somOv, sam*in.take/100)
	revenue := som * in.royalty / 100

	units := in.volume * in.coverage / 100 * in.take / 100

	return branch{
		tam: tam, sam: sam, som: som,
		revenueY1:   revenue,
		unitsY1:     units,
		devCost:     in.dev,
		cogsPerUnit: in.cogsPU,
		costFn: func(yearIdx int, vol, _ float64) model.YearCost {
			yc := model.YearCost{
				CustomerAcquisition: vol * royaltyCACPerUnit,
				DistributionOps:     vol * royaltyOpsPerUnit,
				AfterSales:          vol * royaltyAfterPerUnit,
				COGS:                vol * in.cogsPU,
			}
			if yearIdx == 0 {
				yc.Development = in.dev
			}
			return yc
		},
	}
}

// revenueBranch: the generic unit-sales path. SOM ≤ SAM ≤ TAM is an
// enforced ordering; contradictory resolved values are clamped upward
// rather than silently accepted.
func (c *Calculator) revenueBranch(in inputs) branch {
	var tam, sam, som float64

	baseTAM := in.volume * in.price
	switch {
	case baseTAM > 0:
		tam = baseTAM
		sam = tam * in.coverage / 100
		som = sam * in.take / 100
		if in.annual > 0 && in.annual < tam {
			// A stated annual figure below the unit base is realized
			// revenue, a better SOM anchor than the take-rate estimate.
			som = in.annual
		}
	default:
		tam, sam, som = in.annual, in.annual, in.annual
	}

	tam = override(in.tamOv, tam)
	sam = override(in.samOv, sam)
	som = override(in.somOv, som)

	// Ordering invariant: clamp upward.
	if sam < som {
		sam = som
	}
	if tam < sam {
		tam = sam
	}

	cogsPU := in.cogsPU
	if in.cogsTier == model.TierDefault || cogsPU <= 0 {
		cogsPU = in.price * defaultCOGSShare
	}

	units := safeDiv(som, in.price)

	return branch{
		tam: tam, sam: sam, som: som,
		revenueY1:   som,
		unitsY1:     units,
		devCost:     in.dev,
		cogsPerUnit: cogsPU,
		costFn: func(yearIdx int, vol, _ float64) model.YearCost {
			yc := model.YearCost{
				CustomerAcquisition: vol * revenueCACPerUnit,
				DistributionOps:     vol * revenueOpsPerUnit,
				AfterSales:          vol * revenueAfterPerUnit,
				COGS:                vol * cogsPU,
			}
			if yearIdx == 0 {
				yc.Development = in.dev
			}
			return yc
		},
	}
}
