package model

import "fmt"

// YearCost is the per-year cost breakdown.
type YearCost struct {
	Year                int     `json:"year"`
	ProjectedVolume     float64 `json:"projected_volume"`
	Development         float64 `json:"one_time_development"`
	CustomerAcquisition float64 `json:"customer_acquisition"`
	DistributionOps     float64 `json:"distribution_operations"`
	AfterSales          float64 `json:"after_sales"`
	COGS                float64 `json:"total_cogs"`
	Total               float64 `json:"total_cost"`
}

// ROIValue is a return-on-investment figure. When total invested cost is
// zero the ratio is undefined; Indeterminate marks the sentinel state that
// consumers must render distinctly instead of showing 0%.
type ROIValue struct {
	Percent       float64 `json:"percent"`
	Indeterminate bool    `json:"indeterminate,omitempty"`
}

func (r ROIValue) String() string {
	if r.Indeterminate {
		return "immediate (no invested cost)"
	}
	return fmt.Sprintf("%.1f%%", r.Percent)
}

// BreakEven is the month at which cumulative net profit crosses zero,
// interpolated linearly within a year. BeyondHorizon marks the case where
// it never crosses within the projection window.
type BreakEven struct {
	Months        float64 `json:"months"`
	BeyondHorizon bool    `json:"beyond_horizon,omitempty"`
}

func (b BreakEven) String() string {
	if b.BeyondHorizon {
		return "beyond horizon"
	}
	return fmt.Sprintf("%.0f months", b.Months)
}

// Warning codes attached to a metric bundle.
const (
	WarnProjectionOverflow = "projection_overflow"
)

// Warning is a non-fatal condition recovered during calculation.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetricBundle is the complete metric set for one parameter set. It is
// created fresh on every compute and never mutated afterwards.
type MetricBundle struct {
	Archetype Archetype `json:"archetype"`
	BaseYear  int       `json:"base_year"`
	Horizon   int       `json:"horizon"`

	TAM           YearlySeries `json:"tam"`
	SAM           YearlySeries `json:"sam"`
	SOM           YearlySeries `json:"som"`
	Volume        YearlySeries `json:"volume"`
	Revenue       YearlySeries `json:"revenue"`
	COGS          YearlySeries `json:"cogs"`
	OperatingCost YearlySeries `json:"operating_cost"`
	TotalCost     YearlySeries `json:"total_cost"`
	GrossMargin   YearlySeries `json:"gross_margin"`
	EBIT          YearlySeries `json:"ebit"`
	ROIByYear     YearlySeries `json:"roi_by_year"`

	Costs []YearCost `json:"yearly_cost_breakdown"`

	CumulativeRevenue float64   `json:"cumulative_revenue"`
	CumulativeCost    float64   `json:"cumulative_cost"`
	NetProfit         float64   `json:"net_profit"`
	ProfitMarginPct   float64   `json:"profit_margin_pct"`
	ROI               ROIValue  `json:"roi"`
	BreakEven         BreakEven `json:"break_even"`

	UnitPrice   float64 `json:"unit_price"`
	COGSPerUnit float64 `json:"cogs_per_unit"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// scalarOrder fixes the metric names and ordering used for comparisons.
var scalarOrder = []string{
	"tam_y1", "sam_y1", "som_y1",
	"revenue_y1", "volume_y1",
	"cumulative_revenue", "cumulative_cost", "net_profit",
	"roi_pct", "break_even_months", "profit_margin_pct",
}

// Scalars flattens the bundle's headline figures into named values, in a
// fixed order suitable for diffing. Sentinel states are excluded so a
// comparison never reports a delta against an undefined number.
func (m *MetricBundle) Scalars() map[string]float64 {
	out := map[string]float64{
		"tam_y1":             m.TAM.First(),
		"sam_y1":             m.SAM.First(),
		"som_y1":             m.SOM.First(),
		"revenue_y1":         m.Revenue.First(),
		"volume_y1":          m.Volume.First(),
		"cumulative_revenue": m.CumulativeRevenue,
		"cumulative_cost":    m.CumulativeCost,
		"net_profit":         m.NetProfit,
		"profit_margin_pct":  m.ProfitMarginPct,
	}
	if !m.ROI.Indeterminate {
		out["roi_pct"] = m.ROI.Percent
	}
	if !m.BreakEven.BeyondHorizon {
		out["break_even_months"] = m.BreakEven.Months
	}
	return out
}
