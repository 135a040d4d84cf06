package calc

import "github.com/fincase/bizcase-cli/internal/model"

// derive expands a branch's year-one anchors into the full metric bundle:
// compounded series, per-year cost breakdown, margins, cumulative totals,
// ROI and break-even, all clamped to the overflow ceiling.
func (c *Calculator) derive(arch model.Archetype, in inputs, br branch) *model.MetricBundle {
	t := &overflowTracker{ceiling: c.OverflowCeiling}

	m := &model.MetricBundle{
		Archetype:   arch,
		BaseYear:    c.BaseYear,
		Horizon:     c.Horizon,
		UnitPrice:   in.price,
		COGSPerUnit: br.cogsPerUnit,
	}

	m.TAM = c.compounded(br.tam, in.growth, t)
	m.SAM = c.compounded(br.sam, in.growth, t)
	m.SOM = c.compounded(br.som, in.growth, t)
	m.Revenue = c.compounded(br.revenueY1, in.growth, t)
	if br.volumeConstant {
		m.Volume = model.ConstantSeries(c.BaseYear, c.Horizon, br.unitsY1)
	} else {
		m.Volume = c.compounded(br.unitsY1, in.growth, t)
	}

	m.Costs = make([]model.YearCost, c.Horizon)
	m.COGS = make(model.YearlySeries, c.Horizon)
	m.OperatingCost = make(model.YearlySeries, c.Horizon)
	m.TotalCost = make(model.YearlySeries, c.Horizon)
	m.GrossMargin = make(model.YearlySeries, c.Horizon)
	m.EBIT = make(model.YearlySeries, c.Horizon)
	m.ROIByYear = make(model.YearlySeries, c.Horizon)

	for i := 0; i < c.Horizon; i++ {
		year := c.BaseYear + i
		vol := m.Volume[i].Value
		rev := m.Revenue[i].Value

		yc := br.costFn(i, vol, rev)
		yc.Year = year
		yc.ProjectedVolume = vol
		yc.COGS = t.clamp(yc.COGS)
		yc.CustomerAcquisition = t.clamp(yc.CustomerAcquisition)
		yc.DistributionOps = t.clamp(yc.DistributionOps)
		yc.AfterSales = t.clamp(yc.AfterSales)
		yc.Total = t.clamp(yc.Development + yc.CustomerAcquisition + yc.DistributionOps + yc.AfterSales + yc.COGS)
		m.Costs[i] = yc

		opCost := yc.CustomerAcquisition + yc.DistributionOps + yc.AfterSales
		grossMarginPct := safeDiv(rev-yc.COGS, rev) * 100
		ebit := t.clamp(rev - yc.COGS - opCost)
		roi := safeDiv(rev-yc.Total, yc.Total) * 100

		m.COGS[i] = model.YearPoint{Year: year, Value: yc.COGS}
		m.OperatingCost[i] = model.YearPoint{Year: year, Value: opCost}
		m.TotalCost[i] = model.YearPoint{Year: year, Value: yc.Total}
		m.GrossMargin[i] = model.YearPoint{Year: year, Value: grossMarginPct}
		m.EBIT[i] = model.YearPoint{Year: year, Value: ebit}
		m.ROIByYear[i] = model.YearPoint{Year: year, Value: roi}
	}

	m.CumulativeRevenue = t.clamp(m.Revenue.Sum())
	m.CumulativeCost = t.clamp(m.TotalCost.Sum())
	m.NetProfit = t.clamp(m.CumulativeRevenue - m.CumulativeCost)
	m.ProfitMarginPct = safeDiv(m.NetProfit, m.CumulativeRevenue) * 100

	if m.CumulativeCost == 0 {
		m.ROI = model.ROIValue{Indeterminate: true}
	} else {
		m.ROI = model.ROIValue{Percent: safeDiv(m.NetProfit, m.CumulativeCost) * 100}
	}

	m.BreakEven = c.breakEven(m)

	if t.warned {
		m.Warnings = append(m.Warnings, model.Warning{
			Code:    model.WarnProjectionOverflow,
			Message: "projected values exceeded the representable ceiling and were clamped",
		})
	}
	return m
}

// breakEven walks cumulative net profit year by year and interpolates the
// month within the first year the running total crosses zero. Costs are
// assumed to accrue evenly across the year.
func (c *Calculator) breakEven(m *model.MetricBundle) model.BreakEven {
	var cum float64
	for i := 0; i < c.Horizon; i++ {
		net := m.Revenue[i].Value - m.TotalCost[i].Value
		if cum+net >= 0 && net > 0 {
			frac := -cum / net
			if frac < 0 {
				frac = 0
			}
			return model.BreakEven{Months: float64(i)*12 + frac*12}
		}
		cum += net
	}
	if cum >= 0 {
		return model.BreakEven{Months: 0}
	}
	return model.BreakEven{BeyondHorizon: true}
}
