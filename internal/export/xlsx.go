// Package export writes a computed analysis to an Excel workbook:
// a summary sheet, a market sheet, a yearly P&L and the cost breakdown.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fincase/bizcase-cli/internal/model"
)

// Workbook renders analyses into xlsx files.
type Workbook struct {
	Currency string
	printer  *message.Printer
}

// NewWorkbook creates a workbook renderer. Currency is a display label
// only; amounts are written as raw numbers with a grouped-digit format.
func NewWorkbook(currency string) *Workbook {
	if currency == "" {
		currency = "EUR"
	}
	return &Workbook{
		Currency: currency,
		printer:  message.NewPrinter(language.English),
	}
}

// Write renders the analysis to an xlsx file at path.
func (w *Workbook) Write(a *model.Analysis, path string) error {
	if a == nil || a.Result == nil {
		return eris.New("export: analysis has no computed result")
	}

	f := xlsx.NewFile()
	if err := w.summarySheet(f, a); err != nil {
		return err
	}
	if err := w.marketSheet(f, a.Result); err != nil {
		return err
	}
	if err := w.pnlSheet(f, a.Result); err != nil {
		return err
	}
	if err := w.costSheet(f, a.Result); err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func (w *Workbook) summarySheet(f *xlsx.File, a *model.Analysis) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	m := a.Result

	w.kv(sheet, "Analysis", a.Name)
	w.kv(sheet, "Archetype", string(a.Archetype))
	w.kv(sheet, "Base year", m.BaseYear)
	w.kv(sheet, "Horizon (years)", m.Horizon)
	w.kv(sheet, "Currency", w.Currency)
	sheet.AddRow()

	w.kv(sheet, "Cumulative revenue", w.money(m.CumulativeRevenue))
	w.kv(sheet, "Cumulative cost", w.money(m.CumulativeCost))
	w.kv(sheet, "Net profit", w.money(m.NetProfit))
	w.kv(sheet, "Profit margin", w.printer.Sprintf("%.1f%%", m.ProfitMarginPct))
	w.kv(sheet, "ROI", m.ROI.String())
	w.kv(sheet, "Break-even", m.BreakEven.String())
	if a.Archetype != model.ArchetypeSavings {
		w.kv(sheet, "Unit price", w.money(m.UnitPrice))
		w.kv(sheet, "COGS per unit", w.money(m.COGSPerUnit))
	}

	for _, warn := range m.Warnings {
		w.kv(sheet, "Warning", warn.Message)
	}

	// Resolution provenance for every baseline parameter.
	sheet.AddRow()
	hdr := sheet.AddRow()
	for _, h := range []string{"Parameter", "Value", "Tier", "Confidence"} {
		headerCell(hdr, h)
	}
	for _, fv := range a.Baseline {
		row := sheet.AddRow()
		row.AddCell().SetString(fv.Field)
		row.AddCell().SetString(w.printer.Sprintf("%v", fv.Value))
		row.AddCell().SetString(fv.Tier.String())
		row.AddCell().SetFloatWithFormat(fv.Confidence, "0")
	}
	return nil
}

func (w *Workbook) marketSheet(f *xlsx.File, m *model.MetricBundle) error {
	sheet, err := f.AddSheet("Market")
	if err != nil {
		return eris.Wrap(err, "export: add market sheet")
	}
	hdr := sheet.AddRow()
	for _, h := range []string{"Year", "TAM", "SAM", "SOM"} {
		headerCell(hdr, h)
	}
	for i, p := range m.TAM {
		row := sheet.AddRow()
		row.AddCell().SetInt(p.Year)
		moneyCell(row, p.Value)
		moneyCell(row, m.SAM[i].Value)
		moneyCell(row, m.SOM[i].Value)
	}
	return nil
}

func (w *Workbook) pnlSheet(f *xlsx.File, m *model.MetricBundle) error {
	sheet, err := f.AddSheet("Yearly P&L")
	if err != nil {
		return eris.Wrap(err, "export: add pnl sheet")
	}
	hdr := sheet.AddRow()
	for _, h := range []string{"Year", "Revenue", "COGS", "Operating cost", "Total cost", "Gross margin %", "EBIT", "ROI %"} {
		headerCell(hdr, h)
	}
	for i, p := range m.Revenue {
		row := sheet.AddRow()
		row.AddCell().SetInt(p.Year)
		moneyCell(row, p.Value)
		moneyCell(row, m.COGS[i].Value)
		moneyCell(row, m.OperatingCost[i].Value)
		moneyCell(row, m.TotalCost[i].Value)
		row.AddCell().SetFloatWithFormat(m.GrossMargin[i].Value, "0.0")
		moneyCell(row, m.EBIT[i].Value)
		row.AddCell().SetFloatWithFormat(m.ROIByYear[i].Value, "0.0")
	}
	return nil
}

func (w *Workbook) costSheet(f *xlsx.File, m *model.MetricBundle) error {
	sheet, err := f.AddSheet("Cost Breakdown")
	if err != nil {
		return eris.Wrap(err, "export: add cost sheet")
	}
	hdr := sheet.AddRow()
	for _, h := range []string{"Year", "Volume", "Development", "Customer acquisition", "Distribution & ops", "After sales", "COGS", "Total"} {
		headerCell(hdr, h)
	}
	for _, yc := range m.Costs {
		row := sheet.AddRow()
		row.AddCell().SetInt(yc.Year)
		row.AddCell().SetFloatWithFormat(yc.ProjectedVolume, "#,##0")
		moneyCell(row, yc.Development)
		moneyCell(row, yc.CustomerAcquisition)
		moneyCell(row, yc.DistributionOps)
		moneyCell(row, yc.AfterSales)
		moneyCell(row, yc.COGS)
		moneyCell(row, yc.Total)
	}
	return nil
}

func (w *Workbook) kv(sheet *xlsx.Sheet, key string, value any) {
	row := sheet.AddRow()
	headerCell(row, key)
	switch v := value.(type) {
	case string:
		row.AddCell().SetString(v)
	case int:
		row.AddCell().SetInt(v)
	default:
		row.AddCell().SetString(w.printer.Sprintf("%v", v))
	}
}

// money formats an amount with grouped digits for summary key/value rows.
func (w *Workbook) money(v float64) string {
	return w.printer.Sprintf("%.0f", v)
}

func headerCell(row *xlsx.Row, text string) {
	cell := row.AddCell()
	cell.SetString(text)
	style := xlsx.NewStyle()
	style.Font.Bold = true
	cell.SetStyle(style)
}

func moneyCell(row *xlsx.Row, v float64) {
	row.AddCell().SetFloatWithFormat(v, "#,##0")
}
