package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/fincase/bizcase-cli/internal/calc"
	"github.com/fincase/bizcase-cli/internal/model"
)

func sampleAnalysis(t *testing.T) *model.Analysis {
	t.Helper()
	ps := model.NewParameterSet()
	ps.Archetype = model.ArchetypeSavings
	ps.Put(model.FieldValue{Field: model.FieldAnnualValue, Value: 2000000.0, Tier: model.TierExplicit, Confidence: 95, Note: "annual savings of €2,000,000"})
	ps.Put(model.FieldValue{Field: model.FieldGrowthRate, Value: 5.0, Tier: model.TierDefault, Confidence: 20})

	result, err := calc.New(2025, 7, 0).Compute(ps)
	require.NoError(t, err)

	return &model.Analysis{
		ID:        "test-analysis",
		Name:      "Fleet Savings",
		Archetype: model.ArchetypeSavings,
		Status:    model.AnalysisStatusActive,
		Baseline:  ps.Values(),
		Result:    result,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestWorkbookWrite(t *testing.T) {
	a := sampleAnalysis(t)
	path := filepath.Join(t.TempDir(), "out.xlsx")

	require.NoError(t, NewWorkbook("EUR").Write(a, path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	for _, name := range []string{"Summary", "Market", "Yearly P&L", "Cost Breakdown"} {
		_, ok := f.Sheet[name]
		assert.True(t, ok, "missing sheet %s", name)
	}

	summary := f.Sheet["Summary"]
	require.NotEmpty(t, summary.Rows)
	assert.Equal(t, "Analysis", summary.Rows[0].Cells[0].String())
	assert.Equal(t, "Fleet Savings", summary.Rows[0].Cells[1].String())
	assert.Equal(t, "Archetype", summary.Rows[1].Cells[0].String())
	assert.Equal(t, "savings", summary.Rows[1].Cells[1].String())

	market := f.Sheet["Market"]
	require.GreaterOrEqual(t, len(market.Rows), 8, "header plus one row per horizon year")
	assert.Equal(t, "Year", market.Rows[0].Cells[0].String())
	assert.Equal(t, "2025", market.Rows[1].Cells[0].String())
	firstTAM, err := market.Rows[1].Cells[1].Float()
	require.NoError(t, err)
	assert.InDelta(t, 2000000, firstTAM, 1e-6)

	pnl := f.Sheet["Yearly P&L"]
	require.Len(t, pnl.Rows, 8)
	costs := f.Sheet["Cost Breakdown"]
	require.Len(t, costs.Rows, 8)
}

func TestWorkbookWriteRequiresResult(t *testing.T) {
	wb := NewWorkbook("")
	assert.Equal(t, "EUR", wb.Currency)

	path := filepath.Join(t.TempDir(), "out.xlsx")
	assert.Error(t, wb.Write(nil, path))

	a := sampleAnalysis(t)
	a.Result = nil
	assert.Error(t, wb.Write(a, path))
}
