package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fincase/bizcase-cli/internal/calc"
	"github.com/fincase/bizcase-cli/internal/model"
	"github.com/fincase/bizcase-cli/internal/resolve"
	"github.com/fincase/bizcase-cli/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return New(st, calc.New(2025, 7, 0), nil)
}

const savingsDoc = `The importer operates a fleet of 120,000 vehicles.
Digitizing the inspection process yields annual savings of €2,000,000
with development costs of €500,000 and a growth rate of 5%.`

const royaltyDoc = `Licensing the platform to the distributor: 500,000 units
at a price of €40 per unit, with a royalty of 7%, market coverage of 50%
and a take rate of 10%.`

func TestEngineAnalyzeSavings(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	a, err := eng.Analyze(ctx, "Inspection Savings", savingsDoc)
	require.NoError(t, err)

	assert.Equal(t, model.ArchetypeSavings, a.Archetype)
	require.NotNil(t, a.Result)
	assert.InDelta(t, 2000000, a.Result.SOM.First(), 1e-6)
	assert.InDelta(t, 2000000, a.Result.TAM.First(), 1e-6)

	stored, err := eng.Store.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Inspection Savings", stored.Name)
	assert.Equal(t, model.AnalysisStatusActive, stored.Status)
	assert.NotEmpty(t, stored.Baseline)
}

func TestEngineAnalyzeRoyalty(t *testing.T) {
	eng := newTestEngine(t)

	a, err := eng.Analyze(context.Background(), "License Deal", royaltyDoc)
	require.NoError(t, err)

	assert.Equal(t, model.ArchetypeRoyalty, a.Archetype)
	require.NotNil(t, a.Result)
	// 500,000 × €40 × 50% × 10% × 7% = €70,000 royalty revenue.
	assert.InDelta(t, 70000, a.Result.Revenue.First(), 1e-6)
}

func TestEngineAnalyzeDefaultName(t *testing.T) {
	eng := newTestEngine(t)

	a, err := eng.Analyze(context.Background(), "", savingsDoc)
	require.NoError(t, err)
	assert.Equal(t, "Business Analysis", a.Name)
}

func TestEngineAnalyzeUnresolvable(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Analyze(context.Background(), "Empty", "a memo with no figures at all")
	require.Error(t, err)
	assert.True(t, eris.Is(err, resolve.ErrMissingRequiredField))
}

func TestEngineSimulateAndRevert(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	a, err := eng.Analyze(ctx, "License Deal", royaltyDoc)
	require.NoError(t, err)
	baselineRevenue := a.Result.Revenue.First()

	res, err := eng.Simulate(ctx, a.ID, "increase price by 10%")
	require.NoError(t, err)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, model.FieldUnitPrice, res.Applied[0].Field)

	// €40 +10% = €44 flows straight through the royalty chain.
	assert.InDelta(t, baselineRevenue*1.1, res.Result.Revenue.First(), 1e-6)

	// The working state persisted: a second read sees the simulated price.
	stored, err := eng.Store.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	ws := stored.WorkingSet()
	assert.InDelta(t, 44, ws.Num(model.FieldUnitPrice), 1e-9)

	// Simulations accumulate on the persisted working set.
	res2, err := eng.Simulate(ctx, a.ID, "increase price by 10%")
	require.NoError(t, err)
	assert.InDelta(t, baselineRevenue*1.1*1.1, res2.Result.Revenue.First(), 1e-4)

	history, err := eng.Store.ListSimulations(ctx, a.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	// Revert restores the original projection exactly.
	reverted, err := eng.Revert(ctx, a.ID)
	require.NoError(t, err)
	assert.InDelta(t, baselineRevenue, reverted.Result.Revenue.First(), 1e-9)

	stored, err = eng.Store.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.InDelta(t, 40, stored.WorkingSet().Num(model.FieldUnitPrice), 1e-9)
}

func TestEngineSimulateUnrecognizedInstruction(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	a, err := eng.Analyze(ctx, "License Deal", royaltyDoc)
	require.NoError(t, err)

	res, err := eng.Simulate(ctx, a.ID, "make it better")
	require.NoError(t, err)
	assert.Empty(t, res.Applied)
	assert.Empty(t, res.Skipped)

	// Metrics are untouched.
	for _, md := range res.Comparison {
		assert.Zero(t, md.Delta, "metric %s moved", md.Metric)
	}
}

func TestEngineSimulateReclassifies(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	a, err := eng.Analyze(ctx, "License Deal", royaltyDoc)
	require.NoError(t, err)
	require.Equal(t, model.ArchetypeRoyalty, a.Archetype)

	// Dropping the royalty rate to zero removes the discriminator; the
	// working set re-routes to the generic revenue branch.
	_, err = eng.Simulate(ctx, a.ID, "set royalty rate to 0")
	require.NoError(t, err)

	stored, err := eng.Store.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ArchetypeRevenue, stored.Archetype)

	// Reverting restores the royalty classification along with the values.
	_, err = eng.Revert(ctx, a.ID)
	require.NoError(t, err)
	stored, err = eng.Store.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ArchetypeRoyalty, stored.Archetype)
}

func TestEngineSimulateMissingAnalysis(t *testing.T) {
	eng := newTestEngine(t)

	_, err := eng.Simulate(context.Background(), "no-such-id", "increase price by 10%")
	require.Error(t, err)
	assert.True(t, eris.Is(err, store.ErrNotFound))
}

func TestEngineSimulateConcurrentInstructions(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	a, err := eng.Analyze(ctx, "License Deal", royaltyDoc)
	require.NoError(t, err)

	// Every instruction must land on the working set left by the previous
	// one; none of the absolute increments may be lost to interleaving.
	const workers = 20
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := eng.Simulate(ctx, a.ID, "increase price by 100")
			return err
		})
	}
	require.NoError(t, g.Wait())

	stored, err := eng.Store.GetAnalysis(ctx, a.ID)
	require.NoError(t, err)
	assert.InDelta(t, 40+workers*100, stored.WorkingSet().Num(model.FieldUnitPrice), 1e-9)

	history, err := eng.Store.ListSimulations(ctx, a.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, workers)
}
