// Package engine orchestrates the full analysis flow shared by the CLI and
// the HTTP server: evidence scan, resolution, classification, projection,
// simulation and persistence.
package engine

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fincase/bizcase-cli/internal/analyze"
	"github.com/fincase/bizcase-cli/internal/calc"
	"github.com/fincase/bizcase-cli/internal/classify"
	"github.com/fincase/bizcase-cli/internal/delta"
	"github.com/fincase/bizcase-cli/internal/model"
	"github.com/fincase/bizcase-cli/internal/resolve"
	"github.com/fincase/bizcase-cli/internal/simulate"
	"github.com/fincase/bizcase-cli/internal/store"
)

// Engine wires the resolver, calculator and store together. Analyzer is
// optional: without it the model tier simply never produces candidates.
type Engine struct {
	Store    store.Store
	Calc     *calc.Calculator
	Resolver *resolve.Resolver
	Analyzer *analyze.Analyzer

	locks sync.Map // analysis ID -> *sync.Mutex
}

// lockAnalysis serializes mutations of one analysis's working state. The
// read-modify-write across GetAnalysis and UpdateWorking must not interleave
// with a concurrent instruction against the same analysis.
func (e *Engine) lockAnalysis(id string) (unlock func()) {
	v, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// New creates an Engine with the default resolver.
func New(st store.Store, c *calc.Calculator, an *analyze.Analyzer) *Engine {
	if c == nil {
		c = calc.New(0, 0, 0)
	}
	return &Engine{
		Store:    st,
		Calc:     c,
		Resolver: resolve.New(),
		Analyzer: an,
	}
}

// Analyze runs the full flow over raw document text and persists the
// resulting analysis: explicit scan, optional model extraction, four-tier
// resolution, archetype classification and baseline projection.
func (e *Engine) Analyze(ctx context.Context, name, text string) (*model.Analysis, error) {
	ev := resolve.Evidence{
		Explicit: resolve.ScanExplicit(text),
		RawText:  text,
	}

	if e.Analyzer != nil {
		candidates, err := e.Analyzer.ExtractCandidates(ctx, text)
		if err != nil {
			zap.L().Warn("engine: model extraction failed, continuing without model tier", zap.Error(err))
		} else {
			ev.Model = candidates
		}
	}

	ps, err := e.Resolver.ResolveAll(ev)
	if err != nil {
		return nil, eris.Wrap(err, "engine: resolve")
	}
	ps.Archetype = classify.Classify(ps)

	if name == "" {
		if n, ok := ps.Get(model.FieldProjectName); ok {
			name = n.Text()
		}
	}

	result, err := e.Calc.Compute(ps)
	if err != nil {
		return nil, eris.Wrap(err, "engine: compute")
	}

	a, err := e.Store.CreateAnalysis(ctx, name, ps.Archetype, ps.Values(), result)
	if err != nil {
		return nil, eris.Wrap(err, "engine: persist analysis")
	}

	zap.L().Info("engine: analysis complete",
		zap.String("id", a.ID),
		zap.String("name", a.Name),
		zap.String("archetype", string(a.Archetype)),
		zap.String("roi", result.ROI.String()),
		zap.String("break_even", result.BreakEven.String()))

	return a, nil
}

// Simulate parses the instruction into deltas, applies them to the
// analysis's working set and persists both the new working state and a
// history record. An instruction with no extractable deltas returns the
// result unchanged with an empty Applied list.
func (e *Engine) Simulate(ctx context.Context, analysisID, instruction string) (*model.SimulationResult, error) {
	deltas := delta.Extract(instruction)
	if len(deltas) == 0 && e.Analyzer != nil {
		parsed, err := e.Analyzer.ParseInstruction(ctx, instruction)
		if err != nil {
			zap.L().Warn("engine: model instruction parse failed", zap.Error(err))
		} else {
			deltas = parsed
		}
	}

	unlock := e.lockAnalysis(analysisID)
	defer unlock()

	a, err := e.Store.GetAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	sess, err := simulate.ResumeSession(a.BaselineSet(), a.WorkingSet(), e.Calc)
	if err != nil {
		return nil, err
	}
	res, err := sess.Simulate(deltas)
	if err != nil {
		return nil, err
	}

	working := sess.Working()
	if err := e.Store.UpdateWorking(ctx, a.ID, working.Archetype, working.Values(), res.Result); err != nil {
		return nil, err
	}
	if _, err := e.Store.CreateSimulation(ctx, a.ID, instruction, res.Applied, res.Comparison); err != nil {
		return nil, err
	}
	return res, nil
}

// Revert restores the analysis to its original baseline resolution and
// persists the reset.
func (e *Engine) Revert(ctx context.Context, analysisID string) (*model.SimulationResult, error) {
	unlock := e.lockAnalysis(analysisID)
	defer unlock()

	a, err := e.Store.GetAnalysis(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	// The stored archetype follows the working set; the baseline's own
	// archetype is derived data and is reclassified from its fields.
	base := a.BaselineSet()
	base.Archetype = classify.Classify(base)

	sess, err := simulate.ResumeSession(base, a.WorkingSet(), e.Calc)
	if err != nil {
		return nil, err
	}
	res, err := sess.Revert()
	if err != nil {
		return nil, err
	}

	baseline := sess.Baseline()
	if err := e.Store.UpdateWorking(ctx, a.ID, baseline.Archetype, baseline.Values(), res.Result); err != nil {
		return nil, err
	}
	return res, nil
}
