// Package simulate runs what-if scenarios against an analysis: deltas are
// applied to a working copy of the parameters, never to the immutable
// baseline, and every run yields a fresh result plus a diff against the
// previous one.
package simulate

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fincase/bizcase-cli/internal/calc"
	"github.com/fincase/bizcase-cli/internal/classify"
	"github.com/fincase/bizcase-cli/internal/model"
)

// Session owns the working state for one analysis. At most one simulate or
// revert runs at a time per session; sessions for different analyses are
// fully independent.
type Session struct {
	mu sync.Mutex

	ID       string
	baseline *model.ParameterSet
	working  *model.ParameterSet
	calc     *calc.Calculator
	current  *model.MetricBundle
}

// NewSession computes the baseline result and returns a ready session.
// The baseline set is cloned on the way in, so callers keeping a reference
// to it cannot disturb the session afterwards.
func NewSession(baseline *model.ParameterSet, c *calc.Calculator) (*Session, error) {
	return ResumeSession(baseline, baseline, c)
}

// ResumeSession rebuilds a session from persisted baseline and working
// sets. The compute is deterministic, so recomputing the working set
// reproduces the stored result exactly.
func ResumeSession(baseline, working *model.ParameterSet, c *calc.Calculator) (*Session, error) {
	if baseline == nil {
		return nil, eris.New("simulate: nil baseline parameter set")
	}
	if working == nil {
		working = baseline
	}
	if c == nil {
		c = calc.New(0, 0, 0)
	}
	work := working.Clone()
	result, err := c.Compute(work)
	if err != nil {
		return nil, eris.Wrap(err, "simulate: working compute")
	}
	return &Session{
		ID:       uuid.NewString(),
		baseline: baseline.Clone(),
		working:  work,
		calc:     c,
		current:  result,
	}, nil
}

// Simulate applies the deltas in order onto a clone of the current working
// set, reclassifies if a discriminating field changed, recomputes, and
// replaces the working state. Deltas targeting fields outside the active
// archetype's set are skipped with a warning, not an abort.
func (s *Session) Simulate(deltas []model.ParameterDelta) (*model.SimulationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.working.Clone()
	var applied, skipped []model.ParameterDelta
	reclassify := false

	for _, d := range deltas {
		if !next.Archetype.AcceptsField(d.Field) {
			zap.L().Warn("simulate: delta field not in active archetype, skipping",
				zap.String("field", d.Field),
				zap.String("archetype", string(next.Archetype)))
			skipped = append(skipped, d)
			continue
		}

		old := next.Num(d.Field)
		next.Put(model.FieldValue{
			Field:      d.Field,
			Value:      d.Apply(old),
			Tier:       model.TierExplicit,
			Confidence: 95,
			Note:       fmt.Sprintf("simulated: %s", d),
		})
		applied = append(applied, d)

		for _, f := range model.DiscriminatingFields {
			if f == d.Field {
				reclassify = true
			}
		}
	}

	if reclassify {
		next.Archetype = classify.Classify(next)
	}

	result, err := s.calc.Compute(next)
	if err != nil {
		return nil, eris.Wrap(err, "simulate: recompute")
	}

	comparison := model.Compare(s.current, result)
	s.working = next
	s.current = result

	zap.L().Info("simulate: scenario applied",
		zap.String("session", s.ID),
		zap.Int("applied", len(applied)),
		zap.Int("skipped", len(skipped)))

	return &model.SimulationResult{
		Result:     result,
		Comparison: comparison,
		Applied:    applied,
		Skipped:    skipped,
	}, nil
}

// Revert discards all accumulated deltas and restores exactly the baseline
// resolution. It is a pure reset, not a partial undo.
func (s *Session) Revert() (*model.SimulationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.calc.Compute(s.baseline)
	if err != nil {
		return nil, eris.Wrap(err, "simulate: revert compute")
	}
	comparison := model.Compare(s.current, result)
	s.working = s.baseline.Clone()
	s.current = result

	zap.L().Info("simulate: reverted to baseline", zap.String("session", s.ID))

	return &model.SimulationResult{Result: result, Comparison: comparison}, nil
}

// Current returns the latest computed result.
func (s *Session) Current() *model.MetricBundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Working returns a copy of the current working parameter set.
func (s *Session) Working() *model.ParameterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working.Clone()
}

// Baseline returns a copy of the immutable baseline parameter set.
func (s *Session) Baseline() *model.ParameterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline.Clone()
}
