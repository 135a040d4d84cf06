package resolve

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fincase/bizcase-cli/internal/model"
)

// Tier confidence constants per the resolution contract.
const (
	confExplicit      = 95.0
	confModelFallback = 70.0
	confHeuristic     = 50.0
	confDefault       = 20.0
)

// ErrMissingRequiredField is returned when a field has no defined default
// and every tier fails. The caller must not proceed to calculation.
var ErrMissingRequiredField = eris.New("resolve: missing required field")

// TieBreakFunc picks the winner among conflicting explicit candidates.
// The default policy takes the value closest to any already-resolved
// related field, falling back to first occurrence in source order.
type TieBreakFunc func(field string, cands []Candidate, resolved *model.ParameterSet) Candidate

// tierFunc attempts one tier for a field. ok is false when the tier
// produced nothing, letting the cascade continue.
type tierFunc func(r *Resolver, field string, ev Evidence, resolved *model.ParameterSet) (model.FieldValue, bool)

// Resolver runs the four-tier cascade. The tier order is fixed; only the
// explicit tie-break policy is pluggable.
type Resolver struct {
	TieBreak TieBreakFunc
	tiers    []tierFunc
}

// New creates a Resolver with the default tie-break policy.
func New() *Resolver {
	return &Resolver{
		TieBreak: closestRelatedTieBreak,
		tiers: []tierFunc{
			(*Resolver).explicitTier,
			(*Resolver).modelTier,
			(*Resolver).heuristicTier,
			(*Resolver).defaultTier,
		},
	}
}

// Resolve runs the cascade for a single field. resolved holds the fields
// settled so far in canonical order and may be nil.
func (r *Resolver) Resolve(field string, ev Evidence, resolved *model.ParameterSet) (model.FieldValue, error) {
	for _, tier := range r.tiers {
		fv, ok := tier(r, field, ev, resolved)
		if !ok {
			continue
		}
		zap.L().Info("resolve: field resolved",
			zap.String("field", field),
			zap.String("tier", fv.Tier.String()),
			zap.Float64("confidence", fv.Confidence),
			zap.String("source", fv.Note),
		)
		return fv, nil
	}
	zap.L().Warn("resolve: field unresolved at every tier", zap.String("field", field))
	return model.FieldValue{}, eris.Wrapf(ErrMissingRequiredField, "field %s", field)
}

// ResolveAll resolves the full canonical field set into a parameter set.
// Optional override fields are simply omitted when absent; any other field
// failing every tier aborts the analysis.
func (r *Resolver) ResolveAll(ev Evidence) (*model.ParameterSet, error) {
	ps := model.NewParameterSet()
	for _, field := range CanonicalFields {
		fv, err := r.Resolve(field, ev, ps)
		if err != nil {
			if optionalFields[field] {
				continue
			}
			return nil, err
		}
		ps.Put(fv)
	}
	return ps, nil
}

// explicitTier scans the explicit candidates for the field. A single match
// wins outright; conflicting matches go through the tie-break policy and
// are logged as recovered ambiguity.
func (r *Resolver) explicitTier(field string, ev Evidence, resolved *model.ParameterSet) (model.FieldValue, bool) {
	var cands []Candidate
	for _, c := range ev.Explicit {
		if c.Field == field {
			cands = append(cands, c)
		}
	}
	if len(cands) == 0 {
		return model.FieldValue{}, false
	}

	winner := cands[0]
	if distinctValues(cands) > 1 {
		winner = r.TieBreak(field, cands, resolved)
		zap.L().Info("resolve: ambiguous explicit value",
			zap.String("field", field),
			zap.Int("candidates", len(cands)),
			zap.Float64("winner", winner.Value),
			zap.String("matched", winner.Text),
		)
	}

	var value any = winner.Value
	if field == model.FieldSavingsSignal {
		value = true
	}
	return model.FieldValue{
		Field:      field,
		Value:      value,
		Tier:       model.TierExplicit,
		Confidence: confExplicit,
		Note:       winner.Text,
	}, true
}

// modelTier accepts the collaborator's estimate when present and of the
// expected type.
func (r *Resolver) modelTier(field string, ev Evidence, _ *model.ParameterSet) (model.FieldValue, bool) {
	mc, ok := ev.Model[field]
	if !ok || mc.Value == nil {
		return model.FieldValue{}, false
	}
	fv := model.FieldValue{Field: field, Value: mc.Value, Tier: model.TierModel, Note: "model estimate"}
	if !typeMatches(field, mc.Value) {
		return model.FieldValue{}, false
	}
	fv.Confidence = mc.Confidence
	if fv.Confidence <= 0 {
		fv.Confidence = confModelFallback
	}
	return fv, true
}

// heuristicTier applies the fixed domain regex library for the field.
func (r *Resolver) heuristicTier(field string, ev Evidence, resolved *model.ParameterSet) (model.FieldValue, bool) {
	for _, h := range heuristicCatalog[field] {
		m, ok := h(ev.RawText, resolved)
		if !ok {
			continue
		}
		return model.FieldValue{
			Field:      field,
			Value:      m.value,
			Tier:       model.TierHeuristic,
			Confidence: confHeuristic,
			Note:       m.note,
		}, true
	}
	return model.FieldValue{}, false
}

// defaultTier assigns the versioned industry constant, when one exists.
func (r *Resolver) defaultTier(field string, _ Evidence, _ *model.ParameterSet) (model.FieldValue, bool) {
	def, ok := fieldDefaults[field]
	if !ok {
		return model.FieldValue{}, false
	}
	return model.FieldValue{
		Field:      field,
		Value:      def,
		Tier:       model.TierDefault,
		Confidence: confDefault,
		Note:       "industry default " + DefaultsVersion,
	}, true
}

// typeMatches checks the collaborator value against the field's expected
// kind: string for the project name, bool-or-number for the savings
// signal, number for everything else.
func typeMatches(field string, v any) bool {
	switch field {
	case model.FieldProjectName:
		_, ok := v.(string)
		return ok
	case model.FieldSavingsSignal:
		switch v.(type) {
		case bool, float64, int, int64:
			return true
		}
		return false
	default:
		switch v.(type) {
		case float64, int, int64:
			return true
		}
		return false
	}
}

// relatedFields drives the explicit tie-break: conflicting candidates are
// scored by distance to any of these already-resolved neighbors.
var relatedFields = map[string][]string{
	model.FieldAnnualValue: {model.FieldExplicitSOM, model.FieldExplicitSAM},
	model.FieldExplicitTAM: {model.FieldExplicitSAM, model.FieldExplicitSOM},
	model.FieldExplicitSAM: {model.FieldExplicitTAM, model.FieldExplicitSOM},
	model.FieldExplicitSOM: {model.FieldAnnualValue, model.FieldExplicitSAM},
	model.FieldUnitPrice:   {model.FieldCOGSPerUnit},
}

// closestRelatedTieBreak is the default conflict policy: the candidate
// closest in value to any already-resolved related field wins; with no
// related anchor the first occurrence in source order wins.
func closestRelatedTieBreak(field string, cands []Candidate, resolved *model.ParameterSet) Candidate {
	best := cands[0]
	bestDist := math.Inf(1)
	anchored := false

	if resolved != nil {
		for _, rel := range relatedFields[field] {
			anchor, ok := resolved.Get(rel)
			if !ok {
				continue
			}
			av, ok := anchor.Float()
			if !ok || av == 0 {
				continue
			}
			anchored = true
			for _, c := range cands {
				if d := math.Abs(c.Value - av); d < bestDist {
					bestDist = d
					best = c
				}
			}
		}
	}

	if !anchored {
		best = cands[0]
		for _, c := range cands[1:] {
			if c.Pos < best.Pos {
				best = c
			}
		}
	}
	return best
}

func distinctValues(cands []Candidate) int {
	seen := make(map[float64]bool, len(cands))
	for _, c := range cands {
		seen[c.Value] = true
	}
	return len(seen)
}
