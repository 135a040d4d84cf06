package resolve

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincase/bizcase-cli/internal/model"
)

func TestResolvePrecedence(t *testing.T) {
	r := New()

	// All four tiers can serve growth_rate; the explicit figure must win
	// regardless of what the lower tiers offer.
	ev := Evidence{
		Explicit: ScanExplicit("a growth rate of 8% is stated"),
		Model:    map[string]ModelCandidate{model.FieldGrowthRate: {Value: 6.0, Confidence: 80}},
		RawText:  "a growth rate of 8% is stated, volumes grow by 12% elsewhere",
	}

	fv, err := r.Resolve(model.FieldGrowthRate, ev, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TierExplicit, fv.Tier)
	assert.Equal(t, 95.0, fv.Confidence)
	assert.InDelta(t, 8.0, fv.Num(), 1e-9)

	// Without an explicit match the model estimate wins over the phrase
	// heuristic.
	ev.Explicit = nil
	fv, err = r.Resolve(model.FieldGrowthRate, ev, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TierModel, fv.Tier)
	assert.Equal(t, 80.0, fv.Confidence)
	assert.InDelta(t, 6.0, fv.Num(), 1e-9)

	// Without a model estimate the heuristic fires.
	ev.Model = nil
	fv, err = r.Resolve(model.FieldGrowthRate, ev, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TierHeuristic, fv.Tier)
	assert.Equal(t, 50.0, fv.Confidence)
	assert.InDelta(t, 12.0, fv.Num(), 1e-9)

	// With nothing at all the industry default closes the cascade.
	ev.RawText = ""
	fv, err = r.Resolve(model.FieldGrowthRate, ev, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TierDefault, fv.Tier)
	assert.Equal(t, 20.0, fv.Confidence)
	assert.InDelta(t, 5.0, fv.Num(), 1e-9)
	assert.Contains(t, fv.Note, DefaultsVersion)
}

func TestResolveModelConfidenceFallback(t *testing.T) {
	r := New()
	ev := Evidence{Model: map[string]ModelCandidate{
		model.FieldUnitPrice: {Value: 42.0}, // collaborator reported no confidence
	}}
	fv, err := r.Resolve(model.FieldUnitPrice, ev, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TierModel, fv.Tier)
	assert.Equal(t, 70.0, fv.Confidence)
}

func TestResolveModelTypeMismatch(t *testing.T) {
	r := New()
	// A string where a number is expected must not poison the cascade; the
	// default tier still serves the field.
	ev := Evidence{Model: map[string]ModelCandidate{
		model.FieldUnitPrice: {Value: "around forty", Confidence: 90},
	}}
	fv, err := r.Resolve(model.FieldUnitPrice, ev, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TierDefault, fv.Tier)
	assert.InDelta(t, 500.0, fv.Num(), 1e-9)
}

func TestResolveSavingsSignal(t *testing.T) {
	r := New()

	fv, err := r.Resolve(model.FieldSavingsSignal, Evidence{
		Explicit: ScanExplicit("significant cost savings expected"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TierExplicit, fv.Tier)
	assert.True(t, fv.Bool())

	// The model may answer the signal as a bool.
	fv, err = r.Resolve(model.FieldSavingsSignal, Evidence{Model: map[string]ModelCandidate{
		model.FieldSavingsSignal: {Value: true, Confidence: 85},
	}}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TierModel, fv.Tier)
	assert.True(t, fv.Bool())

	// Nothing stated: defaults to false rather than failing.
	fv, err = r.Resolve(model.FieldSavingsSignal, Evidence{}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TierDefault, fv.Tier)
	assert.False(t, fv.Bool())
}

func TestResolveAmbiguousExplicitFirstOccurrence(t *testing.T) {
	r := New()
	ev := Evidence{Explicit: ScanExplicit(
		"annual savings of €2,000,000 were promised; the updated deck shows yearly savings of €3,000,000",
	)}
	// No related anchor is resolved yet, so source order decides.
	fv, err := r.Resolve(model.FieldAnnualValue, ev, model.NewParameterSet())
	require.NoError(t, err)
	assert.Equal(t, model.TierExplicit, fv.Tier)
	assert.InDelta(t, 2000000, fv.Num(), 1e-9)
}

func TestResolveAmbiguousExplicitRelatedAnchor(t *testing.T) {
	r := New()
	resolved := model.NewParameterSet()
	resolved.Put(model.FieldValue{
		Field: model.FieldExplicitSOM, Value: 2900000.0, Tier: model.TierExplicit, Confidence: 95,
	})

	ev := Evidence{Explicit: []Candidate{
		{Field: model.FieldAnnualValue, Value: 2000000, Text: "annual savings of €2,000,000", Pos: 10},
		{Field: model.FieldAnnualValue, Value: 3000000, Text: "yearly savings of €3,000,000", Pos: 80},
	}}
	fv, err := r.Resolve(model.FieldAnnualValue, ev, resolved)
	require.NoError(t, err)
	// 3,000,000 is closer to the resolved SOM anchor of 2,900,000.
	assert.InDelta(t, 3000000, fv.Num(), 1e-9)
}

func TestResolveMissingRequiredField(t *testing.T) {
	r := New()
	_, err := r.Resolve(model.FieldAnnualValue, Evidence{RawText: "no figures here"}, model.NewParameterSet())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingRequiredField))
}

func TestResolveAllCompleteness(t *testing.T) {
	r := New()
	text := "The importer operates a fleet of 120,000 vehicles and pays a royalty of 7% " +
		"at a price of €40 per unit with market coverage of 50% and a take rate of 10%. " +
		"Development costs of €500,000 are planned."
	ev := Evidence{Explicit: ScanExplicit(text), RawText: text}

	ps, err := r.ResolveAll(ev)
	require.NoError(t, err)

	for _, field := range CanonicalFields {
		if optionalFields[field] {
			continue
		}
		assert.True(t, ps.Has(field), "field %s missing", field)
	}

	// annual_value derives from the resolved unit base.
	fv, ok := ps.Get(model.FieldAnnualValue)
	require.True(t, ok)
	assert.Equal(t, model.TierHeuristic, fv.Tier)
	assert.InDelta(t, 120000*40.0, fv.Num(), 1e-9)
}

func TestResolveAllOptionalOverridesOmitted(t *testing.T) {
	r := New()
	text := "annual savings of €2,000,000"
	ps, err := r.ResolveAll(Evidence{Explicit: ScanExplicit(text), RawText: text})
	require.NoError(t, err)

	assert.False(t, ps.Has(model.FieldExplicitTAM))
	assert.False(t, ps.Has(model.FieldExplicitSAM))
	assert.False(t, ps.Has(model.FieldExplicitSOM))
}

func TestResolveAllFailsWithoutAnyValueSignal(t *testing.T) {
	r := New()
	_, err := r.ResolveAll(Evidence{RawText: "a purely qualitative memo"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingRequiredField))
}

func TestResolveAllEveryFieldCarriesProvenance(t *testing.T) {
	r := New()
	text := "annual savings of €2,000,000 and development costs of €250,000"
	ps, err := r.ResolveAll(Evidence{Explicit: ScanExplicit(text), RawText: text})
	require.NoError(t, err)

	for _, fv := range ps.Values() {
		assert.Greater(t, fv.Confidence, 0.0, "field %s has no confidence", fv.Field)
		assert.NotEmpty(t, fv.Note, "field %s has no source note", fv.Field)
	}
}
