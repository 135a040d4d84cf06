package resolve

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fincase/bizcase-cli/internal/model"
)

// heuristicMatch is the outcome of one domain heuristic: a value plus the
// source excerpt that produced it, for the audit log.
type heuristicMatch struct {
	value float64
	note  string
}

// heuristicFunc applies a fixed domain heuristic for one field against the
// raw source text, optionally consulting already-resolved fields.
type heuristicFunc func(raw string, resolved *model.ParameterSet) (heuristicMatch, bool)

// heuristicCatalog maps field keys to their heuristics, tried in order.
// Versioned together with the explicit catalog (CatalogVersion).
var heuristicCatalog = map[string][]heuristicFunc{
	model.FieldUnitVolume: {fleetSize},
	model.FieldAnnualValue: {
		royaltyFormula,
		derivedAnnualValue,
	},
	model.FieldGrowthRate: {growthPhrase},
}

var fleetSizeRe = regexp.MustCompile(`(?i)fleet\s+(?:size\s+)?of\s+(?:about\s+|approx(?:imately)?\.?\s+)?([\d.,]+)\s*(thousand|million|[km])?`)

// fleetSize reads fleet-size statements such as "a fleet of 120,000".
func fleetSize(raw string, _ *model.ParameterSet) (heuristicMatch, bool) {
	m := fleetSizeRe.FindStringSubmatch(raw)
	if m == nil {
		return heuristicMatch{}, false
	}
	v, ok := ParseAmount(m[1], m[2])
	if !ok {
		return heuristicMatch{}, false
	}
	return heuristicMatch{value: v, note: strings.TrimSpace(m[0])}, true
}

// royaltyFormulaRe matches multiplicative chains like
// "500,000 × €40 × 7%" or "120k x 35 x 5% x 50%", with factors separated
// by multiplication operators or natural-language connectives.
var royaltyFormulaRe = regexp.MustCompile(`(?i)(?:€|eur|\$)?\s*[\d.,]+\s*(?:thousand|million|[bmk])?\s*%?(?:\s*(?:×|x|\*|times|multiplied\s+by)\s*(?:€|eur|\$)?\s*[\d.,]+\s*(?:thousand|million|[bmk])?\s*%?){2,}`)

var formulaFactorRe = regexp.MustCompile(`(?i)([\d.,]+)\s*(thousand|million|[bmk])?\s*(%)?`)

// royaltyFormula evaluates a stated multiplicative formula left to right,
// treating percentage factors as fractional multipliers.
func royaltyFormula(raw string, _ *model.ParameterSet) (heuristicMatch, bool) {
	expr := royaltyFormulaRe.FindString(raw)
	if expr == "" {
		return heuristicMatch{}, false
	}
	factors := formulaFactorRe.FindAllStringSubmatch(expr, -1)
	if len(factors) < 3 {
		return heuristicMatch{}, false
	}
	result := 1.0
	for _, f := range factors {
		v, ok := ParseAmount(f[1], f[2])
		if !ok {
			return heuristicMatch{}, false
		}
		if f[3] == "%" {
			v /= 100
		}
		result *= v
	}
	return heuristicMatch{value: result, note: strings.TrimSpace(expr)}, true
}

// derivedAnnualValue falls back to unit volume times unit price when at
// least one of the two resolved above the default tier. This keeps revenue
// cases computable when the document states a unit base but never an
// annual figure.
func derivedAnnualValue(_ string, resolved *model.ParameterSet) (heuristicMatch, bool) {
	if resolved == nil {
		return heuristicMatch{}, false
	}
	vol, okV := resolved.Get(model.FieldUnitVolume)
	price, okP := resolved.Get(model.FieldUnitPrice)
	if !okV || !okP {
		return heuristicMatch{}, false
	}
	if vol.Tier == model.TierDefault && price.Tier == model.TierDefault {
		return heuristicMatch{}, false
	}
	v := vol.Num() * price.Num()
	if v <= 0 {
		return heuristicMatch{}, false
	}
	return heuristicMatch{
		value: v,
		note:  fmt.Sprintf("derived from unit_volume × unit_price = %.0f", v),
	}, true
}

var growthPhraseRe = regexp.MustCompile(`(?i)(?:grow(?:ing|s)?|increase[sd]?|expand(?:ing)?)\s+(?:by\s+|at\s+)?([\d.]+)\s*(?:%|percent)`)

// growthPhrase reads growth statements phrased as verbs rather than rates.
func growthPhrase(raw string, _ *model.ParameterSet) (heuristicMatch, bool) {
	m := growthPhraseRe.FindStringSubmatch(raw)
	if m == nil {
		return heuristicMatch{}, false
	}
	v, ok := ParseAmount(m[1], "")
	if !ok {
		return heuristicMatch{}, false
	}
	return heuristicMatch{value: v, note: strings.TrimSpace(m[0])}, true
}
