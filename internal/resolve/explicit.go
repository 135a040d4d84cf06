package resolve

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/fincase/bizcase-cli/internal/model"
)

// explicitPattern is one entry in the fixed catalog of numeric-with-unit
// expressions. The catalog is configuration data owned by this package and
// versioned with it (see CatalogVersion).
type explicitPattern struct {
	field     string
	re        *regexp.Regexp
	valueIdx  int  // submatch index of the numeric literal
	suffixIdx int  // submatch index of the magnitude suffix, -1 if none
	flag      bool // boolean signal; value fixed to 1
}

// CatalogVersion identifies the explicit-pattern and heuristic catalogs.
// Bump on any change to the tables below.
const CatalogVersion = "2025-08"

const sfx = `(billion|million|thousand|bn|mn|[bmk])?`

var explicitCatalog = []explicitPattern{
	// Annual revenue or savings, with magnitude suffixes.
	{field: model.FieldAnnualValue,
		re:       regexp.MustCompile(`(?i)(?:annual|yearly)\s+(?:savings|revenue|income|turnover)\s+of\s*(?:€|eur|\$)?\s*([\d.,]+)\s*` + sfx + `\b`),
		valueIdx: 1, suffixIdx: 2},
	{field: model.FieldAnnualValue,
		re:       regexp.MustCompile(`(?i)(?:savings|revenue|turnover)\s+of\s*(?:€|eur|\$)\s*([\d.,]+)\s*` + sfx + `\b`),
		valueIdx: 1, suffixIdx: 2},
	{field: model.FieldAnnualValue,
		re:       regexp.MustCompile(`(?i)(?:€|eur|\$)\s*([\d.,]+)\s*` + sfx + `\s*(?:p\.?\s?a\.?|per\s+year|annually)`),
		valueIdx: 1, suffixIdx: 2},

	// One-time development / implementation cost.
	{field: model.FieldDevelopmentCost,
		re:       regexp.MustCompile(`(?i)(?:development|implementation|setup|upfront)\s+costs?\s+(?:of\s+)?(?:€|eur|\$)?\s*([\d.,]+)\s*` + sfx + `\b`),
		valueIdx: 1, suffixIdx: 2},
	{field: model.FieldDevelopmentCost,
		re:       regexp.MustCompile(`(?i)(?:initial\s+)?investment\s+of\s*(?:€|eur|\$)?\s*([\d.,]+)\s*` + sfx + `\b`),
		valueIdx: 1, suffixIdx: 2},

	// Price per unit.
	{field: model.FieldUnitPrice,
		re:       regexp.MustCompile(`(?i)price\s+(?:per\s+(?:unit|piece|vehicle)\s+)?of\s*(?:€|eur|\$)?\s*([\d.,]+)\s*` + sfx + `\b`),
		valueIdx: 1, suffixIdx: 2},
	{field: model.FieldUnitPrice,
		re:       regexp.MustCompile(`(?i)(?:€|eur|\$)\s*([\d.,]+)\s+per\s+(?:unit|piece|vehicle|subscription)`),
		valueIdx: 1, suffixIdx: -1},

	// Unit volume adjacent to a known keyword.
	{field: model.FieldUnitVolume,
		re:       regexp.MustCompile(`(?i)([\d.,]+)\s*(thousand|million|[km])?\s+(?:units|vehicles|motorcycles|customers|subscribers|transactions)\b`),
		valueIdx: 1, suffixIdx: 2},

	// Percentage figures.
	{field: model.FieldGrowthRate,
		re:       regexp.MustCompile(`(?i)growth\s+(?:rate\s+)?of\s+([\d.]+)\s*%`),
		valueIdx: 1, suffixIdx: -1},
	{field: model.FieldGrowthRate,
		re:       regexp.MustCompile(`(?i)([\d.]+)\s*%\s+(?:annual\s+)?(?:growth|cagr)`),
		valueIdx: 1, suffixIdx: -1},
	{field: model.FieldRoyaltyRate,
		re:       regexp.MustCompile(`(?i)royalty\s+(?:rate\s+|fee\s+)?of\s+([\d.]+)\s*%`),
		valueIdx: 1, suffixIdx: -1},
	{field: model.FieldRoyaltyRate,
		re:       regexp.MustCompile(`(?i)([\d.]+)\s*%\s+royalt(?:y|ies)`),
		valueIdx: 1, suffixIdx: -1},
	{field: model.FieldTakeRate,
		re:       regexp.MustCompile(`(?i)take\s+rate\s+(?:of\s+)?([\d.]+)\s*%`),
		valueIdx: 1, suffixIdx: -1},
	{field: model.FieldMarketCoverage,
		re:       regexp.MustCompile(`(?i)(?:market\s+)?(?:coverage|penetration)\s+(?:of\s+)?([\d.]+)\s*%`),
		valueIdx: 1, suffixIdx: -1},

	// Explicit market size statements override computed TAM/SAM/SOM.
	{field: model.FieldExplicitTAM,
		re:       regexp.MustCompile(`(?i)(?:\bTAM\b|total\s+addressable\s+market)[^\d€$]{0,30}(?:€|eur|\$)?\s*([\d.,]+)\s*` + sfx + `\b`),
		valueIdx: 1, suffixIdx: 2},
	{field: model.FieldExplicitSAM,
		re:       regexp.MustCompile(`(?i)(?:\bSAM\b|serviceable\s+(?:available|addressable)\s+market)[^\d€$]{0,30}(?:€|eur|\$)?\s*([\d.,]+)\s*` + sfx + `\b`),
		valueIdx: 1, suffixIdx: 2},
	{field: model.FieldExplicitSOM,
		re:       regexp.MustCompile(`(?i)(?:\bSOM\b|serviceable\s+obtainable\s+market)[^\d€$]{0,30}(?:€|eur|\$)?\s*([\d.,]+)\s*` + sfx + `\b`),
		valueIdx: 1, suffixIdx: 2},

	// Savings signal: keyword detection, not a figure.
	{field: model.FieldSavingsSignal,
		re:   regexp.MustCompile(`(?i)cost\s+(?:savings?|reduction|avoidance)|efficiency\s+gains?|savings\s+of\b`),
		flag: true},
}

// ScanExplicit runs the fixed catalog over the source text and returns all
// explicit candidates in source order per field.
func ScanExplicit(text string) []Candidate {
	var out []Candidate
	for _, p := range explicitCatalog {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			c := Candidate{Field: p.field, Text: text[loc[0]:loc[1]], Pos: loc[0]}
			if p.flag {
				c.Value = 1
				out = append(out, c)
				continue
			}
			num := submatch(text, loc, p.valueIdx)
			suffix := ""
			if p.suffixIdx > 0 {
				suffix = submatch(text, loc, p.suffixIdx)
			}
			v, ok := ParseAmount(num, suffix)
			if !ok {
				continue
			}
			c.Value = v
			out = append(out, c)
		}
	}
	return out
}

func submatch(text string, loc []int, idx int) string {
	start, end := loc[2*idx], loc[2*idx+1]
	if start < 0 || end < 0 {
		return ""
	}
	return text[start:end]
}

// ParseAmount converts a numeric literal with an optional magnitude suffix
// ("2,000,000", "5 million", "3.5b", "120k") into a float.
func ParseAmount(num, suffix string) (float64, bool) {
	num = strings.TrimFunc(strings.ReplaceAll(num, ",", ""), func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	if num == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(strings.TrimSpace(suffix)) {
	case "k", "thousand":
		v *= 1e3
	case "m", "mn", "million":
		v *= 1e6
	case "b", "bn", "billion":
		v *= 1e9
	}
	return v, true
}
