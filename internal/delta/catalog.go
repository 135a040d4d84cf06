package delta

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fincase/bizcase-cli/internal/model"
)

// CatalogVersion identifies the phrase-template catalog in effect. Bump it
// whenever a template or alias changes, so stored simulation records can be
// traced back to the catalog that parsed them.
const CatalogVersion = "2025-08"

// aliasEntry maps one surface phrase to a parameter field. Longer phrases
// are more specific and win when two aliases overlap in the same clause.
type aliasEntry struct {
	phrase string
	field  string
}

var fieldAliases = []aliasEntry{
	{"unit price", model.FieldUnitPrice},
	{"price per unit", model.FieldUnitPrice},
	{"price per piece", model.FieldUnitPrice},
	{"selling price", model.FieldUnitPrice},
	{"price", model.FieldUnitPrice},

	{"unit volume", model.FieldUnitVolume},
	{"sales volume", model.FieldUnitVolume},
	{"number of units", model.FieldUnitVolume},
	{"fleet size", model.FieldUnitVolume},
	{"fleet", model.FieldUnitVolume},
	{"volume", model.FieldUnitVolume},
	{"units", model.FieldUnitVolume},

	{"growth rate", model.FieldGrowthRate},
	{"growth", model.FieldGrowthRate},

	{"development cost", model.FieldDevelopmentCost},
	{"development costs", model.FieldDevelopmentCost},
	{"dev cost", model.FieldDevelopmentCost},
	{"implementation cost", model.FieldDevelopmentCost},

	{"royalty rate", model.FieldRoyaltyRate},
	{"royalty", model.FieldRoyaltyRate},

	{"take rate", model.FieldTakeRate},
	{"commission", model.FieldTakeRate},

	{"market coverage", model.FieldMarketCoverage},
	{"coverage", model.FieldMarketCoverage},

	{"cogs per unit", model.FieldCOGSPerUnit},
	{"cost of goods", model.FieldCOGSPerUnit},
	{"cogs", model.FieldCOGSPerUnit},

	{"annual savings", model.FieldAnnualValue},
	{"annual value", model.FieldAnnualValue},
	{"annual revenue", model.FieldAnnualValue},
	{"savings", model.FieldAnnualValue},
	{"revenue", model.FieldAnnualValue},

	{"total addressable market", model.FieldExplicitTAM},
	{"tam", model.FieldExplicitTAM},
	{"serviceable available market", model.FieldExplicitSAM},
	{"sam", model.FieldExplicitSAM},
	{"serviceable obtainable market", model.FieldExplicitSOM},
	{"som", model.FieldExplicitSOM},
}

// aliasByPhrase indexes the catalog for field lookup after a regex match.
var aliasByPhrase = func() map[string]string {
	m := make(map[string]string, len(fieldAliases))
	for _, a := range fieldAliases {
		m[strings.ToLower(a.phrase)] = a.field
	}
	return m
}()

// aliasPattern is the alternation of all alias phrases, longest first so
// the regex engine prefers the most specific surface form.
var aliasPattern = func() string {
	phrases := make([]string, len(fieldAliases))
	for i, a := range fieldAliases {
		phrases[i] = regexp.QuoteMeta(a.phrase)
	}
	sort.SliceStable(phrases, func(i, j int) bool { return len(phrases[i]) > len(phrases[j]) })
	return `(` + strings.Join(phrases, `|`) + `)`
}()

const (
	amountPat  = `(?:€|\$|£|eur|usd)?\s*([\d][\d,.]*)\s*(billion|million|thousand|bn|mn|[bmk])?`
	percentPat = `\s*(%|\bpercent\b|\bpct\b)?`
	leadinPat  = `(?:the\s+|my\s+|our\s+)?`
)

// opClass tells a template how to map its verb and percent marker onto a
// delta operation.
type opClass int

const (
	opSet opClass = iota
	opRelUp
	opRelDown
	opScale // verb implies a fixed percentage, no number in the text
)

// template is one phrase pattern tested against the instruction. Submatch 1
// is always the alias; for numeric templates submatch 2/3/4 are the amount,
// magnitude suffix, and percent marker.
type template struct {
	name  string
	class opClass
	scale float64 // opScale only: implied INCREASE_PCT magnitude
	re    *regexp.Regexp
}

var templates = []template{
	{
		name:  "set",
		class: opSet,
		re: regexp.MustCompile(`(?i)\b(?:set|change|update|adjust|make)\s+` + leadinPat + aliasPattern +
			`\s+(?:to|at|=)\s+` + amountPat + percentPat),
	},
	{
		name:  "increase",
		class: opRelUp,
		re: regexp.MustCompile(`(?i)\b(?:increase|raise|grow|boost|bump(?:\s+up)?|add)\s+` + leadinPat + aliasPattern +
			`\s+(?:by\s+)?` + amountPat + percentPat),
	},
	{
		name:  "decrease",
		class: opRelDown,
		re: regexp.MustCompile(`(?i)\b(?:decrease|reduce|lower|cut|drop|shrink)\s+` + leadinPat + aliasPattern +
			`\s+(?:by\s+)?` + amountPat + percentPat),
	},
	{
		// passive voice: "price increased by 50%", "costs went up 30%"
		name:  "passive-increase",
		class: opRelUp,
		re: regexp.MustCompile(`(?i)\b` + aliasPattern +
			`\s+(?:increased|rose|went\s+up|grew|jumped)\s+(?:by\s+)?` + amountPat + percentPat),
	},
	{
		name:  "passive-decrease",
		class: opRelDown,
		re: regexp.MustCompile(`(?i)\b` + aliasPattern +
			`\s+(?:decreased|fell|went\s+down|dropped|shrank)\s+(?:by\s+)?` + amountPat + percentPat),
	},
	{
		name:  "double",
		class: opScale,
		scale: 100,
		re:    regexp.MustCompile(`(?i)\b(?:double)\s+` + leadinPat + aliasPattern),
	},
	{
		name:  "halve",
		class: opScale,
		scale: -50,
		re:    regexp.MustCompile(`(?i)\b(?:halve)\s+` + leadinPat + aliasPattern),
	},
}
