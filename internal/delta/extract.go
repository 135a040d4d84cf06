// Package delta parses free-form modification instructions ("increase price
// by 10%", "set royalty rate to 12%") into structured parameter deltas.
// Parsing is a fixed catalog of phrase templates; no recognized template
// yields an empty list, never an error.
package delta

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fincase/bizcase-cli/internal/model"
	"github.com/fincase/bizcase-cli/internal/resolve"
)

// match is one template hit inside the instruction, with enough position
// information to detect clauses claimed by two different fields.
type match struct {
	start, end int
	aliasLen   int
	template   string
	delta      model.ParameterDelta
}

// Extract parses the instruction into parameter deltas, in source order.
// An instruction with no recognizable clause returns an empty slice: the
// caller should respond with a clarification, not treat it as a failure.
func Extract(instruction string) []model.ParameterDelta {
	var matches []match
	for _, t := range templates {
		for _, loc := range t.re.FindAllStringSubmatchIndex(instruction, -1) {
			m, ok := buildMatch(instruction, t, loc)
			if !ok {
				continue
			}
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		zap.L().Debug("delta: no template matched", zap.String("instruction", instruction))
		return nil
	}

	matches = resolveOverlaps(matches)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	out := make([]model.ParameterDelta, len(matches))
	for i, m := range matches {
		out[i] = m.delta
		zap.L().Info("delta: instruction clause parsed",
			zap.String("template", m.template),
			zap.String("field", m.delta.Field),
			zap.String("op", string(m.delta.Op)),
			zap.Float64("magnitude", m.delta.Magnitude))
	}
	return out
}

func buildMatch(text string, t template, loc []int) (match, bool) {
	alias := strings.ToLower(submatch(text, loc, 1))
	field, ok := aliasByPhrase[alias]
	if !ok {
		return match{}, false
	}
	m := match{
		start:    loc[0],
		end:      loc[1],
		aliasLen: len(alias),
		template: t.name,
	}

	if t.class == opScale {
		op := model.OpIncreasePct
		if t.scale < 0 {
			op = model.OpDecreasePct
		}
		m.delta = model.ParameterDelta{Field: field, Op: op, Magnitude: math.Abs(t.scale)}
		return m, true
	}

	v, ok := resolve.ParseAmount(submatch(text, loc, 2), submatch(text, loc, 3))
	if !ok {
		return match{}, false
	}
	pct := submatch(text, loc, 4) != ""

	var op model.DeltaOp
	switch t.class {
	case opSet:
		op = model.OpSet
	case opRelUp:
		op = model.OpIncreaseAbs
		if pct {
			op = model.OpIncreasePct
		}
	case opRelDown:
		op = model.OpDecreaseAbs
		if pct {
			op = model.OpDecreasePct
		}
	}
	m.delta = model.ParameterDelta{Field: field, Op: op, Magnitude: v}
	return m, true
}

// resolveOverlaps drops matches whose text span overlaps a more specific
// one. When the competing matches target different fields the loser is
// logged, since the instruction was genuinely ambiguous.
func resolveOverlaps(matches []match) []match {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].aliasLen != matches[j].aliasLen {
			return matches[i].aliasLen > matches[j].aliasLen
		}
		return matches[i].start < matches[j].start
	})

	var kept []match
	for _, m := range matches {
		conflict := false
		for _, k := range kept {
			if m.start < k.end && k.start < m.end {
				conflict = true
				if k.delta.Field != m.delta.Field {
					zap.L().Warn("delta: ambiguous clause, preferring more specific alias",
						zap.String("kept_field", k.delta.Field),
						zap.String("discarded_field", m.delta.Field),
						zap.String("discarded_template", m.template))
				}
				break
			}
		}
		if !conflict {
			kept = append(kept, m)
		}
	}
	return kept
}

func submatch(text string, loc []int, idx int) string {
	start, end := loc[2*idx], loc[2*idx+1]
	if start < 0 || end < 0 {
		return ""
	}
	return text[start:end]
}
