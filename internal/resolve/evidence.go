// Package resolve turns heterogeneous, partially-missing business evidence
// into fully resolved field values. For each field a strict tier cascade is
// tried: explicit figures from the source text, model-extracted estimates,
// domain regex heuristics, then versioned industry defaults. The first tier
// that produces a usable value wins, and every resolution is audit-logged.
package resolve

// Candidate is an explicit figure found in the source text by the fixed
// pattern catalog.
type Candidate struct {
	Field string  `json:"field"`
	Value float64 `json:"value"`
	Text  string  `json:"text"` // matched source excerpt
	Pos   int     `json:"pos"`  // byte offset in the source, for order tie-breaks
}

// ModelCandidate is a per-field estimate reported by the external analysis
// collaborator. Confidence is the collaborator's own 0-100 score, or 0 when
// unreported.
type ModelCandidate struct {
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Evidence carries everything the resolver may consult for one analysis.
type Evidence struct {
	Explicit []Candidate
	Model    map[string]ModelCandidate
	RawText  string
}
