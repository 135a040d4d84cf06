// Package model defines the data types shared by the resolution,
// classification, calculation and simulation packages: field values with
// provenance, parameter sets, yearly series and metric bundles.
package model

// ParameterSet is an ordered mapping from field key to FieldValue. Two
// instances exist per analysis: the immutable baseline produced by
// resolution, and a working copy replaced (never patched) on each
// simulation.
type ParameterSet struct {
	Archetype Archetype
	order     []string
	values    map[string]FieldValue
}

// NewParameterSet creates an empty parameter set.
func NewParameterSet() *ParameterSet {
	return &ParameterSet{values: make(map[string]FieldValue)}
}

// Put stores a field value, preserving first-insertion order. Used during
// construction and on clones; resolved sets are treated as immutable.
func (ps *ParameterSet) Put(fv FieldValue) {
	if _, exists := ps.values[fv.Field]; !exists {
		ps.order = append(ps.order, fv.Field)
	}
	ps.values[fv.Field] = fv
}

// Get returns the value for a field key.
func (ps *ParameterSet) Get(field string) (FieldValue, bool) {
	fv, ok := ps.values[field]
	return fv, ok
}

// Num returns the numeric value for a field, or 0 when absent.
func (ps *ParameterSet) Num(field string) float64 {
	return ps.values[field].Num()
}

// Has reports whether the field is present.
func (ps *ParameterSet) Has(field string) bool {
	_, ok := ps.values[field]
	return ok
}

// Fields returns the field keys in insertion order.
func (ps *ParameterSet) Fields() []string {
	out := make([]string, len(ps.order))
	copy(out, ps.order)
	return out
}

// Len returns the number of fields.
func (ps *ParameterSet) Len() int {
	return len(ps.order)
}

// Clone returns a deep, independent copy. FieldValue is a value type, so
// copying the map is sufficient.
func (ps *ParameterSet) Clone() *ParameterSet {
	c := &ParameterSet{
		Archetype: ps.Archetype,
		order:     make([]string, len(ps.order)),
		values:    make(map[string]FieldValue, len(ps.values)),
	}
	copy(c.order, ps.order)
	for k, v := range ps.values {
		c.values[k] = v
	}
	return c
}

// Values returns all field values in insertion order.
func (ps *ParameterSet) Values() []FieldValue {
	out := make([]FieldValue, 0, len(ps.order))
	for _, k := range ps.order {
		out = append(out, ps.values[k])
	}
	return out
}
