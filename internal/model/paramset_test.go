package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterSetCloneIndependence(t *testing.T) {
	ps := NewParameterSet()
	ps.Archetype = ArchetypeRevenue
	ps.Put(FieldValue{Field: FieldUnitPrice, Value: 500.0, Tier: TierExplicit})
	ps.Put(FieldValue{Field: FieldGrowthRate, Value: 5.0, Tier: TierDefault})

	c := ps.Clone()
	c.Put(FieldValue{Field: FieldUnitPrice, Value: 999.0, Tier: TierExplicit})
	c.Put(FieldValue{Field: FieldTakeRate, Value: 10.0, Tier: TierDefault})

	assert.InDelta(t, 500, ps.Num(FieldUnitPrice), 1e-9)
	assert.False(t, ps.Has(FieldTakeRate))
	assert.Equal(t, 2, ps.Len())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, ArchetypeRevenue, c.Archetype)
}

func TestParameterSetInsertionOrder(t *testing.T) {
	ps := NewParameterSet()
	ps.Put(FieldValue{Field: FieldUnitVolume, Value: 1.0})
	ps.Put(FieldValue{Field: FieldUnitPrice, Value: 2.0})
	ps.Put(FieldValue{Field: FieldUnitVolume, Value: 3.0}) // overwrite keeps position

	assert.Equal(t, []string{FieldUnitVolume, FieldUnitPrice}, ps.Fields())
	assert.InDelta(t, 3, ps.Num(FieldUnitVolume), 1e-9)

	values := ps.Values()
	require.Len(t, values, 2)
	assert.Equal(t, FieldUnitVolume, values[0].Field)
}

func TestCompare(t *testing.T) {
	prev := &MetricBundle{
		TAM:               YearlySeries{{Year: 2025, Value: 5000000}},
		CumulativeRevenue: 1000000,
		ROI:               ROIValue{Percent: 50},
	}
	next := &MetricBundle{
		TAM:               YearlySeries{{Year: 2025, Value: 5500000}},
		CumulativeRevenue: 1100000,
		ROI:               ROIValue{Indeterminate: true},
	}

	deltas := Compare(prev, next)
	require.NotEmpty(t, deltas)

	byMetric := make(map[string]MetricDelta, len(deltas))
	for _, d := range deltas {
		byMetric[d.Metric] = d
	}

	tam := byMetric["tam_y1"]
	assert.InDelta(t, 500000, tam.Delta, 1e-9)
	assert.InDelta(t, 10, tam.PercentChg, 1e-9)

	// ROI is indeterminate on one side: no delta may be reported for it.
	_, ok := byMetric["roi_pct"]
	assert.False(t, ok)

	assert.Nil(t, Compare(nil, next))
}

func TestFieldValueCoercions(t *testing.T) {
	assert.InDelta(t, 2.5, FieldValue{Value: 2.5}.Num(), 1e-9)
	assert.InDelta(t, 2, FieldValue{Value: 2}.Num(), 1e-9)
	assert.InDelta(t, 1, FieldValue{Value: true}.Num(), 1e-9)
	assert.Zero(t, FieldValue{Value: "text"}.Num())

	assert.True(t, FieldValue{Value: true}.Bool())
	assert.True(t, FieldValue{Value: 7.0}.Bool())
	assert.False(t, FieldValue{Value: 0.0}.Bool())
	assert.False(t, FieldValue{Value: "yes"}.Bool())

	assert.Equal(t, "Acme", FieldValue{Value: "Acme"}.Text())
	assert.Empty(t, FieldValue{Value: 5.0}.Text())

	_, ok := FieldValue{Value: nil}.Float()
	assert.False(t, ok)
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "explicit", TierExplicit.String())
	assert.Equal(t, "model", TierModel.String())
	assert.Equal(t, "heuristic", TierHeuristic.String())
	assert.Equal(t, "default", TierDefault.String())
}
