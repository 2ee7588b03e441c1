package speed

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T, entries ...CalibrationEntry) *CalibrationTable {
	t.Helper()
	refs := make([]float32, len(entries))
	for i, e := range entries {
		refs[i] = e.Reference
	}
	table, err := NewCalibrationTable(refs...)
	require.NoError(t, err)
	for i, e := range entries {
		table.Set(i, e.Correction)
	}
	return table
}

func TestNewCalibrationTable_Errors(t *testing.T) {
	_, err := NewCalibrationTable(10, 20, 10)
	assert.ErrorIs(t, err, ErrDuplicateReference)

	_, err = NewCalibrationTable(1, 2, 3, 4, 5, 6, 7, 8, 9)
	assert.ErrorIs(t, err, ErrTooManyPoints)
}

func TestCalibrationTable_CorrectionFor(t *testing.T) {
	table := newTestTable(t,
		CalibrationEntry{Reference: 10, Correction: 1},
		CalibrationEntry{Reference: 20, Correction: 2},
		CalibrationEntry{Reference: 30, Correction: 3},
		CalibrationEntry{Reference: 40, Correction: 4},
		CalibrationEntry{Reference: 50, Correction: 5},
	)

	tests := []struct {
		name     string
		distance float32
		want     float32
	}{
		{name: "below first reference", distance: 2, want: 1},
		{name: "exact match", distance: 30, want: 3},
		{name: "closer to lower", distance: 34, want: 3},
		{name: "closer to upper", distance: 36, want: 4},
		{name: "tie picks lower index", distance: 25, want: 2},
		{name: "beyond last reference", distance: 180, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.CorrectionFor(tt.distance))
		})
	}
}

func TestCalibrationTable_CorrectionForUnorderedReferences(t *testing.T) {
	table := newTestTable(t,
		CalibrationEntry{Reference: 40, Correction: -1},
		CalibrationEntry{Reference: 10, Correction: 2},
		CalibrationEntry{Reference: 20, Correction: 3},
	)

	// brute force: the chosen entry minimises |d - ref|, first index on ties
	for d := float32(0); d <= 60; d += 0.5 {
		best := 0
		for i := 1; i < table.Len(); i++ {
			if math32.Abs(d-table.Entry(i).Reference) < math32.Abs(d-table.Entry(best).Reference) {
				best = i
			}
		}
		assert.Equal(t, table.Entry(best).Correction, table.CorrectionFor(d), "distance %v", d)
	}

	// 30 is equidistant from 40 (index 0) and 20 (index 2)
	assert.Equal(t, float32(-1), table.CorrectionFor(30))
}

func TestCalibrationTable_Empty(t *testing.T) {
	table, err := NewCalibrationTable()
	require.NoError(t, err)

	assert.Equal(t, float32(0), table.CorrectionFor(42))
	assert.Empty(t, table.Entries())
}

func TestCalibrationTable_SetOutOfRange(t *testing.T) {
	table := newTestTable(t, CalibrationEntry{Reference: 10})
	table.Set(5, 99)
	table.Set(-1, 99)

	assert.Equal(t, []CalibrationEntry{{Reference: 10}}, table.Entries())
}

func TestCalibrator_CaptureStoresMeanOffset(t *testing.T) {
	table := newTestTable(t,
		CalibrationEntry{Reference: 10},
		CalibrationEntry{Reference: 20},
	)
	cal := NewCalibrator(table, 5)
	cal.Start()

	reads := 0
	ok := cal.Capture(func() float32 {
		reads++
		return 10 - 1.5
	})
	require.True(t, ok)
	assert.Equal(t, 5, reads)
	assert.Equal(t, float32(1.5), table.Entry(0).Correction)

	target, ok := cal.Target()
	require.True(t, ok)
	assert.Equal(t, float32(20), target)

	readings := []float32{21, 22, 23, 22, 22}
	i := 0
	ok = cal.Capture(func() float32 {
		v := readings[i]
		i++
		return v
	})
	require.True(t, ok)
	assert.InDelta(t, -2.0, table.Entry(1).Correction, 1e-6)
	assert.True(t, cal.Done())

	_, ok = cal.Target()
	assert.False(t, ok)
	assert.False(t, cal.Capture(func() float32 { return 1 }), "capture after completion is a no-op")
}

func TestCalibrator_SkipsNoEcho(t *testing.T) {
	table := newTestTable(t, CalibrationEntry{Reference: 30})
	cal := NewCalibrator(table, 3)
	cal.Start()

	readings := []float32{0, 28, 0, 28, 28}
	i := 0
	ok := cal.Capture(func() float32 {
		v := readings[i]
		i++
		return v
	})

	require.True(t, ok)
	assert.Equal(t, 5, i)
	assert.Equal(t, float32(2), table.Entry(0).Correction)
}

func TestCalibrator_NoEchoGivesUp(t *testing.T) {
	table := newTestTable(t, CalibrationEntry{Reference: 30, Correction: 7})
	cal := NewCalibrator(table, 2)
	cal.Start()

	reads := 0
	ok := cal.Capture(func() float32 {
		reads++
		return 0
	})

	assert.False(t, ok)
	assert.Equal(t, 8, reads)
	assert.Equal(t, 0, cal.Step())
	assert.Equal(t, float32(7), table.Entry(0).Correction, "failed capture keeps the old correction")
}

func TestCalibrator_Restart(t *testing.T) {
	table := newTestTable(t,
		CalibrationEntry{Reference: 10},
		CalibrationEntry{Reference: 20},
	)
	cal := NewCalibrator(table, 1)
	cal.Start()

	require.True(t, cal.Capture(func() float32 { return 9 }))
	assert.Equal(t, 1, cal.Step())

	cal.Restart()
	assert.Equal(t, 0, cal.Step())
	target, _ := cal.Target()
	assert.Equal(t, float32(10), target)
}
