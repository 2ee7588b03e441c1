package speed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow_Empty(t *testing.T) {
	w := NewWindow(3)

	assert.Equal(t, 0, w.Len())
	assert.Equal(t, 3, w.Cap())
	assert.Equal(t, float32(0), w.Median())
}

func TestWindow_InvalidCapacity(t *testing.T) {
	w := NewWindow(0)
	assert.Equal(t, 1, w.Cap())

	w.Push(4)
	w.Push(7)
	assert.Equal(t, float32(7), w.Median())
}

func TestWindow_EvictsOldest(t *testing.T) {
	w := NewWindow(3)
	for _, v := range []float32{1, 2, 3, 4, 5} {
		w.Push(v)
	}

	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []float32{3, 4, 5}, w.Values(nil))
}

func TestWindow_Median(t *testing.T) {
	tests := []struct {
		name   string
		values []float32
		want   float32
	}{
		{name: "single", values: []float32{5}, want: 5},
		{name: "odd unsorted", values: []float32{9, 1, 5}, want: 5},
		{name: "even averages middle pair", values: []float32{4, 1, 3, 2}, want: 2.5},
		{name: "outlier rejected", values: []float32{10, 1000, 11, 12, 9}, want: 11},
		{name: "negative values", values: []float32{-3, -1, -2}, want: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(len(tt.values))
			for _, v := range tt.values {
				w.Push(v)
			}
			assert.Equal(t, tt.want, w.Median())
		})
	}
}

func TestWindow_MedianKeepsOrder(t *testing.T) {
	w := NewWindow(3)
	w.Push(3)
	w.Push(1)
	w.Push(2)

	_ = w.Median()
	assert.Equal(t, []float32{3, 1, 2}, w.Values(nil), "median must not reorder the ring")
}

func TestWindow_Reset(t *testing.T) {
	w := NewWindow(2)
	w.Push(1)
	w.Push(2)
	w.Reset()

	assert.Equal(t, 0, w.Len())
	assert.Equal(t, float32(0), w.Median())
}

func TestMedianFilter_RejectsSpike(t *testing.T) {
	f := NewMedianFilter(3, 3)

	var out float32
	for _, v := range []float32{10, 10, 10, 500, 10, 10} {
		out = f.Add(v)
	}

	assert.Equal(t, float32(10), out)
	assert.Equal(t, 3, f.Len())
}

func TestMedianFilter_MedianOfMedians(t *testing.T) {
	f := NewMedianFilter(3, 3)

	// window medians: 1, 1.5, 2, 3 -> last three medians 1.5, 2, 3
	f.Add(1)
	f.Add(2)
	f.Add(3)
	out := f.Add(4)

	assert.Equal(t, float32(2), out)
	assert.Equal(t, out, f.Value())

	f.Reset()
	assert.Equal(t, float32(0), f.Value())
}
