package speed

// Window is a fixed-capacity ring of recent samples.
// Once full, every Push evicts the oldest sample.
//
// Window is not safe for concurrent use. It never allocates after construction,
// which keeps it usable on the microcontroller.
type Window struct {
	values []float32
	sorted []float32 // scratch buffer for Median
	next   int
	count  int
}

// NewWindow creates a window holding at most capacity samples.
// Capacity below 1 is treated as 1.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{
		values: make([]float32, capacity),
		sorted: make([]float32, capacity),
	}
}

// Push adds a sample, evicting the oldest one when the window is full.
func (w *Window) Push(v float32) {
	w.values[w.next] = v
	w.next = (w.next + 1) % len(w.values)
	if w.count < len(w.values) {
		w.count++
	}
}

// Len returns the number of samples currently held.
func (w *Window) Len() int { return w.count }

// Cap returns the fixed capacity.
func (w *Window) Cap() int { return len(w.values) }

// Reset drops all samples.
func (w *Window) Reset() {
	w.next = 0
	w.count = 0
}

// Values copies the held samples into dst, oldest first, and returns it.
func (w *Window) Values(dst []float32) []float32 {
	dst = dst[:0]
	start := (w.next - w.count + len(w.values)) % len(w.values)
	for i := range w.count {
		dst = append(dst, w.values[(start+i)%len(w.values)])
	}
	return dst
}

// Median returns the median of the held samples.
// An even count yields the mean of the two middle values; an empty window yields 0.
func (w *Window) Median() float32 {
	if w.count == 0 {
		return 0
	}
	s := w.Values(w.sorted)
	insertionSort(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

// insertionSort sorts tiny slices in place; windows here hold a handful of values.
func insertionSort(s []float32) {
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j] > v {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}

// MedianFilter smooths a stream by taking the median of the last K window medians.
type MedianFilter struct {
	samples *Window
	medians *Window
}

// NewMedianFilter creates a filter with a sample window of size and a
// median-of-medians window of k.
func NewMedianFilter(size, k int) *MedianFilter {
	return &MedianFilter{
		samples: NewWindow(size),
		medians: NewWindow(k),
	}
}

// Add pushes v and returns the median of the last K medians.
func (f *MedianFilter) Add(v float32) float32 {
	f.samples.Push(v)
	f.medians.Push(f.samples.Median())
	return f.medians.Median()
}

// Value returns the current smoothed output without adding a sample.
func (f *MedianFilter) Value() float32 {
	return f.medians.Median()
}

// Len returns how many raw samples the filter currently holds.
func (f *MedianFilter) Len() int { return f.samples.Len() }

// Reset clears both windows.
func (f *MedianFilter) Reset() {
	f.samples.Reset()
	f.medians.Reset()
}
