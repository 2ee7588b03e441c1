package speed

// Sample is a distance (cm) taken at a controller time (ms).
type Sample struct {
	Distance float32
	TimeMs   int64
}

// Estimator derives a smoothed speed (cm/s) from successive distance samples.
type Estimator struct {
	filter  *MedianFilter
	prev    Sample
	instant float32
}

// NewEstimator creates an estimator with a speed window of size and a
// median-of-medians depth of k.
func NewEstimator(size, k int) *Estimator {
	return &Estimator{filter: NewMedianFilter(size, k)}
}

// Reset clears the filter and seeds the previous sample with (0, startMs).
func (e *Estimator) Reset(startMs int64) {
	e.filter.Reset()
	e.prev = Sample{TimeMs: startMs}
	e.instant = 0
}

// Update folds a valid distance into the speed filter and returns the smoothed speed.
// It must not be called for no-echo readings. The interval is always measured from
// the last accepted sample, so skipped ticks widen it.
//
// A non-positive interval leaves the state untouched and returns the current output.
func (e *Estimator) Update(distance float32, nowMs int64) float32 {
	dt := float32(nowMs-e.prev.TimeMs) / 1000
	if dt <= 0 {
		return e.filter.Value()
	}
	e.instant = (distance - e.prev.Distance) / dt
	out := e.filter.Add(e.instant)
	e.prev = Sample{Distance: distance, TimeMs: nowMs}
	return out
}

// Previous returns the last accepted sample.
func (e *Estimator) Previous() Sample { return e.prev }

// Instant returns the unsmoothed speed computed by the last successful Update.
func (e *Estimator) Instant() float32 { return e.instant }

// Speed returns the current smoothed speed.
func (e *Estimator) Speed() float32 { return e.filter.Value() }

// Samples returns how many speeds the filter window holds.
func (e *Estimator) Samples() int { return e.filter.Len() }
