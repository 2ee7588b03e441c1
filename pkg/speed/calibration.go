package speed

import (
	"errors"

	"github.com/chewxy/math32"
)

// MaxCalibrationPoints bounds the calibration table so it fits a fixed array.
const MaxCalibrationPoints = 8

var (
	// ErrTooManyPoints is returned when more references than MaxCalibrationPoints are given.
	ErrTooManyPoints = errors.New("too many calibration points")
	// ErrDuplicateReference is returned when two references share the same distance.
	ErrDuplicateReference = errors.New("duplicate calibration reference")
)

// CalibrationEntry is an additive correction captured at a reference distance (cm).
type CalibrationEntry struct {
	Reference  float32
	Correction float32
}

// CalibrationTable holds per-distance corrections in capture order.
type CalibrationTable struct {
	entries [MaxCalibrationPoints]CalibrationEntry
	n       int
}

// NewCalibrationTable creates a table for the given reference distances with zero corrections.
func NewCalibrationTable(references ...float32) (*CalibrationTable, error) {
	if len(references) > MaxCalibrationPoints {
		return nil, ErrTooManyPoints
	}
	t := &CalibrationTable{}
	for i, ref := range references {
		for j := range i {
			if references[j] == ref {
				return nil, ErrDuplicateReference
			}
		}
		t.entries[i] = CalibrationEntry{Reference: ref}
	}
	t.n = len(references)
	return t, nil
}

// Len returns the number of reference points.
func (t *CalibrationTable) Len() int { return t.n }

// Entry returns the i-th entry.
func (t *CalibrationTable) Entry(i int) CalibrationEntry { return t.entries[i] }

// Entries returns a copy of the entries in capture order.
func (t *CalibrationTable) Entries() []CalibrationEntry {
	out := make([]CalibrationEntry, t.n)
	copy(out, t.entries[:t.n])
	return out
}

// Set stores the correction for the i-th reference.
func (t *CalibrationTable) Set(i int, correction float32) {
	if i < 0 || i >= t.n {
		return
	}
	t.entries[i].Correction = correction
}

// Clear zeroes every correction, keeping the references.
func (t *CalibrationTable) Clear() {
	for i := range t.n {
		t.entries[i].Correction = 0
	}
}

// CorrectionFor returns the correction of the reference closest to distance.
// The first entry wins on an exact tie. An empty table yields 0.
func (t *CalibrationTable) CorrectionFor(distance float32) float32 {
	if t.n == 0 {
		return 0
	}
	best := 0
	bestDiff := math32.Abs(distance - t.entries[0].Reference)
	for i := 1; i < t.n; i++ {
		d := math32.Abs(distance - t.entries[i].Reference)
		if d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return t.entries[best].Correction
}

// Calibrator walks the operator through every reference distance of a table.
// It is a sub-state of the controller: one Capture per button press, never blocking
// beyond the readings it takes.
type Calibrator struct {
	table   *CalibrationTable
	repeats int
	step    int
}

// NewCalibrator creates a calibrator taking repeats readings per reference.
func NewCalibrator(table *CalibrationTable, repeats int) *Calibrator {
	if repeats < 1 {
		repeats = 1
	}
	return &Calibrator{table: table, repeats: repeats}
}

// Start begins the procedure at the first reference.
func (c *Calibrator) Start() { c.step = 0 }

// Restart goes back to the first reference. Already captured corrections are
// overwritten as the steps are repeated.
func (c *Calibrator) Restart() { c.step = 0 }

// Step returns the index of the reference awaiting capture.
func (c *Calibrator) Step() int { return c.step }

// Done reports whether every reference has been captured.
func (c *Calibrator) Done() bool { return c.step >= c.table.Len() }

// Target returns the reference distance awaiting capture.
func (c *Calibrator) Target() (float32, bool) {
	if c.Done() {
		return 0, false
	}
	return c.table.Entry(c.step).Reference, true
}

// Capture takes the configured number of raw readings at the current target,
// stores mean(reference - raw) and advances. No-echo readings (0) are skipped;
// after 4x the configured attempts without a single echo Capture gives up and
// leaves the step unchanged.
func (c *Calibrator) Capture(read func() float32) bool {
	ref, ok := c.Target()
	if !ok {
		return false
	}

	var sum float32
	n := 0
	for attempt := 0; n < c.repeats && attempt < 4*c.repeats; attempt++ {
		raw := read()
		if raw == 0 {
			continue
		}
		sum += ref - raw
		n++
	}
	if n == 0 {
		return false
	}

	c.table.Set(c.step, sum/float32(n))
	c.step++
	return true
}
