// Package speed is the measurement and mode state machine of the speed rig.
//
// It is written for TinyGo as much as for the host: float32 arithmetic, fixed
// capacity buffers and no goroutines. A Controller is driven by calling Tick
// from a single loop.
package speed

import "github.com/itohio/gospeed/pkg/frame"

// CalibratedText is shown when the calibration procedure completes.
const CalibratedText = "Calibrated"

// Controller owns the mode, the buttons and the measurement pipeline.
type Controller struct {
	state      ModeState
	plot       *Button // first button checked; captures while calibrating
	calibrate  *Button // second button checked; restarts while calibrating
	sampler    *Sampler
	estimator  *Estimator
	table      *CalibrationTable
	calibrator *Calibrator
	sink       Sink
}

// NewController wires a controller from a pinger, two inputs and a sink.
func NewController(p Pinger, plotInput, calibrateInput Input, sink Sink, s Settings) (*Controller, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	table, err := NewCalibrationTable(s.References...)
	if err != nil {
		return nil, err
	}

	return &Controller{
		plot:       NewButton(plotInput, Plot),
		calibrate:  NewButton(calibrateInput, Calibration),
		sampler:    NewSampler(p, table, s),
		estimator:  NewEstimator(s.SpeedWindow, s.SpeedMedians),
		table:      table,
		calibrator: NewCalibrator(table, s.CalibrationRepeats),
		sink:       sink,
	}, nil
}

// Start resets the speed filter with the loop start time and announces the mode.
func (c *Controller) Start(nowMs int64) {
	c.estimator.Reset(nowMs)
	c.sink.ShowMode(c.state.Mode.String())
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.state.Mode }

// Table returns the calibration table.
func (c *Controller) Table() *CalibrationTable { return c.table }

// Calibrator returns the calibration procedure state.
func (c *Controller) Calibrator() *Calibrator { return c.calibrator }

// Estimator returns the speed estimator.
func (c *Controller) Estimator() *Estimator { return c.estimator }

// Tick runs one control loop iteration at controller time nowMs.
func (c *Controller) Tick(nowMs int64) {
	if c.state.Mode == Calibration {
		c.calibrationTick()
		return
	}

	prev := c.state.Mode
	c.plot.Check(&c.state)
	c.calibrate.Check(&c.state)
	if c.state.Mode != prev {
		c.sink.ShowMode(c.state.Mode.String())
		if c.state.Mode == Calibration {
			c.calibrator.Start()
			if c.calibrator.Done() {
				// nothing to capture
				c.state.Mode = Standard
				c.sink.ShowMode(CalibratedText)
				return
			}
			c.showTarget()
			return
		}
	}

	distance := c.sampler.Measure()
	if distance == 0 {
		return
	}
	speed := c.estimator.Update(distance, nowMs)

	switch c.state.Mode {
	case Standard:
		c.sink.ShowSpeed(speed)
	case Plot:
		c.sink.EmitFrame(frame.Frame{
			Distance:  float64(distance),
			Speed:     float64(speed),
			ElapsedMs: nowMs,
		})
	}
}

// calibrationTick serves one tick of the calibration sub-state. Both buttons are
// read in the usual order, so a restart in the same tick overrides a capture.
func (c *Controller) calibrationTick() {
	if c.plot.Poll() {
		c.calibrator.Capture(c.sampler.MeasureRaw)
		if c.calibrator.Done() {
			c.state.Mode = Standard
			c.sink.ShowMode(CalibratedText)
			return
		}
		c.showTarget()
	}
	if c.calibrate.Poll() {
		c.calibrator.Restart()
		c.showTarget()
	}
}

func (c *Controller) showTarget() {
	if target, ok := c.calibrator.Target(); ok {
		c.sink.ShowCalibrationTarget(target)
	}
}
