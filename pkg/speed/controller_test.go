package speed

import (
	"bytes"
	"testing"

	"github.com/itohio/gospeed/pkg/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink keeps everything the controller shows.
type recordingSink struct {
	speeds  []float32
	modes   []string
	targets []float32
	frames  []frame.Frame
}

func (s *recordingSink) ShowSpeed(v float32)             { s.speeds = append(s.speeds, v) }
func (s *recordingSink) ShowMode(text string)            { s.modes = append(s.modes, text) }
func (s *recordingSink) ShowCalibrationTarget(d float32) { s.targets = append(s.targets, d) }
func (s *recordingSink) EmitFrame(f frame.Frame)         { s.frames = append(s.frames, f) }

// rigPinger returns the echo for a settable distance (cm at 29 µs/cm); 0 means no echo.
type rigPinger struct {
	distance float32
	calls    int
}

func (p *rigPinger) Ping() uint32 {
	p.calls++
	return uint32(p.distance * 58)
}

type testRig struct {
	ctrl   *Controller
	pinger *rigPinger
	plot   *switchInput
	cal    *switchInput
	sink   *recordingSink
	nowMs  int64
}

func newTestRig(t *testing.T, settings Settings) *testRig {
	t.Helper()
	r := &testRig{
		pinger: &rigPinger{distance: 10},
		plot:   &switchInput{},
		cal:    &switchInput{},
		sink:   &recordingSink{},
	}
	ctrl, err := NewController(r.pinger, r.plot, r.cal, r.sink, settings)
	require.NoError(t, err)
	r.ctrl = ctrl
	r.ctrl.Start(0)
	return r
}

func (r *testRig) tick() {
	r.nowMs += 100
	r.ctrl.Tick(r.nowMs)
}

// press performs a full press and release of in, one tick each.
func (r *testRig) press(in *switchInput) {
	in.down = true
	r.tick()
	in.down = false
	r.tick()
}

func TestNewController_InvalidSettings(t *testing.T) {
	s := testSettings()
	s.PingSamples = 0
	_, err := NewController(&rigPinger{}, &switchInput{}, &switchInput{}, &recordingSink{}, s)
	assert.ErrorIs(t, err, ErrInvalidSettings)

	s = testSettings()
	s.References = []float32{10, 10}
	_, err = NewController(&rigPinger{}, &switchInput{}, &switchInput{}, &recordingSink{}, s)
	assert.ErrorIs(t, err, ErrDuplicateReference)
}

func TestController_StandardShowsSpeed(t *testing.T) {
	r := newTestRig(t, testSettings())
	assert.Equal(t, []string{"Standard"}, r.sink.modes)

	r.tick()
	r.pinger.distance = 20
	r.tick()

	require.Len(t, r.sink.speeds, 2)
	assert.Empty(t, r.sink.frames)
	assert.Equal(t, Standard, r.ctrl.Mode())
	assert.InDelta(t, 100.0, r.ctrl.Estimator().Instant(), 1e-3, "10 cm over 100 ms")
}

func TestController_PlotEmitsFrames(t *testing.T) {
	r := newTestRig(t, testSettings())

	r.plot.down = true
	r.tick()
	assert.Equal(t, Plot, r.ctrl.Mode())
	r.plot.down = false
	r.tick()

	require.Len(t, r.sink.frames, 2)
	assert.Empty(t, r.sink.speeds)
	assert.Equal(t, []string{"Standard", "Plot"}, r.sink.modes)
	assert.InDelta(t, 10.0, r.sink.frames[1].Distance, 1e-4)
	assert.Equal(t, int64(200), r.sink.frames[1].ElapsedMs)
}

func TestController_PlotRoundTripLeavesStateUnchanged(t *testing.T) {
	r := newTestRig(t, testSettings())
	r.ctrl.Table().Set(0, 1.25)

	r.press(r.plot)
	assert.Equal(t, Plot, r.ctrl.Mode())
	r.press(r.plot)
	assert.Equal(t, Standard, r.ctrl.Mode())

	assert.Equal(t, float32(1.25), r.ctrl.Table().Entry(0).Correction)
	assert.Equal(t, 0, r.ctrl.Calibrator().Step())
	assert.Equal(t, []string{"Standard", "Plot", "Standard"}, r.sink.modes)
}

func TestController_NoEchoTickIsSkipped(t *testing.T) {
	r := newTestRig(t, testSettings())
	r.tick()
	prev := r.ctrl.Estimator().Previous()
	samples := r.ctrl.Estimator().Samples()

	r.pinger.distance = 0
	r.tick()
	r.tick()

	assert.Equal(t, prev, r.ctrl.Estimator().Previous())
	assert.Equal(t, samples, r.ctrl.Estimator().Samples())
	assert.Len(t, r.sink.speeds, 1, "skipped ticks produce no output")
}

func TestController_CalibrationProcedure(t *testing.T) {
	settings := testSettings()
	settings.References = []float32{10, 20}
	settings.CalibrationRepeats = 3
	r := newTestRig(t, settings)

	r.cal.down = true
	r.tick()
	require.Equal(t, Calibration, r.ctrl.Mode())
	assert.Equal(t, []float32{10}, r.sink.targets)
	r.cal.down = false
	r.tick()

	pings := r.pinger.calls
	r.tick()
	assert.Equal(t, pings, r.pinger.calls, "calibration ticks do not sample without a capture")

	// sensor reads 1 cm short at the first reference, 2 cm long at the second
	r.pinger.distance = 9
	r.press(r.plot)
	assert.Equal(t, 1, r.ctrl.Calibrator().Step())
	assert.Equal(t, []float32{10, 20}, r.sink.targets)

	r.pinger.distance = 22
	r.press(r.plot)

	assert.Equal(t, Standard, r.ctrl.Mode())
	assert.Equal(t, CalibratedText, r.sink.modes[len(r.sink.modes)-1])
	assert.InDelta(t, 1.0, r.ctrl.Table().Entry(0).Correction, 1e-4)
	assert.InDelta(t, -2.0, r.ctrl.Table().Entry(1).Correction, 1e-4)

	// corrected readings now land on the references
	r.pinger.distance = 22
	speeds := len(r.sink.speeds)
	r.tick()
	require.Len(t, r.sink.speeds, speeds+1)
	assert.InDelta(t, 20.0, r.ctrl.Estimator().Previous().Distance, 1e-4)
}

func TestController_CalibrationRestart(t *testing.T) {
	settings := testSettings()
	settings.References = []float32{10, 20, 30}
	settings.CalibrationRepeats = 1
	r := newTestRig(t, settings)

	r.press(r.cal)
	r.press(r.plot)
	r.press(r.plot)
	assert.Equal(t, 2, r.ctrl.Calibrator().Step())

	r.press(r.cal)
	assert.Equal(t, Calibration, r.ctrl.Mode(), "restart does not leave calibration")
	assert.Equal(t, 0, r.ctrl.Calibrator().Step())
	assert.Equal(t, float32(10), r.sink.targets[len(r.sink.targets)-1])
}

func TestController_CalibrationWithoutReferences(t *testing.T) {
	settings := testSettings()
	settings.References = nil
	r := newTestRig(t, settings)

	r.press(r.cal)

	assert.Equal(t, Standard, r.ctrl.Mode())
	assert.Contains(t, r.sink.modes, CalibratedText)
}

func TestController_WriterSinkOutput(t *testing.T) {
	var buf bytes.Buffer
	plot := &switchInput{down: true}
	ctrl, err := NewController(&rigPinger{distance: 12.5}, plot, &switchInput{}, NewWriterSink(&buf), testSettings())
	require.NoError(t, err)

	ctrl.Start(1000)
	ctrl.Tick(1500)

	assert.Equal(t, "Mode: Standard\nMode: Plot\n<12.50  25.00  1500>\n", buf.String())
}

func TestMultiSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	sink := MultiSink{a, b}

	sink.ShowSpeed(1.5)
	sink.ShowMode("Plot")
	sink.ShowCalibrationTarget(20)
	sink.EmitFrame(frame.Frame{ElapsedMs: 7})

	for _, s := range []*recordingSink{a, b} {
		assert.Equal(t, []float32{1.5}, s.speeds)
		assert.Equal(t, []string{"Plot"}, s.modes)
		assert.Equal(t, []float32{20}, s.targets)
		assert.Equal(t, []frame.Frame{{ElapsedMs: 7}}, s.frames)
	}
}
