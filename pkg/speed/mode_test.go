package speed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// switchInput is a button whose state the test sets directly.
type switchInput struct {
	down bool
}

func (s *switchInput) Pressed() bool { return s.down }

func TestMode_String(t *testing.T) {
	assert.Equal(t, "Standard", Standard.String())
	assert.Equal(t, "Plot", Plot.String())
	assert.Equal(t, "Calibration", Calibration.String())
	assert.Equal(t, "Unknown", Mode(42).String())
}

func TestModeState_DefaultsToStandard(t *testing.T) {
	var s ModeState
	assert.Equal(t, Standard, s.Mode)
}

func TestModeState_Toggle(t *testing.T) {
	var s ModeState

	s.Toggle(Plot)
	assert.Equal(t, Plot, s.Mode)

	s.Toggle(Plot)
	assert.Equal(t, Standard, s.Mode)

	s.Toggle(Plot)
	s.Toggle(Calibration)
	assert.Equal(t, Calibration, s.Mode, "another button's mode replaces the active one")
}

func TestButton_CheckFiresOncePerPress(t *testing.T) {
	in := &switchInput{}
	b := NewButton(in, Plot)
	var s ModeState

	in.down = true
	toggles := 0
	for range 10 {
		if b.Check(&s) {
			toggles++
		}
	}
	assert.Equal(t, 1, toggles, "held press toggles once")
	assert.True(t, b.Locked())
	assert.Equal(t, Plot, s.Mode)

	in.down = false
	assert.False(t, b.Check(&s))
	assert.False(t, b.Locked(), "release unlocks")

	in.down = true
	assert.True(t, b.Check(&s))
	assert.False(t, b.Check(&s))
	assert.Equal(t, Standard, s.Mode, "second press returns to standard")
}

func TestButton_ReleasedNeverFires(t *testing.T) {
	b := NewButton(InputFunc(func() bool { return false }), Calibration)
	var s ModeState

	for range 5 {
		assert.False(t, b.Check(&s))
	}
	assert.Equal(t, Standard, s.Mode)
	assert.Equal(t, Calibration, b.Mode())
	assert.False(t, b.IsPressed())
}

func TestButton_SimultaneousPressOrder(t *testing.T) {
	plotIn := &switchInput{down: true}
	calIn := &switchInput{down: true}
	plot := NewButton(plotIn, Plot)
	cal := NewButton(calIn, Calibration)
	var s ModeState

	assert.True(t, plot.Check(&s))
	assert.True(t, cal.Check(&s))

	assert.Equal(t, Calibration, s.Mode, "second button checked overwrites the first")
}
