package speed

// Mode is the controller operating mode.
type Mode uint8

const (
	Standard Mode = iota
	Plot
	Calibration
)

func (m Mode) String() string {
	switch m {
	case Standard:
		return "Standard"
	case Plot:
		return "Plot"
	case Calibration:
		return "Calibration"
	default:
		return "Unknown"
	}
}

// ModeState is the single active mode, owned by the controller and handed to buttons.
type ModeState struct {
	Mode Mode
}

// Toggle switches to m, or back to Standard if m is already active.
func (s *ModeState) Toggle(m Mode) {
	if s.Mode == m {
		s.Mode = Standard
		return
	}
	s.Mode = m
}

// Input is a polled digital input. Pressed reports the logical state, so
// active-low wiring is resolved by the implementation.
type Input interface {
	Pressed() bool
}

// InputFunc adapts a function to Input.
type InputFunc func() bool

// Pressed calls f.
func (f InputFunc) Pressed() bool { return f() }

// Button maps a physical input to a mode. It locks on the first pressed tick and
// unlocks on the first released tick so a held press fires once.
type Button struct {
	input  Input
	mode   Mode
	locked bool
}

// NewButton creates a button toggling mode.
func NewButton(in Input, mode Mode) *Button {
	return &Button{input: in, mode: mode}
}

// Mode returns the mode this button toggles.
func (b *Button) Mode() Mode { return b.mode }

// Locked reports whether the current press has already fired.
func (b *Button) Locked() bool { return b.locked }

// IsPressed reports the raw input state.
func (b *Button) IsPressed() bool { return b.input.Pressed() }

// Poll returns true exactly once per physical press.
func (b *Button) Poll() bool {
	pressed := b.input.Pressed()
	if pressed && !b.locked {
		b.locked = true
		return true
	}
	if !pressed && b.locked {
		b.locked = false
	}
	return false
}

// Check toggles the button's mode in s on a new press and reports whether it did.
func (b *Button) Check(s *ModeState) bool {
	if !b.Poll() {
		return false
	}
	s.Toggle(b.mode)
	return true
}
