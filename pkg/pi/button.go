package pi

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Button is an active-low push button to ground with the internal pull-up enabled.
type Button struct {
	pin gpio.PinIO
}

// NewButton configures pin as a pulled up input.
func NewButton(pin gpio.PinIO) (*Button, error) {
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure button pin %s: %w", pin, err)
	}
	return &Button{pin: pin}, nil
}

// Pressed reports whether the button currently pulls the line low.
func (b *Button) Pressed() bool {
	return b.pin.Read() == gpio.Low
}
