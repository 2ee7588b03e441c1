// Package pi drives the rig hardware from a Raspberry Pi through periph.io:
// the HC-SR04 sonar, the two push buttons and an optional SSD1306 OLED.
package pi

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Init loads the periph host drivers. Call once before opening pins.
func Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}
	return nil
}

// Pin looks up a GPIO pin by name (e.g. "GPIO23").
func Pin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no GPIO pin named %q", name)
	}
	return p, nil
}
