//go:build tinygo

package main

import (
	"machine"
	"time"
)

// sonar bit-bangs an HC-SR04 on two pins.
type sonar struct {
	trigger machine.Pin
	echo    machine.Pin
	timeout time.Duration
}

func newSonar(trigger, echo machine.Pin, timeout time.Duration) *sonar {
	trigger.Configure(machine.PinConfig{Mode: machine.PinOutput})
	echo.Configure(machine.PinConfig{Mode: machine.PinInput})
	trigger.Low()
	return &sonar{trigger: trigger, echo: echo, timeout: timeout}
}

// Ping returns the echo round trip in microseconds, 0 on timeout.
func (s *sonar) Ping() uint32 {
	s.trigger.High()
	time.Sleep(10 * time.Microsecond)
	s.trigger.Low()

	deadline := time.Now().Add(s.timeout)
	for !s.echo.Get() {
		if time.Now().After(deadline) {
			return 0
		}
	}

	start := time.Now()
	deadline = start.Add(s.timeout)
	for s.echo.Get() {
		if time.Now().After(deadline) {
			return 0
		}
	}

	return uint32(time.Since(start).Microseconds())
}
