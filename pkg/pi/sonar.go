package pi

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

const triggerPulse = 10 * time.Microsecond

// Sonar is an HC-SR04 ultrasonic ranging module.
// Datasheet: https://cdn.sparkfun.com/datasheets/Sensors/Proximity/HCSR04.pdf
type Sonar struct {
	Trigger gpio.PinIO
	Echo    gpio.PinIO
	// Timeout bounds each wait for an echo edge; see speed.MaxEcho.
	Timeout time.Duration

	now   func() time.Time
	sleep func(time.Duration)
	err   error
}

// NewSonar configures trigger as a low output and echo as a pulled down input.
func NewSonar(trigger, echo gpio.PinIO, timeout time.Duration) (*Sonar, error) {
	if err := trigger.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("failed to configure trigger pin %s: %w", trigger, err)
	}
	if err := echo.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("failed to configure echo pin %s: %w", echo, err)
	}
	return &Sonar{
		Trigger: trigger,
		Echo:    echo,
		Timeout: timeout,
		now:     time.Now,
		sleep:   time.Sleep,
	}, nil
}

// Ping fires the sensor and returns the echo round trip in microseconds.
// It returns 0 when no echo arrived in time or the pins failed; Err reports the latter.
func (s *Sonar) Ping() uint32 {
	s.err = nil

	// Clear stale edges before triggering
	if err := s.Echo.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		s.err = err
		return 0
	}

	if err := s.Trigger.Out(gpio.High); err != nil {
		s.err = err
		return 0
	}
	s.sleep(triggerPulse)
	if err := s.Trigger.Out(gpio.Low); err != nil {
		s.err = err
		return 0
	}

	if !s.Echo.WaitForEdge(s.Timeout) {
		return 0
	}
	start := s.now()

	if err := s.Echo.In(gpio.PullDown, gpio.FallingEdge); err != nil {
		s.err = err
		return 0
	}
	if !s.Echo.WaitForEdge(s.Timeout) {
		return 0
	}

	d := s.now().Sub(start)
	if d <= 0 || d > s.Timeout {
		return 0
	}
	return uint32(d.Microseconds())
}

// Err returns the pin error of the last Ping, if any.
func (s *Sonar) Err() error {
	return s.err
}
