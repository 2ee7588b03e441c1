package speed

import (
	"errors"
	"time"
)

// ErrInvalidSettings is returned by Validate for unusable settings.
var ErrInvalidSettings = errors.New("invalid settings")

// DefaultReferences are the calibration distances (cm) of the reference build.
var DefaultReferences = [...]float32{10, 20, 30, 40, 50}

// Settings configures a Controller.
type Settings struct {
	SoundSpeedMultiplier float32       // µs per cm, one way
	MaxDistance          float32       // cm, sets the echo timeout
	PingSamples          int           // sub-pings median filtered per reading
	PingInterval         time.Duration // pause between sub-pings
	Sleep                func(time.Duration)

	SpeedWindow  int // running median window for speeds
	SpeedMedians int // how many window medians the output is the median of

	References         []float32 // calibration reference distances, in capture order
	CalibrationRepeats int       // readings averaged per reference
}

// DefaultSettings returns the reference build configuration.
func DefaultSettings() Settings {
	return Settings{
		SoundSpeedMultiplier: DefaultSoundSpeedMultiplier,
		MaxDistance:          DefaultMaxDistance,
		PingSamples:          DefaultPingSamples,
		PingInterval:         DefaultPingInterval,
		SpeedWindow:          3,
		SpeedMedians:         3,
		References:           DefaultReferences[:],
		CalibrationRepeats:   5,
	}
}

// Validate checks that the settings describe a working controller.
func (s Settings) Validate() error {
	switch {
	case s.SoundSpeedMultiplier <= 0:
		return errors.Join(ErrInvalidSettings, errors.New("sound speed multiplier must be positive"))
	case s.PingSamples < 1:
		return errors.Join(ErrInvalidSettings, errors.New("ping samples must be at least 1"))
	case s.SpeedWindow < 1 || s.SpeedMedians < 1:
		return errors.Join(ErrInvalidSettings, errors.New("speed windows must be at least 1"))
	case s.CalibrationRepeats < 1:
		return errors.Join(ErrInvalidSettings, errors.New("calibration repeats must be at least 1"))
	}
	return nil
}

// EchoTimeout returns the ping timeout implied by MaxDistance.
func (s Settings) EchoTimeout() time.Duration {
	return MaxEcho(s.MaxDistance, s.SoundSpeedMultiplier)
}
