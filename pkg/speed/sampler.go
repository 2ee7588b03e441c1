package speed

import "time"

const (
	// DefaultSoundSpeedMultiplier is the round-trip time of sound per centimetre, halved (µs/cm).
	// 29.1 µs/cm corresponds to ~343 m/s at 20 °C.
	DefaultSoundSpeedMultiplier = 29.1
	// DefaultMaxDistance is the furthest distance (cm) the sensor is asked to resolve.
	DefaultMaxDistance = 200
	// DefaultPingSamples is how many sub-pings are median filtered per reading.
	DefaultPingSamples = 5
	// DefaultPingInterval separates sub-pings so stray echoes die out.
	DefaultPingInterval = 29 * time.Millisecond
	// MinDistance is the floor for a corrected reading, keeping it apart from the no-echo 0.
	MinDistance = 0.01
)

// Pinger performs a single ultrasonic ping and returns the echo round-trip time
// in microseconds, or 0 if no echo arrived before the timeout.
type Pinger interface {
	Ping() uint32
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func() uint32

// Ping calls f.
func (f PingerFunc) Ping() uint32 { return f() }

// MaxEcho returns the echo timeout matching maxDistance (cm).
func MaxEcho(maxDistance, multiplier float32) time.Duration {
	return time.Duration(maxDistance*2*multiplier) * time.Microsecond
}

// Sampler turns median filtered ping times into corrected distances.
type Sampler struct {
	pinger     Pinger
	table      *CalibrationTable
	multiplier float32
	interval   time.Duration
	sleep      func(time.Duration)
	pings      *Window
}

// NewSampler creates a sampler. table may be nil, in which case no correction is applied.
func NewSampler(p Pinger, table *CalibrationTable, s Settings) *Sampler {
	sleep := s.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Sampler{
		pinger:     p,
		table:      table,
		multiplier: s.SoundSpeedMultiplier,
		interval:   s.PingInterval,
		sleep:      sleep,
		pings:      NewWindow(s.PingSamples),
	}
}

// MeasureRaw returns the uncorrected distance in cm, or 0 if no sub-ping echoed.
func (s *Sampler) MeasureRaw() float32 {
	us := s.medianPing()
	if us == 0 {
		return 0
	}
	return us / (2 * s.multiplier)
}

// Measure returns the calibrated distance in cm, or 0 if no sub-ping echoed.
// Callers must treat 0 as "skip this tick". A correction never pushes an
// echoed reading below MinDistance.
func (s *Sampler) Measure() float32 {
	d := s.MeasureRaw()
	if d == 0 || s.table == nil {
		return d
	}
	return max(d+s.table.CorrectionFor(d), MinDistance)
}

// medianPing returns the median of the echoing sub-pings.
func (s *Sampler) medianPing() float32 {
	s.pings.Reset()
	n := s.pings.Cap()
	for i := range n {
		if us := s.pinger.Ping(); us > 0 {
			s.pings.Push(float32(us))
		}
		if i < n-1 && s.interval > 0 {
			s.sleep(s.interval)
		}
	}
	return s.pings.Median()
}
