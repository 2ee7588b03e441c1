package rig

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/itohio/gospeed/pkg/config"
	"github.com/itohio/gospeed/pkg/frame"
	"github.com/itohio/gospeed/pkg/speed"
)

// Mock simulates a rig: a real speed.Controller pings a simulated target swinging
// back and forth in front of the sensor, and its serial output is parsed exactly
// like a real link.
type Mock struct {
	cfg *config.Config

	frames    chan frame.Frame
	done      chan struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// NewMock creates a new mocked rig.
func NewMock(cfg *config.Config) *Mock {
	if cfg == nil {
		cfg = config.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:    cfg,
		frames: make(chan frame.Frame, DefaultBufferSize),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect starts the simulated controller.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	if m.ctx.Err() != nil {
		return fmt.Errorf("device already closed")
	}

	start := time.Now()
	target := newTarget(&m.cfg.Mock, m.cfg.Sensor, func() time.Duration { return time.Since(start) })

	settings := m.cfg.Settings()
	settings.PingInterval = 0 // sub-pings of a simulated sensor need no settling time

	// hold the plot button for the first tick so the controller streams frames
	ticks := 0
	plotButton := speed.InputFunc(func() bool { return ticks == 1 })
	released := speed.InputFunc(func() bool { return false })

	pr, pw := io.Pipe()
	ctrl, err := speed.NewController(target, plotButton, released, speed.NewWriterSink(pw), settings)
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}

	m.connected = true

	go func() {
		defer pw.Close()

		interval := m.cfg.Controller.TickInterval
		if interval <= 0 {
			interval = 100 * time.Millisecond
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		ctrl.Start(0)
		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				ticks++
				ctrl.Tick(time.Since(start).Milliseconds())
			}
		}
	}()

	go func() {
		defer close(m.done)
		defer close(m.frames)
		readFrames(m.ctx, pr, m.frames)
		// unblock a controller still writing
		pr.Close()
	}()

	return nil
}

// Close stops the simulated controller and waits for the stream to drain.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.cancel()
	m.connected = false
	m.mu.Unlock()

	<-m.done
	return nil
}

// Frames returns the channel of received frames.
func (m *Mock) Frames() <-chan frame.Frame {
	return m.frames
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// target is a simulated object in front of the sensor. It implements speed.Pinger.
type target struct {
	cfg        *config.MockConfig
	multiplier float64
	maxEcho    float64 // µs
	elapsed    func() time.Duration
	rng        *rand.Rand
}

func newTarget(cfg *config.MockConfig, sensor config.SensorConfig, elapsed func() time.Duration) *target {
	return &target{
		cfg:        cfg,
		multiplier: sensor.SoundSpeedMultiplier,
		maxEcho:    sensor.MaxDistance * 2 * sensor.SoundSpeedMultiplier,
		elapsed:    elapsed,
		rng:        rand.New(rand.NewPCG(1, 2)),
	}
}

// Distance returns the noiseless target distance in cm at time t.
func (t *target) Distance(at time.Duration) float64 {
	if t.cfg.Period <= 0 {
		return t.cfg.BaseDistance
	}
	phase := 2 * math.Pi * at.Seconds() / t.cfg.Period.Seconds()
	return t.cfg.BaseDistance + t.cfg.Amplitude*math.Sin(phase)
}

// Ping returns the echo time of the target, 0 on a simulated dropout or when
// the target is out of range.
func (t *target) Ping() uint32 {
	if t.cfg.DropoutRate > 0 && t.rng.Float64() < t.cfg.DropoutRate {
		return 0
	}
	d := t.Distance(t.elapsed()) + t.rng.NormFloat64()*t.cfg.NoiseLevel
	echo := d * 2 * t.multiplier
	if d <= 0 || echo > t.maxEcho {
		return 0
	}
	return uint32(echo)
}
