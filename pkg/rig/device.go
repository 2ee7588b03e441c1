package rig

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/itohio/gospeed/pkg/frame"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate matches the firmware UART configuration.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the frames channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the controller's serial link.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	frames    chan frame.Frame
	done      chan struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial instance with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		frames:   make(chan frame.Frame, bufSize),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading frames.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}
	if d.ctx.Err() != nil {
		return fmt.Errorf("device already closed")
	}

	port, err := serial.Open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	go func() {
		defer close(d.done)
		defer close(d.frames)
		if dropped := readFrames(d.ctx, port, d.frames); dropped > 0 {
			log.Printf("Serial reader dropped %d frames", dropped)
		}
	}()

	return nil
}

// Close closes the connection and waits for the reader to finish.
// The frames channel is closed once the reader exits.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}

	d.cancel()

	var err error
	if d.conn != nil {
		if err = d.conn.Close(); err != nil {
			err = fmt.Errorf("failed to close serial port: %w", err)
		}
		d.conn = nil
	}
	d.connected = false
	d.mu.Unlock()

	<-d.done
	return err
}

// Frames returns the channel of received frames.
func (d *Serial) Frames() <-chan frame.Frame {
	return d.frames
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}
