// Package rig connects the visualizer to a speed rig, real or simulated.
package rig

import "github.com/itohio/gospeed/pkg/frame"

// Device defines the interface for rig connections (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Frames() <-chan frame.Frame
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
