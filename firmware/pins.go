//go:build tinygo

package main

import "machine"

const (
	// Sensor pins (HC-SR04)
	PIN_TRIGGER = machine.D2
	PIN_ECHO    = machine.D3

	// Buttons, active low to ground with internal pull-ups
	PIN_PLOT_BUTTON        = machine.D4
	PIN_CALIBRATION_BUTTON = machine.D5

	// Control loop period
	TICK_INTERVAL_MS = 100

	// Serial configuration
	// Plot frames are "<ddd.dd  sss.ss  tttttttt>\n", ~30 bytes, 10 per second.
	// 115200 baud leaves plenty of room for text lines in Standard mode.
	UART_BAUD_RATE = 115200
)
