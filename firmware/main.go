//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"

	"github.com/itohio/gospeed/pkg/speed"
)

var uart = machine.UART0

func main() {
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	settings := speed.DefaultSettings()

	PIN_PLOT_BUTTON.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	PIN_CALIBRATION_BUTTON.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	ctrl, err := speed.NewController(
		newSonar(PIN_TRIGGER, PIN_ECHO, settings.EchoTimeout()),
		speed.InputFunc(func() bool { return !PIN_PLOT_BUTTON.Get() }),
		speed.InputFunc(func() bool { return !PIN_CALIBRATION_BUTTON.Get() }),
		speed.NewWriterSink(uart),
		settings,
	)
	if err != nil {
		// Nothing else can run with broken settings; keep reporting
		for {
			println(err.Error())
			time.Sleep(time.Second)
		}
	}

	boot := time.Now()
	ctrl.Start(0)

	// Main loop
	for {
		ctrl.Tick(time.Since(boot).Milliseconds())
		time.Sleep(TICK_INTERVAL_MS * time.Millisecond)
	}
}
