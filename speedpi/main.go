// Command speedpi runs the speed controller on a Raspberry Pi: an HC-SR04 and two
// buttons on GPIO, output as text lines and plot frames on stdout or a serial port,
// and optionally an SSD1306 OLED on I2C.
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/gospeed/pkg/config"
	"github.com/itohio/gospeed/pkg/pi"
	"github.com/itohio/gospeed/pkg/speed"
	"go.bug.st/serial"
	"periph.io/x/conn/v3/i2c/i2creg"
)

func main() {
	var (
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		outFlag    = flag.String("o", "", "Serial port to write to (default stdout)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	settings := cfg.Settings()

	if err := pi.Init(); err != nil {
		log.Fatal(err)
	}

	sonar, err := openSonar(cfg, settings.EchoTimeout())
	if err != nil {
		log.Fatal(err)
	}
	plotButton, err := openButton(cfg.Pins.PlotButton)
	if err != nil {
		log.Fatal(err)
	}
	calibrationButton, err := openButton(cfg.Pins.CalibrationButton)
	if err != nil {
		log.Fatal(err)
	}

	out, err := openOutput(*outFlag, cfg.Serial.BaudRate)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()

	sink := speed.MultiSink{speed.NewWriterSink(out)}
	if cfg.Display.Enabled {
		bus, err := i2creg.Open(cfg.Display.I2CBus)
		if err != nil {
			log.Fatalf("Failed to open I2C bus: %v", err)
		}
		defer bus.Close()

		display, err := pi.NewDisplay(bus)
		if err != nil {
			log.Fatal(err)
		}
		sink = append(sink, display)
	}

	ctrl, err := speed.NewController(sonar, plotButton, calibrationButton, sink, settings)
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	boot := time.Now()
	ctrl.Start(0)
	log.Printf("speedpi: running, %v pause between ticks", cfg.Controller.TickInterval)

	// Main loop: one tick, then a fixed pause
	for {
		ctrl.Tick(time.Since(boot).Milliseconds())
		if err := sonar.Err(); err != nil {
			log.Printf("speedpi: sonar: %v", err)
		}

		select {
		case <-stop:
			log.Println("speedpi: stopping")
			return
		case <-time.After(cfg.Controller.TickInterval):
		}
	}
}

func openSonar(cfg *config.Config, timeout time.Duration) (*pi.Sonar, error) {
	trigger, err := pi.Pin(cfg.Pins.Trigger)
	if err != nil {
		return nil, err
	}
	echo, err := pi.Pin(cfg.Pins.Echo)
	if err != nil {
		return nil, err
	}
	return pi.NewSonar(trigger, echo, timeout)
}

func openButton(name string) (*pi.Button, error) {
	pin, err := pi.Pin(name)
	if err != nil {
		return nil, err
	}
	return pi.NewButton(pin)
}

// openOutput opens the serial port, or stdout when port is empty.
func openOutput(port string, baudRate int) (io.WriteCloser, error) {
	if port == "" {
		return nopCloser{os.Stdout}, nil
	}
	p, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, err
	}
	log.Printf("speedpi: writing to %s at %d baud", port, baudRate)
	return p, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
