package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gospeed/pkg/config"
	"github.com/itohio/gospeed/pkg/frame"
	"github.com/itohio/gospeed/pkg/plot"
	"github.com/itohio/gospeed/pkg/rig"
	"github.com/itohio/gospeed/pkg/session"
	"github.com/itohio/gospeed/pkg/telemetry"
)

// updateInterval throttles plot refreshes to ~60 FPS.
const updateInterval = 16 * time.Millisecond

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use simulated rig instead of serial port")
		brokerFlag = flag.String("mqtt", "", "MQTT broker to republish frames to (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *brokerFlag != "" {
		cfg.Telemetry.Broker = *brokerFlag
	}

	application := app.NewWithID("com.itohio.gospeed")

	window := application.NewWindow("Speed Rig")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		session:    session.New(cfg.PlotWindow()),
		window:     window,
		useMock:    *mockFlag,
	}
	state.plotWidget = plot.New(cfg)
	state.registerPlotUpdates()

	toolbar := createToolbar(state)

	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		state.plotWidget,
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		closeChain(state.chain)
	})
	window.ShowAndRun()
}

// chain tracks the components of a running frame pipeline for graceful shutdown.
type chain struct {
	device      rig.Device
	publisher   *telemetry.Publisher
	sessionDone chan struct{} // Closed when the session goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	session    *session.Session
	plotWidget *plot.Widget
	window     fyne.Window
	connectBtn *widget.Button
	useMock    bool
	chain      *chain // nil if not connected

	// Throttling for plot updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// createToolbar creates the toolbar with Connect, Settings and Reset buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	resetBtn := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		state.session.Clear()
	})

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn),
		container.NewHBox(resetBtn),
		nil,
	)
}

// registerPlotUpdates forwards session updates to the plot widget on the main thread.
func (state *appState) registerPlotUpdates() {
	state.session.OnUpdate(func(points []session.Point, resets int) {
		state.updateMu.Lock()
		now := time.Now()
		if now.Sub(state.lastUpdateTime) < updateInterval && len(points) > 1 {
			state.updateMu.Unlock()
			return
		}
		state.lastUpdateTime = now
		state.updateMu.Unlock()

		fyne.Do(func() {
			state.plotWidget.UpdateData(points, resets)
		})
	})
}

func (state *appState) connected() bool {
	return state.chain != nil && state.chain.device.IsConnected()
}

// closeChain closes the device and waits for the session goroutine to drain.
func closeChain(c *chain) {
	if c == nil {
		return
	}

	// Closing the device closes its frames channel, which ends the pipeline
	if c.device != nil {
		c.device.Close()
	}
	if c.sessionDone != nil {
		<-c.sessionDone
	}
	if c.publisher != nil {
		c.publisher.Close()
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.connected() {
		closeChain(state.chain)
		state.chain = nil
		state.connectBtn.SetIcon(theme.LoginIcon())
		log.Println("Disconnected")
		return
	}

	var device rig.Device
	if state.useMock {
		device = rig.NewMock(state.cfg)
		log.Println("Using simulated rig")
	} else {
		device = rig.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, rig.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to start simulated rig: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	if !state.useMock {
		log.Printf("Connected to serial port: %s", state.cfg.Serial.Port)
	}

	frames := device.Frames()

	// Optional MQTT tee; the plot keeps working without a broker
	var publisher *telemetry.Publisher
	if state.cfg.Telemetry.Broker != "" {
		p, err := telemetry.Connect(state.cfg.Telemetry)
		if err != nil {
			log.Printf("Telemetry disabled: %v", err)
		} else {
			publisher = p
			frames = publisher.Tee(frames)
		}
	}

	// A new connection is a new session
	state.session.Clear()
	state.session.ResetShutdown()

	sessionDone := make(chan struct{})
	go func(in <-chan frame.Frame) {
		defer close(sessionDone)
		state.session.Process(in)
	}(frames)

	state.chain = &chain{
		device:      device,
		publisher:   publisher,
		sessionDone: sessionDone,
	}
	state.connectBtn.SetIcon(theme.LogoutIcon())
}
