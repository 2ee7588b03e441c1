package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gospeed/pkg/rig"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createPlotTab(state),
		createSensorTab(state),
		createTelemetryTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// saveConfig persists the configuration and reports failures in a dialog.
func saveConfig(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// reconnect restarts a running chain so device level changes take effect.
func reconnect(state *appState) {
	if !state.connected() {
		return
	}
	closeChain(state.chain)
	state.chain = nil
	handleConnect(state)
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := rig.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			changed := false
			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected // Fallback to selected text
				}
				changed = state.cfg.Serial.Port != selectedPort
				state.cfg.Serial.Port = selectedPort
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				changed = changed || state.cfg.Serial.BaudRate != baud
				state.cfg.Serial.BaudRate = baud
			}
			saveConfig(state)

			if changed && !state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createPlotTab creates the Plot configuration tab.
func createPlotTab(state *appState) *container.TabItem {
	windowEntry := widget.NewEntry()
	windowEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Plot.WindowSeconds))

	maxPointsEntry := widget.NewEntry()
	maxPointsEntry.SetText(strconv.Itoa(state.cfg.Plot.MaxPoints))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowEntry},
			{Text: "Max Display Points", Widget: maxPointsEntry},
		},
		OnSubmit: func() {
			if ws, err := strconv.ParseFloat(windowEntry.Text, 64); err == nil && ws > 0 {
				state.cfg.Plot.WindowSeconds = ws
			}
			if mp, err := strconv.Atoi(maxPointsEntry.Text); err == nil && mp > 1 {
				state.cfg.Plot.MaxPoints = mp
			}
			saveConfig(state)
			state.session.SetWindow(state.cfg.PlotWindow())
		},
	}

	return container.NewTabItem("Plot", form)
}

// createSensorTab creates the Sensor configuration tab.
// These values drive the simulated rig and are shared with the Raspberry Pi build.
func createSensorTab(state *appState) *container.TabItem {
	multiplierEntry := widget.NewEntry()
	multiplierEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Sensor.SoundSpeedMultiplier))

	maxDistanceEntry := widget.NewEntry()
	maxDistanceEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Sensor.MaxDistance))

	pingSamplesEntry := widget.NewEntry()
	pingSamplesEntry.SetText(strconv.Itoa(state.cfg.Sensor.PingSamples))

	tickEntry := widget.NewEntry()
	tickEntry.SetText(state.cfg.Controller.TickInterval.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Sound Speed (µs/cm)", Widget: multiplierEntry},
			{Text: "Max Distance (cm)", Widget: maxDistanceEntry},
			{Text: "Pings per Sample", Widget: pingSamplesEntry},
			{Text: "Tick Interval", Widget: tickEntry},
		},
		OnSubmit: func() {
			if m, err := strconv.ParseFloat(multiplierEntry.Text, 64); err == nil && m > 0 {
				state.cfg.Sensor.SoundSpeedMultiplier = m
			}
			if md, err := strconv.ParseFloat(maxDistanceEntry.Text, 64); err == nil && md > 0 {
				state.cfg.Sensor.MaxDistance = md
			}
			if ps, err := strconv.Atoi(pingSamplesEntry.Text); err == nil && ps > 0 {
				state.cfg.Sensor.PingSamples = ps
			}
			if ti, err := time.ParseDuration(tickEntry.Text); err == nil && ti > 0 {
				state.cfg.Controller.TickInterval = ti
			}
			saveConfig(state)

			if state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Sensor", form)
}

// createTelemetryTab creates the MQTT configuration tab.
func createTelemetryTab(state *appState) *container.TabItem {
	brokerEntry := widget.NewEntry()
	brokerEntry.SetPlaceHolder("tcp://localhost:1883 (empty disables)")
	brokerEntry.SetText(state.cfg.Telemetry.Broker)

	topicEntry := widget.NewEntry()
	topicEntry.SetText(state.cfg.Telemetry.Topic)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Broker", Widget: brokerEntry},
			{Text: "Topic", Widget: topicEntry},
		},
		OnSubmit: func() {
			state.cfg.Telemetry.Broker = brokerEntry.Text
			if topicEntry.Text != "" {
				state.cfg.Telemetry.Topic = topicEntry.Text
			}
			saveConfig(state)
			reconnect(state)
		},
	}

	return container.NewTabItem("Telemetry", form)
}

// createMockTab creates the simulated rig configuration tab.
func createMockTab(state *appState) *container.TabItem {
	baseEntry := widget.NewEntry()
	baseEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.BaseDistance))

	amplitudeEntry := widget.NewEntry()
	amplitudeEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.Amplitude))

	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Mock.Period.String())

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.NoiseLevel))

	dropoutEntry := widget.NewEntry()
	dropoutEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.DropoutRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Base Distance (cm)", Widget: baseEntry},
			{Text: "Amplitude (cm)", Widget: amplitudeEntry},
			{Text: "Period", Widget: periodEntry},
			{Text: "Noise Level (cm)", Widget: noiseEntry},
			{Text: "Dropout Rate", Widget: dropoutEntry},
		},
		OnSubmit: func() {
			if b, err := strconv.ParseFloat(baseEntry.Text, 64); err == nil {
				state.cfg.Mock.BaseDistance = b
			}
			if a, err := strconv.ParseFloat(amplitudeEntry.Text, 64); err == nil {
				state.cfg.Mock.Amplitude = a
			}
			if p, err := time.ParseDuration(periodEntry.Text); err == nil {
				state.cfg.Mock.Period = p
			}
			if n, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				state.cfg.Mock.NoiseLevel = n
			}
			if d, err := strconv.ParseFloat(dropoutEntry.Text, 64); err == nil && d >= 0 && d <= 1 {
				state.cfg.Mock.DropoutRate = d
			}
			saveConfig(state)

			if state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
