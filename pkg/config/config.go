package config

import (
	"fmt"
	"os"
	"time"

	"github.com/itohio/gospeed/pkg/speed"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration shared by the visualizer and
// the Raspberry Pi controller.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Sensor      SensorConfig      `yaml:"sensor"`
	Filter      FilterConfig      `yaml:"filter"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Controller  ControllerConfig  `yaml:"controller"`
	Pins        PinsConfig        `yaml:"pins"`
	Display     DisplayConfig     `yaml:"display"`
	Plot        PlotConfig        `yaml:"plot"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Mock        MockConfig        `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// SensorConfig describes the ultrasonic rangefinder.
type SensorConfig struct {
	SoundSpeedMultiplier float64       `yaml:"sound_speed_multiplier"` // µs per cm, one way
	MaxDistance          float64       `yaml:"max_distance"`           // cm
	PingSamples          int           `yaml:"ping_samples"`
	PingInterval         time.Duration `yaml:"ping_interval"`
}

// FilterConfig contains the speed smoothing parameters.
type FilterConfig struct {
	SpeedWindow  int `yaml:"speed_window"`
	SpeedMedians int `yaml:"speed_medians"`
}

// CalibrationConfig contains the reference distances of the guided calibration.
type CalibrationConfig struct {
	References []float64 `yaml:"references"` // cm, in capture order
	Repeats    int       `yaml:"repeats"`
}

// ControllerConfig contains control loop parameters.
type ControllerConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

// PinsConfig names the GPIO pins used by the Raspberry Pi build.
type PinsConfig struct {
	Trigger           string `yaml:"trigger"`
	Echo              string `yaml:"echo"`
	PlotButton        string `yaml:"plot_button"`
	CalibrationButton string `yaml:"calibration_button"`
}

// DisplayConfig enables the SSD1306 OLED of the Raspberry Pi build.
type DisplayConfig struct {
	Enabled bool   `yaml:"enabled"`
	I2CBus  string `yaml:"i2c_bus"` // empty picks the first bus
}

// PlotConfig contains display parameters of the visualizer.
type PlotConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"`
	MaxPoints     int     `yaml:"max_points"`
}

// TelemetryConfig configures optional MQTT publishing of received frames.
// An empty broker disables publishing.
type TelemetryConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	BaseDistance float64       `yaml:"base_distance"` // cm, centre of the simulated motion
	Amplitude    float64       `yaml:"amplitude"`     // cm
	Period       time.Duration `yaml:"period"`        // one full back-and-forth swing
	NoiseLevel   float64       `yaml:"noise_level"`   // cm
	DropoutRate  float64       `yaml:"dropout_rate"`  // probability of a missing echo per ping
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	refs := make([]float64, len(speed.DefaultReferences))
	for i, r := range speed.DefaultReferences {
		refs[i] = float64(r)
	}

	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 115200,
		},
		Sensor: SensorConfig{
			SoundSpeedMultiplier: speed.DefaultSoundSpeedMultiplier,
			MaxDistance:          speed.DefaultMaxDistance,
			PingSamples:          speed.DefaultPingSamples,
			PingInterval:         speed.DefaultPingInterval,
		},
		Filter: FilterConfig{
			SpeedWindow:  3,
			SpeedMedians: 3,
		},
		Calibration: CalibrationConfig{
			References: refs,
			Repeats:    5,
		},
		Controller: ControllerConfig{
			TickInterval: 100 * time.Millisecond,
		},
		Pins: PinsConfig{
			Trigger:           "GPIO23",
			Echo:              "GPIO24",
			PlotButton:        "GPIO17",
			CalibrationButton: "GPIO27",
		},
		Display: DisplayConfig{
			Enabled: false,
		},
		Plot: PlotConfig{
			WindowSeconds: 20,
			MaxPoints:     1000,
		},
		Telemetry: TelemetryConfig{
			Topic:    "gospeed/frames",
			ClientID: "gospeed-visualizer",
		},
		Mock: MockConfig{
			BaseDistance: 60,
			Amplitude:    40,
			Period:       6 * time.Second,
			NoiseLevel:   0.5,
			DropoutRate:  0.02,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Settings converts the configuration into controller settings.
func (c *Config) Settings() speed.Settings {
	s := speed.DefaultSettings()
	s.SoundSpeedMultiplier = float32(c.Sensor.SoundSpeedMultiplier)
	s.MaxDistance = float32(c.Sensor.MaxDistance)
	s.PingSamples = c.Sensor.PingSamples
	s.PingInterval = c.Sensor.PingInterval
	s.SpeedWindow = c.Filter.SpeedWindow
	s.SpeedMedians = c.Filter.SpeedMedians
	s.CalibrationRepeats = c.Calibration.Repeats

	s.References = make([]float32, len(c.Calibration.References))
	for i, r := range c.Calibration.References {
		s.References[i] = float32(r)
	}
	return s
}

// PlotWindow returns the visualizer time window as a duration.
func (c *Config) PlotWindow() time.Duration {
	return time.Duration(c.Plot.WindowSeconds * float64(time.Second))
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Sensor.SoundSpeedMultiplier == 0 {
		c.Sensor.SoundSpeedMultiplier = def.Sensor.SoundSpeedMultiplier
	}
	if c.Sensor.MaxDistance == 0 {
		c.Sensor.MaxDistance = def.Sensor.MaxDistance
	}
	if c.Sensor.PingSamples == 0 {
		c.Sensor.PingSamples = def.Sensor.PingSamples
	}

	if c.Filter.SpeedWindow == 0 {
		c.Filter.SpeedWindow = def.Filter.SpeedWindow
	}
	if c.Filter.SpeedMedians == 0 {
		c.Filter.SpeedMedians = def.Filter.SpeedMedians
	}

	if len(c.Calibration.References) == 0 {
		c.Calibration.References = def.Calibration.References
	}
	if c.Calibration.Repeats == 0 {
		c.Calibration.Repeats = def.Calibration.Repeats
	}

	if c.Controller.TickInterval <= 0 {
		c.Controller.TickInterval = def.Controller.TickInterval
	}

	if c.Pins.Trigger == "" {
		c.Pins.Trigger = def.Pins.Trigger
	}
	if c.Pins.Echo == "" {
		c.Pins.Echo = def.Pins.Echo
	}
	if c.Pins.PlotButton == "" {
		c.Pins.PlotButton = def.Pins.PlotButton
	}
	if c.Pins.CalibrationButton == "" {
		c.Pins.CalibrationButton = def.Pins.CalibrationButton
	}

	if c.Plot.WindowSeconds == 0 {
		c.Plot.WindowSeconds = def.Plot.WindowSeconds
	}
	if c.Plot.MaxPoints == 0 {
		c.Plot.MaxPoints = def.Plot.MaxPoints
	}

	if c.Telemetry.Topic == "" {
		c.Telemetry.Topic = def.Telemetry.Topic
	}
	if c.Telemetry.ClientID == "" {
		c.Telemetry.ClientID = def.Telemetry.ClientID
	}

	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}
	if c.Mock.BaseDistance == 0 {
		c.Mock.BaseDistance = def.Mock.BaseDistance
	}
}
