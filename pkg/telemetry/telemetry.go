// Package telemetry republishes received frames to an MQTT broker.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/itohio/gospeed/pkg/config"
	"github.com/itohio/gospeed/pkg/frame"
)

// ErrNoBroker is returned when publishing is configured without a broker.
var ErrNoBroker = errors.New("telemetry: no broker configured")

// Payload is the JSON document published for every frame.
type Payload struct {
	Distance  float64 `json:"distance"`   // cm
	Speed     float64 `json:"speed"`      // cm/s
	ElapsedMs int64   `json:"elapsed_ms"` // controller clock
	TimeMs    int64   `json:"time_ms"`    // host wall clock, unix ms
}

// client is the part of mqtt.Client the publisher needs.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher sends frames to a single topic with QoS 0.
type Publisher struct {
	client client
	topic  string
	now    func() time.Time
}

// Connect dials the broker from cfg and returns a ready publisher.
func Connect(cfg config.TelemetryConfig) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, ErrNoBroker
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Broker, token.Error())
	}
	log.Printf("telemetry: connected to MQTT broker at %s", cfg.Broker)

	return newPublisher(c, cfg.Topic), nil
}

func newPublisher(c client, topic string) *Publisher {
	return &Publisher{client: c, topic: topic, now: time.Now}
}

// Publish sends one frame. It does not wait for delivery.
func (p *Publisher) Publish(f frame.Frame) error {
	payload, err := json.Marshal(Payload{
		Distance:  f.Distance,
		Speed:     f.Speed,
		ElapsedMs: f.ElapsedMs,
		TimeMs:    p.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	default:
		return nil
	}
}

// Tee publishes every frame from in and forwards it unchanged.
// The returned channel closes when in closes.
func (p *Publisher) Tee(in <-chan frame.Frame) <-chan frame.Frame {
	out := make(chan frame.Frame, cap(in))

	go func() {
		defer close(out)
		for f := range in {
			if err := p.Publish(f); err != nil {
				log.Printf("telemetry: publish failed: %v", err)
			}
			out <- f
		}
	}()

	return out
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
