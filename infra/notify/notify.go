// Package notify relays engine events to field crews over MQTT. The
// engine publishes on the internal bus only; this adapter bridges the
// bus to the broker for mobile clients.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/branchnm/cutplan/core/events"
	"github.com/branchnm/cutplan/core/logger"
	infralogger "github.com/branchnm/cutplan/infra/logger"
	"github.com/branchnm/cutplan/internal/eventbus"
)

// Config defines the broker connection.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "cutplan-engine"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "cutplan"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("notify broker is required when enabled")
	}
	return nil
}

// Publisher sends one serialized event to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
	Close()
}

// PahoPublisher implements Publisher with Eclipse Paho.
type PahoPublisher struct {
	cli paho.Client
	qos byte
	log logger.Logger
}

// NewPahoPublisher connects to the configured broker.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(5 * time.Second)
	cli := paho.NewClient(opts)
	if tok := cli.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, tok.Error())
	}
	return &PahoPublisher{cli: cli, qos: cfg.QoS, log: infralogger.New("notify")}, nil
}

// Publish sends the payload, waiting for broker confirmation.
func (p *PahoPublisher) Publish(topic string, payload []byte) error {
	tok := p.cli.Publish(topic, p.qos, false, payload)
	if tok.Wait() && tok.Error() != nil {
		return tok.Error()
	}
	return nil
}

// Close disconnects from the broker.
func (p *PahoPublisher) Close() { p.cli.Disconnect(250) }

// Relay forwards engine events from the bus to the publisher until the
// context is cancelled. Topics are "<prefix>/<event>".
func Relay(ctx context.Context, bus eventbus.EventBus, pub Publisher, prefix string, log logger.Logger) {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			topic, payload, err := encode(prefix, ev)
			if err != nil {
				log.Warnf("notify encode: %v", err)
				continue
			}
			if topic == "" {
				continue
			}
			if err := pub.Publish(topic, payload); err != nil {
				log.Errorf("notify publish %s: %v", topic, err)
			}
		}
	}
}

func encode(prefix string, ev eventbus.Event) (string, []byte, error) {
	var suffix string
	switch ev.(type) {
	case events.DriftDetected:
		suffix = "schedule/drift"
	case events.OptimizationCompleted:
		suffix = "route/optimized"
	case events.SuggestionsRefreshed:
		suffix = "weather/suggestions"
	case events.DriveTimeBatchResolved:
		suffix = "drivetime/resolved"
	default:
		return "", nil, nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return "", nil, err
	}
	return prefix + "/" + suffix, payload, nil
}

// MockPublisher records published messages for tests. It is safe for
// concurrent use since Relay publishes from its own goroutine.
type MockPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
}

// NewMockPublisher creates an empty MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{messages: make(map[string][][]byte)}
}

// Publish records the payload.
func (m *MockPublisher) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	m.messages[topic] = append(m.messages[topic], payload)
	m.mu.Unlock()
	return nil
}

// Messages returns the payloads recorded for a topic.
func (m *MockPublisher) Messages(topic string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.messages[topic]))
	copy(out, m.messages[topic])
	return out
}

// Close is a no-op.
func (m *MockPublisher) Close() {}
