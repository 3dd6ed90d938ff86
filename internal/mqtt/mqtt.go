package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tlanclos/isthemountainout/internal/config"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

// ObservationHandler receives each valid observation from the broker.
type ObservationHandler func(ctx context.Context, obs types.Observation) error

// Subscriber consumes classifier observations from MQTT_OBSERVATION_TOPIC.
type Subscriber struct {
	client    mqtt.Client
	topic     string
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool
	handler   ObservationHandler

	// handlers run under ctx; Disconnect cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	stopCh   chan struct{}
	stopOnce sync.Once
}

// SetObservationHandler attaches the handler. It must be set before Connect.
func (s *Subscriber) SetObservationHandler(handler ObservationHandler) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

func NewSubscriber(cfg config.Config, logger *slog.Logger) (*Subscriber, error) {
	if cfg.MQTTBroker == "" {
		return nil, fmt.Errorf("mqtt broker not configured")
	}
	s := &Subscriber{
		topic:  cfg.MQTTObservationTopic,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	opts := clientOptions(cfg, cfg.MQTTClientID+"-sub", logger,
		func() {
			s.setConnected(true)
			// clean sessions drop subscriptions on reconnect
			if err := s.subscribe(); err != nil {
				logger.Error("mqtt resubscribe failed", "topic", s.topic, "error", err)
			}
		},
		func() { s.setConnected(false) },
	)
	s.client = mqtt.NewClient(opts)
	return s, nil
}

// Connect establishes the broker connection. ctx bounds only the wait for the
// first CONNACK. The subscription is made by the connect callback so it
// survives reconnects.
func (s *Subscriber) Connect(ctx context.Context) error {
	select {
	case <-s.stopCh:
		return errStopped
	default:
	}

	if s.IsConnected() {
		return nil
	}

	if err := waitToken(ctx, s.client.Connect(), s.stopCh); err != nil {
		s.client.Disconnect(0)
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (s *Subscriber) subscribe() error {
	qos := byte(1)
	token := s.client.Subscribe(s.topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", s.topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", s.topic, token.Error())
	}

	s.logger.Info("subscribed to mqtt topic", "topic", s.topic, "qos", qos)
	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	s.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	obs, err := DecodeObservation(payload)
	if err != nil {
		s.logger.Warn("invalid observation message",
			"topic", topic,
			"error", err,
			"payload", string(payload),
		)
		return
	}

	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()
	if handler == nil {
		return
	}
	if err := handler(s.ctx, obs); err != nil {
		s.logger.Error("observation handler failed",
			"topic", topic,
			"label", obs.Label,
			"timestamp", obs.Timestamp,
			"error", err,
		)
		return
	}
	s.logger.Debug("processed observation", "label", obs.Label, "timestamp", obs.Timestamp)
}

// DecodeObservation parses {"timestamp","label","confidence"}. Unknown labels
// and missing timestamps are rejected here so they never reach the engine.
func DecodeObservation(payload []byte) (types.Observation, error) {
	var obs types.Observation
	if err := json.Unmarshal(payload, &obs); err != nil {
		return types.Observation{}, fmt.Errorf("decode observation: %w", err)
	}
	if obs.Label == "" {
		return types.Observation{}, fmt.Errorf("label is required")
	}
	if obs.Timestamp.IsZero() {
		return types.Observation{}, fmt.Errorf("timestamp is required")
	}
	if obs.Confidence < 0 || obs.Confidence > 100 {
		return types.Observation{}, fmt.Errorf("confidence out of range: %f (must be 0-100)", obs.Confidence)
	}
	return obs, nil
}

// IsConnected returns whether the client is connected.
func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Disconnect stops the subscriber and closes the MQTT connection.
// Idempotent and safe to call multiple times.
func (s *Subscriber) Disconnect() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.cancel()
	})

	if s.client != nil && s.IsConnected() {
		token := s.client.Unsubscribe(s.topic)
		token.WaitTimeout(2 * time.Second)
	}
	if s.client != nil {
		s.client.Disconnect(250)
	}

	s.setConnected(false)
	s.logger.Info("mqtt subscriber disconnected")
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
