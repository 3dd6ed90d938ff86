package announce

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher is the part of the MQTT client the announcer needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte, retained bool) error
}

// MQTT publishes announcements as JSON. Messages are not retained so a new
// subscriber does not replay an old transition.
type MQTT struct {
	pub   Publisher
	topic string
}

func NewMQTT(pub Publisher, topic string) *MQTT {
	return &MQTT{pub: pub, topic: topic}
}

func (m *MQTT) Name() string { return "mqtt" }

func (m *MQTT) Announce(ctx context.Context, a Announcement) error {
	payload, err := json.Marshal(payloadOf(a))
	if err != nil {
		return &Error{Announcer: m.Name(), Err: fmt.Errorf("marshal announcement: %w", err)}
	}
	if err := m.pub.Publish(ctx, m.topic, payload, false); err != nil {
		return &Error{Announcer: m.Name(), Err: err}
	}
	return nil
}

type wirePayload struct {
	Announcement
	Status string `json:"status"`
}

func payloadOf(a Announcement) wirePayload {
	return wirePayload{Announcement: a, Status: a.Status()}
}
