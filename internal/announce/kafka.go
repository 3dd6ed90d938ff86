package announce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka produces announcements keyed by site so one site stays ordered on one
// partition.
type Kafka struct {
	writer       MessageWriter
	maxAttempts  int
	attemptLimit time.Duration
	backoff      time.Duration
}

func NewKafka(brokers []string, topic string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker required")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka: topic required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
	return NewKafkaWithWriter(w), nil
}

func NewKafkaWithWriter(w MessageWriter) *Kafka {
	return &Kafka{writer: w, maxAttempts: 3, attemptLimit: 5 * time.Second, backoff: 100 * time.Millisecond}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Announce(ctx context.Context, a Announcement) error {
	value, err := json.Marshal(payloadOf(a))
	if err != nil {
		return &Error{Announcer: k.Name(), Err: fmt.Errorf("marshal announcement: %w", err)}
	}
	msg := kafka.Message{
		Key:     []byte(a.Site),
		Value:   value,
		Time:    a.Timestamp.UTC(),
		Headers: []kafka.Header{{Key: "announcement-id", Value: []byte(a.ID.String())}},
	}

	var lastErr error
	backoff := k.backoff
	for attempt := 1; attempt <= k.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, k.attemptLimit)
		err := k.writer.WriteMessages(attemptCtx, msg)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt == k.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return &Error{Announcer: k.Name(), Err: ctx.Err()}
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
	return &Error{Announcer: k.Name(), Err: fmt.Errorf("produce failed after %d attempts: %w", k.maxAttempts, lastErr)}
}

func (k *Kafka) Close() error {
	if k == nil || k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
