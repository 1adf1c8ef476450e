// Package publish streams recorded machine events to Kafka.
package publish

//go:generate go tool mockgen -destination=../../testing/mock/publish.go -package=mock . MessageWriter

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventMessage is the JSON value written for each recorded event.
type EventMessage struct {
	ID         int64     `json:"id"`
	Machine    int64     `json:"machine"`
	At         time.Time `json:"at"`
	State      string    `json:"state"`
	Reason     *int64    `json:"reason,omitempty"`
	Shift      int       `json:"shift"`
	RecordedAt time.Time `json:"recorded_at"`
	RecordedBy int64     `json:"recorded_by"`
}

// KafkaPublisher writes events keyed by machine code so that every event of
// one machine lands on the same partition in order.
type KafkaPublisher struct {
	w   MessageWriter
	log zerolog.Logger
}

// NewKafkaWriter returns a writer for topic that hashes keys to partitions.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewKafkaPublisher(w MessageWriter, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{w: w, log: log.With().Str("component", "publish").Logger()}
}

// Publish writes one event.
func (p *KafkaPublisher) Publish(ctx context.Context, msg EventMessage) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(msg.Machine, 10)),
		Value: value,
		Time:  msg.RecordedAt,
	})
	if err != nil {
		return fmt.Errorf("write event for machine %d: %w", msg.Machine, err)
	}
	p.log.Debug().Int64("machine", msg.Machine).Str("state", msg.State).Msg("event published")
	return nil
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
