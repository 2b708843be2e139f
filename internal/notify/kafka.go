package notify

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// KafkaDispatcher publishes messages to one topic keyed by user id, so a
// user's notifications stay ordered within a partition.
type KafkaDispatcher struct {
	writer *kafka.Writer
}

func NewKafkaDispatcher(brokers []string, topic string) *KafkaDispatcher {
	return &KafkaDispatcher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, m Message) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	return d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(m.UserID),
		Value: data,
	})
}

func (d *KafkaDispatcher) Close() error { return d.writer.Close() }
