package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

type kafkaPublisher struct {
	w *kafka.Writer
}

// NewKafkaPublisher writes events to topic on the comma separated brokers.
func NewKafkaPublisher(brokers, topic string) *kafkaPublisher {
	return &kafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
		Time:  event.OccurredAt,
	})
}

func (p *kafkaPublisher) Close() error {
	return p.w.Close()
}

// Consumer reads events from Kafka and hands them to a Handler, committing after each one.
type Consumer struct {
	reader *kafka.Reader
	handle Handler
}

func NewConsumer(brokers, groupID, topic string, h Handler) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        strings.Split(brokers, ","),
			GroupID:        groupID,
			Topic:          topic,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
		}),
		handle: h,
	}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		_ = c.reader.Close()
	}()

	cfg := c.reader.Config()
	util.Logger.Info("event consumer started",
		zap.String("group", cfg.GroupID), zap.String("topic", cfg.Topic), zap.Strings("brokers", cfg.Brokers))

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				util.Logger.Info("event consumer shutting down")
				return nil
			}
			util.Logger.Warn("event fetch failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		var event Event
		if err := json.Unmarshal(m.Value, &event); err != nil {
			util.Logger.Warn("dropping malformed event", zap.Error(err), zap.Int64("offset", m.Offset))
		} else if err := c.handle(ctx, event); err != nil {
			util.Logger.Error("event handler failed", zap.Error(err), zap.String("type", event.Type))
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			util.Logger.Warn("event commit failed", zap.Error(err))
		}
	}
}
