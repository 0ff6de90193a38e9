package pkg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aquamarinepk/aqm/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	replayBatch = 1000
	replayWait  = 2 * time.Second
)

// NATSStream reads order events retained in a JetStream stream. Every Fetch
// replays the retained history from the start through a fresh ordered
// consumer.
type NATSStream struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	stream jetstream.Stream
	topic  string

	mu       sync.Mutex
	consumes []jetstream.ConsumeContext
}

// NATSStreamConfig configures a NATSStream instance.
type NATSStreamConfig struct {
	URL        string        // NATS server URL
	StreamName string        // JetStream stream name, e.g. "ORDER_EVENTS"
	Topic      string        // Subject, e.g. "orders.state"
	MaxAge     time.Duration // Retention used only when the stream is created here
}

// NewNATSStream binds to an existing stream, creating it only when missing.
// An existing stream's configuration is left untouched since the order
// backend owns it.
func NewNATSStream(ctx context.Context, cfg NATSStreamConfig) (*NATSStream, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("pos-console-stream"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	stream, err := js.Stream(ctx, cfg.StreamName)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		stream, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     cfg.StreamName,
			Subjects: []string{cfg.Topic},
			MaxAge:   cfg.MaxAge,
		})
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to bind stream %s: %w", cfg.StreamName, err)
	}

	return &NATSStream{
		conn:   conn,
		js:     js,
		stream: stream,
		topic:  cfg.Topic,
	}, nil
}

// Fetch replays retained messages, oldest first. A limit of zero or less
// drains the whole stream in batches.
func (s *NATSStream) Fetch(ctx context.Context, limit int) ([]events.StreamMessage, error) {
	info, err := s.stream.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stream info: %w", err)
	}
	if info.State.Msgs == 0 {
		return nil, nil
	}
	lastSeq := info.State.LastSeq

	consumer, err := s.stream.OrderedConsumer(ctx, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{s.topic},
		DeliverPolicy:  jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create replay consumer: %w", err)
	}

	var messages []events.StreamMessage
	for limit <= 0 || len(messages) < limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		want := replayBatch
		if limit > 0 && limit-len(messages) < want {
			want = limit - len(messages)
		}

		batch, err := consumer.Fetch(want, jetstream.FetchMaxWait(replayWait))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch messages: %w", err)
		}

		received, caughtUp := 0, false
		for msg := range batch.Messages() {
			received++
			metadata, err := msg.Metadata()
			if err != nil {
				continue
			}
			messages = append(messages, events.StreamMessage{
				Data:      msg.Data(),
				Sequence:  metadata.Sequence.Stream,
				Timestamp: metadata.Timestamp.UnixNano(),
			})
			if metadata.Sequence.Stream >= lastSeq {
				caughtUp = true
			}
		}

		if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
			if len(messages) == 0 {
				return nil, fmt.Errorf("fetch batch failed: %w", err)
			}
			break
		}
		if caughtUp || received < want {
			break
		}
	}

	return messages, nil
}

// SubscribeStream delivers messages published from now on.
func (s *NATSStream) SubscribeStream(ctx context.Context, handler events.HandlerFunc) error {
	consumer, err := s.stream.OrderedConsumer(ctx, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{s.topic},
		DeliverPolicy:  jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create live consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		// Ordered consumers take no acks.
		_ = handler(ctx, msg.Data())
	})
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", s.topic, err)
	}

	s.mu.Lock()
	s.consumes = append(s.consumes, cc)
	s.mu.Unlock()
	return nil
}

func (s *NATSStream) Close() error {
	s.mu.Lock()
	for _, cc := range s.consumes {
		cc.Stop()
	}
	s.consumes = nil
	s.mu.Unlock()

	s.conn.Close()
	return nil
}
