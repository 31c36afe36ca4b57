package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes envelopes to a topic from a background goroutine so
// request handlers never wait on the broker.
type KafkaPublisher struct {
	w        *kafka.Writer
	producer string
	inbox    chan kafka.Message
	done     chan struct{}
	logger   zerolog.Logger

	// mu guards closed; Publish holds the read lock while sending to inbox.
	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher creates a publisher; call Start before publishing.
func NewKafkaPublisher(brokers []string, topic, producer string, buf int, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		producer: producer,
		inbox:    make(chan kafka.Message, buf),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Start runs the delivery loop until Close is called.
func (p *KafkaPublisher) Start() {
	go func() {
		defer close(p.done)
		for m := range p.inbox {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := p.w.WriteMessages(ctx, m); err != nil {
				p.logger.Error().Err(err).Str("key", string(m.Key)).Msg("Failed to publish event")
			}
			cancel()
		}
		if err := p.w.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Failed to close kafka writer")
		}
	}()
}

// Publish queues env keyed by its class id. A full queue or a closed
// publisher drops the event.
func (p *KafkaPublisher) Publish(_ context.Context, env Envelope) {
	if env.Producer == "" {
		env.Producer = p.producer
	}
	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Error().Err(err).Str("eventType", env.EventType).Msg("Failed to encode event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(env.CorrelationID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn().Str("eventType", env.EventType).Str("eventID", env.EventID).Msg("Event publisher closed, dropping event")
		return
	}

	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn().Str("eventType", env.EventType).Str("eventID", env.EventID).Msg("Event queue full, dropping event")
	}
}

// Close flushes queued events and waits for the writer to shut down. Events
// published afterwards are dropped.
func (p *KafkaPublisher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()
	<-p.done
}
