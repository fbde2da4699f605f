package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/viewdeck/video-dashboard-go/internal/config"
	"github.com/viewdeck/video-dashboard-go/pkg/logger"
)

// AMQPSource consumes full-snapshot pushes from a RabbitMQ topic
// exchange. The backend publishes one JSON array per collection change
// with routing key "snapshot.<collection>".
type AMQPSource struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  *config.RabbitMQConfig
	log     *zap.Logger
	mu      sync.Mutex
}

// NewAMQPSource connects to RabbitMQ and declares the snapshot
// exchange.
func NewAMQPSource(cfg *config.RabbitMQConfig) (*AMQPSource, error) {
	s := &AMQPSource{
		config: cfg,
		log:    logger.Named("amqp-source"),
	}

	if err := s.connect(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *AMQPSource) connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	connURL := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		s.config.User, s.config.Password, s.config.Host, s.config.Port)

	conn, err := amqp.Dial(connURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		s.config.Exchange, // name
		"topic",           // type
		true,              // durable
		false,             // auto-deleted
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	s.conn = conn
	s.channel = ch

	s.log.Info("connected to RabbitMQ",
		zap.String("exchange", s.config.Exchange),
	)

	return nil
}

// Subscribe binds an exclusive queue for the collection's snapshot
// routing key and decodes each message body as a full snapshot.
// Bodies that fail to decode are dropped with a log line; a broken
// message never tears down the subscription.
func (s *AMQPSource) Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel == nil {
		return nil, fmt.Errorf("channel is not initialized")
	}

	q, err := s.channel.QueueDeclare(
		"",    // name: server-generated
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	routingKey := "snapshot." + collection
	if err := s.channel.QueueBind(q.Name, routingKey, s.config.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := s.channel.Consume(
		q.Name, // queue
		"",     // consumer tag
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume: %w", err)
	}

	out := make(chan Snapshot, 16)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				var snap []json.RawMessage
				if err := json.Unmarshal(d.Body, &snap); err != nil {
					s.log.Warn("dropping undecodable snapshot message",
						zap.String("collection", collection),
						zap.Error(err),
					)
					continue
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close tears down the channel and connection.
func (s *AMQPSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel != nil {
		_ = s.channel.Close()
		s.channel = nil
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			return err
		}
		s.conn = nil
	}
	return nil
}
