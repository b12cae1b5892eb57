package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// RoutingKeyPostingCompleted is the routing key every posting event is published with.
	RoutingKeyPostingCompleted = "ledger.posting.completed"
	defaultExchange            = "ledger.events"
)

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQP publishes posting events as persistent JSON messages on a topic exchange.
type AMQP struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       Channel
	exchange string
	logger   *slog.Logger
}

// DialAMQP connects to the broker and declares the exchange.
func DialAMQP(url, exchange string, logger *slog.Logger) (*AMQP, error) {
	if exchange == "" {
		exchange = defaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}
	logger.Info("Connected to rabbitmq", slog.String("exchange", exchange))
	n := NewAMQPWithChannel(ch, exchange, logger)
	n.conn = conn
	return n, nil
}

// NewAMQPWithChannel publishes on an already open channel.
func NewAMQPWithChannel(ch Channel, exchange string, logger *slog.Logger) *AMQP {
	if exchange == "" {
		exchange = defaultExchange
	}
	return &AMQP{ch: ch, exchange: exchange, logger: logger}
}

func (n *AMQP) NotifyPosted(ctx context.Context, event domain.PostingCompleted) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: encoding posting event: %v", apperrors.ErrInternal, err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ch == nil {
		return fmt.Errorf("%w: rabbitmq channel closed", apperrors.ErrRejected)
	}
	err = n.ch.PublishWithContext(ctx, n.exchange, RoutingKeyPostingCompleted, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EntryID,
		Timestamp:    event.PostedAt,
		Type:         EventPostingCompleted,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%w: publishing posting event: %v", apperrors.ErrTransient, err)
	}
	return nil
}

// Close releases the channel and connection. Later publishes are rejected.
func (n *AMQP) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	var err error
	if n.ch != nil {
		err = n.ch.Close()
		n.ch = nil
	}
	if n.conn != nil {
		if cerr := n.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
		n.conn = nil
	}
	return err
}
