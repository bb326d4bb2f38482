package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/account"
)

const (
	DefaultExchange = "account.events"

	KeyUserRegistered   = "account.user.registered"
	KeyExternalIDLinked = "account.external_id.linked"
	KeyUserDeleted      = "account.user.deleted"

	// used when the caller's ctx has no deadline
	confirmTimeout = 2 * time.Second
)

var errNacked = errors.New("broker nacked message")

// Publisher sends account events to a durable topic exchange and waits for the
// broker confirm of each one. Messages are not mandatory, so a routing key with
// no bound queue is dropped by the broker without error.
type Publisher struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{url: url, exchange: exchange}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.dial(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drop()
	return nil
}

func (p *Publisher) PublishUserRegistered(ctx context.Context, evt account.UserRegisteredEvent) error {
	return p.publish(ctx, KeyUserRegistered, evt)
}

func (p *Publisher) PublishExternalIDLinked(ctx context.Context, evt account.ExternalIDLinkedEvent) error {
	return p.publish(ctx, KeyExternalIDLinked, evt)
}

func (p *Publisher) PublishUserDeleted(ctx context.Context, evt account.UserDeletedEvent) error {
	return p.publish(ctx, KeyUserDeleted, evt)
}

// dial opens a confirm-mode channel and declares the exchange. Caller holds mu.
func (p *Publisher) dial() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	const durable, autoDelete, internal, noWait = true, false, false, false
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, durable, autoDelete, internal, noWait, nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq declare %s: %w", p.exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq confirm mode: %w", err)
	}

	p.conn, p.ch = conn, ch
	return nil
}

// drop closes the current channel and connection. Caller holds mu.
func (p *Publisher) drop() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

func buildMessage(routingKey string, payload any, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode %s: %w", routingKey, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         routingKey,
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}

func (p *Publisher) publish(ctx context.Context, routingKey string, payload any) error {
	msg, err := buildMessage(routingKey, payload, time.Now())
	if err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, confirmTimeout)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.ch == nil || p.ch.IsClosed() {
		p.drop()
		if err := p.dial(); err != nil {
			return err
		}
	}

	dc, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, routingKey, false, false, msg)
	if err != nil {
		p.drop()
		return fmt.Errorf("rabbitmq publish %s: %w", routingKey, err)
	}

	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("rabbitmq confirm %s: %w", routingKey, err)
	}
	if !acked {
		return fmt.Errorf("rabbitmq publish %s: %w", routingKey, errNacked)
	}
	return nil
}
