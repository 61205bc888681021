package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/wayfare/backend/internal/logger"
	"github.com/wayfare/backend/internal/models"
)

const (
	publishTimeout = 3 * time.Second
	reconnInterval = 5 * time.Second
)

// Publisher sends change events to a durable topic exchange with routing key
// "<entity>.<action>", e.g. "ride.create".
type Publisher struct {
	ctx      context.Context
	url      string
	exchange string
	log      logger.Logger

	mu           sync.Mutex
	conn         *amqp.Connection
	ch           *amqp.Channel
	reconnecting bool
}

var _ Recorder = (*Publisher)(nil)

func NewPublisher(ctx context.Context, url, exchange string, log logger.Logger) (*Publisher, error) {
	p := &Publisher{ctx: ctx, url: url, exchange: exchange, log: log.Action("amqp")}
	if err := p.connect(); err != nil {
		return nil, fmt.Errorf("rabbit connect: %w", err)
	}
	return p, nil
}

func RoutingKey(ev models.AuditEvent) string {
	return strings.ToLower(ev.Entity) + "." + ev.Action
}

func (p *Publisher) Record(ctx context.Context, ev models.AuditEvent) error {
	if !p.IsAlive() {
		go p.reconnect()
		return errors.New("amqp closed")
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	ch := p.ch
	p.mu.Unlock()
	return ch.PublishWithContext(pubCtx, p.exchange, RoutingKey(ev), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Timestamp:    ev.At,
		Body:         body,
	})
}

func (p *Publisher) IsAlive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed()
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil && !p.ch.IsClosed() {
		if err := p.ch.Close(); err != nil {
			return fmt.Errorf("close channel: %w", err)
		}
	}
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("close connection: %w", err)
		}
	}
	return nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}
	p.mu.Lock()
	p.conn, p.ch = conn, ch
	p.mu.Unlock()
	return nil
}

func (p *Publisher) reconnect() {
	p.mu.Lock()
	if p.reconnecting {
		p.mu.Unlock()
		return
	}
	p.reconnecting = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.reconnecting = false
		p.mu.Unlock()
	}()

	t := time.NewTicker(reconnInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := p.connect(); err == nil {
				p.log.Info("reconnected")
				return
			}
			p.log.Warn("reconnect failed")
		case <-p.ctx.Done():
			return
		}
	}
}
