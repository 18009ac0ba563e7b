// Package metering publishes best-effort usage reports to an AMQP
// exchange. Nothing here is transactional with the booking flow.
package metering

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/vybr/booking-api/internal/service"
)

const routingKeyBooking = "usage.booking"

type Publisher struct {
	url      string
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewPublisher(url, exchange string) *Publisher {
	return &Publisher{
		url:      url,
		exchange: exchange,
	}
}

func (p *Publisher) ReportBookingUsage(ctx context.Context, usage service.BookingUsage) error {
	body, err := json.Marshal(usage)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	channel, err := p.ensureChannel()
	if err != nil {
		return fmt.Errorf("p.ensureChannel -> %w", err)
	}

	err = channel.PublishWithContext(ctx, p.exchange, routingKeyBooking, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		p.reset()
		return fmt.Errorf("channel.PublishWithContext -> %w", err)
	}

	return nil
}

func (p *Publisher) ensureChannel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil && !p.conn.IsClosed() {
		return p.channel, nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("amqp.Dial -> %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("conn.Channel -> %w", err)
	}

	if err := channel.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("channel.ExchangeDeclare -> %w", err)
	}

	p.conn = conn
	p.channel = channel

	return channel, nil
}

func (p *Publisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) Close() {
	p.reset()
}

// NopReporter swallows usage reports. Used when no AMQP URL is
// configured so the booking flow still runs.
type NopReporter struct{}

func (NopReporter) ReportBookingUsage(_ context.Context, usage service.BookingUsage) error {
	zap.L().Debug("usage report skipped, metering disabled",
		zap.Uint("event_id", usage.EventID))
	return nil
}
