// Package service holds the outbound integrations of the server.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/fyyur/internal/queue"
)

// ListingPublisher publishes listing events to RabbitMQ. Each publish
// opens its own connection, so a broker outage never leaves stale state
// behind; callers treat errors as best-effort.
type ListingPublisher struct {
	URL     string
	Timeout time.Duration
	now     func() time.Time
}

// NewListingPublisher returns a publisher for url. An empty url yields
// nil, which the handlers treat as "events disabled".
func NewListingPublisher(url string) *ListingPublisher {
	if url == "" {
		return nil
	}
	return &ListingPublisher{URL: url, Timeout: 3 * time.Second, now: time.Now}
}

// Publish sends ev to the listing queue as a persistent JSON message.
func (p *ListingPublisher) Publish(ctx context.Context, ev queue.ListingEvent) error {
	body, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(p.Timeout)})
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.ListingQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: queue declare: %w", err)
	}
	if err := ch.PublishWithContext(ctx, "", queue.ListingQueueName, false, false, message(body, p.now())); err != nil {
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}

func encodeEvent(ev queue.ListingEvent) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: marshal event: %w", err)
	}
	return body, nil
}

func message(body []byte, at time.Time) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    at.UTC(),
		Body:         body,
	}
}
