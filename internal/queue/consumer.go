package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartListingConsumer connects to RabbitMQ, declares the listing queue
// (durable) and appends every event to logPath as one line. It reconnects
// with backoff until ctx is cancelled, which is the only way it returns.
func StartListingConsumer(ctx context.Context, url, logPath string) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			slog.Warn("listing-consumer: failed to dial broker", "err", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, logPath)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("listing-consumer: consume loop ended; reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		slog.Warn("listing-consumer: set QoS failed", "err", err)
	}
	if _, err := ch.QueueDeclare(ListingQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, ListingQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := appendEvent(logPath, d.Body); err != nil {
			slog.Error("listing-consumer: handle message failed", "err", err)
			_ = d.Nack(false, false) // no requeue, avoids a poison loop
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func appendEvent(logPath string, body []byte) error {
	var ev ListingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single newline-terminated log line.
func FormatLine(ev ListingEvent) string {
	line := fmt.Sprintf("[%s] %s %s | id=%d", ev.OccurredAt, ev.Entity, ev.Action, ev.ID)
	if ev.Name != "" {
		line += fmt.Sprintf(" | name=%q", ev.Name)
	}
	return line + "\n"
}
