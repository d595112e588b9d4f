package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Handler processes one decoded event.  Returning an error rejects the
// message without requeueing it.
type Handler func(DataSyncedEvent) error

// Invalidator drops cached collections.  *store.Store satisfies it.
type Invalidator interface {
	Invalidate(names ...string)
}

// StartSyncConsumer connects to RabbitMQ, declares the data.synced fanout
// exchange, binds a private queue to it and hands every event to h.  It
// runs a reconnect loop with exponential backoff and returns only when ctx
// is cancelled.
func StartSyncConsumer(ctx context.Context, url string, h Handler) error {
	log := zap.L().Named("sync-consumer")
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, h)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("consume loop ended, reconnecting", zap.Error(err))
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

func consumeLoop(ctx context.Context, conn *amqp.Connection, h Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(DataSyncedExchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	// server-named, exclusive and auto-deleted: one queue per instance
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", DataSyncedExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(d.Body, h); err != nil {
				zap.L().Warn("sync-consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(body []byte, h Handler) error {
	var ev DataSyncedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.RunID == "" {
		return errors.New("event without run_id")
	}
	return h(ev)
}

// NewSyncHandler returns the Handler every instance runs: it invalidates
// the local store unless the event came from this instance (self), which
// already did so, and appends one line per event to logPath.
func NewSyncHandler(st Invalidator, self, logPath string) Handler {
	return func(ev DataSyncedEvent) error {
		if ev.Origin != self {
			st.Invalidate()
			zap.L().Info("store invalidated by remote sync", zap.String("run_id", ev.RunID), zap.String("origin", ev.Origin))
		}
		return appendLine(logPath, formatLine(ev))
	}
}

func formatLine(ev DataSyncedEvent) string {
	counts := "-"
	if c := ev.Counts; c != nil {
		counts = fmt.Sprintf("pitches=%d sharks=%d seasons=%d industries=%d", c.Pitches, c.Sharks, c.Seasons, c.Industries)
	}
	backups := "[]"
	if len(ev.Backups) > 0 {
		backups = "[" + strings.Join(ev.Backups, ",") + "]"
	}
	return fmt.Sprintf("[%s] Data synced | run_id=%s | origin=%s | status=%s | %s | backups=%s\n",
		ev.SyncedAt, ev.RunID, ev.Origin, ev.Status, counts, backups)
}

func appendLine(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
