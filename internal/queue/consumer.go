package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EventLog appends inventory events to <Dir>/inventory.log and warns when
// a sale leaves a product at or below LowStockThreshold.
type EventLog struct {
	Dir               string
	LowStockThreshold int
	Log               *zap.Logger
}

// Handle processes a single message body.
func (l *EventLog) Handle(body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", l.Dir, err)
	}
	f, err := os.OpenFile(filepath.Join(l.Dir, "inventory.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatEvent(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}

	if ev.RemainingStock != nil && *ev.RemainingStock <= l.LowStockThreshold {
		l.Log.Warn("low stock",
			zap.Uint64("product_id", ev.ProductID),
			zap.String("product_name", ev.ProductName),
			zap.Int("remaining_stock", *ev.RemainingStock),
			zap.Int("threshold", l.LowStockThreshold),
		)
	}
	return nil
}

func formatEvent(ev Event) string {
	ts := ev.OccurredAt.UTC().Format(time.RFC3339)
	switch ev.Type {
	case ImportCompleted:
		return fmt.Sprintf("[%s] %s | import_id=%d | successful=%d | failed=%d\n",
			ts, ev.Type, ev.ImportID, ev.Successful, ev.Failed)
	default:
		remaining := "n/a"
		if ev.RemainingStock != nil {
			remaining = fmt.Sprint(*ev.RemainingStock)
		}
		return fmt.Sprintf("[%s] %s | sale_id=%d | product_id=%d | product=%q | user_id=%d | quantity=%d | remaining_stock=%s\n",
			ts, ev.Type, ev.SaleID, ev.ProductID, ev.ProductName, ev.UserID, ev.Quantity, remaining)
	}
}

// Consumer reads events from RabbitMQ and hands them to an EventLog. Run
// keeps reconnecting with exponential backoff until ctx is cancelled.
type Consumer struct {
	URL     string
	Queue   string
	Handler *EventLog
	Log     *zap.Logger
}

func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("consumer dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("set qos failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
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
			if err := c.Handler.Handle(d.Body); err != nil {
				c.Log.Error("handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // no requeue, avoids a poison-message loop
				continue
			}
			_ = d.Ack(false)
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
