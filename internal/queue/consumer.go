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
	"github.com/sirupsen/logrus"
)

// LogFileName is the file inside the log directory that confirmations are
// appended to.
const LogFileName = "purchases.log"

// Consumer appends every purchase confirmation to a log file.
type Consumer struct {
	URL    string
	Queue  string
	LogDir string
	Log    logrus.FieldLogger
}

// Run connects to the broker and consumes until ctx is done, reconnecting
// with exponential backoff.  Malformed messages are rejected without
// requeueing so they cannot loop.
func (c *Consumer) Run(ctx context.Context) error {
	log := c.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "purchase-consumer")

	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.WithError(err).Warnf("dial failed, retrying in %s", backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.WithError(err).Warn("consume loop ended, reconnecting")
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection, log logrus.FieldLogger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.WithError(err).Warn("set QoS failed")
	}
	if err := Declare(ch, c.Queue); err != nil {
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
			if err := HandleMessage(c.LogDir, d.Body); err != nil {
				log.WithError(err).Error("handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes a PurchaseConfirmedEvent and appends a single
// human readable line to <dir>/purchases.log.
func HandleMessage(dir string, body []byte) error {
	var ev PurchaseConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.PurchaseID == 0 {
		return errors.New("event without purchase id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Purchase confirmed | purchase_id=%d | user_id=%d | showtime_id=%d | movie=%q | theater=%q | format=%q | starts_at=%s | total=%s | method=%s | seats=[%s]\n",
		ev.ConfirmedAt, ev.PurchaseID, ev.UserID, ev.ShowtimeID, ev.MovieTitle, ev.Theater, ev.Format,
		ev.StartsAt, ev.Total, ev.PaymentMethod, strings.Join(ev.Seats, ","))
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
