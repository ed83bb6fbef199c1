// Package service holds the application services sitting between the HTTP
// handlers and the backend repositories.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinetick/internal/queue"
)

// EventPublisher announces confirmed purchases.
type EventPublisher interface {
	PublishPurchaseConfirmed(ctx context.Context, ev queue.PurchaseConfirmedEvent) error
}

// AMQPPublisher publishes to a durable RabbitMQ queue.  It dials per call;
// purchases are rare enough that a pooled connection is not worth keeping.
type AMQPPublisher struct {
	URL   string
	Queue string
}

// NewPublisher returns an AMQP publisher for url, or a no-op publisher when
// url is empty.
func NewPublisher(url, queueName string) EventPublisher {
	if url == "" {
		return NopPublisher{}
	}
	if queueName == "" {
		queueName = queue.DefaultQueue
	}
	return &AMQPPublisher{URL: url, Queue: queueName}
}

// PublishPurchaseConfirmed sends ev as a persistent JSON message.  Errors
// are logged and returned so the caller can choose to ignore them.
func (p *AMQPPublisher) PublishPurchaseConfirmed(ctx context.Context, ev queue.PurchaseConfirmedEvent) error {
	log := logrus.WithFields(logrus.Fields{"queue": p.Queue, "purchase_id": ev.PurchaseID})
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := queue.Declare(ch, p.Queue); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}

// NopPublisher drops events.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishPurchaseConfirmed(context.Context, queue.PurchaseConfirmedEvent) error {
	return nil
}
