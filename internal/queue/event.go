// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import amqp "github.com/rabbitmq/amqp091-go"

// DefaultQueue is the queue purchase confirmations are routed to.
const DefaultQueue = "purchase.confirmed"

// PurchaseConfirmedEvent is published once a purchase is recorded.  It
// carries enough context for consumers to log or notify without querying
// the backend.
type PurchaseConfirmedEvent struct {
	PurchaseID    uint64   `json:"purchase_id"`
	UserID        uint64   `json:"user_id"`
	UserName      string   `json:"user_name"`
	MovieID       uint64   `json:"movie_id"`
	MovieTitle    string   `json:"movie_title"`
	ShowtimeID    uint64   `json:"showtime_id"`
	Theater       string   `json:"theater"`
	Format        string   `json:"format"`
	ShowDate      string   `json:"show_date"`
	StartsAt      string   `json:"starts_at"`
	Seats         []string `json:"seats"`
	Total         string   `json:"total"`
	PaymentMethod string   `json:"payment_method"`
	ConfirmedAt   string   `json:"confirmed_at"`
}

// Declare makes sure the durable queue exists.  It is idempotent and used
// by both sides of the queue.
func Declare(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(name, true, false, false, false, nil)
	return err
}
