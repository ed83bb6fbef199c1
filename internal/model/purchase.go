package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout.  PayPal is a third-party redirect
// and carries no card fields.
const (
	PaymentCard   = "card"
	PaymentPayPal = "paypal"
)

// LineItem groups the seats of one zone for one showtime.  Subtotal is
// always UnitPrice * Quantity.
type LineItem struct {
	ShowtimeID uint64          `json:"showtime_id"`
	Zone       Zone            `json:"zone"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Seats      []string        `json:"seats,omitempty"`
}

// Purchase is created once when checkout is submitted and never mutated
// afterwards.  Total equals the sum of the line item subtotals.
type Purchase struct {
	ID            uint64          `json:"id"`
	UserID        uint64          `json:"user_id"`
	UserName      string          `json:"user_name"`
	Total         decimal.Decimal `json:"total"`
	Items         []LineItem      `json:"items"`
	PaymentMethod string          `json:"payment_method"`
	ShowDate      string          `json:"show_date"` // YYYY-MM-DD chosen in the flow
	CreatedAt     time.Time       `json:"created_at"`
}

// PurchaseDetailLine is a line item enriched with the showtime context.
type PurchaseDetailLine struct {
	ShowtimeID uint64          `json:"showtime_id"`
	Title      string          `json:"title"`
	Theater    string          `json:"theater"`
	StartsAt   string          `json:"starts_at"`
	Format     string          `json:"format"`
	Zone       Zone            `json:"zone"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Seats      []string        `json:"seats"`
}

// PurchaseDetail is the read model returned for a purchase confirmation.
type PurchaseDetail struct {
	ID          uint64               `json:"id"`
	UserID      uint64               `json:"user_id"`
	UserName    string               `json:"user_name"`
	PurchasedAt time.Time            `json:"purchased_at"`
	Total       decimal.Decimal      `json:"total"`
	Lines       []PurchaseDetailLine `json:"lines"`
}

// DailySales is one row of the sales report.
type DailySales struct {
	Date      string          `json:"date"`
	Total     decimal.Decimal `json:"total"`
	Purchases int             `json:"purchases"`
}
