package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxTicketsPerUser caps the quantity a single user may hold for one event.
const MaxTicketsPerUser = 4

type TicketType string

const (
	TicketGeneral TicketType = "general"
	TicketVIP     TicketType = "vip"
)

var (
	generalPrice = decimal.NewFromInt(50)
	vipPrice     = decimal.NewFromInt(100)
	hundred      = decimal.NewFromInt(100)
)

func (t TicketType) Valid() bool {
	return t == TicketGeneral || t == TicketVIP
}

func (t TicketType) UnitPrice() decimal.Decimal {
	if t == TicketVIP {
		return vipPrice
	}
	return generalPrice
}

type Ticket struct {
	ID                 string          `json:"id"`
	Code               string          `json:"ticket_code"`
	UserID             string          `json:"user_id"`
	EventID            string          `json:"event_id"`
	Quantity           int             `json:"quantity"`
	Type               TicketType      `json:"type"`
	DiscountCodeID     string          `json:"discount_code_id,omitempty"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	BuyDate            time.Time       `json:"buy_date"`
}

// Subtotal is the price before any discount.
func (t Ticket) Subtotal() decimal.Decimal {
	return t.Type.UnitPrice().Mul(decimal.NewFromInt(int64(t.Quantity)))
}

// Total applies the discount percentage stored on the ticket.
func (t Ticket) Total() decimal.Decimal {
	if t.DiscountPercentage.IsZero() {
		return t.Subtotal()
	}
	factor := hundred.Sub(t.DiscountPercentage).Div(hundred)
	return t.Subtotal().Mul(factor).Round(2)
}

type PricedTicket struct {
	Ticket
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

func (t Ticket) Priced() PricedTicket {
	return PricedTicket{Ticket: t, UnitPrice: t.Type.UnitPrice(), Total: t.Total()}
}

type DiscountCode struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	EventID    string          `json:"event_id"`
	Percentage decimal.Decimal `json:"discount_percentage"`
	ValidFrom  time.Time       `json:"valid_from"`
	ValidUntil time.Time       `json:"valid_until"`
	Active     bool            `json:"active"`
}

func (d DiscountCode) IsValid(now time.Time) bool {
	return d.Active && !now.Before(d.ValidFrom) && !now.After(d.ValidUntil)
}
