package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card holds the simulated card data captured at checkout. It is never stored.
type Card struct {
	Number string `json:"card_number" validate:"required,numeric,len=16"`
	Expiry string `json:"expiry_date" validate:"required,card_expiry"`
	CVV    string `json:"cvv" validate:"required,numeric,min=3,max=4"`
}

type Payment struct {
	Reference string          `json:"reference"`
	UserID    string          `json:"user_id"`
	EventID   string          `json:"event_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"` // approved, declined
	CreatedAt time.Time       `json:"created_at"`
}
