package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RefundStatus string

const (
	RefundPending  RefundStatus = "pending"
	RefundApproved RefundStatus = "approved"
	RefundRejected RefundStatus = "rejected"
)

type RefundReason string

const (
	ReasonEventCancelled    RefundReason = "event_cancelled"
	ReasonTicketNotReceived RefundReason = "ticket_not_received"
	ReasonOther             RefundReason = "other"
)

func (r RefundReason) Valid() bool {
	switch r {
	case ReasonEventCancelled, ReasonTicketNotReceived, ReasonOther:
		return true
	}
	return false
}

type RefundRequest struct {
	ID           string          `json:"id"`
	TicketID     string          `json:"ticket_id"`
	TicketCode   string          `json:"ticket_code"`
	UserID       string          `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
	RefundReason RefundReason    `json:"refund_reason"`
	Status       RefundStatus    `json:"status"`
	Approved     bool            `json:"approved"`
	ApprovalDate *time.Time      `json:"approval_date"`
	CreatedAt    time.Time       `json:"created_at"`
}
