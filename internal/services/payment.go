package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Joaquin123L/eventhub/internal/status"
	"github.com/Joaquin123L/eventhub/models"
	"github.com/Joaquin123L/eventhub/monitoring"
	"github.com/Joaquin123L/eventhub/utils"
)

// DeclinedCardNumber always fails in the simulated gateway.
const DeclinedCardNumber = "4000000000000002"

type Charge struct {
	UserID  string
	EventID string
	Amount  decimal.Decimal
	Card    models.Card
}

type PaymentGateway interface {
	Charge(ctx context.Context, c Charge) (*models.Payment, error)
}

var errPaymentDeclined = status.Rule(status.ErrPaymentDeclined, "Error en el procesamiento del pago")

// SimulatedGateway approves any well formed, unexpired card except
// DeclinedCardNumber.
type SimulatedGateway struct {
	clock
}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

func (g *SimulatedGateway) Charge(ctx context.Context, c Charge) (*models.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := g.current()

	if c.Card.Number == DeclinedCardNumber || cardExpired(c.Card.Expiry, now) {
		return nil, errPaymentDeclined
	}

	ref, err := utils.GenerateCode(8)
	if err != nil {
		return nil, fmt.Errorf("generate payment reference: %w", err)
	}

	return &models.Payment{
		Reference: "PAY-" + ref,
		UserID:    c.UserID,
		EventID:   c.EventID,
		Amount:    c.Amount,
		Status:    "approved",
		CreatedAt: now,
	}, nil
}

// cardExpired treats MM/YY as valid through the last day of that month.
// Malformed values count as expired.
func cardExpired(expiry string, now time.Time) bool {
	if len(expiry) != 5 || expiry[2] != '/' {
		return true
	}
	month, err := strconv.Atoi(expiry[:2])
	if err != nil || month < 1 || month > 12 {
		return true
	}
	year, err := strconv.Atoi(expiry[3:])
	if err != nil {
		return true
	}
	firstOfNext := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	return !now.Before(firstOfNext)
}

// BreakerGateway guards a gateway with a circuit breaker. Card declines are
// business outcomes and never trip it.
type BreakerGateway struct {
	next    PaymentGateway
	breaker *utils.CircuitBreaker
	timeout time.Duration
}

func NewBreakerGateway(next PaymentGateway, monitor *monitoring.Monitor, timeout, openFor time.Duration) *BreakerGateway {
	breaker := utils.NewCircuitBreaker("payment-gateway", utils.BreakerSettings{
		Timeout: openFor,
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, status.ErrPaymentDeclined)
		},
		OnStateChange: func(name string, from, to utils.State) {
			monitor.SetPaymentBreakerState(int(to))
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerGateway{next: next, breaker: breaker, timeout: timeout}
}

func (g *BreakerGateway) Charge(ctx context.Context, c Charge) (*models.Payment, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	result, err := g.breaker.Execute(ctx, func() (any, error) {
		return g.next.Charge(ctx, c)
	})
	if err != nil {
		if errors.Is(err, utils.ErrOpenState) || errors.Is(err, utils.ErrTooManyRequests) {
			slog.Error("payment gateway unavailable", "error", err)
			return nil, errPaymentDeclined
		}
		return nil, err
	}
	return result.(*models.Payment), nil
}
