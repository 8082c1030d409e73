package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joaquin123L/eventhub/internal/status"
	"github.com/Joaquin123L/eventhub/models"
)

const day = 24 * time.Hour

func newTestRefundService(store *memStore) *RefundService {
	s := NewRefundService(store, nil)
	s.SetClock(fixedClock)
	return s
}

func TestRefundQuote(t *testing.T) {
	ticket := models.Ticket{Quantity: 2, Type: models.TicketVIP}

	tests := []struct {
		name   string
		left   time.Duration
		amount int64
		status models.RefundStatus
	}{
		{"more than a week", 10 * day, 200, models.RefundPending},
		{"just over a week", 7*day + time.Minute, 200, models.RefundPending},
		{"exactly a week", 7 * day, 100, models.RefundPending},
		{"three days", 3 * day, 100, models.RefundPending},
		{"exactly two days", 2 * day, 0, models.RefundRejected},
		{"a few hours", 5 * time.Hour, 0, models.RefundRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, st := RefundQuote(ticket, tt.left)
			assert.True(t, decimal.NewFromInt(tt.amount).Equal(amount), "got %s", amount)
			assert.Equal(t, tt.status, st)
		})
	}
}

func TestRequestRefund(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestRefundService(store)
	e := store.addEvent(models.Event{ScheduledAt: testNow.Add(10 * day)})
	ticket := store.addTicket(models.Ticket{EventID: e.ID, UserID: "u1", Quantity: 1, Type: models.TicketGeneral})

	r, err := svc.Request(ctx, models.Actor{ID: "u1"}, ticket.ID, "  no puedo ir  ", models.ReasonOther)
	require.NoError(t, err)
	assert.Equal(t, models.RefundPending, r.Status)
	assert.True(t, decimal.NewFromInt(50).Equal(r.Amount))
	assert.Equal(t, ticket.Code, r.TicketCode)
	assert.Equal(t, "no puedo ir", r.Reason)
	assert.Equal(t, testNow, r.CreatedAt)

	other := store.addTicket(models.Ticket{EventID: e.ID, UserID: "u1", Quantity: 1})
	_, err = svc.Request(ctx, models.Actor{ID: "u1"}, other.ID, "otra", models.ReasonOther)
	assert.ErrorIs(t, err, status.ErrPendingRefund)
	assert.Equal(t, "Ya tenés una solicitud de reembolso pendiente. Cuando se resuelva podra solicitar otra.", status.Message(err))
}

func TestRequestRefund_Window(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestRefundService(store)
	actor := models.Actor{ID: "u1"}

	past := store.addEvent(models.Event{ScheduledAt: testNow.Add(-time.Hour)})
	tPast := store.addTicket(models.Ticket{EventID: past.ID, UserID: "u1", Quantity: 1})
	_, err := svc.Request(ctx, actor, tPast.ID, "motivo", models.ReasonOther)
	assert.Equal(t, "No se puede solicitar el reembolso: El evento ya pasó.", status.Message(err))

	far := store.addEvent(models.Event{ScheduledAt: testNow.Add(31 * day)})
	tFar := store.addTicket(models.Ticket{EventID: far.ID, UserID: "u1", Quantity: 1})
	_, err = svc.Request(ctx, actor, tFar.ID, "motivo", models.ReasonOther)
	assert.ErrorIs(t, err, status.ErrRefundNotAllowed)
	assert.Equal(t, "No se puede solicitar el reembolso: Faltan más de 30 días para el evento.", status.Message(err))

	soon := store.addEvent(models.Event{ScheduledAt: testNow.Add(day)})
	tSoon := store.addTicket(models.Ticket{EventID: soon.ID, UserID: "u1", Quantity: 2, Type: models.TicketVIP})
	r, err := svc.Request(ctx, actor, tSoon.ID, "motivo", models.ReasonEventCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.RefundRejected, r.Status)
	assert.True(t, r.Amount.IsZero())

	_, err = svc.Request(ctx, actor, tSoon.ID, "de nuevo", models.ReasonOther)
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "ticket_code")
}

func TestRequestRefund_Validation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestRefundService(store)
	e := store.addEvent(models.Event{})
	ticket := store.addTicket(models.Ticket{EventID: e.ID, UserID: "u1", Quantity: 1})

	_, err := svc.Request(ctx, models.Actor{ID: "u1"}, ticket.ID, strings.Repeat("a", 501), "lost")
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "reason")
	assert.Contains(t, verrs, "refund_reason")

	_, err = svc.Request(ctx, models.Actor{ID: "u1"}, "missing", "motivo", models.ReasonOther)
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "ticket")

	_, err = svc.Request(ctx, models.Actor{ID: "u2"}, ticket.ID, "motivo", models.ReasonOther)
	assert.ErrorIs(t, err, status.ErrForbidden)
	assert.Empty(t, store.refunds)
}

func TestDecideRefund(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestRefundService(store)
	organizer := models.Actor{ID: "org", Organizer: true}
	e := store.addEvent(models.Event{OrganizerID: organizer.ID})
	ticket := store.addTicket(models.Ticket{EventID: e.ID, UserID: "u1", Quantity: 1})

	r, err := svc.Request(ctx, models.Actor{ID: "u1"}, ticket.ID, "motivo", models.ReasonOther)
	require.NoError(t, err)

	_, err = svc.Decide(ctx, models.Actor{ID: "u1"}, r.ID, true)
	assert.ErrorIs(t, err, status.ErrForbidden)

	rejected, err := svc.Decide(ctx, organizer, r.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.RefundRejected, rejected.Status)
	assert.Nil(t, rejected.ApprovalDate)

	approved, err := svc.Decide(ctx, organizer, r.ID, true)
	require.NoError(t, err)
	assert.True(t, approved.Approved)
	assert.Equal(t, models.RefundApproved, approved.Status)
	require.NotNil(t, approved.ApprovalDate)
	assert.Equal(t, testNow, *approved.ApprovalDate)

	_, err = svc.Update(ctx, models.Actor{ID: "u1"}, r.ID, "cambio", "")
	assert.ErrorIs(t, err, status.ErrRefundNotAllowed)
}

func TestUpdateRefund(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestRefundService(store)
	e := store.addEvent(models.Event{})
	ticket := store.addTicket(models.Ticket{EventID: e.ID, UserID: "u1", Quantity: 1})
	r, err := svc.Request(ctx, models.Actor{ID: "u1"}, ticket.ID, "motivo", models.ReasonOther)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, models.Actor{ID: "u1"}, r.ID, "", models.ReasonTicketNotReceived)
	require.NoError(t, err)
	assert.Equal(t, "motivo", updated.Reason)
	assert.Equal(t, models.ReasonTicketNotReceived, updated.RefundReason)

	_, err = svc.Update(ctx, models.Actor{ID: "u2"}, r.ID, "x", "")
	assert.ErrorIs(t, err, status.ErrForbidden)
}

func TestRefundVisibility(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestRefundService(store)
	organizer := models.Actor{ID: "org", Organizer: true}
	e := store.addEvent(models.Event{})
	t1 := store.addTicket(models.Ticket{EventID: e.ID, UserID: "u1", Quantity: 1})
	t2 := store.addTicket(models.Ticket{EventID: e.ID, UserID: "u2", Quantity: 1})
	r1, err := svc.Request(ctx, models.Actor{ID: "u1"}, t1.ID, "motivo", models.ReasonOther)
	require.NoError(t, err)
	_, err = svc.Request(ctx, models.Actor{ID: "u2"}, t2.ID, "motivo", models.ReasonOther)
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, models.Actor{ID: "u1"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListAll(ctx, organizer)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListAll(ctx, models.Actor{ID: "u1"})
	assert.ErrorIs(t, err, status.ErrForbidden)

	_, err = svc.Get(ctx, models.Actor{ID: "u2"}, r1.ID)
	assert.ErrorIs(t, err, status.ErrNotFound)
	_, err = svc.Get(ctx, organizer, r1.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, models.Actor{ID: "u2"}, r1.ID), status.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, models.Actor{ID: "u1"}, r1.ID))
	assert.Len(t, store.refunds, 1)
}
