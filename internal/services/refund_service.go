package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/Joaquin123L/eventhub/internal/status"
	"github.com/Joaquin123L/eventhub/models"
	"github.com/Joaquin123L/eventhub/monitoring"
)

const (
	refundWindow     = 30 * 24 * time.Hour
	fullRefundBefore = 7 * 24 * time.Hour
	halfRefundBefore = 2 * 24 * time.Hour
	maxReasonLength  = 500
)

var half = decimal.NewFromFloat(0.5)

type RefundService struct {
	clock
	store   Store
	monitor *monitoring.Monitor
}

func NewRefundService(store Store, monitor *monitoring.Monitor) *RefundService {
	return &RefundService{store: store, monitor: monitor}
}

// RefundQuote computes the refundable amount for a ticket when the event is
// `left` away: the full price more than 7 days ahead, half of it more than 2
// days ahead, nothing (and a rejected request) otherwise.
func RefundQuote(t models.Ticket, left time.Duration) (decimal.Decimal, models.RefundStatus) {
	switch {
	case left > fullRefundBefore:
		return t.Subtotal(), models.RefundPending
	case left > halfRefundBefore:
		return t.Subtotal().Mul(half), models.RefundPending
	default:
		return decimal.Zero, models.RefundRejected
	}
}

func validateRefund(reason string, refundReason models.RefundReason) error {
	errs := validation.Errors{
		"reason": required(reason, "Por favor ingrese un motivo"),
	}
	if utf8.RuneCountInString(reason) > maxReasonLength {
		errs["reason"] = invalid("validation_length_too_long", fmt.Sprintf("El motivo no puede superar los %d caracteres", maxReasonLength))
	}
	if !refundReason.Valid() {
		errs["refund_reason"] = invalid("validation_invalid_reason", "Motivo de reembolso inválido")
	}
	return errs.Filter()
}

func (s *RefundService) Request(ctx context.Context, actor models.Actor, ticketID, reason string, refundReason models.RefundReason) (*models.RefundRequest, error) {
	ticket, err := s.store.GetTicket(ctx, ticketID)
	if errors.Is(err, status.ErrNotFound) {
		return nil, validation.Errors{"ticket": invalid("validation_invalid_ticket", "El ticket no existe")}
	}
	if err != nil {
		return nil, err
	}
	if ticket.UserID != actor.ID {
		return nil, status.ErrForbidden
	}

	event, err := s.store.GetEvent(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}
	now := s.current()
	left := event.ScheduledAt.Sub(now)
	if left < 0 {
		return nil, status.Rule(status.ErrRefundNotAllowed, "No se puede solicitar el reembolso: El evento ya pasó.")
	}
	if left > refundWindow {
		return nil, status.Rule(status.ErrRefundNotAllowed, "No se puede solicitar el reembolso: Faltan más de 30 días para el evento.")
	}

	reason = strings.TrimSpace(reason)
	if err := validateRefund(reason, refundReason); err != nil {
		return nil, err
	}

	pending, err := s.store.HasPendingRefund(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("check pending refunds: %w", err)
	}
	if pending {
		return nil, status.Rule(status.ErrPendingRefund, "Ya tenés una solicitud de reembolso pendiente. Cuando se resuelva podra solicitar otra.")
	}

	amount, st := RefundQuote(*ticket, left)
	r := &models.RefundRequest{
		TicketID:     ticket.ID,
		TicketCode:   ticket.Code,
		UserID:       actor.ID,
		Amount:       amount,
		Reason:       reason,
		RefundReason: refundReason,
		Status:       st,
		CreatedAt:    now,
	}
	if err := s.store.CreateRefund(ctx, r); err != nil {
		if errors.Is(err, status.ErrConflict) {
			return nil, validation.Errors{"ticket_code": invalid("validation_not_unique", "Ya existe una solicitud de reembolso para este ticket")}
		}
		return nil, fmt.Errorf("create refund: %w", err)
	}

	s.monitor.TrackRefundRequest(string(r.Status))
	slog.Info("refund requested", "refund_id", r.ID, "ticket_code", r.TicketCode, "status", r.Status, "amount", r.Amount.String())
	return r, nil
}

// Update edits the reason of the actor's own request while it is not approved.
func (s *RefundService) Update(ctx context.Context, actor models.Actor, id, reason string, refundReason models.RefundReason) (*models.RefundRequest, error) {
	r, err := s.ownRefund(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if r.Approved {
		return nil, status.Rule(status.ErrRefundNotAllowed, "No se puede modificar una solicitud ya aprobada.")
	}

	if reason = strings.TrimSpace(reason); reason != "" {
		r.Reason = reason
	}
	if refundReason != "" {
		r.RefundReason = refundReason
	}
	if err := validateRefund(r.Reason, r.RefundReason); err != nil {
		return nil, err
	}
	if err := s.store.SaveRefund(ctx, r); err != nil {
		return nil, fmt.Errorf("save refund: %w", err)
	}
	return r, nil
}

// Decide approves or rejects a request. Organizers only.
func (s *RefundService) Decide(ctx context.Context, actor models.Actor, id string, approve bool) (*models.RefundRequest, error) {
	if !actor.Organizer {
		return nil, status.ErrForbidden
	}
	r, err := s.store.GetRefund(ctx, id)
	if err != nil {
		return nil, err
	}

	if approve {
		now := s.current()
		r.Approved = true
		r.Status = models.RefundApproved
		r.ApprovalDate = &now
	} else {
		r.Approved = false
		r.Status = models.RefundRejected
		r.ApprovalDate = nil
	}
	if err := s.store.SaveRefund(ctx, r); err != nil {
		return nil, fmt.Errorf("save refund: %w", err)
	}

	s.monitor.TrackRefundRequest(string(r.Status))
	return r, nil
}

func (s *RefundService) Get(ctx context.Context, actor models.Actor, id string) (*models.RefundRequest, error) {
	r, err := s.store.GetRefund(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Organizer && r.UserID != actor.ID {
		return nil, status.ErrNotFound
	}
	return r, nil
}

func (s *RefundService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.store.DeleteRefund(ctx, id)
}

func (s *RefundService) ListMine(ctx context.Context, actor models.Actor) ([]models.RefundRequest, error) {
	return s.store.ListRefunds(ctx, actor.ID)
}

func (s *RefundService) ListAll(ctx context.Context, actor models.Actor) ([]models.RefundRequest, error) {
	if !actor.Organizer {
		return nil, status.ErrForbidden
	}
	return s.store.ListRefunds(ctx, "")
}

func (s *RefundService) ownRefund(ctx context.Context, actor models.Actor, id string) (*models.RefundRequest, error) {
	r, err := s.store.GetRefund(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != actor.ID {
		return nil, status.ErrForbidden
	}
	return r, nil
}
