package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/Joaquin123L/eventhub/internal/status"
	"github.com/Joaquin123L/eventhub/models"
	"github.com/Joaquin123L/eventhub/monitoring"
	"github.com/Joaquin123L/eventhub/utils"
)

var hundredPercent = decimal.NewFromInt(100)

type TicketService struct {
	clock
	store     Store
	locker    Locker
	gateway   PaymentGateway
	lifecycle *Lifecycle
	monitor   *monitoring.Monitor
}

func NewTicketService(store Store, locker Locker, gateway PaymentGateway, lifecycle *Lifecycle, monitor *monitoring.Monitor) *TicketService {
	return &TicketService{
		store:     store,
		locker:    locker,
		gateway:   gateway,
		lifecycle: lifecycle,
		monitor:   monitor,
	}
}

type PurchaseInput struct {
	EventID      string
	Quantity     int
	Type         models.TicketType
	Code         string
	DiscountCode string
	Card         models.Card
}

func validateTicketFields(code string, quantity int, ticketType models.TicketType) error {
	errs := validation.Errors{
		"ticket_code": required(code, "Por favor ingrese un código de entrada"),
	}
	if quantity <= 0 {
		errs["quantity"] = invalid("validation_min_greater_than", "La cantidad debe ser mayor a 0")
	}
	if !ticketType.Valid() {
		errs["type"] = invalid("validation_invalid_type", "Tipo de entrada inválido")
	}
	return errs.Filter()
}

func purchaseLimitError(owned int) error {
	return status.Rule(status.ErrPurchaseLimit, fmt.Sprintf(
		"No puedes comprar más de %d entradas por evento. Ya compraste %d y solo puedes adquirir %d más.",
		models.MaxTicketsPerUser, owned, max(models.MaxTicketsPerUser-owned, 0)))
}

func capacityError(remaining int) error {
	if remaining <= 0 {
		return status.Rule(status.ErrCapacityExceeded, "No quedan entradas disponibles.")
	}
	return status.Rule(status.ErrCapacityExceeded, fmt.Sprintf("No quedan entradas disponibles. Solo quedan %d entradas.", remaining))
}

func closedEventError(e *models.Event) error {
	if e.Status == models.StatusCancelled {
		return status.Rule(status.ErrEventCancelled, "No se pueden comprar entradas para un evento cancelado.")
	}
	return status.Rule(status.ErrEventFinished, "No se pueden comprar entradas para un evento finalizado.")
}

// Purchase buys tickets for the actor. The per-user cap and the event
// capacity are checked under the event's purchase lock, then the card is
// charged and the ticket stored together with any resulting status change.
func (s *TicketService) Purchase(ctx context.Context, actor models.Actor, in PurchaseInput) (*models.PricedTicket, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		generated, err := utils.GenerateTicketCode()
		if err != nil {
			return nil, fmt.Errorf("generate ticket code: %w", err)
		}
		code = generated
	}
	if err := validateTicketFields(code, in.Quantity, in.Type); err != nil {
		return nil, err
	}

	event, err := s.store.GetEvent(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	now := s.current()
	if err := s.checkOpen(event, now); err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		Code:     code,
		UserID:   actor.ID,
		EventID:  event.ID,
		Quantity: in.Quantity,
		Type:     in.Type,
	}
	if dc := strings.TrimSpace(in.DiscountCode); dc != "" {
		discount, err := s.validDiscount(ctx, event.ID, dc)
		if err != nil {
			s.monitor.TrackPurchaseRejected("invalid_discount")
			return nil, err
		}
		ticket.DiscountCodeID = discount.ID
		ticket.DiscountPercentage = discount.Percentage
	}

	unlock, err := s.locker.Lock(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// The event may have been cancelled or edited while waiting for the lock.
	if event, err = s.store.GetEvent(ctx, in.EventID); err != nil {
		return nil, err
	}
	if err := s.checkOpen(event, now); err != nil {
		return nil, err
	}
	if err := s.checkInventory(ctx, event, actor.ID, "", in.Quantity); err != nil {
		return nil, err
	}

	payment, err := s.gateway.Charge(ctx, Charge{
		UserID:  actor.ID,
		EventID: event.ID,
		Amount:  ticket.Total(),
		Card:    in.Card,
	})
	if err != nil {
		s.monitor.TrackPurchaseRejected("payment")
		return nil, err
	}

	ticket.BuyDate = now
	err = s.store.RunInTx(ctx, func(tx Store) error {
		current, err := tx.GetEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		if err := s.checkOpen(current, now); err != nil {
			return err
		}
		if err := tx.CreateTicket(ctx, ticket); err != nil {
			if errors.Is(err, status.ErrConflict) {
				return validation.Errors{"ticket_code": invalid("validation_not_unique", "Ya existe una entrada con este código")}
			}
			return fmt.Errorf("create ticket: %w", err)
		}
		return s.lifecycle.CheckAndUpdateSoldOut(ctx, tx, current)
	})
	if err != nil {
		slog.Error("ticket not stored after payment", "payment", payment.Reference, "event_id", event.ID, "error", err)
		return nil, err
	}

	s.monitor.TrackTicketsSold(string(ticket.Type), ticket.Quantity)
	slog.Info("tickets purchased",
		"event_id", event.ID,
		"user_id", actor.ID,
		"quantity", ticket.Quantity,
		"type", ticket.Type,
		"payment", payment.Reference,
	)

	priced := ticket.Priced()
	return &priced, nil
}

func (s *TicketService) checkOpen(event *models.Event, now time.Time) error {
	if event.Status.Closed() || event.ScheduledAt.Before(now) {
		s.monitor.TrackPurchaseRejected("event_closed")
		return closedEventError(event)
	}
	return nil
}

// checkInventory enforces the per-user cap and the event capacity for a
// ticket of quantity, ignoring the existing ticket excludeID.
func (s *TicketService) checkInventory(ctx context.Context, event *models.Event, userID, excludeID string, quantity int) error {
	owned, err := s.store.SumQuantity(ctx, event.ID, userID, excludeID)
	if err != nil {
		return fmt.Errorf("count user tickets: %w", err)
	}
	if owned+quantity > models.MaxTicketsPerUser {
		s.monitor.TrackPurchaseRejected("purchase_limit")
		if excludeID != "" {
			return status.Rule(status.ErrPurchaseLimit, fmt.Sprintf(
				"No puedes tener más de %d entradas por evento. Solo puedes actualizar a un máximo de %d.",
				models.MaxTicketsPerUser, max(models.MaxTicketsPerUser-owned, 0)))
		}
		return purchaseLimitError(owned)
	}

	if event.Capacity == nil {
		return nil
	}
	sold, err := s.store.SumQuantity(ctx, event.ID, "", excludeID)
	if err != nil {
		return fmt.Errorf("count sold tickets: %w", err)
	}
	if remaining := *event.Capacity - sold; quantity > remaining {
		s.monitor.TrackPurchaseRejected("capacity")
		return capacityError(remaining)
	}
	return nil
}

func (s *TicketService) validDiscount(ctx context.Context, eventID, code string) (*models.DiscountCode, error) {
	discount, err := s.store.FindDiscountCode(ctx, eventID, code)
	if errors.Is(err, status.ErrNotFound) || (err == nil && !discount.IsValid(s.current())) {
		return nil, status.Rule(status.ErrInvalidDiscount, "El código de descuento ya no es válido")
	}
	if err != nil {
		return nil, fmt.Errorf("find discount code: %w", err)
	}
	return discount, nil
}

// Update changes quantity and type of the actor's own ticket.
func (s *TicketService) Update(ctx context.Context, actor models.Actor, ticketID string, quantity int, ticketType models.TicketType) (*models.PricedTicket, error) {
	ticket, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != actor.ID {
		return nil, status.ErrForbidden
	}

	hasRefund, err := s.store.RefundExistsForTicket(ctx, ticket.Code)
	if err != nil {
		return nil, fmt.Errorf("check refund: %w", err)
	}
	if hasRefund {
		return nil, status.Rule(status.ErrTicketLocked, "No se puede editar un ticket que tiene una solicitud de reembolso.")
	}

	event, err := s.store.GetEvent(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}
	if err := editableEvent(event); err != nil {
		return nil, err
	}

	if err := validateTicketFields(ticket.Code, quantity, ticketType); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if event, err = s.store.GetEvent(ctx, ticket.EventID); err != nil {
		return nil, err
	}
	if err := editableEvent(event); err != nil {
		return nil, err
	}
	if err := s.checkInventory(ctx, event, actor.ID, ticket.ID, quantity); err != nil {
		return nil, err
	}

	ticket.Quantity = quantity
	ticket.Type = ticketType
	err = s.store.RunInTx(ctx, func(tx Store) error {
		current, err := tx.GetEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		if err := editableEvent(current); err != nil {
			return err
		}
		if err := tx.SaveTicket(ctx, ticket); err != nil {
			return fmt.Errorf("save ticket: %w", err)
		}
		return s.lifecycle.CheckAndUpdateSoldOut(ctx, tx, current)
	})
	if err != nil {
		return nil, err
	}

	priced := ticket.Priced()
	return &priced, nil
}

func editableEvent(event *models.Event) error {
	switch event.Status {
	case models.StatusFinished:
		return status.Rule(status.ErrTicketLocked, "No se puede editar un ticket de un evento finalizado.")
	case models.StatusCancelled:
		return status.Rule(status.ErrTicketLocked, "No se puede editar un ticket de un evento cancelado.")
	}
	return nil
}

// Delete removes a ticket. Only the organizer of the event may do it.
func (s *TicketService) Delete(ctx context.Context, actor models.Actor, ticketID string) error {
	ticket, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	event, err := s.store.GetEvent(ctx, ticket.EventID)
	if err != nil {
		return err
	}
	if !actor.Organizer || event.OrganizerID != actor.ID {
		return status.ErrForbidden
	}

	unlock, err := s.locker.Lock(ctx, event.ID)
	if err != nil {
		return err
	}
	defer unlock()

	return s.store.RunInTx(ctx, func(tx Store) error {
		if err := tx.DeleteTicket(ctx, ticket.ID); err != nil {
			return fmt.Errorf("delete ticket: %w", err)
		}
		// Reloads the event, so a sell-out that landed before the lock is seen.
		return s.lifecycle.CheckAndUpdateSoldOut(ctx, tx, event)
	})
}

func (s *TicketService) ListForUser(ctx context.Context, userID string) ([]models.PricedTicket, error) {
	tickets, err := s.store.ListTicketsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return priceAll(tickets), nil
}

func (s *TicketService) ListForEvent(ctx context.Context, actor models.Actor, eventID string) ([]models.PricedTicket, error) {
	if _, err := s.ownedEvent(ctx, actor, eventID); err != nil {
		return nil, err
	}
	tickets, err := s.store.ListTicketsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return priceAll(tickets), nil
}

func priceAll(tickets []models.Ticket) []models.PricedTicket {
	out := make([]models.PricedTicket, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.Priced())
	}
	return out
}

func (s *TicketService) ownedEvent(ctx context.Context, actor models.Actor, eventID string) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !actor.Organizer || event.OrganizerID != actor.ID {
		return nil, status.ErrForbidden
	}
	return event, nil
}

// Discount codes

func (s *TicketService) CreateDiscountCode(ctx context.Context, actor models.Actor, d models.DiscountCode) (*models.DiscountCode, error) {
	if _, err := s.ownedEvent(ctx, actor, d.EventID); err != nil {
		return nil, err
	}
	d.Code = strings.TrimSpace(d.Code)
	if err := validateDiscountCode(d); err != nil {
		return nil, err
	}
	if err := s.store.CreateDiscountCode(ctx, &d); err != nil {
		if errors.Is(err, status.ErrConflict) {
			return nil, validation.Errors{"code": invalid("validation_not_unique", "Ya existe un código con ese nombre para este evento")}
		}
		return nil, err
	}
	return &d, nil
}

func (s *TicketService) ListDiscountCodes(ctx context.Context, actor models.Actor, eventID string) ([]models.DiscountCode, error) {
	if _, err := s.ownedEvent(ctx, actor, eventID); err != nil {
		return nil, err
	}
	return s.store.ListDiscountCodes(ctx, eventID)
}

// DeleteDiscountCode removes a code. Tickets bought with it keep their
// percentage.
func (s *TicketService) DeleteDiscountCode(ctx context.Context, actor models.Actor, id string) error {
	d, err := s.store.GetDiscountCode(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.ownedEvent(ctx, actor, d.EventID); err != nil {
		return err
	}
	return s.store.DeleteDiscountCode(ctx, id)
}

// CheckDiscountCode returns the code when it can be applied right now.
func (s *TicketService) CheckDiscountCode(ctx context.Context, eventID, code string) (*models.DiscountCode, error) {
	return s.validDiscount(ctx, eventID, strings.TrimSpace(code))
}
