package store

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"github.com/Joaquin123L/eventhub/models"
)

func ticketFromRecord(r *core.Record) *models.Ticket {
	return &models.Ticket{
		ID:                 r.Id,
		Code:               r.GetString("ticket_code"),
		UserID:             r.GetString("user"),
		EventID:            r.GetString("event"),
		Quantity:           r.GetInt("quantity"),
		Type:               models.TicketType(r.GetString("type")),
		DiscountCodeID:     r.GetString("discount_code"),
		DiscountPercentage: getDecimal(r, "discount_percentage"),
		BuyDate:            getTime(r, "buy_date"),
	}
}

func ticketToRecord(t *models.Ticket, r *core.Record) {
	r.Set("ticket_code", t.Code)
	r.Set("user", t.UserID)
	r.Set("event", t.EventID)
	r.Set("quantity", t.Quantity)
	r.Set("type", string(t.Type))
	r.Set("discount_code", t.DiscountCodeID)
	setDecimal(r, "discount_percentage", t.DiscountPercentage)
	r.Set("buy_date", t.BuyDate)
}

func (s *Store) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	r, err := s.find(colTickets, id)
	if err != nil {
		return nil, err
	}
	return ticketFromRecord(r), nil
}

func (s *Store) CreateTicket(ctx context.Context, t *models.Ticket) error {
	r, err := s.newRecord(colTickets)
	if err != nil {
		return err
	}
	ticketToRecord(t, r)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	t.ID = r.Id
	return nil
}

func (s *Store) SaveTicket(ctx context.Context, t *models.Ticket) error {
	r, err := s.find(colTickets, t.ID)
	if err != nil {
		return err
	}
	ticketToRecord(t, r)
	return s.save(ctx, r)
}

func (s *Store) DeleteTicket(ctx context.Context, id string) error {
	return s.delete(ctx, colTickets, id)
}

func (s *Store) listTickets(ctx context.Context, where dbx.HashExp) ([]models.Ticket, error) {
	records, err := s.all(ctx, colTickets, where, "buy_date DESC")
	if err != nil {
		return nil, err
	}
	out := make([]models.Ticket, 0, len(records))
	for _, r := range records {
		out = append(out, *ticketFromRecord(r))
	}
	return out, nil
}

func (s *Store) ListTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	return s.listTickets(ctx, dbx.HashExp{"user": userID})
}

func (s *Store) ListTicketsByEvent(ctx context.Context, eventID string) ([]models.Ticket, error) {
	return s.listTickets(ctx, dbx.HashExp{"event": eventID})
}

func (s *Store) SumQuantity(ctx context.Context, eventID, userID, excludeID string) (int, error) {
	q := s.app.DB().
		Select("COALESCE(SUM(quantity), 0) AS total").
		From(colTickets).
		Where(dbx.HashExp{"event": eventID})
	if userID != "" {
		q.AndWhere(dbx.HashExp{"user": userID})
	}
	if excludeID != "" {
		q.AndWhere(dbx.NewExp("id != {:exclude}", dbx.Params{"exclude": excludeID}))
	}

	var row struct {
		Total int `db:"total"`
	}
	if err := q.WithContext(ctx).One(&row); err != nil {
		return 0, fmt.Errorf("sum ticket quantity: %w", err)
	}
	return row.Total, nil
}

func (s *Store) TicketHolders(ctx context.Context, eventID string) ([]string, error) {
	var users []string
	err := s.app.DB().
		Select("user").
		Distinct(true).
		From(colTickets).
		Where(dbx.HashExp{"event": eventID}).
		OrderBy("user ASC").
		WithContext(ctx).
		Column(&users)
	if err != nil {
		return nil, fmt.Errorf("list ticket holders: %w", err)
	}
	return users, nil
}

// Discount codes

func discountFromRecord(r *core.Record) *models.DiscountCode {
	return &models.DiscountCode{
		ID:         r.Id,
		Code:       r.GetString("code"),
		EventID:    r.GetString("event"),
		Percentage: getDecimal(r, "discount_percentage"),
		ValidFrom:  getTime(r, "valid_from"),
		ValidUntil: getTime(r, "valid_until"),
		Active:     r.GetBool("is_active"),
	}
}

func (s *Store) GetDiscountCode(ctx context.Context, id string) (*models.DiscountCode, error) {
	r, err := s.find(colDiscounts, id)
	if err != nil {
		return nil, err
	}
	return discountFromRecord(r), nil
}

func (s *Store) FindDiscountCode(ctx context.Context, eventID, code string) (*models.DiscountCode, error) {
	r, err := s.findFirst(colDiscounts, dbx.HashExp{"event": eventID, "code": code})
	if err != nil {
		return nil, err
	}
	return discountFromRecord(r), nil
}

func (s *Store) ListDiscountCodes(ctx context.Context, eventID string) ([]models.DiscountCode, error) {
	records, err := s.all(ctx, colDiscounts, dbx.HashExp{"event": eventID}, "valid_from ASC")
	if err != nil {
		return nil, err
	}
	out := make([]models.DiscountCode, 0, len(records))
	for _, r := range records {
		out = append(out, *discountFromRecord(r))
	}
	return out, nil
}

func (s *Store) CreateDiscountCode(ctx context.Context, d *models.DiscountCode) error {
	r, err := s.newRecord(colDiscounts)
	if err != nil {
		return err
	}
	r.Set("code", d.Code)
	r.Set("event", d.EventID)
	setDecimal(r, "discount_percentage", d.Percentage)
	r.Set("valid_from", d.ValidFrom)
	r.Set("valid_until", d.ValidUntil)
	r.Set("is_active", d.Active)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	d.ID = r.Id
	return nil
}

// DeleteDiscountCode relies on the non-cascading tickets.discount_code
// relation: PocketBase clears the reference and keeps the ticket.
func (s *Store) DeleteDiscountCode(ctx context.Context, id string) error {
	return s.delete(ctx, colDiscounts, id)
}
