package store

import (
	"context"
	"errors"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"github.com/Joaquin123L/eventhub/internal/status"
	"github.com/Joaquin123L/eventhub/models"
)

func refundFromRecord(r *core.Record) *models.RefundRequest {
	return &models.RefundRequest{
		ID:           r.Id,
		TicketID:     r.GetString("ticket"),
		TicketCode:   r.GetString("ticket_code"),
		UserID:       r.GetString("user"),
		Amount:       getDecimal(r, "amount"),
		Reason:       r.GetString("reason"),
		RefundReason: models.RefundReason(r.GetString("refund_reason")),
		Status:       models.RefundStatus(r.GetString("status")),
		Approved:     r.GetBool("approved"),
		ApprovalDate: getTimePtr(r, "approval_date"),
		CreatedAt:    getTime(r, "created_at"),
	}
}

func refundToRecord(rr *models.RefundRequest, r *core.Record) {
	r.Set("ticket", rr.TicketID)
	r.Set("ticket_code", rr.TicketCode)
	r.Set("user", rr.UserID)
	setDecimal(r, "amount", rr.Amount)
	r.Set("reason", rr.Reason)
	r.Set("refund_reason", string(rr.RefundReason))
	r.Set("status", string(rr.Status))
	r.Set("approved", rr.Approved)
	setTimePtr(r, "approval_date", rr.ApprovalDate)
	r.Set("created_at", rr.CreatedAt)
}

func (s *Store) GetRefund(ctx context.Context, id string) (*models.RefundRequest, error) {
	r, err := s.find(colRefunds, id)
	if err != nil {
		return nil, err
	}
	return refundFromRecord(r), nil
}

func (s *Store) CreateRefund(ctx context.Context, rr *models.RefundRequest) error {
	r, err := s.newRecord(colRefunds)
	if err != nil {
		return err
	}
	refundToRecord(rr, r)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	rr.ID = r.Id
	return nil
}

func (s *Store) SaveRefund(ctx context.Context, rr *models.RefundRequest) error {
	r, err := s.find(colRefunds, rr.ID)
	if err != nil {
		return err
	}
	refundToRecord(rr, r)
	return s.save(ctx, r)
}

func (s *Store) DeleteRefund(ctx context.Context, id string) error {
	return s.delete(ctx, colRefunds, id)
}

// ListRefunds lists the user's requests, or every request when userID is
// empty.
func (s *Store) ListRefunds(ctx context.Context, userID string) ([]models.RefundRequest, error) {
	var where dbx.Expression
	if userID != "" {
		where = dbx.HashExp{"user": userID}
	}
	records, err := s.all(ctx, colRefunds, where, "created_at DESC")
	if err != nil {
		return nil, err
	}
	out := make([]models.RefundRequest, 0, len(records))
	for _, r := range records {
		out = append(out, *refundFromRecord(r))
	}
	return out, nil
}

func (s *Store) exists(collection string, where dbx.HashExp) (bool, error) {
	_, err := s.findFirst(collection, where)
	if errors.Is(err, status.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) HasPendingRefund(ctx context.Context, userID string) (bool, error) {
	return s.exists(colRefunds, dbx.HashExp{"user": userID, "status": string(models.RefundPending)})
}

func (s *Store) RefundExistsForTicket(ctx context.Context, ticketCode string) (bool, error) {
	return s.exists(colRefunds, dbx.HashExp{"ticket_code": ticketCode})
}
