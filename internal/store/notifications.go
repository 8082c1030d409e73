package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"github.com/Joaquin123L/eventhub/models"
)

func notificationFromRecord(r *core.Record) *models.Notification {
	return &models.Notification{
		ID:        r.Id,
		Title:     r.GetString("title"),
		Message:   r.GetString("message"),
		Priority:  models.Priority(r.GetString("priority")),
		EventID:   r.GetString("event"),
		CreatedAt: getTime(r, "created_at"),
	}
}

func recipientFromRecord(r *core.Record) models.NotificationUser {
	return models.NotificationUser{
		ID:             r.Id,
		NotificationID: r.GetString("notification"),
		UserID:         r.GetString("user"),
		Read:           r.GetBool("is_read"),
		ReadAt:         getTimePtr(r, "read_at"),
	}
}

// CreateNotification is expected to run inside RunInTx so that the
// notification and its recipient rows are written together.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification, users []string) error {
	r, err := s.newRecord(colNotifications)
	if err != nil {
		return err
	}
	r.Set("title", n.Title)
	r.Set("message", n.Message)
	r.Set("priority", string(n.Priority))
	r.Set("event", n.EventID)
	r.Set("created_at", n.CreatedAt)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	n.ID = r.Id

	return s.addRecipients(ctx, n.ID, users)
}

func (s *Store) addRecipients(ctx context.Context, notificationID string, users []string) error {
	for _, userID := range users {
		nu, err := s.newRecord(colRecipients)
		if err != nil {
			return err
		}
		nu.Set("notification", notificationID)
		nu.Set("user", userID)
		nu.Set("is_read", false)
		if err := s.save(ctx, nu); err != nil {
			return fmt.Errorf("add recipient %s: %w", userID, err)
		}
	}
	return nil
}

func (s *Store) recipientsOf(ctx context.Context, notificationID string) ([]*core.Record, error) {
	return s.all(ctx, colRecipients, dbx.HashExp{"notification": notificationID}, "user ASC")
}

func (s *Store) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	r, err := s.find(colNotifications, id)
	if err != nil {
		return nil, err
	}
	n := notificationFromRecord(r)

	rows, err := s.recipientsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		n.Recipients = append(n.Recipients, row.GetString("user"))
	}
	return n, nil
}

func (s *Store) SaveNotification(ctx context.Context, n *models.Notification) error {
	r, err := s.find(colNotifications, n.ID)
	if err != nil {
		return err
	}
	r.Set("title", n.Title)
	r.Set("message", n.Message)
	r.Set("priority", string(n.Priority))
	r.Set("event", n.EventID)
	return s.save(ctx, r)
}

// ReplaceRecipients deletes every recipient row and recreates one per user.
func (s *Store) ReplaceRecipients(ctx context.Context, notificationID string, users []string) error {
	rows, err := s.recipientsOf(ctx, notificationID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := s.app.DeleteWithContext(ctx, row); err != nil {
			return fmt.Errorf("delete recipient: %w", err)
		}
	}
	return s.addRecipients(ctx, notificationID, users)
}

func (s *Store) DeleteNotification(ctx context.Context, id string) error {
	return s.delete(ctx, colNotifications, id)
}

func (s *Store) ListNotifications(ctx context.Context, f models.NotificationFilter) ([]models.Notification, error) {
	exprs := []dbx.Expression{}
	if f.Search != "" {
		exprs = append(exprs, dbx.Like("title", f.Search))
	}
	if f.EventID != "" {
		exprs = append(exprs, dbx.HashExp{"event": f.EventID})
	}
	if f.Priority != "" {
		exprs = append(exprs, dbx.HashExp{"priority": string(f.Priority)})
	}

	var where dbx.Expression
	if len(exprs) > 0 {
		where = dbx.And(exprs...)
	}
	records, err := s.all(ctx, colNotifications, where, "created_at DESC")
	if err != nil {
		return nil, err
	}
	out := make([]models.Notification, 0, len(records))
	for _, r := range records {
		out = append(out, *notificationFromRecord(r))
	}
	return out, nil
}

func (s *Store) ListInbox(ctx context.Context, userID string) ([]models.InboxItem, error) {
	rows, err := s.all(ctx, colRecipients, dbx.HashExp{"user": userID})
	if err != nil {
		return nil, err
	}
	if errs := s.app.ExpandRecords(rows, []string{"notification"}, nil); len(errs) > 0 {
		return nil, fmt.Errorf("expand notifications: %v", errs)
	}

	out := make([]models.InboxItem, 0, len(rows))
	for _, row := range rows {
		item := models.InboxItem{NotificationUser: recipientFromRecord(row)}
		if n := row.ExpandedOne("notification"); n != nil {
			item.Notification = *notificationFromRecord(n)
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Notification.CreatedAt.After(out[j].Notification.CreatedAt)
	})
	return out, nil
}

func (s *Store) GetNotificationUser(ctx context.Context, id string) (*models.NotificationUser, error) {
	r, err := s.find(colRecipients, id)
	if err != nil {
		return nil, err
	}
	nu := recipientFromRecord(r)
	return &nu, nil
}

func (s *Store) markRead(ctx context.Context, r *core.Record, at time.Time) error {
	r.Set("is_read", true)
	r.Set("read_at", at)
	return s.save(ctx, r)
}

func (s *Store) MarkRead(ctx context.Context, id string, at time.Time) error {
	r, err := s.find(colRecipients, id)
	if err != nil {
		return err
	}
	return s.markRead(ctx, r, at)
}

func (s *Store) MarkAllRead(ctx context.Context, userID string, at time.Time) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		tx := &Store{app: txApp}
		rows, err := tx.all(ctx, colRecipients, dbx.HashExp{"user": userID, "is_read": false})
		if err != nil {
			return err
		}
		for _, r := range rows {
			if err := tx.markRead(ctx, r, at); err != nil {
				return err
			}
		}
		return nil
	})
}
