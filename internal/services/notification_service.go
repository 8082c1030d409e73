package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Joaquin123L/eventhub/internal/status"
	"github.com/Joaquin123L/eventhub/models"
	"github.com/Joaquin123L/eventhub/monitoring"
)

type NotificationService struct {
	clock
	store     Store
	publisher Publisher
	monitor   *monitoring.Monitor
}

func NewNotificationService(store Store, publisher Publisher, monitor *monitoring.Monitor) *NotificationService {
	return &NotificationService{store: store, publisher: publisher, monitor: monitor}
}

type NotificationInput struct {
	Title    string
	Message  string
	Priority models.Priority
	EventID  string
	Users    []string
}

// Create validates the input and stores the notification with one recipient
// row per distinct user, all in one transaction. Nothing is written when
// validation fails.
func (s *NotificationService) Create(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	users := distinct(in.Users)
	if err := validateNotificationFields(in.Title, in.Message, in.Priority, users); err != nil {
		return nil, err
	}

	n := &models.Notification{
		Title:    strings.TrimSpace(in.Title),
		Message:  strings.TrimSpace(in.Message),
		Priority: in.Priority,
		EventID:  in.EventID,
	}
	err := s.store.RunInTx(ctx, func(tx Store) error {
		return s.fanOut(ctx, tx, n, users)
	})
	if err != nil {
		return nil, err
	}

	s.deliver(ctx, n)
	return n, nil
}

// fanOut writes n and its recipient rows through st. Callers own the
// transaction.
func (s *NotificationService) fanOut(ctx context.Context, st Store, n *models.Notification, users []string) error {
	n.CreatedAt = s.current()
	n.Recipients = users
	if err := st.CreateNotification(ctx, n, users); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// deliver runs after commit.
func (s *NotificationService) deliver(ctx context.Context, n *models.Notification) {
	s.monitor.TrackNotificationFanout(string(n.Priority), len(n.Recipients))
	slog.Info("notification created", "notification_id", n.ID, "event_id", n.EventID, "recipients", len(n.Recipients))
	pushNotification(ctx, s.publisher, s.monitor, n, n.Recipients)
}

// ComposeForEvent is the organizer flow: recipients are either every ticket
// holder of the event or the selected users that hold a ticket.
func (s *NotificationService) ComposeForEvent(ctx context.Context, actor models.Actor, eventID string, all bool, selected []string, title, message string, priority models.Priority) (*models.Notification, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != actor.ID {
		return nil, status.ErrForbidden
	}

	holders, err := s.store.TicketHolders(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list ticket holders: %w", err)
	}
	if len(holders) == 0 {
		return nil, status.Rule(status.ErrNoRecipients, "No hay asistentes al evento.")
	}

	users := holders
	if !all {
		users = nil
		for _, id := range selected {
			if slices.Contains(holders, id) {
				users = append(users, id)
			}
		}
	}

	return s.Create(ctx, NotificationInput{
		Title:    title,
		Message:  message,
		Priority: priority,
		EventID:  eventID,
		Users:    users,
	})
}

// canManage allows organizers to manage notifications. One tied to an event
// is left to that event's organizer.
func (s *NotificationService) canManage(ctx context.Context, actor models.Actor, eventID string) error {
	if !actor.Organizer {
		return status.ErrForbidden
	}
	if eventID == "" {
		return nil
	}
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != actor.ID {
		return status.ErrForbidden
	}
	return nil
}

// Update applies non-empty overrides. A non-nil Users slice replaces the
// recipient set by deleting and recreating the rows, so read state is lost.
func (s *NotificationService) Update(ctx context.Context, actor models.Actor, id string, ch models.NotificationChanges) (*models.Notification, error) {
	n, err := s.store.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canManage(ctx, actor, n.EventID); err != nil {
		return nil, err
	}
	if ch.EventID != "" && ch.EventID != n.EventID {
		if err := s.canManage(ctx, actor, ch.EventID); err != nil {
			return nil, err
		}
	}

	if t := strings.TrimSpace(ch.Title); t != "" {
		n.Title = t
	}
	if m := strings.TrimSpace(ch.Message); m != "" {
		n.Message = m
	}
	if ch.Priority != "" {
		n.Priority = ch.Priority
	}
	if ch.EventID != "" {
		n.EventID = ch.EventID
	}

	users := n.Recipients
	if ch.Users != nil {
		users = distinct(ch.Users)
	}
	if err := validateNotificationFields(n.Title, n.Message, n.Priority, users); err != nil {
		return nil, err
	}

	err = s.store.RunInTx(ctx, func(tx Store) error {
		if err := tx.SaveNotification(ctx, n); err != nil {
			return fmt.Errorf("save notification: %w", err)
		}
		if ch.Users == nil {
			return nil
		}
		if err := tx.ReplaceRecipients(ctx, n.ID, users); err != nil {
			return fmt.Errorf("replace recipients: %w", err)
		}
		n.Recipients = users
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NotificationService) Get(ctx context.Context, id string) (*models.Notification, error) {
	return s.store.GetNotification(ctx, id)
}

func (s *NotificationService) Delete(ctx context.Context, actor models.Actor, id string) error {
	n, err := s.store.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if err := s.canManage(ctx, actor, n.EventID); err != nil {
		return err
	}
	return s.store.DeleteNotification(ctx, id)
}

func (s *NotificationService) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.store.ListNotifications(ctx, filter)
}

// Inbox lists the user's notifications newest first with the unread count.
func (s *NotificationService) Inbox(ctx context.Context, userID string) (*models.Inbox, error) {
	items, err := s.store.ListInbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	inbox := &models.Inbox{Items: items}
	for _, it := range items {
		if !it.Read {
			inbox.Unread++
		}
	}
	return inbox, nil
}

// MarkRead marks one of the user's own recipient rows as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationUserID string) error {
	nu, err := s.store.GetNotificationUser(ctx, notificationUserID)
	if err != nil {
		return err
	}
	if nu.UserID != userID {
		return status.ErrNotFound
	}
	if nu.Read {
		return nil
	}
	return s.store.MarkRead(ctx, nu.ID, s.current())
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllRead(ctx, userID, s.current())
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
