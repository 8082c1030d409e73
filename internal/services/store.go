package services

import (
	"context"
	"time"

	"github.com/Joaquin123L/eventhub/models"
)

// Lookups return status.ErrNotFound when the record does not exist.

type EventStore interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	SaveEvent(ctx context.Context, event *models.Event) error
	// SetEventStatus writes only the status, and only while the stored
	// status still equals from. It reports whether the row was changed.
	SetEventStatus(ctx context.Context, id string, from, to models.EventStatus) (bool, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, q models.EventQuery, now time.Time) ([]models.Event, error)
}

type VenueStore interface {
	GetVenue(ctx context.Context, id string) (*models.Venue, error)
	ListVenues(ctx context.Context) ([]models.Venue, error)
	CreateVenue(ctx context.Context, venue *models.Venue) error
	SaveVenue(ctx context.Context, venue *models.Venue) error
	DeleteVenue(ctx context.Context, id string) error

	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	SaveCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id string) error
	CountEventsInCategory(ctx context.Context, categoryID string) (int, error)
}

type TicketStore interface {
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)
	CreateTicket(ctx context.Context, ticket *models.Ticket) error
	SaveTicket(ctx context.Context, ticket *models.Ticket) error
	DeleteTicket(ctx context.Context, id string) error
	ListTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error)
	ListTicketsByEvent(ctx context.Context, eventID string) ([]models.Ticket, error)
	// SumQuantity adds up ticket quantities for the event, restricted to
	// userID when it is not empty and skipping the ticket excludeID.
	SumQuantity(ctx context.Context, eventID, userID, excludeID string) (int, error)
	// TicketHolders returns the distinct users holding tickets for the event.
	TicketHolders(ctx context.Context, eventID string) ([]string, error)

	GetDiscountCode(ctx context.Context, id string) (*models.DiscountCode, error)
	FindDiscountCode(ctx context.Context, eventID, code string) (*models.DiscountCode, error)
	ListDiscountCodes(ctx context.Context, eventID string) ([]models.DiscountCode, error)
	CreateDiscountCode(ctx context.Context, code *models.DiscountCode) error
	DeleteDiscountCode(ctx context.Context, id string) error
}

type NotificationStore interface {
	// CreateNotification writes the notification and one recipient row per user.
	CreateNotification(ctx context.Context, n *models.Notification, users []string) error
	GetNotification(ctx context.Context, id string) (*models.Notification, error)
	SaveNotification(ctx context.Context, n *models.Notification) error
	ReplaceRecipients(ctx context.Context, notificationID string, users []string) error
	DeleteNotification(ctx context.Context, id string) error
	ListNotifications(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error)

	ListInbox(ctx context.Context, userID string) ([]models.InboxItem, error)
	GetNotificationUser(ctx context.Context, id string) (*models.NotificationUser, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) error
}

type RefundStore interface {
	GetRefund(ctx context.Context, id string) (*models.RefundRequest, error)
	CreateRefund(ctx context.Context, r *models.RefundRequest) error
	SaveRefund(ctx context.Context, r *models.RefundRequest) error
	DeleteRefund(ctx context.Context, id string) error
	// ListRefunds lists every request when userID is empty.
	ListRefunds(ctx context.Context, userID string) ([]models.RefundRequest, error)
	HasPendingRefund(ctx context.Context, userID string) (bool, error)
	RefundExistsForTicket(ctx context.Context, ticketCode string) (bool, error)
}

type FeedbackStore interface {
	FindFavorite(ctx context.Context, userID, eventID string) (*models.Favorite, error)
	CreateFavorite(ctx context.Context, f *models.Favorite) error
	DeleteFavorite(ctx context.Context, id string) error
	FavoriteEventIDs(ctx context.Context, userID string) ([]string, error)

	GetRating(ctx context.Context, id string) (*models.Rating, error)
	FindRating(ctx context.Context, userID, eventID string) (*models.Rating, error)
	CreateRating(ctx context.Context, r *models.Rating) error
	SaveRating(ctx context.Context, r *models.Rating) error
	DeleteRating(ctx context.Context, id string) error
	ListRatings(ctx context.Context, eventID string) ([]models.Rating, error)

	GetComment(ctx context.Context, id string) (*models.Comment, error)
	CreateComment(ctx context.Context, c *models.Comment) error
	SaveComment(ctx context.Context, c *models.Comment) error
	DeleteComment(ctx context.Context, id string) error
	ListComments(ctx context.Context, eventID string) ([]models.Comment, error)
	ListCommentsForOrganizer(ctx context.Context, organizerID string) ([]models.Comment, error)

	FindSurvey(ctx context.Context, ticketID string) (*models.SatisfactionSurvey, error)
	CreateSurvey(ctx context.Context, s *models.SatisfactionSurvey) error
}

// Store is the persistence port used by every service.
type Store interface {
	EventStore
	VenueStore
	TicketStore
	NotificationStore
	RefundStore
	FeedbackStore

	// RunInTx runs fn against a transactional view of the store. Any error
	// returned by fn rolls the transaction back.
	RunInTx(ctx context.Context, fn func(tx Store) error) error
}

type clock struct {
	now func() time.Time
}

// SetClock replaces the time source, for tests.
func (c *clock) SetClock(now func() time.Time) { c.now = now }

func (c *clock) current() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}
