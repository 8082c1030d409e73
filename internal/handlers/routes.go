package handlers

import (
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"github.com/Joaquin123L/eventhub/internal/services"
)

type Handlers struct {
	Events        *EventHandler
	Tickets       *TicketHandler
	Refunds       *RefundHandler
	Notifications *NotificationHandler
	Feedback      *FeedbackHandler
	Venues        *VenueHandler
}

type Services struct {
	Events        *services.EventService
	Tickets       *services.TicketService
	Refunds       *services.RefundService
	Notifications *services.NotificationService
	Feedback      *services.FeedbackService
	Venues        *services.VenueService
}

func New(s Services) *Handlers {
	v := NewValidator()
	return &Handlers{
		Events:        NewEventHandler(s.Events, s.Feedback, v),
		Tickets:       NewTicketHandler(s.Tickets, s.Feedback, v),
		Refunds:       NewRefundHandler(s.Refunds, v),
		Notifications: NewNotificationHandler(s.Notifications, v),
		Feedback:      NewFeedbackHandler(s.Feedback, v),
		Venues:        NewVenueHandler(s.Venues, v),
	}
}

// Register mounts the API on g, normally the /api/v1 group.
func (h *Handlers) Register(g *router.RouterGroup[*core.RequestEvent]) {
	// Events
	g.GET("/events", h.Events.List)
	g.POST("/events", h.Events.Create)
	g.GET("/events/{id}", h.Events.Detail)
	g.PATCH("/events/{id}", h.Events.Update)
	g.DELETE("/events/{id}", h.Events.Delete)
	g.POST("/events/{id}/cancel", h.Events.Cancel)
	g.POST("/events/{id}/favorite", h.Events.ToggleFavorite)

	// Tickets
	g.POST("/events/{id}/tickets", h.Tickets.Purchase)
	g.GET("/events/{id}/tickets", h.Tickets.ListForEvent)
	g.GET("/tickets/mine", h.Tickets.Mine)
	g.PATCH("/tickets/{id}", h.Tickets.Update)
	g.DELETE("/tickets/{id}", h.Tickets.Delete)
	g.POST("/tickets/{id}/survey", h.Tickets.AnswerSurvey)

	// Discount codes
	g.GET("/events/{id}/discount-codes", h.Tickets.ListDiscountCodes)
	g.POST("/events/{id}/discount-codes", h.Tickets.CreateDiscountCode)
	g.GET("/events/{id}/discount-codes/check", h.Tickets.CheckDiscountCode)
	g.DELETE("/discount-codes/{id}", h.Tickets.DeleteDiscountCode)

	// Refunds
	g.POST("/tickets/{id}/refunds", h.Refunds.Request)
	g.GET("/refunds/mine", h.Refunds.Mine)
	g.GET("/refunds", h.Refunds.List)
	g.GET("/refunds/{id}", h.Refunds.Get)
	g.PATCH("/refunds/{id}", h.Refunds.Update)
	g.DELETE("/refunds/{id}", h.Refunds.Delete)
	g.POST("/refunds/{id}/decision", h.Refunds.Decide)

	// Notifications
	g.GET("/notifications", h.Notifications.List)
	g.POST("/notifications", h.Notifications.Create)
	g.GET("/notifications/{id}", h.Notifications.Get)
	g.PATCH("/notifications/{id}", h.Notifications.Update)
	g.DELETE("/notifications/{id}", h.Notifications.Delete)
	g.GET("/inbox", h.Notifications.Inbox)
	g.POST("/inbox/{id}/read", h.Notifications.MarkRead)
	g.POST("/inbox/read-all", h.Notifications.MarkAllRead)

	// Ratings and comments
	g.POST("/events/{id}/ratings", h.Feedback.Rate)
	g.PATCH("/events/{id}/ratings/{ratingId}", h.Feedback.UpdateRating)
	g.DELETE("/events/{id}/ratings/{ratingId}", h.Feedback.DeleteRating)
	g.POST("/events/{id}/comments", h.Feedback.Comment)
	g.PATCH("/events/{id}/comments/{commentId}", h.Feedback.UpdateComment)
	g.DELETE("/events/{id}/comments/{commentId}", h.Feedback.DeleteComment)
	g.GET("/comments/organizer", h.Feedback.OrganizerComments)

	// Venues and categories
	g.GET("/venues", h.Venues.ListVenues)
	g.POST("/venues", h.Venues.CreateVenue)
	g.PATCH("/venues/{id}", h.Venues.UpdateVenue)
	g.DELETE("/venues/{id}", h.Venues.DeleteVenue)
	g.GET("/categories", h.Venues.ListCategories)
	g.POST("/categories", h.Venues.CreateCategory)
	g.PATCH("/categories/{id}", h.Venues.UpdateCategory)
	g.DELETE("/categories/{id}", h.Venues.DeleteCategory)
}
