package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"github.com/Joaquin123L/eventhub/internal/services"
	"github.com/Joaquin123L/eventhub/models"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	validator     *Validator
}

func NewNotificationHandler(notifications *services.NotificationService, v *Validator) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, validator: v}
}

// With an event_id the recipients come from the event's ticket holders:
// all of them, or the listed users that hold a ticket. Without one the listed
// users are addressed directly.
type notificationRequest struct {
	Title      string          `json:"title" validate:"max=200"`
	Message    string          `json:"message" validate:"max=5000"`
	Priority   models.Priority `json:"priority"`
	EventID    string          `json:"event_id"`
	AllHolders bool            `json:"all_holders"`
	Users      []string        `json:"users" validate:"omitempty,dive,required"`
}

func (h *NotificationHandler) Create(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	var req notificationRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	ctx := e.Request.Context()
	var n *models.Notification
	if req.EventID != "" {
		n, err = h.notifications.ComposeForEvent(ctx, a, req.EventID, req.AllHolders, req.Users, req.Title, req.Message, req.Priority)
	} else {
		n, err = h.notifications.Create(ctx, services.NotificationInput{
			Title:    req.Title,
			Message:  req.Message,
			Priority: req.Priority,
			Users:    req.Users,
		})
	}
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusCreated, n)
}

func (h *NotificationHandler) List(e *core.RequestEvent) error {
	if _, err := organizer(e); err != nil {
		return err
	}
	q := e.Request.URL.Query()
	items, err := h.notifications.List(e.Request.Context(), models.NotificationFilter{
		Search:   q.Get("search"),
		EventID:  q.Get("event"),
		Priority: models.Priority(q.Get("priority")),
	})
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *NotificationHandler) Get(e *core.RequestEvent) error {
	if _, err := organizer(e); err != nil {
		return err
	}
	n, err := h.notifications.Get(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, n)
}

// Update keeps the stored recipients when users is omitted.
func (h *NotificationHandler) Update(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	var req notificationRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	n, err := h.notifications.Update(e.Request.Context(), a, e.Request.PathValue("id"), models.NotificationChanges{
		Title:    req.Title,
		Message:  req.Message,
		Priority: req.Priority,
		EventID:  req.EventID,
		Users:    req.Users,
	})
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) Delete(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	if err := h.notifications.Delete(e.Request.Context(), a, e.Request.PathValue("id")); err != nil {
		return apiError(e, err)
	}
	return e.NoContent(http.StatusNoContent)
}

// Inbox

func (h *NotificationHandler) Inbox(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	inbox, err := h.notifications.Inbox(e.Request.Context(), a.ID)
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, inbox)
}

func (h *NotificationHandler) MarkRead(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(e.Request.Context(), a.ID, e.Request.PathValue("id")); err != nil {
		return apiError(e, err)
	}
	return e.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkAllRead(e.Request.Context(), a.ID); err != nil {
		return apiError(e, err)
	}
	return e.NoContent(http.StatusNoContent)
}
