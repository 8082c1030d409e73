package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"github.com/Joaquin123L/eventhub/internal/services"
	"github.com/Joaquin123L/eventhub/models"
)

type EventHandler struct {
	events    *services.EventService
	feedback  *services.FeedbackService
	validator *Validator
}

func NewEventHandler(events *services.EventService, feedback *services.FeedbackService, v *Validator) *EventHandler {
	return &EventHandler{events: events, feedback: feedback, validator: v}
}

type createEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	CategoryID  string    `json:"category_id"`
	VenueID     string    `json:"venue_id"`
	Capacity    *int      `json:"capacity" validate:"omitempty,min=0"`
}

type updateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	VenueID     *string    `json:"venue_id"`
	CategoryID  *string    `json:"category_id"`
	Capacity    *int       `json:"capacity" validate:"omitempty,min=0"`
}

// List returns upcoming events. Organizers see their own events, past ones
// included when past=true. Other filters: favorites, category, venue.
func (h *EventHandler) List(e *core.RequestEvent) error {
	v := viewer(e)
	q := e.Request.URL.Query()

	events, err := h.events.List(e.Request.Context(), v, models.EventQuery{
		IncludePast:   q.Get("past") == "true",
		Descending:    q.Get("sort") == "desc",
		CategoryID:    q.Get("category"),
		VenueID:       q.Get("venue"),
		FavoritesOnly: q.Get("favorites") == "true" && v.ID != "",
	})
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]any{"items": events})
}

func (h *EventHandler) Detail(e *core.RequestEvent) error {
	detail, err := h.events.Detail(e.Request.Context(), viewer(e), e.Request.PathValue("id"))
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, detail)
}

func (h *EventHandler) Create(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	var req createEventRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	event, err := h.events.Create(e.Request.Context(), a, services.EventInput{
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
		CategoryID:  req.CategoryID,
		VenueID:     req.VenueID,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusCreated, event)
}

func (h *EventHandler) Update(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	var req updateEventRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	event, err := h.events.Update(e.Request.Context(), a, e.Request.PathValue("id"), models.EventChanges{
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: req.ScheduledAt,
		VenueID:     req.VenueID,
		CategoryID:  req.CategoryID,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, event)
}

func (h *EventHandler) Cancel(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	event, err := h.events.Cancel(e.Request.Context(), a, e.Request.PathValue("id"))
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, event)
}

func (h *EventHandler) Delete(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	if err := h.events.Delete(e.Request.Context(), a, e.Request.PathValue("id")); err != nil {
		return apiError(e, err)
	}
	return e.NoContent(http.StatusNoContent)
}

func (h *EventHandler) ToggleFavorite(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	fav, err := h.feedback.ToggleFavorite(e.Request.Context(), a, e.Request.PathValue("id"))
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]any{"is_favorite": fav})
}
