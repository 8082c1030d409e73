package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"github.com/Joaquin123L/eventhub/internal/services"
	"github.com/Joaquin123L/eventhub/models"
)

type VenueHandler struct {
	venues    *services.VenueService
	validator *Validator
}

func NewVenueHandler(venues *services.VenueService, v *Validator) *VenueHandler {
	return &VenueHandler{venues: venues, validator: v}
}

type venueRequest struct {
	Name     string `json:"name" validate:"max=200"`
	Address  string `json:"address" validate:"max=300"`
	City     string `json:"city" validate:"max=100"`
	Capacity int    `json:"capacity"`
	Contact  string `json:"contact" validate:"max=200"`
}

type categoryRequest struct {
	Name        string `json:"name" validate:"max=100"`
	Description string `json:"description" validate:"max=1000"`
	IsActive    *bool  `json:"is_active"`
}

func (r venueRequest) venue(id string) models.Venue {
	return models.Venue{
		ID:       id,
		Name:     r.Name,
		Address:  r.Address,
		City:     r.City,
		Capacity: r.Capacity,
		Contact:  r.Contact,
	}
}

func (h *VenueHandler) ListVenues(e *core.RequestEvent) error {
	venues, err := h.venues.ListVenues(e.Request.Context())
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]any{"items": venues})
}

func (h *VenueHandler) CreateVenue(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	var req venueRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}
	v, err := h.venues.CreateVenue(e.Request.Context(), a, req.venue(""))
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusCreated, v)
}

func (h *VenueHandler) UpdateVenue(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	var req venueRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}
	v, err := h.venues.UpdateVenue(e.Request.Context(), a, req.venue(e.Request.PathValue("id")))
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, v)
}

func (h *VenueHandler) DeleteVenue(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	if err := h.venues.DeleteVenue(e.Request.Context(), a, e.Request.PathValue("id")); err != nil {
		return apiError(e, err)
	}
	return e.NoContent(http.StatusNoContent)
}

func (h *VenueHandler) ListCategories(e *core.RequestEvent) error {
	categories, err := h.venues.ListCategories(e.Request.Context())
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]any{"items": categories})
}

func (h *VenueHandler) CreateCategory(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	var req categoryRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}
	c, err := h.venues.CreateCategory(e.Request.Context(), a, models.Category{Name: req.Name, Description: req.Description})
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusCreated, c)
}

func (h *VenueHandler) UpdateCategory(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	var req categoryRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}
	c, err := h.venues.UpdateCategory(e.Request.Context(), a, e.Request.PathValue("id"), req.Name, req.Description, req.IsActive)
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, c)
}

func (h *VenueHandler) DeleteCategory(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	if err := h.venues.DeleteCategory(e.Request.Context(), a, e.Request.PathValue("id")); err != nil {
		return apiError(e, err)
	}
	return e.NoContent(http.StatusNoContent)
}
