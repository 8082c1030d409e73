package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"github.com/Joaquin123L/eventhub/internal/services"
	"github.com/Joaquin123L/eventhub/models"
)

type FeedbackHandler struct {
	feedback  *services.FeedbackService
	validator *Validator
}

func NewFeedbackHandler(feedback *services.FeedbackService, v *Validator) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, validator: v}
}

type ratingRequest struct {
	Title string `json:"title" validate:"max=200"`
	Text  string `json:"text" validate:"max=2000"`
	Score int    `json:"rating"`
}

type commentRequest struct {
	Title string `json:"title" validate:"max=200"`
	Text  string `json:"text" validate:"max=2000"`
}

func (h *FeedbackHandler) Rate(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	var req ratingRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	r, err := h.feedback.Rate(e.Request.Context(), a, models.Rating{
		EventID: e.Request.PathValue("id"),
		Title:   req.Title,
		Text:    req.Text,
		Score:   req.Score,
	})
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusCreated, r)
}

func (h *FeedbackHandler) UpdateRating(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	var req ratingRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	r, err := h.feedback.UpdateRating(e.Request.Context(), a, e.Request.PathValue("ratingId"), req.Title, req.Text, req.Score)
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, r)
}

func (h *FeedbackHandler) DeleteRating(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	if err := h.feedback.DeleteRating(e.Request.Context(), a, e.Request.PathValue("ratingId")); err != nil {
		return apiError(e, err)
	}
	return e.NoContent(http.StatusNoContent)
}

func (h *FeedbackHandler) Comment(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	c, err := h.feedback.Comment(e.Request.Context(), a, models.Comment{
		EventID: e.Request.PathValue("id"),
		Title:   req.Title,
		Text:    req.Text,
	})
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusCreated, c)
}

func (h *FeedbackHandler) UpdateComment(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	c, err := h.feedback.UpdateComment(e.Request.Context(), a, e.Request.PathValue("commentId"), req.Title, req.Text)
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, c)
}

func (h *FeedbackHandler) DeleteComment(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	if err := h.feedback.DeleteComment(e.Request.Context(), a, e.Request.PathValue("commentId")); err != nil {
		return apiError(e, err)
	}
	return e.NoContent(http.StatusNoContent)
}

func (h *FeedbackHandler) OrganizerComments(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	comments, err := h.feedback.OrganizerComments(e.Request.Context(), a)
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]any{"items": comments})
}
