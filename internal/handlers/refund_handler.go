package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"github.com/Joaquin123L/eventhub/internal/services"
	"github.com/Joaquin123L/eventhub/models"
)

type RefundHandler struct {
	refunds   *services.RefundService
	validator *Validator
}

func NewRefundHandler(refunds *services.RefundService, v *Validator) *RefundHandler {
	return &RefundHandler{refunds: refunds, validator: v}
}

type refundRequest struct {
	Reason       string              `json:"reason" validate:"max=1000"`
	RefundReason models.RefundReason `json:"refund_reason"`
}

type decisionRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}

func (h *RefundHandler) Request(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	var req refundRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	r, err := h.refunds.Request(e.Request.Context(), a, e.Request.PathValue("id"), req.Reason, req.RefundReason)
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusCreated, r)
}

func (h *RefundHandler) Mine(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	refunds, err := h.refunds.ListMine(e.Request.Context(), a)
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]any{"items": refunds})
}

func (h *RefundHandler) List(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	refunds, err := h.refunds.ListAll(e.Request.Context(), a)
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]any{"items": refunds})
}

func (h *RefundHandler) Get(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	r, err := h.refunds.Get(e.Request.Context(), a, e.Request.PathValue("id"))
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, r)
}

func (h *RefundHandler) Update(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	var req refundRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	r, err := h.refunds.Update(e.Request.Context(), a, e.Request.PathValue("id"), req.Reason, req.RefundReason)
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, r)
}

func (h *RefundHandler) Delete(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	if err := h.refunds.Delete(e.Request.Context(), a, e.Request.PathValue("id")); err != nil {
		return apiError(e, err)
	}
	return e.NoContent(http.StatusNoContent)
}

func (h *RefundHandler) Decide(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	var req decisionRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	r, err := h.refunds.Decide(e.Request.Context(), a, e.Request.PathValue("id"), *req.Approve)
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, r)
}
