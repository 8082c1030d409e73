package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"github.com/Joaquin123L/eventhub/internal/services"
	"github.com/Joaquin123L/eventhub/models"
)

type TicketHandler struct {
	tickets   *services.TicketService
	feedback  *services.FeedbackService
	validator *Validator
}

func NewTicketHandler(tickets *services.TicketService, feedback *services.FeedbackService, v *Validator) *TicketHandler {
	return &TicketHandler{tickets: tickets, feedback: feedback, validator: v}
}

type purchaseRequest struct {
	Quantity     int               `json:"quantity" validate:"required,min=1"`
	Type         models.TicketType `json:"type" validate:"required,oneof=general vip"`
	Code         string            `json:"ticket_code" validate:"max=50"`
	DiscountCode string            `json:"discount_code" validate:"max=50"`
	Card         models.Card       `json:"card"`
}

type updateTicketRequest struct {
	Quantity int               `json:"quantity" validate:"required,min=1"`
	Type     models.TicketType `json:"type" validate:"required,oneof=general vip"`
}

type discountCodeRequest struct {
	Code       string          `json:"code" validate:"required,max=50"`
	Percentage decimal.Decimal `json:"discount_percentage"`
	ValidFrom  time.Time       `json:"valid_from" validate:"required"`
	ValidUntil time.Time       `json:"valid_until" validate:"required"`
	Active     *bool           `json:"active"`
}

type surveyRequest struct {
	SatisfactionLevel  int    `json:"satisfaction_level" validate:"required,min=1,max=5"`
	EaseOfSearch       int    `json:"ease_of_search" validate:"required,min=1,max=5"`
	PaymentExperience  int    `json:"payment_experience" validate:"required,min=1,max=5"`
	ReceivedTicket     bool   `json:"received_ticket"`
	WouldRecommend     int    `json:"would_recommend" validate:"required,min=1,max=5"`
	AdditionalComments string `json:"additional_comments" validate:"max=1000"`
}

func (h *TicketHandler) Purchase(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	var req purchaseRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	ticket, err := h.tickets.Purchase(e.Request.Context(), a, services.PurchaseInput{
		EventID:      e.Request.PathValue("id"),
		Quantity:     req.Quantity,
		Type:         req.Type,
		Code:         req.Code,
		DiscountCode: req.DiscountCode,
		Card:         req.Card,
	})
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) ListForEvent(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListForEvent(e.Request.Context(), a, e.Request.PathValue("id"))
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]any{"items": tickets})
}

func (h *TicketHandler) Mine(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListForUser(e.Request.Context(), a.ID)
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]any{"items": tickets})
}

func (h *TicketHandler) Update(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	var req updateTicketRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	ticket, err := h.tickets.Update(e.Request.Context(), a, e.Request.PathValue("id"), req.Quantity, req.Type)
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) Delete(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	if err := h.tickets.Delete(e.Request.Context(), a, e.Request.PathValue("id")); err != nil {
		return apiError(e, err)
	}
	return e.NoContent(http.StatusNoContent)
}

func (h *TicketHandler) AnswerSurvey(e *core.RequestEvent) error {
	a, err := actor(e)
	if err != nil {
		return err
	}
	var req surveyRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	survey, err := h.feedback.AnswerSurvey(e.Request.Context(), a, models.SatisfactionSurvey{
		TicketID:           e.Request.PathValue("id"),
		SatisfactionLevel:  req.SatisfactionLevel,
		EaseOfSearch:       req.EaseOfSearch,
		PaymentExperience:  req.PaymentExperience,
		ReceivedTicket:     req.ReceivedTicket,
		WouldRecommend:     req.WouldRecommend,
		AdditionalComments: req.AdditionalComments,
	})
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusCreated, survey)
}

// Discount codes

func (h *TicketHandler) ListDiscountCodes(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	codes, err := h.tickets.ListDiscountCodes(e.Request.Context(), a, e.Request.PathValue("id"))
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]any{"items": codes})
}

func (h *TicketHandler) CreateDiscountCode(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	var req discountCodeRequest
	if err := h.validator.bind(e, &req); err != nil {
		return err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	code, err := h.tickets.CreateDiscountCode(e.Request.Context(), a, models.DiscountCode{
		Code:       req.Code,
		EventID:    e.Request.PathValue("id"),
		Percentage: req.Percentage,
		ValidFrom:  req.ValidFrom,
		ValidUntil: req.ValidUntil,
		Active:     active,
	})
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusCreated, code)
}

func (h *TicketHandler) DeleteDiscountCode(e *core.RequestEvent) error {
	a, err := organizer(e)
	if err != nil {
		return err
	}
	if err := h.tickets.DeleteDiscountCode(e.Request.Context(), a, e.Request.PathValue("id")); err != nil {
		return apiError(e, err)
	}
	return e.NoContent(http.StatusNoContent)
}

// CheckDiscountCode lets the checkout preview a code before paying.
func (h *TicketHandler) CheckDiscountCode(e *core.RequestEvent) error {
	if _, err := actor(e); err != nil {
		return err
	}
	code, err := h.tickets.CheckDiscountCode(e.Request.Context(), e.Request.PathValue("id"), e.Request.URL.Query().Get("code"))
	if err != nil {
		return apiError(e, err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"valid":               true,
		"code":                code.Code,
		"discount_percentage": code.Percentage,
	})
}
