package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"github.com/Joaquin123L/eventhub/internal/status"
	"github.com/Joaquin123L/eventhub/models"
)

// apiError maps service errors to PocketBase API errors. Anything the
// services do not classify is logged and reported as a 500.
func apiError(e *core.RequestEvent, err error) error {
	var fields validation.Errors
	var rule *status.RuleError

	switch {
	case errors.As(err, &fields):
		return apis.NewBadRequestError("Datos inválidos.", fields)
	case errors.Is(err, status.ErrPaymentDeclined):
		return apis.NewApiError(http.StatusUnprocessableEntity, status.Message(err), nil)
	case errors.Is(err, status.ErrLockTimeout):
		return apis.NewApiError(http.StatusServiceUnavailable, status.Message(err), nil)
	case errors.As(err, &rule):
		return apis.NewApiError(http.StatusConflict, rule.Message, nil)
	case errors.Is(err, status.ErrNotFound):
		return apis.NewNotFoundError("No encontrado.", nil)
	case errors.Is(err, status.ErrForbidden):
		return apis.NewForbiddenError("No tienes permiso para realizar esta acción.", nil)
	}

	slog.Error("request failed",
		"method", e.Request.Method,
		"path", e.Request.URL.Path,
		"error", err,
	)
	return apis.NewInternalServerError("Ocurrió un error inesperado.", nil)
}

// actor resolves the authenticated user. Handlers that need a user call it
// first and return its error as is.
func actor(e *core.RequestEvent) (models.Actor, error) {
	if e.Auth == nil {
		return models.Actor{}, apis.NewUnauthorizedError("Unauthorized", nil)
	}
	return models.Actor{ID: e.Auth.Id, Organizer: e.Auth.GetBool("is_organizer")}, nil
}

func organizer(e *core.RequestEvent) (models.Actor, error) {
	a, err := actor(e)
	if err != nil {
		return a, err
	}
	if !a.Organizer {
		return a, apis.NewForbiddenError("Solo los organizadores pueden realizar esta acción.", nil)
	}
	return a, nil
}

// viewer is the optional actor of public endpoints.
func viewer(e *core.RequestEvent) models.Actor {
	a, _ := actor(e)
	return a
}
