package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Joaquin123L/eventhub/models"
)

// Field errors are returned as validation.Errors so the HTTP layer can hand
// them to the client keyed by field name.

func invalid(code, message string) error {
	return validation.NewError(code, message)
}

func required(value, message string) error {
	return validation.Validate(strings.TrimSpace(value), validation.Required.Error(message))
}

func minLength(value string, n int, message string) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		return invalid("validation_length_too_short", message)
	}
	return nil
}

func scoreInRange(score int, field string) error {
	if score < 1 || score > 5 {
		return invalid("validation_out_of_range", fmt.Sprintf("%s debe estar entre 1 y 5", field))
	}
	return nil
}

func validateEventFields(title, description string, scheduledAt time.Time, capacity *int, venue *models.Venue, now time.Time) error {
	errs := validation.Errors{
		"title":       required(title, "Por favor ingrese un titulo"),
		"description": required(description, "Por favor ingrese una descripcion"),
	}
	if !scheduledAt.After(now) {
		errs["scheduled_at"] = invalid("validation_past_date", "La fecha y hora del evento deben ser posteriores a la actual")
	}
	if capacity != nil {
		switch {
		case *capacity <= 0:
			errs["capacity"] = invalid("validation_min_greater_than", "La capacidad debe ser mayor a 0")
		case venue != nil && venue.Capacity > 0 && *capacity > venue.Capacity:
			errs["capacity"] = invalid("validation_venue_capacity",
				fmt.Sprintf("La capacidad del evento (%d) excede la del lugar (%d).", *capacity, venue.Capacity))
		}
	}
	return errs.Filter()
}

func validateNotificationFields(title, message string, priority models.Priority, users []string) error {
	errs := validation.Errors{
		"title":   required(title, "Por favor ingrese un título"),
		"message": required(message, "Por favor ingrese un mensaje"),
	}
	if !priority.Valid() {
		errs["priority"] = invalid("validation_invalid_priority", "Prioridad inválida")
	}
	if len(users) == 0 {
		errs["users"] = invalid("validation_required", "Debe proporcionar al menos un usuario")
	}
	return errs.Filter()
}

func validateVenue(v models.Venue) error {
	errs := validation.Errors{
		"name":    minLength(v.Name, 3, "El nombre debe tener al menos 3 caracteres"),
		"address": minLength(v.Address, 3, "La dirección debe tener al menos 3 caracteres"),
		"city":    minLength(v.City, 3, "La ciudad debe tener al menos 3 caracteres"),
		"contact": minLength(v.Contact, 3, "El contacto debe tener al menos 3 caracteres"),
	}
	if v.Capacity <= 0 {
		errs["capacity"] = invalid("validation_min_greater_than", "La capacidad debe ser un número positivo")
	}
	return errs.Filter()
}

func validateCategory(c models.Category) error {
	return validation.Errors{
		"name":        required(c.Name, "Por favor ingrese un nombre"),
		"description": required(c.Description, "Por favor ingrese una descripcion"),
	}.Filter()
}

func validateRating(r models.Rating) error {
	return validation.Errors{
		"title":  required(r.Title, "Por favor ingrese un título"),
		"rating": scoreInRange(r.Score, "La calificación"),
	}.Filter()
}

func validateComment(c models.Comment) error {
	return validation.Errors{
		"title": required(c.Title, "Por favor ingrese un título"),
		"text":  required(c.Text, "Por favor ingrese un comentario"),
	}.Filter()
}

func validateSurvey(s models.SatisfactionSurvey) error {
	return validation.Errors{
		"satisfaction_level": scoreInRange(s.SatisfactionLevel, "La satisfacción"),
		"ease_of_search":     scoreInRange(s.EaseOfSearch, "La facilidad de búsqueda"),
		"payment_experience": scoreInRange(s.PaymentExperience, "La experiencia de pago"),
		"would_recommend":    scoreInRange(s.WouldRecommend, "La recomendación"),
	}.Filter()
}

func validateDiscountCode(d models.DiscountCode) error {
	errs := validation.Errors{
		"code": required(d.Code, "Por favor ingrese un código"),
	}
	if !d.Percentage.IsPositive() || d.Percentage.GreaterThan(hundredPercent) {
		errs["discount_percentage"] = invalid("validation_out_of_range", "El porcentaje debe estar entre 1 y 100")
	}
	if !d.ValidUntil.After(d.ValidFrom) {
		errs["valid_until"] = invalid("validation_date_order", "La fecha de fin debe ser posterior a la de inicio")
	}
	return errs.Filter()
}
