package status

import "errors"

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrForbidden = errors.New("auth: action not allowed")
	ErrConflict  = errors.New("store: record already exists")

	ErrEventCancelled   = errors.New("event: event is cancelled")
	ErrEventFinished    = errors.New("event: event already happened")
	ErrPurchaseLimit    = errors.New("ticket: per-user limit reached")
	ErrCapacityExceeded = errors.New("ticket: not enough tickets left")
	ErrTicketLocked     = errors.New("ticket: ticket cannot be changed")
	ErrInvalidDiscount  = errors.New("ticket: discount code is not valid")
	ErrPaymentDeclined  = errors.New("payment: payment failed")
	ErrLockTimeout      = errors.New("ticket: could not acquire purchase lock")

	ErrNoRecipients     = errors.New("notification: no recipients")
	ErrRefundNotAllowed = errors.New("refund: refund not allowed")
	ErrPendingRefund    = errors.New("refund: pending request exists")
	ErrAlreadyRated     = errors.New("rating: already rated")
	ErrNoTicket         = errors.New("rating: user holds no ticket")
	ErrAlreadyAnswered  = errors.New("survey: already answered")
	ErrCategoryInUse    = errors.New("category: category has events")
)

// RuleError is a business rule violation with a message meant for the user.
type RuleError struct {
	Err     error
	Message string
}

func (e *RuleError) Error() string { return e.Message }

func (e *RuleError) Unwrap() error { return e.Err }

func Rule(err error, message string) error {
	return &RuleError{Err: err, Message: message}
}

// Message returns the user-facing message of a rule error, or "".
func Message(err error) string {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}
