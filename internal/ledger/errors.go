package ledger

import "errors"

var (
	// ErrInvalidAmount is returned when an installment amount is zero or
	// negative. Non-numeric input never reaches the engine; it fails at
	// request parsing.
	ErrInvalidAmount = errors.New("installment amount must be greater than zero")

	// ErrIndexOutOfRange is returned when an edit or delete references an
	// installment that does not exist. This is a stale-caller bug, not a
	// user-facing condition.
	ErrIndexOutOfRange = errors.New("installment index out of range")

	// ErrNothingOwed is returned by ProcessFullPayment when the appointment
	// has no outstanding balance.
	ErrNothingOwed = errors.New("nothing owed on this appointment")
)
