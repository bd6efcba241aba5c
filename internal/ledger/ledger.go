// Package ledger implements the payment ledger core: pure, stateless
// computations over an appointment's total due and its ordered installment
// history. It performs no I/O and holds no state; handlers load a ledger from
// storage, apply an operation, and persist the result.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment is one recorded payment event toward an appointment's total.
// The timestamp is assigned when the payment is recorded and survives
// later amount corrections.
type Installment struct {
	Amount     decimal.Decimal
	OccurredAt time.Time
}

// Ledger is an appointment's total due plus its installment history, in
// payment order. Operations use value semantics: they return a new Ledger
// and never mutate the receiver, so a failed operation leaves the caller's
// copy untouched.
type Ledger struct {
	TotalDue     decimal.Decimal
	Installments []Installment
}

// Transition describes what an installment mutation meant for the payment
// lifecycle, so callers can fire the matching notification.
type Transition string

const (
	// TransitionInstallment marks a partial payment that did not complete
	// the ledger.
	TransitionInstallment Transition = "installment"

	// TransitionPaymentCompleted marks the mutation that moved the ledger
	// into Fully Paid. Callers record the completion timestamp exactly once:
	// an already-set completion time is never overwritten by later edits.
	TransitionPaymentCompleted Transition = "payment_completed"
)

// PaidToDate sums the installment history.
func (l Ledger) PaidToDate() decimal.Decimal {
	total := decimal.Zero
	for _, in := range l.Installments {
		total = total.Add(in.Amount)
	}
	return total
}

// Remaining is the outstanding balance. It can go negative after an admin
// over-edits an installment; that is reported as-is rather than clamped,
// so a reconciliation discrepancy stays visible.
func (l Ledger) Remaining() decimal.Decimal {
	return l.TotalDue.Sub(l.PaidToDate())
}

// Phase derives the current payment phase from the installment history.
func (l Ledger) Phase() PaymentPhase {
	return ComputePaymentPhase(l.TotalDue, l.PaidToDate())
}

// AddInstallment appends a payment of the given amount. The returned
// transition is TransitionPaymentCompleted only when this payment moved the
// ledger into Fully Paid from some other phase.
func (l Ledger) AddInstallment(amount decimal.Decimal, at time.Time) (Ledger, Transition, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return l, "", ErrInvalidAmount
	}
	before := l.Phase()
	next := l.clone()
	next.Installments = append(next.Installments, Installment{Amount: amount, OccurredAt: at})
	return next, transitionBetween(before, next.Phase()), nil
}

// EditInstallment replaces the amount of the installment at index. This is a
// retroactive correction: the installment keeps its place in the history and
// its original timestamp.
func (l Ledger) EditInstallment(index int, newAmount decimal.Decimal) (Ledger, Transition, error) {
	if index < 0 || index >= len(l.Installments) {
		return l, "", ErrIndexOutOfRange
	}
	if newAmount.LessThanOrEqual(decimal.Zero) {
		return l, "", ErrInvalidAmount
	}
	before := l.Phase()
	next := l.clone()
	next.Installments[index].Amount = newAmount
	return next, transitionBetween(before, next.Phase()), nil
}

// DeleteInstallment removes the installment at index. cleared is true when
// the history becomes empty; the caller must then clear any recorded
// completion timestamp.
func (l Ledger) DeleteInstallment(index int) (Ledger, bool, error) {
	if index < 0 || index >= len(l.Installments) {
		return l, false, ErrIndexOutOfRange
	}
	next := l.clone()
	next.Installments = append(next.Installments[:index], next.Installments[index+1:]...)
	return next, len(next.Installments) == 0, nil
}

// ProcessFullPayment settles the outstanding balance in a single
// installment. It fails with ErrNothingOwed when nothing is outstanding,
// and otherwise always yields TransitionPaymentCompleted.
func (l Ledger) ProcessFullPayment(at time.Time) (Ledger, Transition, error) {
	remaining := l.Remaining()
	if remaining.LessThanOrEqual(decimal.Zero) {
		return l, "", ErrNothingOwed
	}
	return l.AddInstallment(remaining, at)
}

// clone copies the ledger including its installment slice, so mutations on
// the copy cannot alias the receiver's backing array.
func (l Ledger) clone() Ledger {
	installments := make([]Installment, len(l.Installments))
	copy(installments, l.Installments)
	return Ledger{TotalDue: l.TotalDue, Installments: installments}
}

func transitionBetween(before, after PaymentPhase) Transition {
	if before != PaymentFullyPaid && after == PaymentFullyPaid {
		return TransitionPaymentCompleted
	}
	return TransitionInstallment
}
