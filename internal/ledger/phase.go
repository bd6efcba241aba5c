package ledger

import "github.com/shopspring/decimal"

// PaymentPhase represents how far along an appointment's payment is.
type PaymentPhase string

const (
	PaymentNoCharge      PaymentPhase = "No Payment Required"
	PaymentUnpaid        PaymentPhase = "Unpaid"
	PaymentPartiallyPaid PaymentPhase = "Partially Paid"
	PaymentFullyPaid     PaymentPhase = "Fully Paid"
)

// AttendancePhase represents whether the patient has attended the clinic.
// It lives on the patient record, not on any single appointment.
type AttendancePhase string

const (
	Attended    AttendancePhase = "Attended"
	NotAttended AttendancePhase = "Not Attended"
)

// AttendanceFromFlag converts the stored boolean flag into a phase.
func AttendanceFromFlag(attended bool) AttendancePhase {
	if attended {
		return Attended
	}
	return NotAttended
}

// ComputePaymentPhase derives the payment phase from the total due and the
// amount paid so far. Precedence matters: a zero total is "No Payment
// Required" even when nothing has been paid.
func ComputePaymentPhase(totalDue, paidToDate decimal.Decimal) PaymentPhase {
	switch {
	case totalDue.IsZero():
		return PaymentNoCharge
	case paidToDate.IsZero():
		return PaymentUnpaid
	case paidToDate.LessThan(totalDue):
		return PaymentPartiallyPaid
	default:
		return PaymentFullyPaid
	}
}

// CombineStatus joins the attendance and payment phases into the display
// status shown to staff. When no payment is required the attendance phase
// stands alone, without a payment suffix.
func CombineStatus(attendance AttendancePhase, payment PaymentPhase) string {
	if payment == PaymentNoCharge {
		return string(attendance)
	}
	return string(attendance) + " - " + string(payment)
}
