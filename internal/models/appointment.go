package models

import (
	"time"

	"github.com/shopspring/decimal"

	"dental-clinic-server/internal/ledger"
)

// Appointment represents a booked dental service for a patient. TotalDue is
// fixed from the service catalog at booking time; PaymentStatus is a cached
// display string rewritten on every installment mutation, never trusted as
// source of truth on reads.
type Appointment struct {
	BaseModel
	PatientID          string          `gorm:"size:36;index" json:"patientId"`
	Service            string          `gorm:"size:100;not null" json:"service"`
	Location           string          `gorm:"size:100" json:"location"`
	ScheduledAt        time.Time       `json:"scheduledAt"`
	Notes              string          `gorm:"type:text" json:"notes"`
	TotalDue           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalDue"`
	PaymentStatus      string          `gorm:"size:60" json:"paymentStatus"`
	PaymentCompletedAt *time.Time      `json:"paymentCompletedAt,omitempty"`

	// Relations
	Patient      Patient       `gorm:"foreignKey:PatientID" json:"-"`
	Installments []Installment `gorm:"foreignKey:AppointmentID" json:"installments,omitempty"`
}

// Installment is one recorded payment toward an appointment's total. Rows
// keep their creation order; an amount correction never re-timestamps.
type Installment struct {
	BaseModel
	AppointmentID string          `gorm:"size:36;index;not null" json:"appointmentId"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// Ledger builds the pure ledger view from the appointment's loaded
// installments. Installments must be preloaded in creation order.
func (a *Appointment) Ledger() ledger.Ledger {
	l := ledger.Ledger{TotalDue: a.TotalDue}
	for _, in := range a.Installments {
		l.Installments = append(l.Installments, ledger.Installment{
			Amount:     in.Amount,
			OccurredAt: in.OccurredAt,
		})
	}
	return l
}

// CombinedStatus derives the display status from the patient's attendance
// flag and the installment history.
func (a *Appointment) CombinedStatus(attended bool) string {
	return ledger.CombineStatus(ledger.AttendanceFromFlag(attended), a.Ledger().Phase())
}
