package models

import (
	"dental-clinic-server/internal/ledger"
)

// Patient represents a patient record kept by the clinic staff. The
// Attended flag has its own lifecycle, independent of any single
// appointment's payments.
type Patient struct {
	BaseModel
	Name     string `gorm:"size:255;not null;index" json:"name"`
	Phone    string `gorm:"size:30" json:"phone"`
	Email    string `gorm:"size:255" json:"email"`
	Notes    string `gorm:"type:text" json:"notes"`
	Attended bool   `gorm:"default:false" json:"attended"`

	// Relations
	Appointments []Appointment `gorm:"foreignKey:PatientID" json:"-"`
}

// AttendancePhase converts the stored flag into the derived phase used for
// status display.
func (p *Patient) AttendancePhase() ledger.AttendancePhase {
	return ledger.AttendanceFromFlag(p.Attended)
}
