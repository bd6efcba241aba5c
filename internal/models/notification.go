package models

// NotificationType categorises entries in the clinic activity feed.
type NotificationType string

const (
	NotificationNewAppointment     NotificationType = "New Appointment"
	NotificationPaymentCompleted   NotificationType = "Payment Completed"
	NotificationPaymentInstallment NotificationType = "Payment Installment"
	NotificationPatientAttended    NotificationType = "Patient Attended"
	NotificationPatientUnattended  NotificationType = "Patient Unattended"
)

// Notification represents one entry in the persisted notification feed shown
// on the dashboard and notifications screen.
type Notification struct {
	BaseModel
	Type          NotificationType `gorm:"size:40;index" json:"type"`
	AppointmentID string           `gorm:"size:36;index" json:"appointmentId,omitempty"`
	Message       string           `gorm:"size:500" json:"message"`
	Read          bool             `gorm:"default:false" json:"read"`
}
