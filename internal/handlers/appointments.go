package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/ledger"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

var (
	errUnknownService       = errors.New("unknown service: no catalog price available")
	errInvalidBookingAmount = errors.New("appointment amount cannot be negative")
)

// AppointmentHandler handles appointment booking requests.
type AppointmentHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log zerolog.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Cfg: cfg, Log: log}
}

// BookingOptions lists the service catalog and clinic locations for the
// booking screen.
type BookingOptions struct {
	Services  []models.CatalogEntry `json:"services"`
	Locations []string              `json:"locations"`
}

// GetBookingOptions handles fetching services and locations.
func (h *AppointmentHandler) GetBookingOptions(c *gin.Context) {
	utils.Success(c, "Booking options fetched successfully", BookingOptions{
		Services:  models.ServiceCatalog(),
		Locations: h.Cfg.Clinic.Locations,
	})
}

// CreateAppointmentRequest represents the request body for booking an
// appointment. Amount overrides the catalog price when provided; a zero
// amount books a no-charge appointment.
type CreateAppointmentRequest struct {
	PatientID   string           `json:"patientId" binding:"required,uuid"`
	Service     string           `json:"service" binding:"required"`
	ScheduledAt time.Time        `json:"scheduledAt" binding:"required"`
	Location    string           `json:"location" binding:"required"`
	Notes       string           `json:"notes"`
	Amount      *decimal.Decimal `json:"amount"`
}

// CreateAppointment handles booking a new appointment.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		utils.BadRequest(c, "Invalid Patient ID format")
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}

	if !h.Cfg.IsValidLocation(req.Location) {
		utils.BadRequest(c, "Unknown clinic location: "+req.Location)
		return
	}

	totalDue, err := resolveTotalDue(req.Service, req.Amount)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	appointment := models.Appointment{
		PatientID:   patient.ID,
		Service:     req.Service,
		Location:    req.Location,
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
		TotalDue:    totalDue,
	}
	appointment.PaymentStatus = appointment.CombinedStatus(patient.Attended)

	if err := h.DB.Create(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to create appointment: "+err.Error())
		return
	}

	recordNotification(h.DB, h.Log, models.Notification{
		Type:          models.NotificationNewAppointment,
		AppointmentID: appointment.ID,
		Message:       patient.Name + " - " + appointment.Service + " (" + appointment.Location + ")",
	})

	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointments handles fetching appointments with optional search over
// patient name and service, plus location and payment-phase filters.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	query := h.DB.
		Preload("Patient").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Order("scheduled_at asc")

	if location := c.Query("location"); location != "" && location != "All" {
		query = query.Where("location = ?", location)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.
			Joins("JOIN patients ON patients.id = appointments.patient_id").
			Where("patients.name LIKE ? OR appointments.service LIKE ?", like, like)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	// Phase filtering happens on the derived value, never by parsing the
	// cached status string.
	phaseFilter := ledger.PaymentPhase(c.Query("phase"))
	views := make([]LedgerView, 0, len(appointments))
	for _, appointment := range appointments {
		view := buildLedgerView(appointment, appointment.Patient)
		if phaseFilter != "" && view.PaymentPhase != phaseFilter {
			continue
		}
		views = append(views, view)
	}

	utils.Success(c, "Appointments fetched successfully", views)
}

// GetAppointmentByID handles fetching a single appointment with its derived
// ledger state.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	utils.Success(c, "Appointment fetched successfully", buildLedgerView(*appointment, appointment.Patient))
}

// UpdateAppointmentRequest represents the request body for updating an
// appointment.
type UpdateAppointmentRequest struct {
	Service  string           `json:"service"`
	Location string           `json:"location"`
	Notes    string           `json:"notes"`
	Amount   *decimal.Decimal `json:"amount"`
}

// UpdateAppointment handles updating an appointment. The service and amount
// are locked once any installment has been recorded: re-pricing a partially
// paid ledger would silently change its payment phase, so staff must remove
// the installments first.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	priceChange := (req.Service != "" && req.Service != appointment.Service) || req.Amount != nil
	if priceChange && len(appointment.Installments) > 0 {
		utils.Conflict(c, "Cannot change service or amount once payments have been recorded. Delete the recorded installments first.")
		return
	}

	if priceChange {
		service := appointment.Service
		if req.Service != "" {
			service = req.Service
		}
		totalDue, err := resolveTotalDue(service, req.Amount)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		appointment.Service = service
		appointment.TotalDue = totalDue
	}
	if req.Location != "" {
		if !h.Cfg.IsValidLocation(req.Location) {
			utils.BadRequest(c, "Unknown clinic location: "+req.Location)
			return
		}
		appointment.Location = req.Location
	}
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}
	appointment.PaymentStatus = appointment.CombinedStatus(appointment.Patient.Attended)

	if err := h.DB.Omit("Patient", "Installments").Save(appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment updated successfully", buildLedgerView(*appointment, appointment.Patient))
}

// RescheduleAppointmentRequest represents the request body for rescheduling.
type RescheduleAppointmentRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	Notes       string    `json:"notes"`
}

// RescheduleAppointment handles moving an appointment to a new time.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	appointment, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.ScheduledAt.Before(time.Now()) {
		utils.BadRequest(c, "New appointment date must be in the future.")
		return
	}

	appointment.ScheduledAt = req.ScheduledAt
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}

	if err := h.DB.Omit("Patient", "Installments").Save(appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to reschedule appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appointment)
}

// DeleteAppointment handles deleting an appointment and its installment
// history (admin).
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Installment{}, "appointment_id = ?", appointmentID).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Appointment{}, "id = ?", appointmentID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Failed to delete appointment: "+err.Error())
		}
		return
	}

	utils.Success(c, "Appointment deleted successfully", nil)
}

// loadAppointment fetches the appointment in the :id path param with its
// patient and ordered installments, writing the error response itself.
func (h *AppointmentHandler) loadAppointment(c *gin.Context) (*models.Appointment, bool) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return nil, false
	}

	var appointment models.Appointment
	if err := h.DB.
		Preload("Patient").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &appointment, true
}

// resolveTotalDue picks the appointment price: an explicit amount wins,
// otherwise the catalog price of the service. Explicit zero is a valid
// no-charge booking.
func resolveTotalDue(service string, amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount != nil {
		if amount.IsNegative() {
			return decimal.Zero, errInvalidBookingAmount
		}
		return *amount, nil
	}
	price, ok := models.ServicePrice(service)
	if !ok {
		return decimal.Zero, errUnknownService
	}
	return price, nil
}
