package handlers

import (
	"strconv"
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

// PaymentHandler handles installment and payment requests. It is the main
// consumer of the ledger package: every mutation loads the appointment's
// ledger, applies a pure operation, and persists the result along with the
// recomputed status cache and completion timestamp.
type PaymentHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log zerolog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{DB: db, Cfg: cfg, Log: log}
}

// LedgerView is an appointment with its derived payment state, as shown on
// the payment manager screen. Remaining can be negative after an admin
// over-edit; it is reported as-is.
type LedgerView struct {
	AppointmentID      string               `json:"appointmentId"`
	PatientName        string               `json:"patientName"`
	PatientAttended    bool                 `json:"patientAttended"`
	Service            string               `json:"service"`
	Location           string               `json:"location"`
	ScheduledAt        time.Time            `json:"scheduledAt"`
	TotalDue           decimal.Decimal      `json:"totalDue"`
	PaidToDate         decimal.Decimal      `json:"paidToDate"`
	Remaining          decimal.Decimal      `json:"remaining"`
	PaymentPhase       ledger.PaymentPhase  `json:"paymentPhase"`
	CombinedStatus     string               `json:"combinedStatus"`
	PaymentCompletedAt *time.Time           `json:"paymentCompletedAt,omitempty"`
	Installments       []models.Installment `json:"installments"`
}

func buildLedgerView(appointment models.Appointment, patient models.Patient) LedgerView {
	l := appointment.Ledger()
	phase := l.Phase()
	return LedgerView{
		AppointmentID:      appointment.ID,
		PatientName:        patient.Name,
		PatientAttended:    patient.Attended,
		Service:            appointment.Service,
		Location:           appointment.Location,
		ScheduledAt:        appointment.ScheduledAt,
		TotalDue:           appointment.TotalDue,
		PaidToDate:         l.PaidToDate(),
		Remaining:          l.Remaining(),
		PaymentPhase:       phase,
		CombinedStatus:     ledger.CombineStatus(patient.AttendancePhase(), phase),
		PaymentCompletedAt: appointment.PaymentCompletedAt,
		Installments:       appointment.Installments,
	}
}

// GetLedgers handles fetching the payment view of all appointments, with
// the same search and phase filters as the appointment listing.
func (h *PaymentHandler) GetLedgers(c *gin.Context) {
	query := h.DB.
		Preload("Patient").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Order("scheduled_at desc")

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

	phaseFilter := ledger.PaymentPhase(c.Query("phase"))
	views := make([]LedgerView, 0, len(appointments))
	for _, appointment := range appointments {
		view := buildLedgerView(appointment, appointment.Patient)
		if phaseFilter != "" && view.PaymentPhase != phaseFilter {
			continue
		}
		views = append(views, view)
	}

	utils.Success(c, "Payment ledgers fetched successfully", views)
}

// InstallmentRequest represents the request body for recording or
// correcting an installment. Non-numeric amounts fail JSON binding, so the
// ledger engine only ever sees parsed decimals.
type InstallmentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// AddInstallment handles recording a partial (or final) payment against an
// appointment.
func (h *PaymentHandler) AddInstallment(c *gin.Context) {
	appointment, patient, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	var req InstallmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	now := time.Now()
	updated, transition, err := appointment.Ledger().AddInstallment(req.Amount, now)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		installment := models.Installment{
			AppointmentID: appointment.ID,
			Amount:        req.Amount,
			OccurredAt:    now,
		}
		if err := tx.Create(&installment).Error; err != nil {
			return err
		}
		return h.persistLedgerState(tx, appointment, patient, updated, transition, now)
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to record installment: "+err.Error())
		return
	}

	h.notifyPayment(patient, *appointment, req.Amount, transition)

	h.respondWithLedger(c, "Installment recorded successfully", appointment.ID)
}

// EditInstallment handles correcting a recorded installment amount. The
// installment keeps its original timestamp.
func (h *PaymentHandler) EditInstallment(c *gin.Context) {
	appointment, patient, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.BadRequest(c, "Invalid installment index")
		return
	}

	var req InstallmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updated, transition, err := appointment.Ledger().EditInstallment(index, req.Amount)
	if err != nil {
		if err == ledger.ErrIndexOutOfRange {
			utils.NotFound(c, err.Error())
		} else {
			utils.BadRequest(c, err.Error())
		}
		return
	}

	now := time.Now()
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		row := appointment.Installments[index]
		if err := tx.Model(&models.Installment{}).
			Where("id = ?", row.ID).
			Update("amount", req.Amount).Error; err != nil {
			return err
		}
		return h.persistLedgerState(tx, appointment, patient, updated, transition, now)
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to update installment: "+err.Error())
		return
	}

	h.respondWithLedger(c, "Installment updated successfully", appointment.ID)
}

// DeleteInstallment handles removing a recorded installment. When the last
// installment is removed the completion timestamp is cleared.
func (h *PaymentHandler) DeleteInstallment(c *gin.Context) {
	appointment, patient, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.BadRequest(c, "Invalid installment index")
		return
	}

	updated, cleared, err := appointment.Ledger().DeleteInstallment(index)
	if err != nil {
		utils.NotFound(c, err.Error())
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		row := appointment.Installments[index]
		if err := tx.Delete(&models.Installment{}, "id = ?", row.ID).Error; err != nil {
			return err
		}

		status := ledger.CombineStatus(patient.AttendancePhase(), updated.Phase())
		changes := map[string]interface{}{"payment_status": status}
		if cleared {
			changes["payment_completed_at"] = nil
		}
		return tx.Model(&models.Appointment{}).Where("id = ?", appointment.ID).Updates(changes).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete installment: "+err.Error())
		return
	}

	h.respondWithLedger(c, "Installment deleted successfully", appointment.ID)
}

// ProcessFullPayment handles settling the outstanding balance in one
// installment.
func (h *PaymentHandler) ProcessFullPayment(c *gin.Context) {
	appointment, patient, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	now := time.Now()
	if err := h.settle(appointment, patient, now); err != nil {
		if err == ledger.ErrNothingOwed {
			utils.BadRequest(c, err.Error())
		} else {
			utils.InternalServerError(c, "Failed to process payment: "+err.Error())
		}
		return
	}

	h.respondWithLedger(c, "Full payment processed successfully", appointment.ID)
}

// BulkCompleteRequest represents the request body for settling several
// appointments at once.
type BulkCompleteRequest struct {
	AppointmentIDs []string `json:"appointmentIds" binding:"required,min=1,dive,uuid"`
}

// BulkCompleteResult reports the outcome per appointment.
type BulkCompleteResult struct {
	Processed []string          `json:"processed"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// BulkComplete handles settling the outstanding balance on a batch of
// appointments. Appointments that fail (already settled, not found) are
// reported individually and do not abort the rest of the batch.
func (h *PaymentHandler) BulkComplete(c *gin.Context) {
	var req BulkCompleteRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	now := time.Now()
	result := BulkCompleteResult{Failed: map[string]string{}}
	for _, id := range req.AppointmentIDs {
		appointment, patient, err := h.fetchAppointment(id)
		if err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		if err := h.settle(appointment, patient, now); err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		result.Processed = append(result.Processed, id)
	}
	if len(result.Failed) == 0 {
		result.Failed = nil
	}

	utils.Success(c, "Bulk payment processing finished", result)
}

// Receipt is the printable payment receipt for an appointment.
type Receipt struct {
	ClinicName         string               `json:"clinicName"`
	PatientName        string               `json:"patientName"`
	Service            string               `json:"service"`
	Currency           string               `json:"currency"`
	TotalDue           decimal.Decimal      `json:"totalDue"`
	PaidToDate         decimal.Decimal      `json:"paidToDate"`
	Remaining          decimal.Decimal      `json:"remaining"`
	CombinedStatus     string               `json:"combinedStatus"`
	Installments       []models.Installment `json:"installments"`
	PaymentCompletedAt *time.Time           `json:"paymentCompletedAt,omitempty"`
	IssuedAt           time.Time            `json:"issuedAt"`
}

// GetReceipt handles building a receipt document for an appointment.
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	appointment, patient, ok := h.loadAppointment(c)
	if !ok {
		return
	}

	l := appointment.Ledger()
	receipt := Receipt{
		ClinicName:         h.Cfg.Clinic.Name,
		PatientName:        patient.Name,
		Service:            appointment.Service,
		Currency:           h.Cfg.Clinic.Currency,
		TotalDue:           appointment.TotalDue,
		PaidToDate:         l.PaidToDate(),
		Remaining:          l.Remaining(),
		CombinedStatus:     ledger.CombineStatus(patient.AttendancePhase(), l.Phase()),
		Installments:       appointment.Installments,
		PaymentCompletedAt: appointment.PaymentCompletedAt,
		IssuedAt:           time.Now(),
	}

	utils.Success(c, "Receipt generated successfully", receipt)
}

// settle runs ProcessFullPayment on the appointment's ledger and persists
// the new installment, status cache and completion timestamp.
func (h *PaymentHandler) settle(appointment *models.Appointment, patient models.Patient, now time.Time) error {
	current := appointment.Ledger()
	updated, transition, err := current.ProcessFullPayment(now)
	if err != nil {
		return err
	}
	remaining := current.Remaining()

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		installment := models.Installment{
			AppointmentID: appointment.ID,
			Amount:        remaining,
			OccurredAt:    now,
		}
		if err := tx.Create(&installment).Error; err != nil {
			return err
		}
		return h.persistLedgerState(tx, appointment, patient, updated, transition, now)
	})
	if err != nil {
		return err
	}

	h.notifyPayment(patient, *appointment, remaining, transition)
	return nil
}

// persistLedgerState rewrites the appointment's cached status and, on a
// completion transition, records the completion timestamp exactly once: a
// timestamp set by an earlier completion is left untouched.
func (h *PaymentHandler) persistLedgerState(tx *gorm.DB, appointment *models.Appointment, patient models.Patient, updated ledger.Ledger, transition ledger.Transition, now time.Time) error {
	status := ledger.CombineStatus(patient.AttendancePhase(), updated.Phase())
	changes := map[string]interface{}{"payment_status": status}
	if transition == ledger.TransitionPaymentCompleted && appointment.PaymentCompletedAt == nil {
		changes["payment_completed_at"] = now
	}
	return tx.Model(&models.Appointment{}).Where("id = ?", appointment.ID).Updates(changes).Error
}

func (h *PaymentHandler) notifyPayment(patient models.Patient, appointment models.Appointment, amount decimal.Decimal, transition ledger.Transition) {
	currency := h.Cfg.Clinic.Currency
	if transition == ledger.TransitionPaymentCompleted {
		recordNotification(h.DB, h.Log, models.Notification{
			Type:          models.NotificationPaymentCompleted,
			AppointmentID: appointment.ID,
			Message:       patient.Name + " - Full Payment of " + currency + " " + appointment.TotalDue.String() + " (" + appointment.Service + ")",
		})
		return
	}
	recordNotification(h.DB, h.Log, models.Notification{
		Type:          models.NotificationPaymentInstallment,
		AppointmentID: appointment.ID,
		Message:       patient.Name + " - Installment of " + currency + " " + amount.String() + " (" + appointment.Service + ")",
	})
}

// loadAppointment fetches the appointment in the :id path param along with
// its patient and ordered installments, writing the error response itself.
func (h *PaymentHandler) loadAppointment(c *gin.Context) (*models.Appointment, models.Patient, bool) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Appointment ID format")
		return nil, models.Patient{}, false
	}

	appointment, patient, fetchErr := h.fetchAppointment(appointmentID.String())
	if fetchErr != nil {
		if fetchErr == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+fetchErr.Error())
		}
		return nil, models.Patient{}, false
	}
	return appointment, patient, true
}

func (h *PaymentHandler) fetchAppointment(id string) (*models.Appointment, models.Patient, error) {
	var appointment models.Appointment
	if err := h.DB.
		Preload("Patient").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&appointment, "id = ?", id).Error; err != nil {
		return nil, models.Patient{}, err
	}
	return &appointment, appointment.Patient, nil
}

// respondWithLedger reloads the appointment and returns the fresh derived
// view, so the client never has to recompute state locally.
func (h *PaymentHandler) respondWithLedger(c *gin.Context, message, appointmentID string) {
	appointment, patient, err := h.fetchAppointment(appointmentID)
	if err != nil {
		utils.InternalServerError(c, "Failed to reload appointment: "+err.Error())
		return
	}
	utils.Success(c, message, buildLedgerView(*appointment, patient))
}
