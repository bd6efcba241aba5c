package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// PatientHandler handles patient record requests.
type PatientHandler struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB, log zerolog.Logger) *PatientHandler {
	return &PatientHandler{DB: db, Log: log}
}

// CreatePatientRequest represents the request body for creating a patient.
type CreatePatientRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Notes    string `json:"notes"`
	Attended bool   `json:"attended"`
}

// CreatePatient handles creating a new patient record.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient := models.Patient{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Notes:    req.Notes,
		Attended: req.Attended,
	}

	if err := h.DB.Create(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}

	utils.Created(c, "Patient created successfully", patient)
}

// GetPatients handles fetching patients, with optional search across
// name, phone and email.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	query := h.DB.Order("name asc")
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like)
	}

	var patients []models.Patient
	if err := query.Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	utils.Success(c, "Patients fetched successfully", patients)
}

// GetPatientByID handles fetching a single patient record.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Patient ID format")
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatientRequest represents the request body for updating a patient.
type UpdatePatientRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email" binding:"omitempty,email"`
	Notes    string `json:"notes"`
	Attended *bool  `json:"attended"`
}

// UpdatePatient handles updating a patient record. Changing the attended
// flag writes an attendance notification, matching the behaviour of the
// dedicated attendance endpoint.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Patient ID format")
		return
	}

	var req UpdatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Name != "" {
		patient.Name = req.Name
	}
	if req.Phone != "" {
		patient.Phone = req.Phone
	}
	if req.Email != "" {
		patient.Email = req.Email
	}
	if req.Notes != "" {
		patient.Notes = req.Notes
	}

	attendanceChanged := req.Attended != nil && patient.Attended != *req.Attended
	if attendanceChanged {
		patient.Attended = *req.Attended
	}

	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	if attendanceChanged {
		h.notifyAttendanceChange(patient)
	}

	utils.Success(c, "Patient updated successfully", patient)
}

// UpdateAttendanceRequest represents the request body for toggling attendance.
type UpdateAttendanceRequest struct {
	Attended *bool `json:"attended" binding:"required"`
}

// UpdateAttendance handles setting the patient's attended flag.
func (h *PatientHandler) UpdateAttendance(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Patient ID format")
		return
	}

	var req UpdateAttendanceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if patient.Attended == *req.Attended {
		utils.Success(c, "Attendance unchanged", patient)
		return
	}

	patient.Attended = *req.Attended
	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update attendance: "+err.Error())
		return
	}

	h.notifyAttendanceChange(patient)

	utils.Success(c, "Attendance updated successfully", patient)
}

// DeletePatient handles deleting a patient record (admin).
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Patient ID format")
		return
	}

	result := h.DB.Delete(&models.Patient{}, "id = ?", patientID)
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to delete patient: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Patient not found")
		return
	}

	utils.Success(c, "Patient deleted successfully", nil)
}

// PatientTimeline is a patient together with their appointment history and
// derived payment state.
type PatientTimeline struct {
	Patient      models.Patient `json:"patient"`
	Appointments []LedgerView   `json:"appointments"`
}

// GetPatientTimeline handles fetching a patient's appointment and payment
// history in one response.
func (h *PatientHandler) GetPatientTimeline(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Patient ID format")
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var appointments []models.Appointment
	if err := h.DB.
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Where("patient_id = ?", patient.ID).
		Order("scheduled_at desc").
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	timeline := PatientTimeline{Patient: patient}
	for _, appointment := range appointments {
		timeline.Appointments = append(timeline.Appointments, buildLedgerView(appointment, patient))
	}

	utils.Success(c, "Patient timeline fetched successfully", timeline)
}

func (h *PatientHandler) notifyAttendanceChange(patient models.Patient) {
	notificationType := models.NotificationPatientUnattended
	message := patient.Name + " - Unattended"
	if patient.Attended {
		notificationType = models.NotificationPatientAttended
		message = patient.Name + " - Attended"
	}
	recordNotification(h.DB, h.Log, models.Notification{
		Type:    notificationType,
		Message: message,
	})
}
