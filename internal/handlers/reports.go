package handlers

import (
	"encoding/csv"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// ReportHandler serves CSV exports of the clinic's records.
type ReportHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(db *gorm.DB, cfg *config.Config) *ReportHandler {
	return &ReportHandler{DB: db, Cfg: cfg}
}

// ExportAppointments handles exporting the appointment list.
func (h *ReportHandler) ExportAppointments(c *gin.Context) {
	var appointments []models.Appointment
	if err := h.DB.
		Preload("Patient").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Order("scheduled_at asc").
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	currency := h.Cfg.Clinic.Currency
	rows := [][]string{{"Patient", "Date", "Service", "Amount (" + currency + ")", "Status", "Location", "Notes"}}
	for _, a := range appointments {
		rows = append(rows, []string{
			a.Patient.Name,
			a.ScheduledAt.Format(time.RFC3339),
			a.Service,
			a.TotalDue.String(),
			a.CombinedStatus(a.Patient.Attended),
			a.Location,
			a.Notes,
		})
	}

	writeCSV(c, "appointments.csv", rows)
}

// ExportPayments handles exporting the payment ledger view.
func (h *ReportHandler) ExportPayments(c *gin.Context) {
	var appointments []models.Appointment
	if err := h.DB.
		Preload("Patient").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Order("scheduled_at asc").
		Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	currency := h.Cfg.Clinic.Currency
	rows := [][]string{{
		"Patient", "Service",
		"Total Amount (" + currency + ")", "Paid Amount (" + currency + ")", "Remaining (" + currency + ")",
		"Status", "Installments", "Payment Date",
	}}
	for _, a := range appointments {
		l := a.Ledger()
		history := ""
		for i, in := range a.Installments {
			if i > 0 {
				history += "; "
			}
			history += currency + " " + in.Amount.String() + " (" + in.OccurredAt.Format("2006-01-02") + ")"
		}
		if history == "" {
			history = "-"
		}
		completedAt := "-"
		if a.PaymentCompletedAt != nil {
			completedAt = a.PaymentCompletedAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			a.Patient.Name,
			a.Service,
			a.TotalDue.String(),
			l.PaidToDate().String(),
			l.Remaining().String(),
			a.CombinedStatus(a.Patient.Attended),
			history,
			completedAt,
		})
	}

	writeCSV(c, "payments.csv", rows)
}

// ExportPatients handles exporting the patient register.
func (h *ReportHandler) ExportPatients(c *gin.Context) {
	var patients []models.Patient
	if err := h.DB.Order("name asc").Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	rows := [][]string{{"Name", "Phone", "Email", "Notes", "Attended", "Registered"}}
	for _, p := range patients {
		attended := "No"
		if p.Attended {
			attended = "Yes"
		}
		rows = append(rows, []string{
			p.Name, p.Phone, p.Email, p.Notes, attended, p.CreatedAt.Format(time.RFC3339),
		})
	}

	writeCSV(c, "patients.csv", rows)
}

// ExportNotifications handles exporting the notification feed.
func (h *ReportHandler) ExportNotifications(c *gin.Context) {
	var notifications []models.Notification
	if err := h.DB.Order("created_at desc").Find(&notifications).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch notifications: "+err.Error())
		return
	}

	rows := [][]string{{"#", "Type", "Message", "Timestamp", "Read"}}
	for i, n := range notifications {
		read := "No"
		if n.Read {
			read = "Yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1), string(n.Type), n.Message, n.CreatedAt.Format(time.RFC3339), read,
		})
	}

	writeCSV(c, "notifications.csv", rows)
}

func writeCSV(c *gin.Context, filename string, rows [][]string) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	writer := csv.NewWriter(c.Writer)
	if err := writer.WriteAll(rows); err != nil {
		utils.InternalServerError(c, "Failed to write CSV: "+err.Error())
	}
}
