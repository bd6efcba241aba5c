package handlers

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
)

// recordNotification persists a feed entry. A failed write is logged and
// swallowed: the triggering operation (payment, attendance change) must not
// fail because the feed could not be updated.
func recordNotification(db *gorm.DB, log zerolog.Logger, n models.Notification) {
	if err := db.Create(&n).Error; err != nil {
		log.Warn().
			Err(err).
			Str("type", string(n.Type)).
			Str("appointment_id", n.AppointmentID).
			Msg("failed to record notification")
	}
}
