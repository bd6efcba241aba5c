package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dental-clinic-server/internal/models"
	"dental-clinic-server/internal/utils"
)

// NotificationHandler handles the clinic activity feed.
type NotificationHandler struct {
	DB *gorm.DB
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{DB: db}
}

// NotificationPage is one page of the feed plus unread/total counts.
type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Unread        int64                 `json:"unread"`
	Page          int                   `json:"page"`
	PerPage       int                   `json:"perPage"`
}

// GetNotifications handles fetching the feed, newest first, with optional
// message search, type filter and pagination.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	query := h.DB.Model(&models.Notification{})

	if search := c.Query("search"); search != "" {
		query = query.Where("message LIKE ?", "%"+search+"%")
	}
	if notificationType := c.Query("type"); notificationType != "" && notificationType != "All" {
		query = query.Where("type = ?", notificationType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count notifications: "+err.Error())
		return
	}

	var unread int64
	if err := query.Session(&gorm.Session{}).Where("`read` = ?", false).Count(&unread).Error; err != nil {
		utils.InternalServerError(c, "Failed to count unread notifications: "+err.Error())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "10"))
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	var notifications []models.Notification
	if err := query.
		Order("created_at desc").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&notifications).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch notifications: "+err.Error())
		return
	}

	utils.Success(c, "Notifications fetched successfully", NotificationPage{
		Notifications: notifications,
		Total:         total,
		Unread:        unread,
		Page:          page,
		PerPage:       perPage,
	})
}

// MarkAsRead handles marking a single notification as read.
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Notification ID format")
		return
	}

	result := h.DB.Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Update("read", true)
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to mark notification as read: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Notification not found")
		return
	}

	utils.Success(c, "Notification marked as read", nil)
}

// MarkAllAsRead handles marking every unread notification as read.
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.DB.Model(&models.Notification{}).
		Where("`read` = ?", false).
		Update("read", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to mark notifications as read: "+err.Error())
		return
	}

	utils.Success(c, "All notifications marked as read", nil)
}

// DeleteNotification handles removing one feed entry.
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid Notification ID format")
		return
	}

	result := h.DB.Delete(&models.Notification{}, "id = ?", notificationID)
	if result.Error != nil {
		utils.InternalServerError(c, "Failed to delete notification: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.NotFound(c, "Notification not found")
		return
	}

	utils.Success(c, "Notification deleted successfully", nil)
}

// ClearAll handles emptying the notification feed (admin).
func (h *NotificationHandler) ClearAll(c *gin.Context) {
	if err := h.DB.Where("1 = 1").Delete(&models.Notification{}).Error; err != nil {
		utils.InternalServerError(c, "Failed to clear notifications: "+err.Error())
		return
	}

	utils.Success(c, "All notifications cleared", nil)
}
