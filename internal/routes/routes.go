package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/handlers"
	"dental-clinic-server/internal/middleware"
	"dental-clinic-server/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, log zerolog.Logger) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	patientHandler := handlers.NewPatientHandler(db, log)
	appointmentHandler := handlers.NewAppointmentHandler(db, cfg, log)
	paymentHandler := handlers.NewPaymentHandler(db, cfg, log)
	notificationHandler := handlers.NewNotificationHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(db)
	reportHandler := handlers.NewReportHandler(db, cfg)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Staff account management (admin only)
		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			userRoutes.POST("", userHandler.CreateUser)
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)
			userRoutes.PUT("/:id", userHandler.UpdateUser)
			userRoutes.DELETE("/:id", userHandler.DeleteUser)
		}

		// Patient records
		patientRoutes := private.Group("/patients")
		{
			patientRoutes.POST("", patientHandler.CreatePatient)
			patientRoutes.GET("", patientHandler.GetPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID)
			patientRoutes.GET("/:id/timeline", patientHandler.GetPatientTimeline)
			patientRoutes.PUT("/:id", patientHandler.UpdatePatient)
			patientRoutes.PATCH("/:id/attendance", patientHandler.UpdateAttendance)
			patientRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), patientHandler.DeletePatient)
		}

		// Appointment booking
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.GET("/options", appointmentHandler.GetBookingOptions)
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PUT("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)
			appointmentRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), appointmentHandler.DeleteAppointment)
		}

		// Payment ledgers. Installment corrections (edit/delete) are
		// admin-only: they rewrite payment history.
		paymentRoutes := private.Group("/payments")
		{
			paymentRoutes.GET("", paymentHandler.GetLedgers)
			paymentRoutes.POST("/:id/installments", paymentHandler.AddInstallment)
			paymentRoutes.PUT("/:id/installments/:index", middleware.RoleAuthMiddleware(models.RoleAdmin), paymentHandler.EditInstallment)
			paymentRoutes.DELETE("/:id/installments/:index", middleware.RoleAuthMiddleware(models.RoleAdmin), paymentHandler.DeleteInstallment)
			paymentRoutes.POST("/:id/complete", paymentHandler.ProcessFullPayment)
			paymentRoutes.POST("/bulk-complete", paymentHandler.BulkComplete)
			paymentRoutes.GET("/:id/receipt", paymentHandler.GetReceipt)
		}

		// Notification feed
		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.GetNotifications)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkAsRead)
			notificationRoutes.PATCH("/read-all", notificationHandler.MarkAllAsRead)
			notificationRoutes.DELETE("/:id", notificationHandler.DeleteNotification)
			notificationRoutes.DELETE("", middleware.RoleAuthMiddleware(models.RoleAdmin), notificationHandler.ClearAll)
		}

		// Dashboard
		private.GET("/dashboard/stats", dashboardHandler.GetStats)

		// CSV exports
		reportRoutes := private.Group("/reports")
		{
			reportRoutes.GET("/appointments", reportHandler.ExportAppointments)
			reportRoutes.GET("/payments", reportHandler.ExportPayments)
			reportRoutes.GET("/patients", reportHandler.ExportPatients)
			reportRoutes.GET("/notifications", reportHandler.ExportNotifications)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
