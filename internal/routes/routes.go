package routes

import (
	"github.com/gin-gonic/gin"

	"arogya-app-server/internal/config"
	"arogya-app-server/internal/handlers"
	"arogya-app-server/internal/metrics"
	"arogya-app-server/internal/middleware"
	"arogya-app-server/internal/services"
	"arogya-app-server/internal/session"
	"arogya-app-server/internal/store"
	"arogya-app-server/internal/vitals"
)

// Dependencies are the constructed components the routes are served from.
type Dependencies struct {
	Store       *store.Store
	Router      *session.Router
	Sampler     *vitals.Sampler
	Dashboard   *handlers.Dashboard
	Finder      *services.DoctorFinder
	Medications *services.Medications
	Uploader    *services.ReportUploader
	Analyzer    *services.ReportAnalyzer
	Insights    *services.InsightGenerator
	Identifier  *services.MedicineIdentifier
	Scanner     *services.Scanner
	Assistant   *services.Assistant
	Teleconsult *services.Teleconsult
	Emergency   *services.Emergency
	Metrics     *metrics.Collector
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps *Dependencies, cfg *config.Config) {
	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(deps.Router, deps.Dashboard, cfg)
	doctorHandler := handlers.NewDoctorHandler(deps.Finder)
	appointmentHandler := handlers.NewAppointmentHandler(deps.Store, deps.Finder)
	reminderHandler := handlers.NewReminderHandler(deps.Medications)
	reportHandler := handlers.NewReportHandler(deps.Store, deps.Uploader, deps.Analyzer)
	vitalsHandler := handlers.NewVitalsHandler(deps.Store, deps.Sampler, deps.Dashboard)
	careHandler := handlers.NewCareHandler(deps.Insights, deps.Identifier, deps.Scanner)
	messageHandler := handlers.NewMessageHandler(deps.Assistant, deps.Teleconsult)
	emergencyHandler := handlers.NewEmergencyHandler(deps.Emergency, deps.Store)

	// Public routes (no session required)
	public := router.Group("/api/v1")
	{
		sessionRoutes := public.Group("/session")
		{
			sessionRoutes.GET("", sessionHandler.GetSession)
			sessionRoutes.POST("/splash", sessionHandler.CompleteSplash)
			sessionRoutes.POST("/login", sessionHandler.Login)
		}
	}

	// Dashboard routes
	private := router.Group("/api/v1")
	private.Use(middleware.SessionMiddleware(cfg, deps.Router))
	{
		private.POST("/session/logout", sessionHandler.Logout)
		private.GET("/profile", sessionHandler.GetProfile)

		reminderRoutes := private.Group("/reminders")
		{
			reminderRoutes.GET("", reminderHandler.GetReminders)
			reminderRoutes.POST("", reminderHandler.CreateReminder)
			reminderRoutes.PATCH("/:id/toggle", reminderHandler.ToggleReminder)
		}

		reportRoutes := private.Group("/reports")
		{
			reportRoutes.GET("", reportHandler.GetReports)
			reportRoutes.POST("", reportHandler.UploadReport)
			reportRoutes.GET("/:id", reportHandler.GetReportByID)
			reportRoutes.POST("/:id/analysis", reportHandler.AnalyzeReport)
		}

		private.GET("/appointments", appointmentHandler.GetAppointments)

		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", doctorHandler.GetDoctors)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctorByID)
			doctorRoutes.POST("/:id/book", appointmentHandler.BookAppointment)
		}

		vitalsRoutes := private.Group("/vitals")
		{
			vitalsRoutes.GET("", vitalsHandler.GetVitals)
			vitalsRoutes.POST("/sampler", vitalsHandler.ControlSampler)
			vitalsRoutes.GET("/stream", vitalsHandler.StreamVitals)
		}

		private.GET("/insights", careHandler.GetInsights)
		private.POST("/scan", careHandler.Scan)
		private.POST("/medicines/identify", careHandler.IdentifyMedicine)

		assistantRoutes := private.Group("/assistant")
		{
			assistantRoutes.GET("/messages", messageHandler.GetAssistantMessages)
			assistantRoutes.POST("/chat", messageHandler.ChatWithAssistant)
			assistantRoutes.DELETE("/chat", messageHandler.CancelAssistant)
		}

		teleconsultRoutes := private.Group("/teleconsult")
		{
			teleconsultRoutes.POST("", messageHandler.StartTeleconsult)
			teleconsultRoutes.GET("", messageHandler.GetTeleconsult)
			teleconsultRoutes.POST("/messages", messageHandler.SendTeleconsultMessage)
			teleconsultRoutes.DELETE("", messageHandler.EndTeleconsult)
		}

		sosRoutes := private.Group("/sos")
		{
			sosRoutes.POST("", emergencyHandler.StartSOS)
			sosRoutes.GET("", emergencyHandler.GetSOS)
			sosRoutes.DELETE("", emergencyHandler.CancelSOS)
		}

		private.POST("/demo/reset", emergencyHandler.ResetDemo)
	}

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "view": deps.Router.Current().State})
	})
}
