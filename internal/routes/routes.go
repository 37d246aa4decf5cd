package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"practice-scheduler-server/internal/calendar"
	"practice-scheduler-server/internal/config"
	"practice-scheduler-server/internal/handlers"
	"practice-scheduler-server/internal/middleware"
	"practice-scheduler-server/internal/models"
	"practice-scheduler-server/internal/services"
)

// SetupRoutes configures the application routes. clock supplies "today" to
// the calendar and report screens.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, clock calendar.Clock) error {
	slots, err := cfg.Calendar.Slots()
	if err != nil {
		return err
	}

	query := services.NewAppointmentQuery(db, cfg.Calendar.Location)

	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	locationHandler := handlers.NewLocationHandler(db)
	typeHandler := handlers.NewAppointmentTypeHandler(db)
	scheduleHandler := handlers.NewScheduleHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, query)
	calendarHandler := handlers.NewCalendarHandler(query, clock, slots)
	reportHandler := handlers.NewReportHandler(services.NewReportService(query), clock)

	staffOnly := middleware.RoleAuthMiddleware(models.StaffRoles...)
	adminOnly := middleware.RoleAuthMiddleware(models.RoleAdmin)

	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/providers", userHandler.GetProviders)
			userRoutes.GET("/patients", staffOnly, userHandler.GetPatients)

			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(adminOnly)
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		locationRoutes := private.Group("/locations")
		{
			locationRoutes.GET("", locationHandler.GetLocations)
			locationRoutes.GET("/:id", locationHandler.GetLocationByID)
			locationRoutes.POST("", adminOnly, locationHandler.CreateLocation)
			locationRoutes.PUT("/:id", adminOnly, locationHandler.UpdateLocation)
			locationRoutes.DELETE("/:id", adminOnly, locationHandler.DeleteLocation)
		}

		typeRoutes := private.Group("/appointment-types")
		{
			typeRoutes.GET("", typeHandler.GetAppointmentTypes)
			typeRoutes.GET("/:id", typeHandler.GetAppointmentTypeByID)
			typeRoutes.POST("", adminOnly, typeHandler.CreateAppointmentType)
			typeRoutes.PUT("/:id", adminOnly, typeHandler.UpdateAppointmentType)
			typeRoutes.DELETE("/:id", adminOnly, typeHandler.DeleteAppointmentType)
		}

		scheduleRoutes := private.Group("/schedules")
		scheduleRoutes.Use(staffOnly)
		{
			scheduleRoutes.GET("", scheduleHandler.GetSchedules)
			scheduleRoutes.POST("", adminOnly, scheduleHandler.CreateSchedule)
			scheduleRoutes.DELETE("/:id", adminOnly, scheduleHandler.DeleteSchedule)
		}

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)
		}

		private.GET("/calendar", calendarHandler.GetCalendar)
		private.GET("/reports/appointments", staffOnly, reportHandler.GetAppointmentReport)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	return nil
}
