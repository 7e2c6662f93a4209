package httpapi

import (
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"
	"github.com/Emmanjr/health-monitoring/internal/metrics"
	"github.com/Emmanjr/health-monitoring/internal/service"
	"github.com/Emmanjr/health-monitoring/internal/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the portal API.
type Handler struct {
	auth         service.AuthService
	users        service.UserService
	vitals       service.VitalsService
	appointments service.AppointmentService
	dashboard    service.DashboardService
	hub          *subscription.Hub
	checks       []ReadinessCheck
	metrics      *metrics.Metrics
	keepAlive    time.Duration
	logger       *zap.Logger
}

// Deps groups the collaborators of NewHandler.
type Deps struct {
	Auth         service.AuthService
	Users        service.UserService
	Vitals       service.VitalsService
	Appointments service.AppointmentService
	Dashboard    service.DashboardService
	Hub          *subscription.Hub
	Checks       []ReadinessCheck
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		auth:         d.Auth,
		users:        d.Users,
		vitals:       d.Vitals,
		appointments: d.Appointments,
		dashboard:    d.Dashboard,
		hub:          d.Hub,
		checks:       d.Checks,
		metrics:      d.Metrics,
		keepAlive:    15 * time.Second,
		logger:       d.Logger,
	}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger), instrument(h.metrics))

	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	api := r.Group("/api/v1")
	api.POST("/auth/signup", h.Signup)
	api.POST("/auth/login", h.Login)

	authed := api.Group("", authenticate(h.auth, h.logger))
	authed.GET("/me", h.GetMe)
	authed.PUT("/me", h.UpdateMe)
	authed.PUT("/me/onboarding", h.CompleteOnboarding)

	authed.POST("/vitals/analyze", h.AnalyzeVitals)
	authed.POST("/vitals/readings", requireRole(domain.RolePatient), h.SubmitReading)
	authed.GET("/vitals/readings", h.ListReadings)
	authed.GET("/vitals/readings/stream", h.StreamReadings)
	authed.GET("/vitals/alerts", h.RecentAlerts)

	authed.GET("/doctors", h.ListDoctors)
	authed.POST("/appointments", requireRole(domain.RolePatient), h.BookAppointment)
	authed.GET("/appointments", h.ListAppointments)
	authed.GET("/appointments/stream", h.StreamAppointments)
	authed.GET("/appointments/summary", h.AppointmentSummary)
	authed.PUT("/appointments/:id/status", requireRole(domain.RoleDoctor, domain.RoleAdmin), h.UpdateAppointmentStatus)

	staff := authed.Group("/patients", requireRole(domain.RoleDoctor, domain.RoleAdmin))
	staff.GET("", h.ListPatients)
	staff.GET("/:id", h.PatientDetail)

	admin := authed.Group("/admin", requireRole(domain.RoleAdmin))
	admin.GET("/users", h.ListUsers)
	admin.GET("/users/stats", h.UserStats)
	admin.GET("/users/stream", h.StreamUsers)
	admin.DELETE("/users/:id", h.DeleteUser)
	admin.GET("/patients", h.ListPatients)
	admin.GET("/patients/:id", h.PatientDetail)
	admin.GET("/patients/:id/export", h.ExportPatient)
	admin.GET("/appointments", h.ListAppointments)
	admin.DELETE("/appointments/:id", h.DeleteAppointment)

	return r
}
