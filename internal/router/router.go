package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/handler"
	"github.com/noah-isme/clinic-scheduler-api/internal/middleware"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/clinic-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/clinic-scheduler-api/pkg/middleware/requestid"
)

// Options toggles optional surfaces.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	EnableMetrics  bool
}

// Dependencies bundles everything the HTTP surface needs.
type Dependencies struct {
	Logger       *zap.Logger
	Tokens       middleware.TokenValidator
	Observer     middleware.HTTPObserver
	RateLimiter  *middleware.RateLimiter
	Clients      *handler.ClientHandler
	Staff        *handler.StaffHandler
	Availability *handler.AvailabilityHandler
	Appointments *handler.AppointmentHandler
	Blocks       *handler.BlockHandler
	Therapy      *handler.TherapyAppointmentHandler
	Schedules    *handler.ScheduleHandler
	AuditLogs    *handler.AuditHandler
	Exports      *handler.ExportHandler
	Metrics      *handler.MetricsHandler

	// Audit records successful writes; nil disables the trail.
	Audit            middleware.AuditRecorder
	ScheduleResolver middleware.ScheduleResolver
}

// New builds the gin engine. Every API route needs a valid token and an entitled account;
// writes are limited to SUPERADMIN and ADMIN and land in the audit trail. X-Schedule-ID moves
// a request onto a draft schedule.
func New(deps Dependencies, opts Options) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	if opts.EnableMetrics && deps.Observer != nil {
		r.Use(middleware.Metrics(deps.Observer))
	}

	r.GET("/health", deps.Metrics.Health)
	r.GET("/ready", deps.Metrics.Ready)
	if opts.EnableMetrics {
		r.GET("/metrics", deps.Metrics.Prometheus)
	}
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	api.Use(middleware.JWT(deps.Tokens))
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.RateLimit())
	}
	api.Use(middleware.RequireEntitlement(), middleware.ResponseMeta())
	api.Use(middleware.ScheduleScope(deps.ScheduleResolver))
	write := middleware.RequireWrite()
	audit := func(resource string) gin.HandlerFunc {
		return middleware.Audit(deps.Audit, resource, deps.Logger)
	}

	api.GET("/status", deps.Metrics.Status)

	clients := api.Group("/clients")
	clients.GET("", deps.Clients.List)
	clients.POST("", write, audit("client"), deps.Clients.Create)
	clients.GET("/:id", deps.Clients.Get)
	clients.PUT("/:id", write, audit("client"), deps.Clients.Update)
	clients.DELETE("/:id", write, audit("client"), deps.Clients.Delete)
	clients.GET("/:id/past-staff", deps.Clients.PastStaff)
	clients.PUT("/:id/past-staff", write, audit("client"), deps.Clients.ReplacePastStaff)
	clients.GET("/:id/summary", deps.Clients.Summary)
	clients.GET("/:id/available-staff", deps.Clients.AvailableStaff)
	clients.GET("/:id/repeatable-days", deps.Clients.RepeatableDays)
	clients.GET("/:id/warnings", deps.Clients.Warnings)

	staff := api.Group("/staff")
	staff.GET("", deps.Staff.List)
	staff.POST("", write, audit("staff"), deps.Staff.Create)
	staff.GET("/:id", deps.Staff.Get)
	staff.PUT("/:id", write, audit("staff"), deps.Staff.Update)
	staff.DELETE("/:id", write, audit("staff"), deps.Staff.Delete)
	staff.GET("/:id/summary", deps.Staff.Summary)

	windows := api.Group("/availabilities")
	windows.GET("", deps.Availability.List)
	windows.POST("", write, audit("availability"), deps.Availability.Create)
	windows.GET("/:id", deps.Availability.Get)
	windows.PUT("/:id", write, audit("availability"), deps.Availability.Update)
	windows.DELETE("/:id", write, audit("availability"), deps.Availability.Delete)

	appointments := api.Group("/appointments")
	appointments.GET("", deps.Appointments.List)
	appointments.POST("", write, audit("appointment"), deps.Appointments.Create)
	appointments.GET("/:id", deps.Appointments.Get)
	appointments.PUT("/:id", write, audit("appointment"), deps.Appointments.Update)
	appointments.DELETE("/:id", write, audit("appointment"), deps.Appointments.Delete)
	appointments.GET("/:id/substitutes", deps.Appointments.Substitutes)
	appointments.GET("/:id/warnings", deps.Appointments.Warnings)

	blocks := api.Group("/blocks")
	blocks.GET("", deps.Blocks.List)
	blocks.POST("", write, audit("block"), deps.Blocks.Create)
	blocks.GET("/:id", deps.Blocks.Get)
	blocks.PUT("/:id", write, audit("block"), deps.Blocks.Update)
	blocks.DELETE("/:id", write, audit("block"), deps.Blocks.Delete)

	therapy := api.Group("/therapy-appointments")
	therapy.GET("", deps.Therapy.List)
	therapy.POST("", write, audit("therapy_appointment"), deps.Therapy.Create)
	therapy.GET("/:id", deps.Therapy.Get)
	therapy.PUT("/:id", write, audit("therapy_appointment"), deps.Therapy.Update)
	therapy.DELETE("/:id", write, audit("therapy_appointment"), deps.Therapy.Delete)

	schedules := api.Group("/schedules")
	schedules.GET("", deps.Schedules.List)
	schedules.POST("", write, audit("schedule"), deps.Schedules.Create)
	schedules.GET("/:id", deps.Schedules.Get)
	schedules.PUT("/:id", write, audit("schedule"), deps.Schedules.Update)
	schedules.DELETE("/:id", write, audit("schedule"), deps.Schedules.Delete)

	api.GET("/audit-logs", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin), deps.AuditLogs.List)
	api.GET("/exports/schedule", deps.Exports.Schedule)

	return r
}
