package http

import (
	"smart_time/internal/config"
	"smart_time/internal/http/handlers"
	"smart_time/internal/http/middleware"
	"smart_time/internal/service"
	"smart_time/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// RegisterRoutes builds the handlers over db and mounts every route. rdb
// may be nil when Redis is not configured.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, rdb *redis.Client, hub *ws.Hub, cfg *config.Config) *handlers.Handler {
	var events service.Notifier
	if hub != nil {
		events = hub
	}
	h := handlers.NewHandler(db, cfg.BotToken, events)
	Register(r, h, handlers.NewHealthHandler(db, rdb, cfg.Version), hub, cfg)
	return h
}

// Register mounts the routes on prebuilt handlers
func Register(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler, hub *ws.Hub, cfg *config.Config) {
	// Health checks (no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, cfg)

	// Legacy /api routes for older clients
	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	api.GET("/health", health.Health)
	registerAPIRoutes(api, h, cfg)

	// Live task/timer/reminder events
	if hub != nil {
		r.GET("/ws", ws.HandleWS(hub, cfg.AllowedOrigin))
	}
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	// Auth: redis limit when available, in-process limit always
	authRL := []gin.HandlerFunc{
		middleware.SimpleRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow),
		middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow),
	}
	auth := api.Group("/auth", authRL...)
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	// everything below needs a token
	authed := api.Group("", middleware.JWT())

	me := authed.Group("/me")
	{
		me.GET("", h.Me)
		me.PUT("", h.UpdateMe)
		me.DELETE("", h.DeleteMe)
		me.POST("/password", h.ChangePassword)
		me.PUT("/telegram", h.LinkTelegram)
		me.GET("/audit", h.MyAudit)
	}

	categories := authed.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.GET("/:id", h.GetCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}

	// Timer endpoints are limited per user
	timerRL := middleware.UserRateLimit("timer", cfg.TimerRateLimit, cfg.TimerRateWindow)

	tasks := authed.Group("/tasks")
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.GET("/due-today", h.DueToday)
		tasks.GET("/overdue", h.Overdue)
		tasks.GET("/running", h.RunningTasks)
		tasks.GET("/:id", h.GetTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
		tasks.PUT("/:id/status", h.UpdateTaskStatus)

		tasks.POST("/:id/timer/start", timerRL, h.StartTimer)
		tasks.POST("/:id/timer/stop", timerRL, h.StopTimer)
		tasks.GET("/:id/timer", h.TimerState)
		tasks.POST("/:id/complete", timerRL, h.CompleteTask)

		tasks.GET("/:id/timelogs", h.ListTaskTimeLogs)
		tasks.POST("/:id/timelogs", h.CreateTimeLog)
		tasks.GET("/:id/time-spent", h.TaskTimeSpent)
	}

	timelogs := authed.Group("/timelogs")
	{
		timelogs.GET("", h.ListTimeLogs)
		timelogs.GET("/:id", h.GetTimeLog)
		timelogs.PUT("/:id", h.UpdateTimeLog)
		timelogs.DELETE("/:id", h.DeleteTimeLog)
	}

	reminders := authed.Group("/reminders")
	{
		reminders.GET("", h.ListReminders)
		reminders.GET("/all", h.ListAllReminders)
		reminders.POST("", h.CreateReminder)
		reminders.GET("/:id", h.GetReminder)
		reminders.PUT("/:id", h.UpdateReminder)
		reminders.DELETE("/:id", h.DeleteReminder)
		reminders.POST("/:id/complete", h.CompleteReminder)
	}

	reports := authed.Group("/reports")
	{
		reports.POST("/daily", h.DailyReport())
		reports.POST("/weekly", h.WeeklyReport())
		reports.POST("/monthly", h.MonthlyReport())
		reports.POST("/custom", h.CustomReport())
		reports.GET("", h.ListReports)
		reports.GET("/recent", h.RecentReports)
		reports.GET("/productivity", h.ProductivityScore)
		reports.GET("/statistics", h.Statistics)
		reports.GET("/:id", h.GetReport)
		reports.DELETE("/:id", h.DeleteReport)
	}
}
