package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"smart_time/internal/domain"
	"smart_time/internal/http/middleware"
	"smart_time/internal/logger"
	"smart_time/internal/repository"
	"smart_time/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	BotToken   string
	Users      *service.UserService
	Categories *service.CategoryService
	Tasks      *service.TaskService
	TimeLogs   *service.TimeLogService
	Reminders  *service.ReminderService
	Reports    *service.ReportService
	Audit      *service.AuditService
}

// NewHandler wires the services over the postgres repositories. events may
// be nil.
func NewHandler(db *pgxpool.Pool, botToken string, events service.Notifier) *Handler {
	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	tasks := repository.NewTaskRepository(db)
	audit := service.NewAuditService(repository.NewAuditRepository(db))

	return &Handler{
		BotToken:   botToken,
		Users:      service.NewUserService(users, audit),
		Categories: service.NewCategoryService(categories),
		Tasks:      service.NewTaskService(tasks, categories, audit, events),
		TimeLogs:   service.NewTimeLogService(repository.NewTimeLogRepository(db), tasks),
		Reminders:  service.NewReminderService(repository.NewReminderRepository(db), tasks, users, audit, events),
		Reports:    service.NewReportService(tasks, repository.NewReportRepository(db), audit),
		Audit:      audit,
	}
}

// getUserID reads user_id from the gin context, answering 401 when it is missing
func getUserID(c *gin.Context) (int64, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return userID, ok
}

// actor is stored in created_by / updated_by columns
func actor(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return false
	}
	return true
}

// respondError maps service and domain errors to HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, service.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrTimerAlreadyRunning),
		errors.Is(err, domain.ErrTimerNotRunning),
		errors.Is(err, domain.ErrOpenTimeLog),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrCategoryExists),
		errors.Is(err, repository.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidTelegramLogin):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		logger.WithContext(c.Request.Context()).Error("request failed",
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
