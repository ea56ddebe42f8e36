package service

import (
	"context"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/repository"
)

// The services depend on these instead of the concrete repositories so they
// can run against in-memory stores in tests.

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByTelegramChatID(ctx context.Context, chatID int64) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, u *domain.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	SetTelegramChatID(ctx context.Context, id int64, chatID *int64) error
	Deactivate(ctx context.Context, id int64) error
}

type CategoryStore interface {
	List(ctx context.Context) ([]*domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, c *domain.Category) error
	Deactivate(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, userID, id int64) (*domain.Task, error)
	List(ctx context.Context, userID int64, f repository.TaskFilter) ([]*domain.Task, error)
	DueBetween(ctx context.Context, userID int64, from, to time.Time) ([]*domain.Task, error)
	Overdue(ctx context.Context, userID int64, before time.Time) ([]*domain.Task, error)
	CreatedInWindow(ctx context.Context, userID int64, from, to time.Time) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	UpdateStatus(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, userID, id int64) error
	StartTimer(ctx context.Context, t *domain.Task, log *domain.TimeLog) error
	StopTimer(ctx context.Context, t *domain.Task, elapsed time.Duration, end time.Time, notes, by string) (*domain.TimeLog, error)
	RunningForUser(ctx context.Context, userID int64) ([]*domain.Task, error)
}

type TimeLogStore interface {
	ListByTask(ctx context.Context, userID, taskID int64) ([]*domain.TimeLog, error)
	GetByID(ctx context.Context, userID, id int64) (*domain.TimeLog, error)
	Between(ctx context.Context, userID int64, from, to time.Time) ([]*domain.TimeLog, error)
	Create(ctx context.Context, l *domain.TimeLog) error
	Update(ctx context.Context, userID int64, l *domain.TimeLog) error
	Delete(ctx context.Context, userID, id int64) error
	TotalForTask(ctx context.Context, userID, taskID int64) (time.Duration, error)
}

type ReminderStore interface {
	Create(ctx context.Context, r *domain.Reminder) error
	GetByID(ctx context.Context, userID, id int64) (*domain.Reminder, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Reminder, error)
	Active(ctx context.Context, userID int64) ([]*domain.Reminder, error)
	Due(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error)
	DueForUser(ctx context.Context, userID int64, now time.Time) ([]*domain.Reminder, error)
	Update(ctx context.Context, r *domain.Reminder) error
	Delete(ctx context.Context, userID, id int64) error
}

type ReportStore interface {
	Create(ctx context.Context, r *domain.Report) error
	GetByID(ctx context.Context, userID, id int64) (*domain.Report, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Report, error)
	Recent(ctx context.Context, userID int64, limit int) ([]*domain.Report, error)
	Delete(ctx context.Context, userID, id int64) error
}

type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error)
}

var (
	_ UserStore     = (*repository.UserRepository)(nil)
	_ CategoryStore = (*repository.CategoryRepository)(nil)
	_ TaskStore     = (*repository.TaskRepository)(nil)
	_ TimeLogStore  = (*repository.TimeLogRepository)(nil)
	_ ReminderStore = (*repository.ReminderRepository)(nil)
	_ ReportStore   = (*repository.ReportRepository)(nil)
	_ AuditStore    = (*repository.AuditRepository)(nil)
)
