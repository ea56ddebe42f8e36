package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/logger"
	"smart_time/internal/repository"
)

// TaskInput carries the user editable fields of a task
type TaskInput struct {
	CategoryID        int64
	Title             string
	Description       string
	Priority          domain.TaskPriority
	DueDate           *time.Time
	EstimatedDuration *time.Duration
}

// TimerState is a snapshot of a task timer
type TimerState struct {
	TaskID         int64         `json:"task_id"`
	Running        bool          `json:"running"`
	StartedAt      *time.Time    `json:"started_at,omitempty"`
	Elapsed        time.Duration `json:"-"`
	ActualDuration time.Duration `json:"-"`
}

type TaskService struct {
	tasks      TaskStore
	categories CategoryStore
	audit      *AuditService
	events     Notifier
	now        func() time.Time
}

func NewTaskService(tasks TaskStore, categories CategoryStore, audit *AuditService, events Notifier) *TaskService {
	return &TaskService{
		tasks:      tasks,
		categories: categories,
		audit:      audit,
		events:     notifierOrNop(events),
		now:        time.Now,
	}
}

func (s *TaskService) checkCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: category_id is required", domain.ErrInvalidInput)
	}
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: category %d does not exist", domain.ErrInvalidInput, id)
		}
		return err
	}
	return nil
}

// Create stores a new task; new tasks always start NotStarted
func (s *TaskService) Create(ctx context.Context, userID int64, in TaskInput, by string) (*domain.Task, error) {
	t := &domain.Task{
		UserID:            userID,
		CategoryID:        in.CategoryID,
		Title:             in.Title,
		Description:       in.Description,
		Priority:          in.Priority,
		Status:            domain.StatusNotStarted,
		DueDate:           in.DueDate,
		EstimatedDuration: in.EstimatedDuration,
		CreatedBy:         by,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, t.CategoryID); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, userID, domain.AuditActionTaskCreate, domain.AuditCategoryTask, map[string]interface{}{"task_id": t.ID})
	s.events.Publish(userID, EventTaskChanged, t)
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id int64) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, userID, id)
}

func (s *TaskService) List(ctx context.Context, userID int64, f repository.TaskFilter) ([]*domain.Task, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, f.Status)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidInput, f.Priority)
	}
	return s.tasks.List(ctx, userID, f)
}

func (s *TaskService) startOfDay(loc *time.Location) time.Time {
	now := s.now()
	if loc != nil {
		now = now.In(loc)
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// DueToday returns unfinished tasks due during the current day in loc
func (s *TaskService) DueToday(ctx context.Context, userID int64, loc *time.Location) ([]*domain.Task, error) {
	today := s.startOfDay(loc)
	return s.tasks.DueBetween(ctx, userID, today, today.AddDate(0, 0, 1))
}

// Overdue returns unfinished tasks due before the current day in loc
func (s *TaskService) Overdue(ctx context.Context, userID int64, loc *time.Location) ([]*domain.Task, error) {
	return s.tasks.Overdue(ctx, userID, s.startOfDay(loc))
}

func (s *TaskService) Update(ctx context.Context, userID, id int64, in TaskInput, by string) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	t.CategoryID = in.CategoryID
	t.Title = in.Title
	t.Description = in.Description
	t.Priority = in.Priority
	t.DueDate = in.DueDate
	t.EstimatedDuration = in.EstimatedDuration
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, t.CategoryID); err != nil {
		return nil, err
	}

	now := s.now()
	t.UpdatedAt = &now
	t.UpdatedBy = by
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}

	s.events.Publish(userID, EventTaskChanged, t)
	return t, nil
}

// UpdateStatus changes the status. Leaving InProgress while the timer runs
// stops the timer first so elapsed time is not lost.
func (s *TaskService) UpdateStatus(ctx context.Context, userID, id int64, status domain.TaskStatus, by string) (*domain.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	t, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if t.NeedsTimerStop(status) {
		if _, err := s.stop(ctx, t, "", by); err != nil {
			return nil, err
		}
	}

	if err := t.SetStatus(s.now(), status, by); err != nil {
		return nil, err
	}
	if err := s.tasks.UpdateStatus(ctx, t); err != nil {
		return nil, err
	}

	s.events.Publish(userID, EventTaskChanged, t)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.tasks.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.audit.Log(ctx, userID, domain.AuditActionTaskDelete, domain.AuditCategoryTask, map[string]interface{}{"task_id": id})
	s.events.Publish(userID, EventTaskDeleted, map[string]int64{"id": id})
	return nil
}

// StartTimer starts the task timer and opens a time log
func (s *TaskService) StartTimer(ctx context.Context, userID, id int64, by string) (*domain.Task, *domain.TimeLog, error) {
	t, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	if err := t.StartTimer(now); err != nil {
		TimerConflicts.WithLabelValues("start").Inc()
		return nil, nil, err
	}

	log := &domain.TimeLog{TaskID: t.ID, StartTime: now, CreatedBy: by}
	if err := s.tasks.StartTimer(ctx, t, log); err != nil {
		if errors.Is(err, domain.ErrTimerAlreadyRunning) {
			TimerConflicts.WithLabelValues("start").Inc()
		}
		return nil, nil, err
	}

	TimersStarted.Inc()
	s.audit.LogTimer(ctx, userID, t.ID, domain.AuditActionTimerStart, 0)
	logger.WithContext(ctx).Info("timer started", "task_id", t.ID, "user_id", userID)
	s.events.Publish(userID, EventTimerStarted, t)
	return t, log, nil
}

// StopTimer stops the task timer, accumulates the elapsed time and closes
// the open time log
func (s *TaskService) StopTimer(ctx context.Context, userID, id int64, notes, by string) (*domain.Task, *domain.TimeLog, error) {
	t, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}

	log, err := s.stop(ctx, t, notes, by)
	if err != nil {
		return nil, nil, err
	}
	return t, log, nil
}

func (s *TaskService) stop(ctx context.Context, t *domain.Task, notes, by string) (*domain.TimeLog, error) {
	now := s.now()
	elapsed, err := t.StopTimer(now)
	if err != nil {
		TimerConflicts.WithLabelValues("stop").Inc()
		return nil, err
	}

	log, err := s.tasks.StopTimer(ctx, t, elapsed, now, notes, by)
	if err != nil {
		if errors.Is(err, domain.ErrTimerNotRunning) {
			TimerConflicts.WithLabelValues("stop").Inc()
		}
		return nil, err
	}

	TimersStopped.Inc()
	TrackedSeconds.Add(elapsed.Seconds())
	s.audit.LogTimer(ctx, t.UserID, t.ID, domain.AuditActionTimerStop, elapsed.Seconds())
	logger.WithContext(ctx).Info("timer stopped", "task_id", t.ID, "user_id", t.UserID, "elapsed", elapsed.String())
	s.events.Publish(t.UserID, EventTimerStopped, t)
	return log, nil
}

// Complete marks the task completed (or reopens it), stopping a running
// timer first
func (s *TaskService) Complete(ctx context.Context, userID, id int64, isCompleted bool, by string) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if t.IsTimerRunning {
		if _, err := s.stop(ctx, t, "", by); err != nil {
			return nil, err
		}
	}

	if err := t.SetCompleted(s.now(), isCompleted); err != nil {
		return nil, err
	}
	t.UpdatedBy = by
	if err := s.tasks.UpdateStatus(ctx, t); err != nil {
		return nil, err
	}

	if isCompleted {
		s.audit.Log(ctx, userID, domain.AuditActionTaskComplete, domain.AuditCategoryTask, map[string]interface{}{"task_id": t.ID})
	}
	s.events.Publish(userID, EventTaskChanged, t)
	return t, nil
}

// Timer reports the live timer state of a task
func (s *TaskService) Timer(ctx context.Context, userID, id int64) (*TimerState, error) {
	t, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	elapsed := t.CurrentElapsed(s.now())
	return &TimerState{
		TaskID:         t.ID,
		Running:        t.IsTimerRunning,
		StartedAt:      t.TimerStartedAt,
		Elapsed:        elapsed,
		ActualDuration: t.ActualDuration + elapsed,
	}, nil
}

// Running lists the user's tasks with a live timer
func (s *TaskService) Running(ctx context.Context, userID int64) ([]*domain.Task, error) {
	return s.tasks.RunningForUser(ctx, userID)
}
