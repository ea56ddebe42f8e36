package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus - lifecycle state of a task
type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
	StatusOnHold     TaskStatus = "on_hold"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusCancelled, StatusOnHold:
		return true
	}
	return false
}

// TaskPriority - importance of a task
type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Task is a unit of work with a per-task timer.
// IsTimerRunning implies TimerStartedAt != nil; ActualDuration never decreases.
type Task struct {
	ID                int64          `db:"id" json:"id"`
	UserID            int64          `db:"user_id" json:"user_id"`
	CategoryID        int64          `db:"category_id" json:"category_id"`
	CategoryName      string         `db:"category_name" json:"category_name,omitempty"`
	Title             string         `db:"title" json:"title"`
	Description       string         `db:"description" json:"description"`
	Priority          TaskPriority   `db:"priority" json:"priority"`
	Status            TaskStatus     `db:"status" json:"status"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	StartDate         *time.Time     `db:"start_date" json:"start_date,omitempty"`
	DueDate           *time.Time     `db:"due_date" json:"due_date,omitempty"`
	CompletedAt       *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
	EstimatedDuration *time.Duration `db:"estimated_duration_ms" json:"-"`
	ActualDuration    time.Duration  `db:"actual_duration_ms" json:"-"`
	IsTimerRunning    bool           `db:"is_timer_running" json:"is_timer_running"`
	TimerStartedAt    *time.Time     `db:"timer_started_at" json:"timer_started_at,omitempty"`
	UpdatedAt         *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
	CreatedBy         string         `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy         string         `db:"updated_by" json:"updated_by,omitempty"`

	// Loaded only for report aggregation
	TimeLogs []*TimeLog `db:"-" json:"-"`
}

// Validate checks the user-editable fields and fills defaults
func (t *Task) Validate() error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(t.Title) > 200 {
		return fmt.Errorf("%w: title must be at most 200 characters", ErrInvalidInput)
	}
	if len(t.Description) > 1000 {
		return fmt.Errorf("%w: description must be at most 1000 characters", ErrInvalidInput)
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, t.Priority)
	}
	if t.Status == "" {
		t.Status = StatusNotStarted
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, t.Status)
	}
	if t.EstimatedDuration != nil && *t.EstimatedDuration < 0 {
		return fmt.Errorf("%w: estimated duration must not be negative", ErrInvalidInput)
	}
	return nil
}

// StartTimer moves the task into a running timer session
func (t *Task) StartTimer(now time.Time) error {
	if t.IsTimerRunning {
		return ErrTimerAlreadyRunning
	}

	t.IsTimerRunning = true
	t.TimerStartedAt = &now
	t.Status = StatusInProgress
	t.StartDate = &now
	t.UpdatedAt = &now
	return nil
}

// StopTimer ends the running session and returns the elapsed time that was
// added to ActualDuration
func (t *Task) StopTimer(now time.Time) (time.Duration, error) {
	if !t.IsTimerRunning {
		return 0, ErrTimerNotRunning
	}

	elapsed := t.CurrentElapsed(now)
	t.ActualDuration += elapsed
	t.IsTimerRunning = false
	t.TimerStartedAt = nil
	t.UpdatedAt = &now
	return elapsed, nil
}

// CurrentElapsed returns the live duration of a running timer, zero otherwise.
// A start time in the future (clock skew) counts as zero.
func (t *Task) CurrentElapsed(now time.Time) time.Duration {
	if !t.IsTimerRunning || t.TimerStartedAt == nil {
		return 0
	}
	elapsed := now.Sub(*t.TimerStartedAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// SetCompleted marks the task Completed or back to NotStarted.
// The timer must already be stopped.
func (t *Task) SetCompleted(now time.Time, isCompleted bool) error {
	if t.IsTimerRunning {
		return ErrTimerAlreadyRunning
	}

	if isCompleted {
		t.Status = StatusCompleted
		t.CompletedAt = &now
	} else {
		t.Status = StatusNotStarted
		t.CompletedAt = nil
	}
	t.UpdatedAt = &now
	return nil
}

// SetStatus applies a manual status change. A running timer must be stopped
// first unless the new status is InProgress.
func (t *Task) SetStatus(now time.Time, status TaskStatus, updatedBy string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if t.IsTimerRunning && status != StatusInProgress {
		return ErrTimerAlreadyRunning
	}

	t.Status = status
	if status == StatusCompleted {
		t.CompletedAt = &now
	}
	t.UpdatedAt = &now
	t.UpdatedBy = updatedBy
	return nil
}

// NeedsTimerStop reports whether moving to status requires stopping the timer
func (t *Task) NeedsTimerStop(status TaskStatus) bool {
	return t.IsTimerRunning && status != StatusInProgress
}

// IsCompletedOnTime reports a completion at or before the due date
func (t *Task) IsCompletedOnTime() bool {
	return t.Status == StatusCompleted &&
		t.CompletedAt != nil &&
		t.DueDate != nil &&
		!t.CompletedAt.After(*t.DueDate)
}

// IsOverdue reports an unfinished task whose due date is before day start
func (t *Task) IsOverdue(dayStart time.Time) bool {
	return t.Status != StatusCompleted && t.DueDate != nil && t.DueDate.Before(dayStart)
}
