package service

import (
	"context"
	"fmt"
	"time"

	"smart_time/internal/domain"
)

// TimeLogInput is a manually entered session
type TimeLogInput struct {
	StartTime time.Time
	EndTime   *time.Time
	Notes     string
}

// TimeLogService manages manual time entries. Manual entries feed reports
// but never change a task's accumulated timer duration.
type TimeLogService struct {
	logs  TimeLogStore
	tasks TaskStore
}

func NewTimeLogService(logs TimeLogStore, tasks TaskStore) *TimeLogService {
	return &TimeLogService{logs: logs, tasks: tasks}
}

func (s *TimeLogService) ListByTask(ctx context.Context, userID, taskID int64) ([]*domain.TimeLog, error) {
	if _, err := s.tasks.GetByID(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.logs.ListByTask(ctx, userID, taskID)
}

func (s *TimeLogService) Get(ctx context.Context, userID, id int64) (*domain.TimeLog, error) {
	return s.logs.GetByID(ctx, userID, id)
}

func (s *TimeLogService) Create(ctx context.Context, userID, taskID int64, in TimeLogInput, by string) (*domain.TimeLog, error) {
	if _, err := s.tasks.GetByID(ctx, userID, taskID); err != nil {
		return nil, err
	}

	l := &domain.TimeLog{
		TaskID:    taskID,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Notes:     in.Notes,
		CreatedBy: by,
	}
	if err := l.Normalize(); err != nil {
		return nil, err
	}
	if err := s.logs.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// closedLog loads a log the user may edit by hand
func (s *TimeLogService) closedLog(ctx context.Context, userID, id int64) (*domain.TimeLog, error) {
	l, err := s.logs.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if l.IsOpen() {
		return nil, fmt.Errorf("%w: stop the timer to change its session", domain.ErrTimerAlreadyRunning)
	}
	return l, nil
}

func (s *TimeLogService) Update(ctx context.Context, userID, id int64, in TimeLogInput) (*domain.TimeLog, error) {
	l, err := s.closedLog(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	l.StartTime = in.StartTime
	l.EndTime = in.EndTime
	l.Notes = in.Notes
	if err := l.Normalize(); err != nil {
		return nil, err
	}
	if err := s.logs.Update(ctx, userID, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *TimeLogService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.closedLog(ctx, userID, id); err != nil {
		return err
	}
	return s.logs.Delete(ctx, userID, id)
}

// Between returns the user's logs started inside [from, to)
func (s *TimeLogService) Between(ctx context.Context, userID int64, from, to time.Time) ([]*domain.TimeLog, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: to must be after from", domain.ErrInvalidInput)
	}
	return s.logs.Between(ctx, userID, from, to)
}

// TotalForTask sums the closed sessions of a task
func (s *TimeLogService) TotalForTask(ctx context.Context, userID, taskID int64) (time.Duration, error) {
	if _, err := s.tasks.GetByID(ctx, userID, taskID); err != nil {
		return 0, err
	}
	return s.logs.TotalForTask(ctx, userID, taskID)
}

// TotalBetween sums the user's closed sessions started inside [from, to)
func (s *TimeLogService) TotalBetween(ctx context.Context, userID int64, from, to time.Time) (time.Duration, error) {
	logs, err := s.Between(ctx, userID, from, to)
	if err != nil {
		return 0, err
	}
	return domain.TotalDuration(logs), nil
}
