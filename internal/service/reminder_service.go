package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/logger"
)

// ReminderInput carries the user editable fields of a reminder
type ReminderInput struct {
	TaskID       *int64
	Title        string
	Description  string
	ReminderTime time.Time
	Type         domain.ReminderType
	IsActive     *bool
}

// ReminderSender delivers a fired reminder to a user
type ReminderSender interface {
	SendReminder(ctx context.Context, user *domain.User, r *domain.Reminder) error
}

// DispatchResult summarizes one dispatch run
type DispatchResult struct {
	Due       int `json:"due" yaml:"due"`
	Sent      int `json:"sent" yaml:"sent"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`
	Completed int `json:"completed" yaml:"completed"`
}

type ReminderService struct {
	reminders ReminderStore
	tasks     TaskStore
	users     UserStore
	audit     *AuditService
	events    Notifier
	now       func() time.Time
}

func NewReminderService(reminders ReminderStore, tasks TaskStore, users UserStore, audit *AuditService, events Notifier) *ReminderService {
	return &ReminderService{
		reminders: reminders,
		tasks:     tasks,
		users:     users,
		audit:     audit,
		events:    notifierOrNop(events),
		now:       time.Now,
	}
}

func (s *ReminderService) checkTask(ctx context.Context, userID int64, taskID *int64) error {
	if taskID == nil {
		return nil
	}
	_, err := s.tasks.GetByID(ctx, userID, *taskID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: linked task does not exist", domain.ErrInvalidInput)
	}
	return err
}

func (s *ReminderService) Create(ctx context.Context, userID int64, in ReminderInput) (*domain.Reminder, error) {
	r := &domain.Reminder{
		UserID:       userID,
		TaskID:       in.TaskID,
		Title:        in.Title,
		Description:  in.Description,
		ReminderTime: in.ReminderTime,
		Type:         in.Type,
		IsActive:     true,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkTask(ctx, userID, r.TaskID); err != nil {
		return nil, err
	}
	if err := s.reminders.Create(ctx, r); err != nil {
		return nil, err
	}

	s.events.Publish(userID, EventReminderChanged, r)
	return r, nil
}

func (s *ReminderService) Get(ctx context.Context, userID, id int64) (*domain.Reminder, error) {
	return s.reminders.GetByID(ctx, userID, id)
}

func (s *ReminderService) Update(ctx context.Context, userID, id int64, in ReminderInput) (*domain.Reminder, error) {
	r, err := s.reminders.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	r.TaskID = in.TaskID
	r.Title = in.Title
	r.Description = in.Description
	r.ReminderTime = in.ReminderTime
	r.Type = in.Type
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkTask(ctx, userID, r.TaskID); err != nil {
		return nil, err
	}
	if err := s.reminders.Update(ctx, r); err != nil {
		return nil, err
	}

	s.events.Publish(userID, EventReminderChanged, r)
	return r, nil
}

func (s *ReminderService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.reminders.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.events.Publish(userID, EventReminderChanged, map[string]any{"id": id, "deleted": true})
	return nil
}

// Active returns active, not completed reminders ordered by time
func (s *ReminderService) Active(ctx context.Context, userID int64) ([]*domain.Reminder, error) {
	return s.reminders.Active(ctx, userID)
}

func (s *ReminderService) All(ctx context.Context, userID int64) ([]*domain.Reminder, error) {
	return s.reminders.ListByUser(ctx, userID)
}

// Due returns the user's reminders whose time has come
func (s *ReminderService) Due(ctx context.Context, userID int64) ([]*domain.Reminder, error) {
	return s.reminders.DueForUser(ctx, userID, s.now())
}

// Complete marks a reminder done regardless of its recurrence
func (s *ReminderService) Complete(ctx context.Context, userID, id int64) (*domain.Reminder, error) {
	r, err := s.reminders.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	r.IsCompleted = true
	r.UpdatedAt = &now
	if err := s.reminders.Update(ctx, r); err != nil {
		return nil, err
	}

	s.events.Publish(userID, EventReminderChanged, r)
	return r, nil
}

// Dispatch delivers every due reminder through sender and advances it:
// one-time reminders complete, recurring ones move to their next occurrence.
// Reminders of users without a delivery channel are only pushed as events.
func (s *ReminderService) Dispatch(ctx context.Context, sender ReminderSender, limit int) (DispatchResult, error) {
	var res DispatchResult
	if limit <= 0 {
		limit = 100
	}
	now := s.now()

	due, err := s.reminders.Due(ctx, now, limit)
	if err != nil {
		return res, err
	}
	res.Due = len(due)

	log := logger.WithContext(ctx)
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		s.events.Publish(r.UserID, EventReminderDue, r)

		user, err := s.users.GetByID(ctx, r.UserID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			res.Skipped++
			RemindersDispatched.WithLabelValues("skipped").Inc()
		case err != nil:
			return res, err
		case user.TelegramChatID == nil || sender == nil:
			res.Skipped++
			RemindersDispatched.WithLabelValues("skipped").Inc()
		default:
			if err := sender.SendReminder(ctx, user, r); err != nil {
				// stays due and is retried on the next run
				res.Failed++
				RemindersDispatched.WithLabelValues("failed").Inc()
				log.Warn("reminder delivery failed", "reminder_id", r.ID, "user_id", r.UserID, "error", err)
				continue
			}
			res.Sent++
			RemindersDispatched.WithLabelValues("sent").Inc()
			s.audit.Log(ctx, r.UserID, domain.AuditActionReminderSent, domain.AuditCategoryReminder, map[string]interface{}{"reminder_id": r.ID})
		}

		r.Advance(now)
		if r.IsCompleted {
			res.Completed++
		}
		if err := s.reminders.Update(ctx, r); err != nil {
			return res, err
		}
		s.events.Publish(r.UserID, EventReminderChanged, r)
	}

	log.Info("reminders dispatched", "due", res.Due, "sent", res.Sent, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}
