package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReminderType - recurrence of a reminder
type ReminderType string

const (
	ReminderOneTime ReminderType = "one_time"
	ReminderDaily   ReminderType = "daily"
	ReminderWeekly  ReminderType = "weekly"
	ReminderMonthly ReminderType = "monthly"
)

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderOneTime, ReminderDaily, ReminderWeekly, ReminderMonthly:
		return true
	}
	return false
}

type Reminder struct {
	ID           int64        `db:"id" json:"id"`
	UserID       int64        `db:"user_id" json:"user_id"`
	TaskID       *int64       `db:"task_id" json:"task_id,omitempty"`
	Title        string       `db:"title" json:"title"`
	Description  string       `db:"description" json:"description"`
	ReminderTime time.Time    `db:"reminder_time" json:"reminder_time"`
	Type         ReminderType `db:"type" json:"type"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	IsCompleted  bool         `db:"is_completed" json:"is_completed"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time   `db:"updated_at" json:"updated_at,omitempty"`
}

func (r *Reminder) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" || len(r.Title) > 200 {
		return fmt.Errorf("%w: reminder title is required (max 200 characters)", ErrInvalidInput)
	}
	if len(r.Description) > 500 {
		return fmt.Errorf("%w: description must be at most 500 characters", ErrInvalidInput)
	}
	if r.ReminderTime.IsZero() {
		return fmt.Errorf("%w: reminder time is required", ErrInvalidInput)
	}
	if r.Type == "" {
		r.Type = ReminderOneTime
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: unknown reminder type %q", ErrInvalidInput, r.Type)
	}
	return nil
}

// IsDue reports an active, not yet completed reminder whose time has come
func (r *Reminder) IsDue(now time.Time) bool {
	return r.IsActive && !r.IsCompleted && !r.ReminderTime.After(now)
}

// Advance is called after a reminder fired. One-time reminders are completed;
// recurring ones move to the first occurrence after now, skipping missed ones.
func (r *Reminder) Advance(now time.Time) {
	r.UpdatedAt = &now
	if r.Type == ReminderOneTime {
		r.IsCompleted = true
		return
	}

	next := r.ReminderTime
	for k := 1; !next.After(now); k++ {
		switch r.Type {
		case ReminderDaily:
			next = r.ReminderTime.AddDate(0, 0, k)
		case ReminderWeekly:
			next = r.ReminderTime.AddDate(0, 0, 7*k)
		case ReminderMonthly:
			next = addMonths(r.ReminderTime, k)
		default:
			r.IsCompleted = true
			return
		}
	}
	r.ReminderTime = next
}

// addMonths moves t by n calendar months, clamping the day to the end of a
// shorter month (Jan 31 + 1 month is Feb 28)
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
