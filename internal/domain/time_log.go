package domain

import (
	"fmt"
	"time"
)

// TimeLog is one timer session of a task. EndTime is nil while the session is
// open; a task has at most one open log.
type TimeLog struct {
	ID        int64         `db:"id" json:"id"`
	TaskID    int64         `db:"task_id" json:"task_id"`
	StartTime time.Time     `db:"start_time" json:"start_time"`
	EndTime   *time.Time    `db:"end_time" json:"end_time,omitempty"`
	Duration  time.Duration `db:"duration_ms" json:"-"`
	Notes     string        `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	CreatedBy string        `db:"created_by" json:"created_by,omitempty"`
}

// IsOpen reports a running session
func (l *TimeLog) IsOpen() bool {
	return l.EndTime == nil
}

// Close ends the session at end and computes the duration
func (l *TimeLog) Close(end time.Time, notes string) {
	l.EndTime = &end
	l.Duration = end.Sub(l.StartTime)
	if l.Duration < 0 {
		l.Duration = 0
	}
	if notes != "" {
		l.Notes = notes
	}
}

// Normalize validates a manually entered log and recomputes its duration.
// Manual logs are always closed; open logs are owned by the task timer.
func (l *TimeLog) Normalize() error {
	if l.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidInput)
	}
	if len(l.Notes) > 500 {
		return fmt.Errorf("%w: notes must be at most 500 characters", ErrInvalidInput)
	}
	if l.EndTime == nil {
		return fmt.Errorf("%w: end time is required, use the timer for running sessions", ErrInvalidInput)
	}
	if l.EndTime.Before(l.StartTime) {
		return fmt.Errorf("%w: end time is before start time", ErrInvalidInput)
	}
	l.Duration = l.EndTime.Sub(l.StartTime)
	return nil
}

// TotalDuration sums the durations of closed logs
func TotalDuration(logs []*TimeLog) time.Duration {
	var total time.Duration
	for _, l := range logs {
		if l.IsOpen() {
			continue
		}
		total += l.Duration
	}
	return total
}
