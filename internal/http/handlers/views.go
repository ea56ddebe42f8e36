package handlers

import (
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/report"
	"smart_time/internal/service"
)

// Durations go over the wire as seconds.

type taskView struct {
	*domain.Task
	EstimatedSeconds *float64 `json:"estimated_duration_seconds,omitempty"`
	ActualSeconds    float64  `json:"actual_duration_seconds"`
	ElapsedSeconds   float64  `json:"elapsed_seconds,omitempty"`
	Overdue          bool     `json:"is_overdue"`
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

func newTaskView(t *domain.Task, now time.Time) taskView {
	v := taskView{
		Task:           t,
		ActualSeconds:  seconds(t.ActualDuration),
		ElapsedSeconds: seconds(t.CurrentElapsed(now)),
		Overdue:        t.IsOverdue(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())),
	}
	if t.EstimatedDuration != nil {
		est := seconds(*t.EstimatedDuration)
		v.EstimatedSeconds = &est
	}
	return v
}

func newTaskViews(tasks []*domain.Task) []taskView {
	now := time.Now()
	out := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskView(t, now))
	}
	return out
}

type timeLogView struct {
	*domain.TimeLog
	DurationSeconds float64 `json:"duration_seconds"`
}

func newTimeLogView(l *domain.TimeLog) *timeLogView {
	if l == nil {
		return nil
	}
	return &timeLogView{TimeLog: l, DurationSeconds: seconds(l.Duration)}
}

func newTimeLogViews(logs []*domain.TimeLog) []*timeLogView {
	out := make([]*timeLogView, 0, len(logs))
	for _, l := range logs {
		out = append(out, newTimeLogView(l))
	}
	return out
}

type timerView struct {
	*service.TimerState
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	ActualSeconds  float64 `json:"actual_duration_seconds"`
}

func newTimerView(s *service.TimerState) timerView {
	return timerView{
		TimerState:     s,
		ElapsedSeconds: seconds(s.Elapsed),
		ActualSeconds:  seconds(s.ActualDuration),
	}
}

type reportView struct {
	*domain.Report
	TotalTimeSpentSeconds float64 `json:"total_time_spent_seconds"`
}

func newReportView(r *domain.Report) reportView {
	return reportView{Report: r, TotalTimeSpentSeconds: seconds(r.TotalTimeSpent)}
}

func newReportViews(reports []*domain.Report) []reportView {
	out := make([]reportView, 0, len(reports))
	for _, r := range reports {
		out = append(out, newReportView(r))
	}
	return out
}

type generatedReport struct {
	Report     reportView        `json:"report"`
	Statistics report.Statistics `json:"statistics"`
	Saved      bool              `json:"saved"`
}
