// Package report turns a user's tasks and time logs into report figures.
// Everything here is pure; callers load the tasks of the window first.
package report

import (
	"encoding/json"
	"math"
	"time"

	"smart_time/internal/domain"
)

const (
	completionWeight = 0.7
	onTimeWeight     = 0.3

	NoData = "no data"
)

// Summary holds the headline numbers of a report
type Summary struct {
	TotalTasks        int           `json:"total_tasks"`
	CompletedTasks    int           `json:"completed_tasks"`
	InProgressTasks   int           `json:"in_progress_tasks"`
	NotStartedTasks   int           `json:"not_started_tasks"`
	TotalTimeSpent    time.Duration `json:"-"`
	ProductivityScore float64       `json:"productivity_score"`
}

type CategoryStat struct {
	Category       string  `json:"category" yaml:"category"`
	TaskCount      int     `json:"task_count" yaml:"task_count"`
	CompletedCount int     `json:"completed_count" yaml:"completed_count"`
	TotalHours     float64 `json:"total_hours" yaml:"total_hours"`
}

type PriorityStat struct {
	Priority       domain.TaskPriority `json:"priority" yaml:"priority"`
	TaskCount      int                 `json:"task_count" yaml:"task_count"`
	CompletedCount int                 `json:"completed_count" yaml:"completed_count"`
}

type DailyProgress struct {
	Date           string  `json:"date" yaml:"date"`
	TasksCreated   int     `json:"tasks_created" yaml:"tasks_created"`
	TasksCompleted int     `json:"tasks_completed" yaml:"tasks_completed"`
	HoursSpent     float64 `json:"hours_spent" yaml:"hours_spent"`
}

// Statistics is the detail blob stored with a report
type Statistics struct {
	Categories             []CategoryStat  `json:"category_statistics" yaml:"category_statistics"`
	Priorities             []PriorityStat  `json:"priority_statistics" yaml:"priority_statistics"`
	DailyProgress          []DailyProgress `json:"daily_progress" yaml:"daily_progress"`
	AverageCompletionHours float64         `json:"average_task_completion_hours" yaml:"average_task_completion_hours"`
	MostProductiveDay      string          `json:"most_productive_day" yaml:"most_productive_day"`
}

// InWindow keeps the tasks created inside w
func InWindow(tasks []*domain.Task, w Window) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if w.Contains(t.CreatedAt) {
			out = append(out, t)
		}
	}
	return out
}

// TimeSpent sums the closed time logs of the tasks
func TimeSpent(tasks []*domain.Task) time.Duration {
	var total time.Duration
	for _, t := range tasks {
		total += domain.TotalDuration(t.TimeLogs)
	}
	return total
}

// ProductivityScore weighs the completion rate against on-time completions.
// Tasks without due dates count as fully on time; no tasks score zero.
func ProductivityScore(tasks []*domain.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}

	var completed, withDue, onTime int
	for _, t := range tasks {
		if t.Status == domain.StatusCompleted {
			completed++
		}
		if t.DueDate != nil {
			withDue++
		}
		if t.IsCompletedOnTime() {
			onTime++
		}
	}

	completionRate := float64(completed) / float64(len(tasks))
	onTimeRate := 1.0
	if withDue > 0 {
		onTimeRate = float64(onTime) / float64(withDue)
	}

	score := completionRate*completionWeight + onTimeRate*onTimeWeight
	return round2(score * 100)
}

// round2 rounds to two decimals, ties to even
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// Summarize computes counts, time spent and score for tasks already
// filtered to the window
func Summarize(tasks []*domain.Task) Summary {
	s := Summary{TotalTasks: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusCompleted:
			s.CompletedTasks++
		case domain.StatusInProgress:
			s.InProgressTasks++
		case domain.StatusNotStarted:
			s.NotStartedTasks++
		}
	}
	s.TotalTimeSpent = TimeSpent(tasks)
	s.ProductivityScore = ProductivityScore(tasks)
	return s
}

// ComputeStatistics builds the per-category, per-priority and per-day detail.
// Group order follows first appearance in tasks.
func ComputeStatistics(tasks []*domain.Task, w Window) Statistics {
	st := Statistics{
		Categories:    []CategoryStat{},
		Priorities:    []PriorityStat{},
		DailyProgress: []DailyProgress{},
	}

	catIdx := map[string]int{}
	prioIdx := map[domain.TaskPriority]int{}
	var completionHours float64
	var completedWithTime int

	for _, t := range tasks {
		done := t.Status == domain.StatusCompleted

		i, ok := catIdx[t.CategoryName]
		if !ok {
			i = len(st.Categories)
			catIdx[t.CategoryName] = i
			st.Categories = append(st.Categories, CategoryStat{Category: t.CategoryName})
		}
		st.Categories[i].TaskCount++
		st.Categories[i].TotalHours += domain.TotalDuration(t.TimeLogs).Hours()
		if done {
			st.Categories[i].CompletedCount++
		}

		j, ok := prioIdx[t.Priority]
		if !ok {
			j = len(st.Priorities)
			prioIdx[t.Priority] = j
			st.Priorities = append(st.Priorities, PriorityStat{Priority: t.Priority})
		}
		st.Priorities[j].TaskCount++
		if done {
			st.Priorities[j].CompletedCount++
		}

		if done && t.CompletedAt != nil {
			completionHours += t.CompletedAt.Sub(t.CreatedAt).Hours()
			completedWithTime++
		}
	}
	if completedWithTime > 0 {
		st.AverageCompletionHours = completionHours / float64(completedWithTime)
	}

	days := w.Days()
	for d := 0; d < days; d++ {
		day := w.Start.AddDate(0, 0, d)
		p := DailyProgress{Date: day.Format("2006-01-02")}
		for _, t := range tasks {
			if !sameDay(t.CreatedAt.In(day.Location()), day) {
				continue
			}
			p.TasksCreated++
			if t.Status == domain.StatusCompleted {
				p.TasksCompleted++
			}
			p.HoursSpent += domain.TotalDuration(t.TimeLogs).Hours()
		}
		st.DailyProgress = append(st.DailyProgress, p)
	}

	st.MostProductiveDay = NoData
	best := -1
	for _, p := range st.DailyProgress {
		if p.TasksCompleted > best {
			best = p.TasksCompleted
			st.MostProductiveDay = p.Date
		}
	}
	return st
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Build assembles an unsaved report for the tasks created inside w
func Build(userID int64, typ domain.ReportType, w Window, tasks []*domain.Task, now time.Time) (*domain.Report, Statistics, error) {
	inWindow := InWindow(tasks, w)
	sum := Summarize(inWindow)
	st := ComputeStatistics(inWindow, w)

	data, err := json.Marshal(st)
	if err != nil {
		return nil, Statistics{}, err
	}

	return &domain.Report{
		UserID:            userID,
		Title:             Title(typ, w),
		Type:              typ,
		StartDate:         w.Start,
		EndDate:           w.End,
		TotalTasks:        sum.TotalTasks,
		CompletedTasks:    sum.CompletedTasks,
		InProgressTasks:   sum.InProgressTasks,
		NotStartedTasks:   sum.NotStartedTasks,
		TotalTimeSpent:    sum.TotalTimeSpent,
		ProductivityScore: sum.ProductivityScore,
		ReportData:        data,
		CreatedAt:         now,
	}, st, nil
}
