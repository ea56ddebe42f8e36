package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/report"
)

func TestReportServiceDaily(t *testing.T) {
	logs := newMemTimeLogs()
	tasks := newMemTasks(logs)
	reports := &memReports{}
	audit := &memAudit{}
	svc := NewReportService(tasks, reports, NewAuditService(audit))
	ctx := context.Background()

	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day.Add(20 * time.Hour) }

	due := day.Add(18 * time.Hour)
	doneAt := day.Add(12 * time.Hour)
	a := tasks.put(&domain.Task{UserID: 1, CategoryName: "Work", Priority: domain.PriorityHigh,
		Status: domain.StatusCompleted, CreatedAt: day.Add(8 * time.Hour), CompletedAt: &doneAt, DueDate: &due})
	tasks.put(&domain.Task{UserID: 1, CategoryName: "Work", Priority: domain.PriorityLow,
		Status: domain.StatusNotStarted, CreatedAt: day.Add(9 * time.Hour)})
	tasks.put(&domain.Task{UserID: 1, Status: domain.StatusCompleted, CreatedAt: day.Add(-time.Hour)})
	tasks.put(&domain.Task{UserID: 2, Status: domain.StatusCompleted, CreatedAt: day.Add(time.Hour)})

	end := day.Add(10 * time.Hour)
	_ = logs.Create(ctx, &domain.TimeLog{TaskID: a.ID, StartTime: day.Add(9 * time.Hour), EndTime: &end, Duration: time.Hour})

	rep, stats, err := svc.Daily(ctx, 1, day.Add(5*time.Hour), true)
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if rep.ID == 0 {
		t.Fatal("saved report should have an id")
	}
	if rep.TotalTasks != 2 || rep.CompletedTasks != 1 || rep.NotStartedTasks != 1 {
		t.Fatalf("counts = %+v", rep)
	}
	if rep.TotalTimeSpent != time.Hour {
		t.Fatalf("time spent = %v", rep.TotalTimeSpent)
	}
	// 0.5*0.7 + 1*0.3
	if rep.ProductivityScore != 65 {
		t.Fatalf("score = %v; want 65", rep.ProductivityScore)
	}
	if len(stats.Categories) != 1 || stats.Categories[0].TaskCount != 2 {
		t.Fatalf("category stats = %+v", stats.Categories)
	}

	var decoded report.Statistics
	if err := json.Unmarshal(rep.ReportData, &decoded); err != nil {
		t.Fatalf("report data: %v", err)
	}

	recent, _ := svc.Recent(ctx, 1)
	if len(recent) != 1 {
		t.Fatalf("recent = %d reports", len(recent))
	}
	if _, err := svc.Get(ctx, 2, rep.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("other user's report err = %v", err)
	}
	if err := svc.Delete(ctx, 1, rep.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestReportServiceScoreWithoutTasks(t *testing.T) {
	logs := newMemTimeLogs()
	svc := NewReportService(newMemTasks(logs), &memReports{}, nil)
	score, err := svc.ProductivityScore(context.Background(), 1, report.Weekly(time.Now()))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score != 0 {
		t.Fatalf("score = %v; want 0", score)
	}
}

func TestReportServiceCustomRejectsEmptyWindow(t *testing.T) {
	svc := NewReportService(newMemTasks(newMemTimeLogs()), &memReports{}, nil)
	now := time.Now()
	if _, _, err := svc.Custom(context.Background(), 1, now, now.Add(-time.Hour), false); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v; want ErrInvalidInput", err)
	}
}
