package service

import (
	"context"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/logger"
	"smart_time/internal/report"
)

const recentReports = 20

type ReportService struct {
	tasks   TaskStore
	reports ReportStore
	audit   *AuditService
	now     func() time.Time
}

func NewReportService(tasks TaskStore, reports ReportStore, audit *AuditService) *ReportService {
	return &ReportService{tasks: tasks, reports: reports, audit: audit, now: time.Now}
}

// Generate aggregates the window and, when save is set, stores the report
func (s *ReportService) Generate(ctx context.Context, userID int64, typ domain.ReportType, w report.Window, save bool) (*domain.Report, report.Statistics, error) {
	tasks, err := s.tasks.CreatedInWindow(ctx, userID, w.Start, w.End)
	if err != nil {
		return nil, report.Statistics{}, err
	}

	rep, stats, err := report.Build(userID, typ, w, tasks, s.now())
	if err != nil {
		return nil, report.Statistics{}, err
	}

	if save {
		if err := s.reports.Create(ctx, rep); err != nil {
			return nil, report.Statistics{}, err
		}
		s.audit.Log(ctx, userID, domain.AuditActionReportGenerate, domain.AuditCategoryReport, map[string]interface{}{
			"report_id": rep.ID,
			"type":      string(typ),
		})
	}

	ReportsGenerated.WithLabelValues(string(typ)).Inc()
	logger.WithContext(ctx).Debug("report generated",
		"user_id", userID, "type", typ, "tasks", rep.TotalTasks, "score", rep.ProductivityScore)
	return rep, stats, nil
}

func (s *ReportService) Daily(ctx context.Context, userID int64, date time.Time, save bool) (*domain.Report, report.Statistics, error) {
	return s.Generate(ctx, userID, domain.ReportDaily, report.Daily(date), save)
}

func (s *ReportService) Weekly(ctx context.Context, userID int64, start time.Time, save bool) (*domain.Report, report.Statistics, error) {
	return s.Generate(ctx, userID, domain.ReportWeekly, report.Weekly(start), save)
}

func (s *ReportService) Monthly(ctx context.Context, userID int64, year int, month time.Month, loc *time.Location, save bool) (*domain.Report, report.Statistics, error) {
	return s.Generate(ctx, userID, domain.ReportMonthly, report.Monthly(year, month, loc), save)
}

func (s *ReportService) Custom(ctx context.Context, userID int64, start, end time.Time, save bool) (*domain.Report, report.Statistics, error) {
	w, err := report.Custom(start, end)
	if err != nil {
		return nil, report.Statistics{}, err
	}
	return s.Generate(ctx, userID, domain.ReportCustom, w, save)
}

// ProductivityScore computes the score of a window without building a report
func (s *ReportService) ProductivityScore(ctx context.Context, userID int64, w report.Window) (float64, error) {
	tasks, err := s.tasks.CreatedInWindow(ctx, userID, w.Start, w.End)
	if err != nil {
		return 0, err
	}
	return report.ProductivityScore(report.InWindow(tasks, w)), nil
}

// Statistics computes the detail statistics of a window
func (s *ReportService) Statistics(ctx context.Context, userID int64, w report.Window) (report.Statistics, error) {
	tasks, err := s.tasks.CreatedInWindow(ctx, userID, w.Start, w.End)
	if err != nil {
		return report.Statistics{}, err
	}
	return report.ComputeStatistics(report.InWindow(tasks, w), w), nil
}

func (s *ReportService) Get(ctx context.Context, userID, id int64) (*domain.Report, error) {
	return s.reports.GetByID(ctx, userID, id)
}

func (s *ReportService) List(ctx context.Context, userID int64) ([]*domain.Report, error) {
	return s.reports.ListByUser(ctx, userID)
}

// Recent returns the latest saved reports of the user
func (s *ReportService) Recent(ctx context.Context, userID int64) ([]*domain.Report, error) {
	return s.reports.Recent(ctx, userID, recentReports)
}

func (s *ReportService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.reports.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.audit.Log(ctx, userID, domain.AuditActionReportDelete, domain.AuditCategoryReport, map[string]interface{}{"report_id": id})
	return nil
}
