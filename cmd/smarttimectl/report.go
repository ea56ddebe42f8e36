package main

import (
	"fmt"
	"math"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/report"

	"github.com/spf13/cobra"
)

// reportOutput is the printable form of a generated report
type reportOutput struct {
	ID                int64             `json:"id,omitempty" yaml:"id,omitempty"`
	Title             string            `json:"title" yaml:"title"`
	Type              domain.ReportType `json:"type" yaml:"type"`
	StartDate         string            `json:"start_date" yaml:"start_date"`
	EndDate           string            `json:"end_date" yaml:"end_date"`
	TotalTasks        int               `json:"total_tasks" yaml:"total_tasks"`
	CompletedTasks    int               `json:"completed_tasks" yaml:"completed_tasks"`
	InProgressTasks   int               `json:"in_progress_tasks" yaml:"in_progress_tasks"`
	NotStartedTasks   int               `json:"not_started_tasks" yaml:"not_started_tasks"`
	TotalHours        float64           `json:"total_hours" yaml:"total_hours"`
	ProductivityScore float64           `json:"productivity_score" yaml:"productivity_score"`
	Statistics        report.Statistics `json:"statistics" yaml:"statistics"`
}

func newReportOutput(r *domain.Report, st report.Statistics) reportOutput {
	return reportOutput{
		ID:                r.ID,
		Title:             r.Title,
		Type:              r.Type,
		StartDate:         r.StartDate.Format(time.DateOnly),
		EndDate:           r.EndDate.Format(time.DateOnly),
		TotalTasks:        r.TotalTasks,
		CompletedTasks:    r.CompletedTasks,
		InProgressTasks:   r.InProgressTasks,
		NotStartedTasks:   r.NotStartedTasks,
		TotalHours:        math.Round(r.TotalTimeSpent.Hours()*100) / 100,
		ProductivityScore: r.ProductivityScore,
		Statistics:        st,
	}
}

// windowFor resolves the report window from the command flags. Dates are
// YYYY-MM-DD in loc; empty values mean the current day, week or month.
func windowFor(typ domain.ReportType, date, from, to string, loc *time.Location, now time.Time) (report.Window, error) {
	parse := func(s string, def time.Time) (time.Time, error) {
		if s == "" {
			return def, nil
		}
		t, err := time.ParseInLocation(time.DateOnly, s, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q is not a date", domain.ErrInvalidInput, s)
		}
		return t, nil
	}

	now = now.In(loc)
	switch typ {
	case domain.ReportDaily:
		d, err := parse(date, now)
		return report.Daily(d), err
	case domain.ReportWeekly:
		d, err := parse(date, now)
		return report.Weekly(report.WeekStart(d)), err
	case domain.ReportMonthly:
		d, err := parse(date, now)
		return report.Monthly(d.Year(), d.Month(), loc), err
	case domain.ReportCustom:
		start, err := parse(from, time.Time{})
		if err != nil {
			return report.Window{}, err
		}
		end, err := parse(to, time.Time{})
		if err != nil {
			return report.Window{}, err
		}
		return report.Custom(start, end)
	default:
		return report.Window{}, fmt.Errorf("%w: unknown report type %q", domain.ErrInvalidInput, typ)
	}
}

func reportCmd() *cobra.Command {
	var (
		userID int64
		typ    string
		date   string
		from   string
		to     string
		tz     string
		save   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build a productivity report for a user",
		Example: `  smarttimectl report --user 1 --type weekly
  smarttimectl report --user 1 --type custom --from 2026-01-01 --to 2026-02-01 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("timezone %q: %w", tz, err)
			}
			rt := domain.ReportType(typ)
			w, err := windowFor(rt, date, from, to, loc, time.Now())
			if err != nil {
				return err
			}

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if _, err := e.svc.Users.Get(ctx, userID); err != nil {
				return fmt.Errorf("user %d: %w", userID, err)
			}

			rep, stats, err := e.svc.Reports.Generate(ctx, userID, rt, w, save)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, newReportOutput(rep, stats))
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "user id")
	cmd.Flags().StringVarP(&typ, "type", "t", string(domain.ReportWeekly), "daily, weekly, monthly or custom")
	cmd.Flags().StringVarP(&date, "date", "d", "", "day inside the daily, weekly or monthly window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&from, "from", "", "custom window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "custom window end, exclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&tz, "tz", "UTC", "timezone of the dates")
	cmd.Flags().BoolVar(&save, "save", false, "store the report")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: json or yaml")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
