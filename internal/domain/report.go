package domain

import (
	"encoding/json"
	"time"
)

// ReportType - how the report window was chosen
type ReportType string

const (
	ReportDaily   ReportType = "daily"
	ReportWeekly  ReportType = "weekly"
	ReportMonthly ReportType = "monthly"
	ReportCustom  ReportType = "custom"
)

// Report is a saved aggregation over the user's tasks created in [StartDate, EndDate)
type Report struct {
	ID                int64           `db:"id" json:"id"`
	UserID            int64           `db:"user_id" json:"user_id"`
	Title             string          `db:"title" json:"title"`
	Type              ReportType      `db:"type" json:"type"`
	StartDate         time.Time       `db:"start_date" json:"start_date"`
	EndDate           time.Time       `db:"end_date" json:"end_date"`
	TotalTasks        int             `db:"total_tasks" json:"total_tasks"`
	CompletedTasks    int             `db:"completed_tasks" json:"completed_tasks"`
	InProgressTasks   int             `db:"in_progress_tasks" json:"in_progress_tasks"`
	NotStartedTasks   int             `db:"not_started_tasks" json:"not_started_tasks"`
	TotalTimeSpent    time.Duration   `db:"total_time_spent_ms" json:"-"`
	ProductivityScore float64         `db:"productivity_score" json:"productivity_score"`
	ReportData        json.RawMessage `db:"report_data" json:"report_data,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}
