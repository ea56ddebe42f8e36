package domain

import "time"

// AuditLog records security and data relevant actions of a user
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

const (
	AuditCategoryAuth     = "auth"
	AuditCategoryTask     = "task"
	AuditCategoryTimer    = "timer"
	AuditCategoryReport   = "report"
	AuditCategoryReminder = "reminder"
)

const (
	// Auth
	AuditActionRegister       = "register"
	AuditActionLogin          = "login"
	AuditActionLoginFailed    = "login_failed"
	AuditActionPasswordChange = "password_change"
	AuditActionAccountDelete  = "account_delete"

	// Tasks
	AuditActionTaskCreate   = "task_create"
	AuditActionTaskDelete   = "task_delete"
	AuditActionTaskComplete = "task_complete"

	// Timer
	AuditActionTimerStart = "timer_start"
	AuditActionTimerStop  = "timer_stop"

	// Reports
	AuditActionReportGenerate = "report_generate"
	AuditActionReportDelete   = "report_delete"

	// Reminders
	AuditActionReminderSent = "reminder_sent"
)
