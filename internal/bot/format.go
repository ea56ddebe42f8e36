package bot

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/report"
)

const helpMessage = `<b>⏱ Smart Time bot</b>

/today - Tasks due today and running timers
/overdue - Overdue tasks
/reminders - Active reminders
/done &lt;id&gt; - Mark a reminder done
/track &lt;task_id&gt; - Start a task timer
/stop &lt;task_id&gt; - Stop a task timer
/report - Today's report`

const donePrefix = "done:"

func notLinkedMessage(chatID int64) string {
	return fmt.Sprintf("🔗 This chat is not linked to an account yet.\n\nLink it from the app with Telegram login. Chat id: <code>%d</code>", chatID)
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "❌ Not found"
	case errors.Is(err, domain.ErrTimerAlreadyRunning), errors.Is(err, domain.ErrTimerNotRunning):
		return "⚠️ " + escape(err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return "❌ " + escape(err.Error())
	default:
		return "❌ Something went wrong, try again later."
	}
}

func escape(s string) string {
	return html.EscapeString(s)
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// stripTags turns an HTML reply into plain text for callback answers
func stripTags(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}

func doneCallback(reminderID int64) string {
	return donePrefix + strconv.FormatInt(reminderID, 10)
}

func parseDoneCallback(data string) (int64, bool) {
	rest, ok := strings.CutPrefix(data, donePrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	return id, err == nil && id > 0
}

// formatDuration prints 1h05m style durations
func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}

var priorityIcons = map[domain.TaskPriority]string{
	domain.PriorityLow:      "⚪",
	domain.PriorityMedium:   "🔵",
	domain.PriorityHigh:     "🟠",
	domain.PriorityCritical: "🔴",
}

func formatTaskList(title string, tasks []*domain.Task, now time.Time) string {
	if len(tasks) == 0 {
		return title + "\n\nNothing here 🎉"
	}

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")
	for _, t := range tasks {
		fmt.Fprintf(&sb, "\n%s #%d <b>%s</b>", priorityIcons[t.Priority], t.ID, escape(t.Title))
		if t.DueDate != nil {
			fmt.Fprintf(&sb, " · due %s", t.DueDate.Format("02.01 15:04"))
		}
		if t.IsTimerRunning {
			fmt.Fprintf(&sb, " · ⏱ %s", formatDuration(t.ActualDuration+t.CurrentElapsed(now)))
		}
	}
	return sb.String()
}

func formatReminderList(reminders []*domain.Reminder) string {
	if len(reminders) == 0 {
		return "🔔 <b>Reminders</b>\n\nNo active reminders"
	}

	var sb strings.Builder
	sb.WriteString("🔔 <b>Reminders</b>\n")
	for _, r := range reminders {
		fmt.Fprintf(&sb, "\n#%d <b>%s</b> · %s", r.ID, escape(r.Title), r.ReminderTime.Format("02.01.2006 15:04"))
		if r.Type != domain.ReminderOneTime {
			fmt.Fprintf(&sb, " (%s)", strings.ReplaceAll(string(r.Type), "_", " "))
		}
	}
	return sb.String()
}

func formatReminder(r *domain.Reminder) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔔 <b>%s</b>", escape(r.Title))
	if r.Description != "" {
		fmt.Fprintf(&sb, "\n\n%s", escape(r.Description))
	}
	fmt.Fprintf(&sb, "\n\n🕐 %s", r.ReminderTime.Format("02.01.2006 15:04"))
	if r.TaskID != nil {
		fmt.Fprintf(&sb, "\n📌 Task #%d", *r.TaskID)
	}
	fmt.Fprintf(&sb, "\n\n/done %d", r.ID)
	return sb.String()
}

func formatReport(rep *domain.Report, stats report.Statistics) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>%s</b>\n\n", escape(rep.Title))
	fmt.Fprintf(&sb, "Tasks: %d\n", rep.TotalTasks)
	fmt.Fprintf(&sb, "✅ Completed: %d\n", rep.CompletedTasks)
	fmt.Fprintf(&sb, "🔄 In progress: %d\n", rep.InProgressTasks)
	fmt.Fprintf(&sb, "⏸ Not started: %d\n", rep.NotStartedTasks)
	fmt.Fprintf(&sb, "⏱ Time spent: %s\n", formatDuration(rep.TotalTimeSpent))
	fmt.Fprintf(&sb, "\n🏆 Productivity: <b>%.2f</b>", rep.ProductivityScore)
	for _, c := range stats.Categories {
		fmt.Fprintf(&sb, "\n• %s: %d/%d", escape(c.Category), c.CompletedCount, c.TaskCount)
	}
	return sb.String()
}
