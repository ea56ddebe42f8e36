package service

// Event types pushed to connected clients
const (
	EventTaskChanged     = "task_changed"
	EventTaskDeleted     = "task_deleted"
	EventTimerStarted    = "timer_started"
	EventTimerStopped    = "timer_stopped"
	EventReminderChanged = "reminder_changed"
	EventReminderDue     = "reminder_due"
)

// Notifier fans out change events to a user's live connections
type Notifier interface {
	Publish(userID int64, event string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(int64, string, any) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
