package service

import "github.com/prometheus/client_golang/prometheus"

var (
	TimersStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "smart_time_timers_started_total",
		Help: "Task timers started",
	})
	TimersStopped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "smart_time_timers_stopped_total",
		Help: "Task timers stopped",
	})
	TrackedSeconds = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "smart_time_tracked_seconds_total",
		Help: "Seconds added to tasks by stopped timers",
	})
	TimerConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smart_time_timer_conflicts_total",
		Help: "Rejected timer operations",
	}, []string{"op"})
	ReportsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smart_time_reports_generated_total",
		Help: "Reports generated by type",
	}, []string{"type"})
	RemindersDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smart_time_reminders_dispatched_total",
		Help: "Reminder deliveries by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(TimersStarted, TimersStopped, TrackedSeconds, TimerConflicts, ReportsGenerated, RemindersDispatched)
}
