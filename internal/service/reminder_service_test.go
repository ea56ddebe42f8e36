package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"smart_time/internal/domain"
)

type fakeSender struct {
	sent []int64
	fail bool
}

func (s *fakeSender) SendReminder(_ context.Context, _ *domain.User, r *domain.Reminder) error {
	if s.fail {
		return errors.New("telegram down")
	}
	s.sent = append(s.sent, r.ID)
	return nil
}

type reminderFixture struct {
	svc       *ReminderService
	reminders *memReminders
	users     *memUsers
	tasks     *memTasks
	clock     *clock
}

func newReminderFixture() *reminderFixture {
	reminders := newMemReminders()
	users := newMemUsers()
	tasks := newMemTasks(newMemTimeLogs())
	clk := &clock{t: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)}
	svc := NewReminderService(reminders, tasks, users, nil, nil)
	svc.now = clk.now
	return &reminderFixture{svc: svc, reminders: reminders, users: users, tasks: tasks, clock: clk}
}

func TestReminderCreateValidatesTask(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()

	other := f.tasks.put(&domain.Task{UserID: 2, Title: "theirs"})
	_, err := f.svc.Create(ctx, 1, ReminderInput{TaskID: &other.ID, Title: "x", ReminderTime: f.clock.now()})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v; want ErrInvalidInput", err)
	}

	r, err := f.svc.Create(ctx, 1, ReminderInput{Title: "Stand up", ReminderTime: f.clock.now()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Type != domain.ReminderOneTime || !r.IsActive {
		t.Fatalf("defaults not applied: %+v", r)
	}
}

func TestReminderActiveAndComplete(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	now := f.clock.now()

	late, _ := f.svc.Create(ctx, 1, ReminderInput{Title: "b", ReminderTime: now.Add(2 * time.Hour)})
	early, _ := f.svc.Create(ctx, 1, ReminderInput{Title: "a", ReminderTime: now.Add(time.Hour)})

	active, _ := f.svc.Active(ctx, 1)
	if len(active) != 2 || active[0].ID != early.ID || active[1].ID != late.ID {
		t.Fatalf("active = %v", active)
	}

	if _, err := f.svc.Complete(ctx, 1, early.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	active, _ = f.svc.Active(ctx, 1)
	if len(active) != 1 || active[0].ID != late.ID {
		t.Fatalf("active after complete = %v", active)
	}

	all, _ := f.svc.All(ctx, 1)
	if len(all) != 2 {
		t.Fatalf("all = %d", len(all))
	}
}

func TestReminderDispatch(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()
	now := f.clock.now()

	chat := int64(777)
	linked := &domain.User{FirstName: "A", LastName: "B", Email: "a@b.c", TelegramChatID: &chat}
	_ = f.users.Create(ctx, linked)
	unlinked := &domain.User{FirstName: "C", LastName: "D", Email: "c@d.e"}
	_ = f.users.Create(ctx, unlinked)

	once, _ := f.svc.Create(ctx, linked.ID, ReminderInput{Title: "once", ReminderTime: now.Add(-time.Minute)})
	daily, _ := f.svc.Create(ctx, linked.ID, ReminderInput{Title: "daily", ReminderTime: now.Add(-time.Hour), Type: domain.ReminderDaily})
	future, _ := f.svc.Create(ctx, linked.ID, ReminderInput{Title: "later", ReminderTime: now.Add(time.Hour)})
	quiet, _ := f.svc.Create(ctx, unlinked.ID, ReminderInput{Title: "quiet", ReminderTime: now.Add(-time.Minute)})

	sender := &fakeSender{}
	res, err := f.svc.Dispatch(ctx, sender, 10)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if res.Due != 3 || res.Sent != 2 || res.Skipped != 1 || res.Completed != 2 {
		t.Fatalf("result = %+v", res)
	}

	got, _ := f.svc.Get(ctx, linked.ID, once.ID)
	if !got.IsCompleted {
		t.Fatal("one-time reminder should be completed")
	}
	got, _ = f.svc.Get(ctx, linked.ID, daily.ID)
	if got.IsCompleted || !got.ReminderTime.Equal(daily.ReminderTime.AddDate(0, 0, 1)) {
		t.Fatalf("daily reminder not advanced: %+v", got)
	}
	got, _ = f.svc.Get(ctx, linked.ID, future.ID)
	if got.IsCompleted || !got.ReminderTime.Equal(future.ReminderTime) {
		t.Fatal("future reminder must not change")
	}
	got, _ = f.svc.Get(ctx, unlinked.ID, quiet.ID)
	if !got.IsCompleted {
		t.Fatal("undeliverable one-time reminder still completes")
	}
}

func TestReminderDispatchFailureKeepsReminderDue(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()

	chat := int64(1)
	u := &domain.User{FirstName: "A", LastName: "B", Email: "a@b.c", TelegramChatID: &chat}
	_ = f.users.Create(ctx, u)
	r, _ := f.svc.Create(ctx, u.ID, ReminderInput{Title: "retry", ReminderTime: f.clock.now()})

	res, err := f.svc.Dispatch(ctx, &fakeSender{fail: true}, 10)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if res.Failed != 1 {
		t.Fatalf("result = %+v", res)
	}
	due, _ := f.svc.Due(ctx, u.ID)
	if len(due) != 1 || due[0].ID != r.ID {
		t.Fatalf("reminder should still be due: %v", due)
	}
}
