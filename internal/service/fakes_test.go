package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/repository"
)

// in-memory stores mirroring the conditional writes of the repositories

type memTasks struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task
	logs   *memTimeLogs
}

func newMemTasks(logs *memTimeLogs) *memTasks {
	return &memTasks{tasks: map[int64]*domain.Task{}, logs: logs}
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

func (m *memTasks) Create(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	m.tasks[t.ID] = cloneTask(t)
	return nil
}

func (m *memTasks) GetByID(_ context.Context, userID, id int64) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return cloneTask(t), nil
}

func (m *memTasks) filter(keep func(*domain.Task) bool) []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := []*domain.Task{}
	for _, t := range m.tasks {
		if keep(t) {
			res = append(res, cloneTask(t))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (m *memTasks) List(_ context.Context, userID int64, f repository.TaskFilter) ([]*domain.Task, error) {
	return m.filter(func(t *domain.Task) bool {
		return t.UserID == userID &&
			(f.Status == "" || t.Status == f.Status) &&
			(f.Priority == "" || t.Priority == f.Priority) &&
			(f.CategoryID == 0 || t.CategoryID == f.CategoryID) &&
			(f.Query == "" || strings.Contains(strings.ToLower(t.Title+" "+t.Description), strings.ToLower(f.Query)))
	}), nil
}

func (m *memTasks) DueBetween(_ context.Context, userID int64, from, to time.Time) ([]*domain.Task, error) {
	return m.filter(func(t *domain.Task) bool {
		return t.UserID == userID && t.Status != domain.StatusCompleted && t.DueDate != nil &&
			!t.DueDate.Before(from) && t.DueDate.Before(to)
	}), nil
}

func (m *memTasks) Overdue(_ context.Context, userID int64, before time.Time) ([]*domain.Task, error) {
	return m.filter(func(t *domain.Task) bool {
		return t.UserID == userID && t.IsOverdue(before)
	}), nil
}

func (m *memTasks) CreatedInWindow(ctx context.Context, userID int64, from, to time.Time) ([]*domain.Task, error) {
	tasks := m.filter(func(t *domain.Task) bool {
		return t.UserID == userID && !t.CreatedAt.Before(from) && t.CreatedAt.Before(to)
	})
	for _, t := range tasks {
		t.TimeLogs, _ = m.logs.ListByTask(ctx, userID, t.ID)
	}
	return tasks, nil
}

func (m *memTasks) Update(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return domain.ErrNotFound
	}
	cur.CategoryID, cur.Title, cur.Description, cur.Priority = t.CategoryID, t.Title, t.Description, t.Priority
	cur.DueDate, cur.EstimatedDuration, cur.UpdatedAt, cur.UpdatedBy = t.DueDate, t.EstimatedDuration, t.UpdatedAt, t.UpdatedBy
	return nil
}

func (m *memTasks) UpdateStatus(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return domain.ErrNotFound
	}
	if cur.IsTimerRunning && t.Status != domain.StatusInProgress {
		return domain.ErrTimerAlreadyRunning
	}
	cur.Status, cur.CompletedAt, cur.UpdatedAt, cur.UpdatedBy = t.Status, t.CompletedAt, t.UpdatedAt, t.UpdatedBy
	return nil
}

func (m *memTasks) Delete(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memTasks) StartTimer(ctx context.Context, t *domain.Task, log *domain.TimeLog) error {
	m.mu.Lock()
	cur, ok := m.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	if cur.IsTimerRunning {
		m.mu.Unlock()
		return domain.ErrTimerAlreadyRunning
	}
	prev := *cur
	cur.IsTimerRunning = true
	cur.TimerStartedAt = t.TimerStartedAt
	cur.Status = t.Status
	cur.StartDate = t.StartDate
	m.mu.Unlock()

	if err := m.logs.Create(ctx, log); err != nil {
		// the real store rolls back the task update with the log insert
		m.mu.Lock()
		*cur = prev
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memTasks) StopTimer(_ context.Context, t *domain.Task, elapsed time.Duration, end time.Time, notes, by string) (*domain.TimeLog, error) {
	m.mu.Lock()
	cur, ok := m.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		m.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	if !cur.IsTimerRunning {
		m.mu.Unlock()
		return nil, domain.ErrTimerNotRunning
	}
	cur.IsTimerRunning = false
	cur.TimerStartedAt = nil
	cur.ActualDuration += elapsed
	t.ActualDuration = cur.ActualDuration
	m.mu.Unlock()

	return m.logs.closeOpen(t.ID, elapsed, end, notes, by), nil
}

func (m *memTasks) RunningForUser(_ context.Context, userID int64) ([]*domain.Task, error) {
	return m.filter(func(t *domain.Task) bool { return t.UserID == userID && t.IsTimerRunning }), nil
}

// put stores a task as is, for fixtures
func (m *memTasks) put(t *domain.Task) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	m.tasks[t.ID] = cloneTask(t)
	return t
}

type memTimeLogs struct {
	mu     sync.Mutex
	nextID int64
	logs   map[int64]*domain.TimeLog
	owner  func(taskID int64) int64
}

func newMemTimeLogs() *memTimeLogs {
	return &memTimeLogs{logs: map[int64]*domain.TimeLog{}}
}

func (m *memTimeLogs) owns(userID, taskID int64) bool {
	return m.owner == nil || m.owner(taskID) == userID
}

func (m *memTimeLogs) ListByTask(_ context.Context, userID, taskID int64) ([]*domain.TimeLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := []*domain.TimeLog{}
	if !m.owns(userID, taskID) {
		return res, nil
	}
	for _, l := range m.logs {
		if l.TaskID == taskID {
			c := *l
			res = append(res, &c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (m *memTimeLogs) GetByID(_ context.Context, userID, id int64) (*domain.TimeLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logs[id]
	if !ok || !m.owns(userID, l.TaskID) {
		return nil, domain.ErrNotFound
	}
	c := *l
	return &c, nil
}

func (m *memTimeLogs) Between(_ context.Context, userID int64, from, to time.Time) ([]*domain.TimeLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := []*domain.TimeLog{}
	for _, l := range m.logs {
		if m.owns(userID, l.TaskID) && !l.StartTime.Before(from) && l.StartTime.Before(to) {
			c := *l
			res = append(res, &c)
		}
	}
	return res, nil
}

func (m *memTimeLogs) Create(_ context.Context, l *domain.TimeLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.EndTime == nil {
		for _, other := range m.logs {
			if other.TaskID == l.TaskID && other.EndTime == nil {
				return domain.ErrOpenTimeLog
			}
		}
	}
	m.nextID++
	l.ID = m.nextID
	c := *l
	m.logs[l.ID] = &c
	return nil
}

func (m *memTimeLogs) closeOpen(taskID int64, elapsed time.Duration, end time.Time, notes, by string) *domain.TimeLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.logs {
		if l.TaskID == taskID && l.EndTime == nil {
			e := end
			l.EndTime = &e
			l.Duration = elapsed
			if notes != "" {
				l.Notes = notes
			}
			c := *l
			return &c
		}
	}
	m.nextID++
	e := end
	l := &domain.TimeLog{ID: m.nextID, TaskID: taskID, StartTime: end.Add(-elapsed), EndTime: &e, Duration: elapsed, Notes: notes, CreatedBy: by}
	m.logs[l.ID] = l
	c := *l
	return &c
}

func (m *memTimeLogs) openCount(taskID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.logs {
		if l.TaskID == taskID && l.EndTime == nil {
			n++
		}
	}
	return n
}

func (m *memTimeLogs) Update(_ context.Context, userID int64, l *domain.TimeLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.logs[l.ID]
	if !ok || !m.owns(userID, cur.TaskID) {
		return domain.ErrNotFound
	}
	c := *l
	m.logs[l.ID] = &c
	return nil
}

func (m *memTimeLogs) Delete(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.logs[id]
	if !ok || !m.owns(userID, l.TaskID) {
		return domain.ErrNotFound
	}
	delete(m.logs, id)
	return nil
}

func (m *memTimeLogs) TotalForTask(ctx context.Context, userID, taskID int64) (time.Duration, error) {
	logs, _ := m.ListByTask(ctx, userID, taskID)
	return domain.TotalDuration(logs), nil
}

type memCategories struct {
	mu     sync.Mutex
	nextID int64
	cats   map[int64]*domain.Category
}

func newMemCategories(names ...string) *memCategories {
	m := &memCategories{cats: map[int64]*domain.Category{}}
	for _, n := range names {
		c := &domain.Category{Name: n}
		_ = c.Validate()
		_ = m.Create(context.Background(), c)
	}
	return m
}

func (m *memCategories) List(context.Context) ([]*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := []*domain.Category{}
	for _, c := range m.cats {
		if c.IsActive {
			cc := *c
			res = append(res, &cc)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (m *memCategories) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cats[id]
	if !ok || !c.IsActive {
		return nil, domain.ErrNotFound
	}
	cc := *c
	return &cc, nil
}

func (m *memCategories) NameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cats {
		if c.IsActive && c.ID != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memCategories) Create(_ context.Context, c *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	c.IsActive = true
	cc := *c
	m.cats[c.ID] = &cc
	return nil
}

func (m *memCategories) Update(_ context.Context, c *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cats[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cc := *c
	m.cats[c.ID] = &cc
	return nil
}

func (m *memCategories) Deactivate(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cats[id]
	if !ok || !c.IsActive {
		return domain.ErrNotFound
	}
	c.IsActive = false
	return nil
}

func (m *memCategories) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cats), nil
}

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[int64]*domain.User{}}
}

func (m *memUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.IsActive && match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	u.IsActive = true
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *memUsers) GetByTelegramChatID(_ context.Context, chatID int64) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.TelegramChatID != nil && *u.TelegramChatID == chatID })
}

func (m *memUsers) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) update(id int64, fn func(*domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return domain.ErrNotFound
	}
	fn(u)
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, u *domain.User) error {
	return m.update(u.ID, func(cur *domain.User) {
		cur.FirstName, cur.LastName, cur.Email = u.FirstName, u.LastName, u.Email
	})
}

func (m *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	return m.update(id, func(cur *domain.User) { cur.PasswordHash = hash })
}

func (m *memUsers) SetTelegramChatID(_ context.Context, id int64, chatID *int64) error {
	return m.update(id, func(cur *domain.User) { cur.TelegramChatID = chatID })
}

func (m *memUsers) Deactivate(_ context.Context, id int64) error {
	return m.update(id, func(cur *domain.User) { cur.IsActive = false })
}

type memReminders struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*domain.Reminder
}

func newMemReminders() *memReminders {
	return &memReminders{items: map[int64]*domain.Reminder{}}
}

func (m *memReminders) collect(keep func(*domain.Reminder) bool) []*domain.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := []*domain.Reminder{}
	for _, r := range m.items {
		if keep(r) {
			c := *r
			res = append(res, &c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ReminderTime.Before(res[j].ReminderTime) })
	return res
}

func (m *memReminders) Create(_ context.Context, r *domain.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	c := *r
	m.items[r.ID] = &c
	return nil
}

func (m *memReminders) GetByID(_ context.Context, userID, id int64) (*domain.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.UserID != userID {
		return nil, domain.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (m *memReminders) ListByUser(_ context.Context, userID int64) ([]*domain.Reminder, error) {
	return m.collect(func(r *domain.Reminder) bool { return r.UserID == userID }), nil
}

func (m *memReminders) Active(_ context.Context, userID int64) ([]*domain.Reminder, error) {
	return m.collect(func(r *domain.Reminder) bool { return r.UserID == userID && r.IsActive && !r.IsCompleted }), nil
}

func (m *memReminders) Due(_ context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	res := m.collect(func(r *domain.Reminder) bool { return r.IsDue(now) })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *memReminders) DueForUser(_ context.Context, userID int64, now time.Time) ([]*domain.Reminder, error) {
	return m.collect(func(r *domain.Reminder) bool { return r.UserID == userID && r.IsDue(now) }), nil
}

func (m *memReminders) Update(_ context.Context, r *domain.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[r.ID]
	if !ok || cur.UserID != r.UserID {
		return domain.ErrNotFound
	}
	c := *r
	m.items[r.ID] = &c
	return nil
}

func (m *memReminders) Delete(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok || r.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memReports struct {
	mu     sync.Mutex
	nextID int64
	items  []*domain.Report
}

func (m *memReports) Create(_ context.Context, r *domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	c := *r
	m.items = append(m.items, &c)
	return nil
}

func (m *memReports) GetByID(_ context.Context, userID, id int64) (*domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.items {
		if r.ID == id && r.UserID == userID {
			c := *r
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memReports) ListByUser(ctx context.Context, userID int64) ([]*domain.Report, error) {
	return m.Recent(ctx, userID, 1<<30)
}

func (m *memReports) Recent(_ context.Context, userID int64, limit int) ([]*domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := []*domain.Report{}
	for i := len(m.items) - 1; i >= 0 && len(res) < limit; i-- {
		if m.items[i].UserID == userID {
			c := *m.items[i]
			res = append(res, &c)
		}
	}
	return res, nil
}

func (m *memReports) Delete(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.items {
		if r.ID == id && r.UserID == userID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memAudit struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

func (m *memAudit) Create(_ context.Context, log *domain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *memAudit) GetByUserID(_ context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := []*domain.AuditLog{}
	for _, l := range m.logs {
		if l.UserID == userID && len(res) < limit {
			res = append(res, l)
		}
	}
	return res, nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []string
	for _, l := range m.logs {
		res = append(res, l.Action)
	}
	return res
}

type recordedEvent struct {
	UserID int64
	Event  string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Publish(userID int64, event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{userID, event})
}

func (n *recordingNotifier) has(event string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.Event == event {
			return true
		}
	}
	return false
}

// clock is a settable time source
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testNow() time.Time {
	return time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
}
