package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/http/middleware"
	"smart_time/internal/repository"
	"smart_time/internal/service"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	service.InitJWT("handlers-test-secret", time.Hour)
}

// Stores embed the interface so unused methods stay unimplemented.

type stubUsers struct {
	service.UserStore
	mu    sync.Mutex
	users []*domain.User
}

func (s *stubUsers) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = int64(len(s.users) + 1)
	u.IsActive = true
	c := *u
	s.users = append(s.users, &c)
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	return err == nil, nil
}

type stubCategories struct {
	service.CategoryStore
}

func (stubCategories) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	if id != 1 {
		return nil, domain.ErrNotFound
	}
	return &domain.Category{ID: 1, Name: "Work", Color: domain.DefaultCategoryColor, IsActive: true}, nil
}

type stubTasks struct {
	service.TaskStore
	mu    sync.Mutex
	tasks map[int64]*domain.Task
}

func (s *stubTasks) Create(_ context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = int64(len(s.tasks) + 1)
	t.CreatedAt = time.Now()
	c := *t
	s.tasks[t.ID] = &c
	return nil
}

func (s *stubTasks) GetByID(_ context.Context, userID, id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (s *stubTasks) UpdateStatus(_ context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.tasks[t.ID]
	if cur.IsTimerRunning && t.Status != domain.StatusInProgress {
		return domain.ErrTimerAlreadyRunning
	}
	cur.Status, cur.CompletedAt = t.Status, t.CompletedAt
	return nil
}

func (s *stubTasks) StartTimer(_ context.Context, t *domain.Task, _ *domain.TimeLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.tasks[t.ID]
	if cur.IsTimerRunning {
		return domain.ErrTimerAlreadyRunning
	}
	cur.IsTimerRunning, cur.TimerStartedAt, cur.Status = true, t.TimerStartedAt, t.Status
	return nil
}

func (s *stubTasks) StopTimer(_ context.Context, t *domain.Task, elapsed time.Duration, end time.Time, notes, by string) (*domain.TimeLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.tasks[t.ID]
	if !cur.IsTimerRunning {
		return nil, domain.ErrTimerNotRunning
	}
	cur.IsTimerRunning, cur.TimerStartedAt = false, nil
	cur.ActualDuration += elapsed
	return &domain.TimeLog{TaskID: t.ID, StartTime: end.Add(-elapsed), EndTime: &end, Duration: elapsed, Notes: notes, CreatedBy: by}, nil
}

func testRouter() *gin.Engine {
	users := &stubUsers{}
	tasks := &stubTasks{tasks: map[int64]*domain.Task{}}
	h := &Handler{
		Users: service.NewUserService(users, nil),
		Tasks: service.NewTaskService(tasks, stubCategories{}, nil, nil),
	}

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	authed := r.Group("", middleware.JWT())
	authed.GET("/me", h.Me)
	authed.POST("/tasks", h.CreateTask)
	authed.GET("/tasks/:id", h.GetTask)
	authed.PUT("/tasks/:id/status", h.UpdateTaskStatus)
	authed.POST("/tasks/:id/timer/start", h.StartTimer)
	authed.POST("/tasks/:id/timer/stop", h.StopTimer)
	authed.GET("/tasks/:id/timer", h.TimerState)
	authed.POST("/tasks/:id/complete", h.CompleteTask)
	return r
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func tokenFor(t *testing.T, userID int64) string {
	t.Helper()
	token, err := service.GenerateJWT(userID)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

func TestRegisterLoginAndMe(t *testing.T) {
	r := testRouter()

	w := do(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"first_name": "Ada", "last_name": "Lovelace", "email": "Ada@Example.com", "password": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	if _, ok := decode(t, w)["token"].(string); !ok {
		t.Fatal("register must return a token")
	}

	w = do(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"first_name": "Ada", "last_name": "L", "email": "ada@example.com", "password": "secret1",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate email: expected 409 got %d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/auth/login", "", gin.H{"email": "ada@example.com", "password": "wrong-pass"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401 got %d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/auth/login", "", gin.H{"email": "ada@example.com", "password": "secret1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	token := decode(t, w)["token"].(string)

	w = do(t, r, http.MethodGet, "/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	me := decode(t, w)
	if me["email"] != "ada@example.com" {
		t.Fatalf("email = %v", me["email"])
	}
	if _, leaked := me["password_hash"]; leaked {
		t.Fatal("password hash must not be serialized")
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	w := do(t, testRouter(), http.MethodPost, "/auth/register", "", gin.H{
		"first_name": "A", "last_name": "B", "email": "a@b.io", "password": "123",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func createTask(t *testing.T, r http.Handler, token string) int64 {
	t.Helper()
	w := do(t, r, http.MethodPost, "/tasks", token, gin.H{
		"category_id": 1, "title": "Write report", "priority": "high", "estimated_duration_seconds": 3600,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create task: %d %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["status"] != string(domain.StatusNotStarted) {
		t.Fatalf("new task status = %v", body["status"])
	}
	if body["estimated_duration_seconds"] != float64(3600) {
		t.Fatalf("estimate = %v", body["estimated_duration_seconds"])
	}
	return int64(body["id"].(float64))
}

func TestTimerFlow(t *testing.T) {
	r := testRouter()
	token := tokenFor(t, 1)
	id := createTask(t, r, token)
	base := fmt.Sprintf("/tasks/%d", id)

	w := do(t, r, http.MethodPost, base+"/timer/start", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start: %d %s", w.Code, w.Body.String())
	}
	task := decode(t, w)["task"].(map[string]any)
	if task["status"] != string(domain.StatusInProgress) || task["is_timer_running"] != true {
		t.Fatalf("unexpected task after start: %v", task)
	}

	w = do(t, r, http.MethodPost, base+"/timer/start", token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("second start: expected 409 got %d", w.Code)
	}

	w = do(t, r, http.MethodGet, base+"/timer", token, nil)
	if w.Code != http.StatusOK || decode(t, w)["running"] != true {
		t.Fatalf("timer state: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, base+"/timer/stop", token, gin.H{"notes": "first pass"})
	if w.Code != http.StatusOK {
		t.Fatalf("stop: %d %s", w.Code, w.Body.String())
	}
	log := decode(t, w)["time_log"].(map[string]any)
	if log["notes"] != "first pass" {
		t.Fatalf("notes = %v", log["notes"])
	}
	if secs, _ := log["duration_seconds"].(float64); secs < 0 {
		t.Fatalf("negative duration %v", secs)
	}

	w = do(t, r, http.MethodPost, base+"/timer/stop", token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("second stop: expected 409 got %d", w.Code)
	}
}

func TestCompleteStopsRunningTimer(t *testing.T) {
	r := testRouter()
	token := tokenFor(t, 1)
	id := createTask(t, r, token)
	base := fmt.Sprintf("/tasks/%d", id)

	if w := do(t, r, http.MethodPost, base+"/timer/start", token, nil); w.Code != http.StatusOK {
		t.Fatalf("start: %d", w.Code)
	}

	w := do(t, r, http.MethodPost, base+"/complete", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete: %d %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["status"] != string(domain.StatusCompleted) || body["is_timer_running"] != false {
		t.Fatalf("unexpected task: %v", body)
	}
	if body["completed_at"] == nil {
		t.Fatal("completed_at must be set")
	}
}

func TestTaskOfAnotherUserIsNotFound(t *testing.T) {
	r := testRouter()
	id := createTask(t, r, tokenFor(t, 1))
	other := tokenFor(t, 2)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, fmt.Sprintf("/tasks/%d", id)},
		{http.MethodPost, fmt.Sprintf("/tasks/%d/timer/start", id)},
		{http.MethodGet, fmt.Sprintf("/tasks/%d/timer", id)},
	} {
		if w := do(t, r, tc.method, tc.path, other, nil); w.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404 got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestTaskBadRequests(t *testing.T) {
	r := testRouter()
	token := tokenFor(t, 1)
	id := createTask(t, r, token)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"empty title", http.MethodPost, "/tasks", gin.H{"category_id": 1, "title": "  "}, http.StatusBadRequest},
		{"unknown category", http.MethodPost, "/tasks", gin.H{"category_id": 42, "title": "x"}, http.StatusBadRequest},
		{"bad priority", http.MethodPost, "/tasks", gin.H{"category_id": 1, "title": "x", "priority": "urgent"}, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/tasks", "{", http.StatusBadRequest},
		{"bad id", http.MethodGet, "/tasks/abc", nil, http.StatusBadRequest},
		{"bad status", http.MethodPut, fmt.Sprintf("/tasks/%d/status", id), gin.H{"status": "done"}, http.StatusBadRequest},
		{"no token", http.MethodGet, fmt.Sprintf("/tasks/%d", id), nil, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok := token
			if tc.want == http.StatusUnauthorized {
				tok = ""
			}
			if w := do(t, r, tc.method, tc.path, tok, tc.body); w.Code != tc.want {
				t.Fatalf("expected %d got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestStatusChangeStopsTimer(t *testing.T) {
	r := testRouter()
	token := tokenFor(t, 1)
	id := createTask(t, r, token)
	base := fmt.Sprintf("/tasks/%d", id)

	do(t, r, http.MethodPost, base+"/timer/start", token, nil)
	w := do(t, r, http.MethodPut, base+"/status", token, gin.H{"status": "on_hold"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["status"] != "on_hold" || body["is_timer_running"] != false {
		t.Fatalf("unexpected task: %v", body)
	}
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: title", domain.ErrInvalidInput), http.StatusBadRequest},
		{service.ErrWeakPassword, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrTimerAlreadyRunning, http.StatusConflict},
		{domain.ErrTimerNotRunning, http.StatusConflict},
		{domain.ErrOpenTimeLog, http.StatusConflict},
		{service.ErrCategoryExists, http.StatusConflict},
		{fmt.Errorf("insert: %w", repository.ErrDuplicate), http.StatusConflict},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		respondError(c, tc.err)
		if w.Code != tc.want {
			t.Errorf("%v: expected %d got %d", tc.err, tc.want, w.Code)
		}
	}
}

func TestReportWindow(t *testing.T) {
	now := time.Date(2026, 3, 12, 15, 30, 0, 0, time.UTC) // Thursday

	w, err := reportWindow(domain.ReportDaily, reportRequest{}, time.UTC, now)
	if err != nil || !w.Start.Equal(time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)) || w.Days() != 1 {
		t.Fatalf("daily default: %+v %v", w, err)
	}

	w, err = reportWindow(domain.ReportWeekly, reportRequest{}, time.UTC, now)
	if err != nil || !w.Start.Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)) || w.Days() != 7 {
		t.Fatalf("weekly default should start on Monday: %+v %v", w, err)
	}

	w, err = reportWindow(domain.ReportMonthly, reportRequest{Year: 2026, Month: 2}, time.UTC, now)
	if err != nil || w.Days() != 28 {
		t.Fatalf("february: %+v %v", w, err)
	}

	if _, err := reportWindow(domain.ReportMonthly, reportRequest{Month: 13}, time.UTC, now); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("month 13: %v", err)
	}

	w, err = reportWindow(domain.ReportCustom, reportRequest{StartDate: "2026-03-01", EndDate: "2026-03-05"}, time.UTC, now)
	if err != nil || w.Days() != 4 {
		t.Fatalf("custom: %+v %v", w, err)
	}

	if _, err := reportWindow(domain.ReportCustom, reportRequest{StartDate: "2026-03-05", EndDate: "2026-03-01"}, time.UTC, now); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("reversed custom window: %v", err)
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthEndpoints(t *testing.T) {
	r := gin.New()
	ok := NewHealthHandler(fakePinger{}, nil, "test")
	down := NewHealthHandler(fakePinger{err: errors.New("connection refused")}, nil, "test")
	r.GET("/health", ok.Health)
	r.GET("/readyz", ok.Readiness)
	r.GET("/down/readyz", down.Readiness)

	if w := do(t, r, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}

	w := do(t, r, http.MethodGet, "/readyz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("readyz: %d", w.Code)
	}
	checks := decode(t, w)["checks"].(map[string]any)
	if checks["redis"] != "disabled" || checks["database"] != "healthy" {
		t.Fatalf("checks = %v", checks)
	}

	if w := do(t, r, http.MethodGet, "/down/readyz", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("down readyz: %d", w.Code)
	}
}
