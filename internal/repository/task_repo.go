package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smart_time/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskFilter narrows List; zero values mean "any"
type TaskFilter struct {
	Status     domain.TaskStatus
	Priority   domain.TaskPriority
	CategoryID int64
	Query      string
	From       *time.Time // created_at >= From
	To         *time.Time // created_at <= To
	Limit      int
}

const taskSelect = `
	SELECT t.id, t.user_id, t.category_id, COALESCE(c.name, ''), t.title, t.description,
	       t.priority, t.status, t.created_at, t.start_date, t.due_date, t.completed_at,
	       t.estimated_duration_ms, t.actual_duration_ms, t.is_timer_running, t.timer_started_at,
	       t.updated_at, t.created_by, t.updated_by
	FROM tasks t
	LEFT JOIN categories c ON c.id = t.category_id`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var estimated *int64
	var actual int64
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.CategoryID,
		&t.CategoryName,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Status,
		&t.CreatedAt,
		&t.StartDate,
		&t.DueDate,
		&t.CompletedAt,
		&estimated,
		&actual,
		&t.IsTimerRunning,
		&t.TimerStartedAt,
		&t.UpdatedAt,
		&t.CreatedBy,
		&t.UpdatedBy,
	); err != nil {
		return nil, mapErr(err)
	}
	t.EstimatedDuration = fromMSPtr(estimated)
	t.ActualDuration = fromMS(actual)
	return &t, nil
}

func collectTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	res := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (user_id, category_id, title, description, priority, status,
		                    due_date, estimated_duration_ms, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		t.UserID, t.CategoryID, t.Title, t.Description, t.Priority, t.Status,
		t.DueDate, toMSPtr(t.EstimatedDuration), t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt)
	return mapErr(err)
}

// GetByID only finds tasks owned by userID
func (r *TaskRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Task, error) {
	return scanTask(r.db.QueryRow(ctx, taskSelect+` WHERE t.id = $1 AND t.user_id = $2`, id, userID))
}

func (r *TaskRepository) List(ctx context.Context, userID int64, f TaskFilter) ([]*domain.Task, error) {
	where := []string{"t.user_id = $1"}
	args := []any{userID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("t.status = $%d", f.Status)
	}
	if f.Priority != "" {
		add("t.priority = $%d", f.Priority)
	}
	if f.CategoryID > 0 {
		add("t.category_id = $%d", f.CategoryID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		add("(t.title ILIKE $%[1]d OR t.description ILIKE $%[1]d)", "%"+q+"%")
	}
	if f.From != nil {
		add("t.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("t.created_at <= $%d", *f.To)
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	args = append(args, limit)

	sql := taskSelect + " WHERE " + strings.Join(where, " AND ") +
		fmt.Sprintf(" ORDER BY t.created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// DueBetween returns unfinished tasks with due_date in [from, to)
func (r *TaskRepository) DueBetween(ctx context.Context, userID int64, from, to time.Time) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, taskSelect+`
		WHERE t.user_id = $1 AND t.due_date >= $2 AND t.due_date < $3 AND t.status <> 'completed'
		ORDER BY t.due_date`, userID, from, to)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// Overdue returns unfinished tasks due before the given instant
func (r *TaskRepository) Overdue(ctx context.Context, userID int64, before time.Time) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, taskSelect+`
		WHERE t.user_id = $1 AND t.due_date < $2 AND t.status <> 'completed'
		ORDER BY t.due_date`, userID, before)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// CreatedInWindow returns the tasks created in [from, to) together with
// their time logs
func (r *TaskRepository) CreatedInWindow(ctx context.Context, userID int64, from, to time.Time) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, taskSelect+`
		WHERE t.user_id = $1 AND t.created_at >= $2 AND t.created_at < $3
		ORDER BY t.created_at`, userID, from, to)
	if err != nil {
		return nil, err
	}
	tasks, err := collectTasks(rows)
	if err != nil || len(tasks) == 0 {
		return tasks, err
	}

	ids := make([]int64, len(tasks))
	byID := make(map[int64]*domain.Task, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		byID[t.ID] = t
	}

	logRows, err := r.db.Query(ctx,
		`SELECT `+timeLogColumns+` FROM time_logs WHERE task_id = ANY($1) ORDER BY start_time`, ids)
	if err != nil {
		return nil, err
	}
	logs, err := collectTimeLogs(logRows)
	if err != nil {
		return nil, err
	}
	for _, l := range logs {
		if t := byID[l.TaskID]; t != nil {
			t.TimeLogs = append(t.TimeLogs, l)
		}
	}
	return tasks, nil
}

// Update writes the editable fields; timer columns are owned by
// StartTimer/StopTimer
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET category_id = $1, title = $2, description = $3, priority = $4,
		        due_date = $5, estimated_duration_ms = $6, updated_at = $7, updated_by = $8
		 WHERE id = $9 AND user_id = $10`,
		t.CategoryID, t.Title, t.Description, t.Priority,
		t.DueDate, toMSPtr(t.EstimatedDuration), t.UpdatedAt, t.UpdatedBy,
		t.ID, t.UserID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus persists status and completed_at. Moving away from
// in_progress is refused while the timer runs.
func (r *TaskRepository) UpdateStatus(ctx context.Context, t *domain.Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET status = $1, completed_at = $2, updated_at = $3, updated_by = $4
		 WHERE id = $5 AND user_id = $6 AND (NOT is_timer_running OR $1 = 'in_progress')`,
		t.Status, t.CompletedAt, t.UpdatedAt, t.UpdatedBy, t.ID, t.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.conflictOrMissing(ctx, t.UserID, t.ID, domain.ErrTimerAlreadyRunning)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// StartTimer flips the running flag only if it is not set yet and opens a
// time log in the same transaction. t must already carry the started state.
func (r *TaskRepository) StartTimer(ctx context.Context, t *domain.Task, log *domain.TimeLog) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE tasks SET is_timer_running = TRUE, timer_started_at = $1, status = $2,
		        start_date = $1, updated_at = $1
		 WHERE id = $3 AND user_id = $4 AND NOT is_timer_running`,
		t.TimerStartedAt, t.Status, t.ID, t.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.conflictOrMissing(ctx, t.UserID, t.ID, domain.ErrTimerAlreadyRunning)
	}

	log.TaskID = t.ID
	err = tx.QueryRow(ctx,
		`INSERT INTO time_logs (task_id, start_time, notes, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		log.TaskID, log.StartTime, log.Notes, log.CreatedBy,
	).Scan(&log.ID, &log.CreatedAt)
	if err = mapErr(err); err != nil {
		if err == ErrDuplicate {
			return domain.ErrOpenTimeLog
		}
		return err
	}

	return tx.Commit(ctx)
}

// StopTimer clears the running flag only if it is set, adds elapsed to the
// accumulated duration and closes the open log. If the open log is missing a
// closed one is recorded so the session is not lost.
func (r *TaskRepository) StopTimer(ctx context.Context, t *domain.Task, elapsed time.Duration, end time.Time, notes, by string) (*domain.TimeLog, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var actual int64
	err = tx.QueryRow(ctx,
		`UPDATE tasks SET is_timer_running = FALSE, timer_started_at = NULL,
		        actual_duration_ms = actual_duration_ms + $1, updated_at = $2
		 WHERE id = $3 AND user_id = $4 AND is_timer_running
		 RETURNING actual_duration_ms`,
		toMS(elapsed), end, t.ID, t.UserID,
	).Scan(&actual)
	if err = mapErr(err); err != nil {
		if err == domain.ErrNotFound {
			return nil, r.conflictOrMissing(ctx, t.UserID, t.ID, domain.ErrTimerNotRunning)
		}
		return nil, err
	}
	t.ActualDuration = fromMS(actual)

	log, err := scanTimeLog(tx.QueryRow(ctx,
		`UPDATE time_logs SET end_time = $1, duration_ms = $2,
		        notes = CASE WHEN $3::text <> '' THEN $3::text ELSE notes END
		 WHERE task_id = $4 AND end_time IS NULL
		 RETURNING `+timeLogColumns,
		end, toMS(elapsed), notes, t.ID))
	if err == domain.ErrNotFound {
		log, err = scanTimeLog(tx.QueryRow(ctx,
			`INSERT INTO time_logs (task_id, start_time, end_time, duration_ms, notes, created_by)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING `+timeLogColumns,
			t.ID, end.Add(-elapsed), end, toMS(elapsed), notes, by))
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return log, nil
}

// conflictOrMissing tells a lost conditional update apart from a task that
// does not exist for this user
func (r *TaskRepository) conflictOrMissing(ctx context.Context, userID, id int64, conflict error) error {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1 AND user_id = $2)`, id, userID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return conflict
}

// RunningForUser lists tasks with a live timer
func (r *TaskRepository) RunningForUser(ctx context.Context, userID int64) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, taskSelect+`
		WHERE t.user_id = $1 AND t.is_timer_running ORDER BY t.timer_started_at`, userID)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}
