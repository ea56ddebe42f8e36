package repository

import (
	"context"
	"time"

	"smart_time/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TimeLogRepository struct {
	db *pgxpool.Pool
}

func NewTimeLogRepository(db *pgxpool.Pool) *TimeLogRepository {
	return &TimeLogRepository{db: db}
}

const timeLogColumns = `id, task_id, start_time, end_time, duration_ms, notes, created_at, created_by`

func scanTimeLog(row pgx.Row) (*domain.TimeLog, error) {
	var l domain.TimeLog
	var ms int64
	if err := row.Scan(&l.ID, &l.TaskID, &l.StartTime, &l.EndTime, &ms, &l.Notes, &l.CreatedAt, &l.CreatedBy); err != nil {
		return nil, mapErr(err)
	}
	l.Duration = fromMS(ms)
	return &l, nil
}

func collectTimeLogs(rows pgx.Rows) ([]*domain.TimeLog, error) {
	defer rows.Close()

	res := []*domain.TimeLog{}
	for rows.Next() {
		l, err := scanTimeLog(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}

// ListByTask returns the sessions of a task owned by userID, newest first
func (r *TimeLogRepository) ListByTask(ctx context.Context, userID, taskID int64) ([]*domain.TimeLog, error) {
	rows, err := r.db.Query(ctx,
		`SELECT l.id, l.task_id, l.start_time, l.end_time, l.duration_ms, l.notes, l.created_at, l.created_by
		 FROM time_logs l JOIN tasks t ON t.id = l.task_id
		 WHERE l.task_id = $1 AND t.user_id = $2
		 ORDER BY l.start_time DESC`, taskID, userID)
	if err != nil {
		return nil, err
	}
	return collectTimeLogs(rows)
}

func (r *TimeLogRepository) GetByID(ctx context.Context, userID, id int64) (*domain.TimeLog, error) {
	return scanTimeLog(r.db.QueryRow(ctx,
		`SELECT l.id, l.task_id, l.start_time, l.end_time, l.duration_ms, l.notes, l.created_at, l.created_by
		 FROM time_logs l JOIN tasks t ON t.id = l.task_id
		 WHERE l.id = $1 AND t.user_id = $2`, id, userID))
}

// Between returns the user's logs that started in [from, to)
func (r *TimeLogRepository) Between(ctx context.Context, userID int64, from, to time.Time) ([]*domain.TimeLog, error) {
	rows, err := r.db.Query(ctx,
		`SELECT l.id, l.task_id, l.start_time, l.end_time, l.duration_ms, l.notes, l.created_at, l.created_by
		 FROM time_logs l JOIN tasks t ON t.id = l.task_id
		 WHERE t.user_id = $1 AND l.start_time >= $2 AND l.start_time < $3
		 ORDER BY l.start_time`, userID, from, to)
	if err != nil {
		return nil, err
	}
	return collectTimeLogs(rows)
}

// Create inserts a manual entry. A second open log for the same task is
// rejected by the partial unique index.
func (r *TimeLogRepository) Create(ctx context.Context, l *domain.TimeLog) error {
	err := mapErr(r.db.QueryRow(ctx,
		`INSERT INTO time_logs (task_id, start_time, end_time, duration_ms, notes, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		l.TaskID, l.StartTime, l.EndTime, toMS(l.Duration), l.Notes, l.CreatedBy,
	).Scan(&l.ID, &l.CreatedAt))
	if err == ErrDuplicate {
		return domain.ErrOpenTimeLog
	}
	return err
}

func (r *TimeLogRepository) Update(ctx context.Context, userID int64, l *domain.TimeLog) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE time_logs l SET start_time = $1, end_time = $2, duration_ms = $3, notes = $4
		 FROM tasks t
		 WHERE l.id = $5 AND t.id = l.task_id AND t.user_id = $6`,
		l.StartTime, l.EndTime, toMS(l.Duration), l.Notes, l.ID, userID)
	if err != nil {
		if mapErr(err) == ErrDuplicate {
			return domain.ErrOpenTimeLog
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TimeLogRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM time_logs l USING tasks t
		 WHERE l.id = $1 AND t.id = l.task_id AND t.user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TotalForTask sums the closed sessions of a task
func (r *TimeLogRepository) TotalForTask(ctx context.Context, userID, taskID int64) (time.Duration, error) {
	var ms int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(l.duration_ms), 0)
		 FROM time_logs l JOIN tasks t ON t.id = l.task_id
		 WHERE l.task_id = $1 AND t.user_id = $2 AND l.end_time IS NOT NULL`, taskID, userID,
	).Scan(&ms)
	return fromMS(ms), err
}
