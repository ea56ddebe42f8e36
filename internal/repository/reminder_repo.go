package repository

import (
	"context"
	"time"

	"smart_time/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReminderRepository struct {
	db *pgxpool.Pool
}

func NewReminderRepository(db *pgxpool.Pool) *ReminderRepository {
	return &ReminderRepository{db: db}
}

const reminderColumns = `id, user_id, task_id, title, description, reminder_time, type, is_active, is_completed, created_at, updated_at`

func scanReminder(row pgx.Row) (*domain.Reminder, error) {
	var rm domain.Reminder
	if err := row.Scan(
		&rm.ID,
		&rm.UserID,
		&rm.TaskID,
		&rm.Title,
		&rm.Description,
		&rm.ReminderTime,
		&rm.Type,
		&rm.IsActive,
		&rm.IsCompleted,
		&rm.CreatedAt,
		&rm.UpdatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	return &rm, nil
}

func (r *ReminderRepository) list(ctx context.Context, sql string, args ...any) ([]*domain.Reminder, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []*domain.Reminder{}
	for rows.Next() {
		rm, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rm)
	}
	return res, rows.Err()
}

func (r *ReminderRepository) Create(ctx context.Context, rm *domain.Reminder) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO reminders (user_id, task_id, title, description, reminder_time, type, is_active, is_completed)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE, FALSE)
		 RETURNING id, is_active, is_completed, created_at`,
		rm.UserID, rm.TaskID, rm.Title, rm.Description, rm.ReminderTime, rm.Type,
	).Scan(&rm.ID, &rm.IsActive, &rm.IsCompleted, &rm.CreatedAt)
	return mapErr(err)
}

func (r *ReminderRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Reminder, error) {
	return scanReminder(r.db.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = $1 AND user_id = $2`, id, userID))
}

// ListByUser returns every reminder of the user by time
func (r *ReminderRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Reminder, error) {
	return r.list(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE user_id = $1 ORDER BY reminder_time`, userID)
}

// Active returns active, not completed reminders by time
func (r *ReminderRepository) Active(ctx context.Context, userID int64) ([]*domain.Reminder, error) {
	return r.list(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE user_id = $1 AND is_active AND NOT is_completed
		 ORDER BY reminder_time`, userID)
}

// Due returns reminders of every user whose time is at or before now
func (r *ReminderRepository) Due(ctx context.Context, now time.Time, limit int) ([]*domain.Reminder, error) {
	return r.list(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE is_active AND NOT is_completed AND reminder_time <= $1
		 ORDER BY reminder_time
		 LIMIT $2`, now, limit)
}

// DueForUser is Due restricted to one user
func (r *ReminderRepository) DueForUser(ctx context.Context, userID int64, now time.Time) ([]*domain.Reminder, error) {
	return r.list(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE user_id = $1 AND is_active AND NOT is_completed AND reminder_time <= $2
		 ORDER BY reminder_time`, userID, now)
}

func (r *ReminderRepository) Update(ctx context.Context, rm *domain.Reminder) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE reminders SET task_id = $1, title = $2, description = $3, reminder_time = $4, type = $5,
		        is_active = $6, is_completed = $7, updated_at = now()
		 WHERE id = $8 AND user_id = $9`,
		rm.TaskID, rm.Title, rm.Description, rm.ReminderTime, rm.Type,
		rm.IsActive, rm.IsCompleted, rm.ID, rm.UserID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReminderRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reminders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
