package repository

import (
	"context"

	"smart_time/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, user_id, title, type, start_date, end_date, total_tasks, completed_tasks,
	in_progress_tasks, not_started_tasks, total_time_spent_ms, productivity_score::float8, report_data, created_at`

func scanReport(row pgx.Row) (*domain.Report, error) {
	var rep domain.Report
	var ms int64
	var data []byte
	if err := row.Scan(
		&rep.ID,
		&rep.UserID,
		&rep.Title,
		&rep.Type,
		&rep.StartDate,
		&rep.EndDate,
		&rep.TotalTasks,
		&rep.CompletedTasks,
		&rep.InProgressTasks,
		&rep.NotStartedTasks,
		&ms,
		&rep.ProductivityScore,
		&data,
		&rep.CreatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	rep.TotalTimeSpent = fromMS(ms)
	rep.ReportData = data
	return &rep, nil
}

func (r *ReportRepository) list(ctx context.Context, sql string, args ...any) ([]*domain.Report, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []*domain.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rep)
	}
	return res, rows.Err()
}

func (r *ReportRepository) Create(ctx context.Context, rep *domain.Report) error {
	var data any
	if len(rep.ReportData) > 0 {
		data = string(rep.ReportData)
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO reports (user_id, title, type, start_date, end_date, total_tasks, completed_tasks,
		                      in_progress_tasks, not_started_tasks, total_time_spent_ms, productivity_score,
		                      report_data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13)
		 RETURNING id`,
		rep.UserID, rep.Title, rep.Type, rep.StartDate, rep.EndDate, rep.TotalTasks, rep.CompletedTasks,
		rep.InProgressTasks, rep.NotStartedTasks, toMS(rep.TotalTimeSpent), rep.ProductivityScore,
		data, rep.CreatedAt,
	).Scan(&rep.ID)
	return mapErr(err)
}

func (r *ReportRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Report, error) {
	return scanReport(r.db.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1 AND user_id = $2`, id, userID))
}

// ListByUser returns saved reports, newest first
func (r *ReportRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Report, error) {
	return r.list(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// Recent returns the latest reports of the user
func (r *ReportRepository) Recent(ctx context.Context, userID int64, limit int) ([]*domain.Report, error) {
	return r.list(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
}

func (r *ReportRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reports WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
