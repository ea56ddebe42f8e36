package repository

import (
	"errors"
	"time"

	"smart_time/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// ErrDuplicate is returned when a unique index rejects a write
var ErrDuplicate = errors.New("duplicate entry")

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func toMS(d time.Duration) int64 {
	return d.Milliseconds()
}

func fromMS(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func toMSPtr(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	v := d.Milliseconds()
	return &v
}

func fromMSPtr(ms *int64) *time.Duration {
	if ms == nil {
		return nil
	}
	d := fromMS(*ms)
	return &d
}
