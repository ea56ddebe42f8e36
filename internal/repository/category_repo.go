package repository

import (
	"context"

	"smart_time/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryRepository struct {
	db *pgxpool.Pool
}

func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, name, description, color, is_active, created_at, updated_at`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

// List returns active categories ordered by name
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	return scanCategory(r.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND is_active`, id))
}

// NameExists checks active categories; excludeID skips the category being renamed
func (r *CategoryRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE lower(name) = lower($1) AND is_active AND id <> $2)`,
		name, excludeID,
	).Scan(&exists)
	return exists, err
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (name, description, color, is_active)
		 VALUES ($1, $2, $3, TRUE)
		 RETURNING id, is_active, created_at`,
		c.Name, c.Description, c.Color,
	).Scan(&c.ID, &c.IsActive, &c.CreatedAt)
	return mapErr(err)
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	err := r.db.QueryRow(ctx,
		`UPDATE categories SET name = $1, description = $2, color = $3, updated_at = now()
		 WHERE id = $4 AND is_active
		 RETURNING updated_at`,
		c.Name, c.Description, c.Color, c.ID,
	).Scan(&c.UpdatedAt)
	return mapErr(err)
}

// Deactivate is the soft delete for categories
func (r *CategoryRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE categories SET is_active = FALSE, updated_at = now() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}
