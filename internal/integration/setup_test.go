package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/migrations"
	"smart_time/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// openDB connects to DATABASE_URL and applies the schema, skipping the test
// when no database is configured.
func openDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	if err := migrations.Apply(context.Background(), db, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

// uniqueEmail keeps repeated runs against one database independent
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s+%d@example.com", prefix, time.Now().UnixNano())
}

func createUser(t *testing.T, db *pgxpool.Pool, prefix string) *domain.User {
	t.Helper()
	u := &domain.User{
		FirstName:    "Test",
		LastName:     prefix,
		Email:        uniqueEmail(prefix),
		PasswordHash: "x",
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := repository.NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func createCategory(t *testing.T, db *pgxpool.Pool) *domain.Category {
	t.Helper()
	c := &domain.Category{
		Name:     fmt.Sprintf("it-%d", time.Now().UnixNano()),
		Color:    domain.DefaultCategoryColor,
		IsActive: true,
	}
	if err := repository.NewCategoryRepository(db).Create(context.Background(), c); err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}
