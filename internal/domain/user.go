package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// UserRole - access level of an account
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID             int64      `db:"id" json:"id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	Role           UserRole   `db:"role" json:"role"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	TelegramChatID *int64     `db:"telegram_chat_id" json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// FullName is what reports and the bot greet people with
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Validate checks profile fields and normalizes the email
func (u *User) Validate() error {
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	if u.FirstName == "" || len(u.FirstName) > 50 {
		return fmt.Errorf("%w: first name is required (max 50 characters)", ErrInvalidInput)
	}
	if u.LastName == "" || len(u.LastName) > 50 {
		return fmt.Errorf("%w: last name is required (max 50 characters)", ErrInvalidInput)
	}
	if len(u.Email) > 100 {
		return fmt.Errorf("%w: email must be at most 100 characters", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, u.Role)
	}
	return nil
}
