package service

import (
	"context"
	"errors"
	"fmt"

	"smart_time/internal/domain"
	"smart_time/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be 6 to 72 characters")
)

const minPasswordLen = 6

// RegisterInput is the signup form
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type UserService struct {
	users      UserStore
	audit      *AuditService
	bcryptCost int
}

func NewUserService(users UserStore, audit *AuditService) *UserService {
	return &UserService{users: users, audit: audit, bcryptCost: bcrypt.DefaultCost}
}

func checkPassword(p string) error {
	// bcrypt ignores everything past 72 bytes
	if len(p) < minPasswordLen || len(p) > 72 {
		return ErrWeakPassword
	}
	return nil
}

func (s *UserService) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	u := &domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Role:      domain.RoleUser,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	exists, err := s.users.EmailExists(ctx, u.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	if u.PasswordHash, err = s.hash(in.Password); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.audit.Log(ctx, u.ID, domain.AuditActionRegister, domain.AuditCategoryAuth, nil)
	return u, nil
}

// Authenticate checks email and password. Unknown email and wrong password
// give the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password, ip, userAgent string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.audit.LogWithRequest(ctx, u.ID, domain.AuditActionLoginFailed, domain.AuditCategoryAuth, ip, userAgent, nil)
		return nil, ErrInvalidCredentials
	}

	s.audit.LogWithRequest(ctx, u.ID, domain.AuditActionLogin, domain.AuditCategoryAuth, ip, userAgent, nil)
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) GetByTelegramChatID(ctx context.Context, chatID int64) (*domain.User, error) {
	return s.users.GetByTelegramChatID(ctx, chatID)
}

func (s *UserService) UpdateProfile(ctx context.Context, id int64, firstName, lastName, email string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldEmail := u.Email

	u.FirstName, u.LastName, u.Email = firstName, lastName, email
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if u.Email != oldEmail {
		exists, err := s.users.EmailExists(ctx, u.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailTaken
		}
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	if err := checkPassword(next); err != nil {
		return err
	}

	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}

	s.audit.Log(ctx, id, domain.AuditActionPasswordChange, domain.AuditCategoryAuth, nil)
	return nil
}

// LinkTelegram stores the chat the reminder bot delivers to; nil unlinks
func (s *UserService) LinkTelegram(ctx context.Context, id int64, chatID *int64) error {
	if err := s.users.SetTelegramChatID(ctx, id, chatID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: telegram account is linked to another user", domain.ErrInvalidInput)
		}
		return err
	}
	return nil
}

// Deactivate soft deletes the account
func (s *UserService) Deactivate(ctx context.Context, id int64) error {
	if err := s.users.Deactivate(ctx, id); err != nil {
		return err
	}
	s.audit.Log(ctx, id, domain.AuditActionAccountDelete, domain.AuditCategoryAuth, nil)
	return nil
}
