package service

import (
	"context"
	"errors"

	"smart_time/internal/domain"
)

var ErrCategoryExists = errors.New("category with this name already exists")

type CategoryService struct {
	repo CategoryStore
}

func NewCategoryService(repo CategoryStore) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, c *domain.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	exists, err := s.repo.NameExists(ctx, c.Name, 0)
	if err != nil {
		return err
	}
	if exists {
		return ErrCategoryExists
	}
	return s.repo.Create(ctx, c)
}

func (s *CategoryService) Update(ctx context.Context, c *domain.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, c.ID); err != nil {
		return err
	}
	exists, err := s.repo.NameExists(ctx, c.Name, c.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrCategoryExists
	}
	return s.repo.Update(ctx, c)
}

// Delete deactivates the category; its tasks keep pointing at it
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

// SeedDefaults creates the default categories on an empty table and
// reports how many were added
func (s *CategoryService) SeedDefaults(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	added := 0
	for _, c := range domain.DefaultCategories() {
		c := c
		if err := s.repo.Create(ctx, &c); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
