package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const DefaultCategoryColor = "#007ACC"

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Category groups tasks. Deleting a category only deactivates it.
type Category struct {
	ID          int64      `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Color       string     `db:"color" json:"color"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" || len(c.Name) > 100 {
		return fmt.Errorf("%w: category name is required (max 100 characters)", ErrInvalidInput)
	}
	if len(c.Description) > 500 {
		return fmt.Errorf("%w: description must be at most 500 characters", ErrInvalidInput)
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
	if !colorPattern.MatchString(c.Color) {
		return fmt.Errorf("%w: color must look like #RRGGBB", ErrInvalidInput)
	}
	return nil
}

// DefaultCategories are created by the seed command on an empty database
func DefaultCategories() []Category {
	return []Category{
		{Name: "Work", Description: "Work related tasks", Color: "#FF6B6B", IsActive: true},
		{Name: "Personal", Description: "Personal tasks", Color: "#4ECDC4", IsActive: true},
		{Name: "Sport", Description: "Sport and health", Color: "#45B7D1", IsActive: true},
		{Name: "Education", Description: "Learning and courses", Color: "#96CEB4", IsActive: true},
		{Name: "Shopping", Description: "Shopping list", Color: "#FFEAA7", IsActive: true},
	}
}
