package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
	"github.com/feedbackhub/feedback-tracker/internal/policy"
	"github.com/feedbackhub/feedback-tracker/internal/repository"
	apperrors "github.com/feedbackhub/feedback-tracker/pkg/util"
)

const (
	categoryNameMinLen = 2
	categoryNameMaxLen = 50
	categoryDescMaxLen = 200
)

// CategoryService manages the category directory. Create/edit/deactivate
// are admin-only; a referenced category is deactivated, never deleted.
type CategoryService struct {
	categories repository.CategoryRepository
	tickets    repository.TicketRepository
}

// CategoryInput describes category creation and update payloads.
type CategoryInput struct {
	Name        string
	Description string
	IsActive    *bool
}

// NewCategoryService constructs the service.
func NewCategoryService(categories repository.CategoryRepository, tickets repository.TicketRepository) *CategoryService {
	return &CategoryService{categories: categories, tickets: tickets}
}

// Create adds a new category.
func (s *CategoryService) Create(ctx context.Context, actor domain.Actor, input CategoryInput) (*domain.Category, error) {
	if !policy.CanManageCategories(actor.Role) {
		return nil, apperrors.NewForbidden("category management is admin-only")
	}
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	if err := validateCategoryFields(name, description); err != nil {
		return nil, err
	}

	category := &domain.Category{
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedBy:   actor.ID,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		// Unique name violations surface as conflicts.
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// Update edits name, description or active flag.
func (s *CategoryService) Update(ctx context.Context, actor domain.Actor, categoryID string, input CategoryInput) (*domain.Category, error) {
	if !policy.CanManageCategories(actor.Role) {
		return nil, apperrors.NewForbidden("category management is admin-only")
	}
	category, err := s.load(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Name) != "" {
		category.Name = strings.TrimSpace(input.Name)
	}
	if input.Description != "" {
		category.Description = strings.TrimSpace(input.Description)
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if err := validateCategoryFields(category.Name, category.Description); err != nil {
		return nil, err
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// Delete removes a category outright when nothing references it, and
// deactivates it otherwise.
func (s *CategoryService) Delete(ctx context.Context, actor domain.Actor, categoryID string) error {
	if !policy.CanManageCategories(actor.Role) {
		return apperrors.NewForbidden("category management is admin-only")
	}
	category, err := s.load(ctx, categoryID)
	if err != nil {
		return err
	}

	count, err := s.tickets.CountByCategory(ctx, categoryID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		category.IsActive = false
		if err := s.categories.Update(ctx, category); err != nil {
			return apperrors.MapError(err)
		}
		return apperrors.NewConflict("category in use; deactivated instead of deleted",
			map[string]any{"category_id": categoryID, "ticket_count": count})
	}
	if err := s.categories.Delete(ctx, categoryID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// List returns categories; non-admin callers see active ones only.
func (s *CategoryService) List(ctx context.Context, actor domain.Actor) ([]domain.Category, error) {
	activeOnly := !policy.CanManageCategories(actor.Role)
	categories, err := s.categories.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

// Get returns one category.
func (s *CategoryService) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.load(ctx, categoryID)
}

func (s *CategoryService) load(ctx context.Context, categoryID string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": categoryID})
		}
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

func validateCategoryFields(name, description string) error {
	nameLen := utf8.RuneCountInString(name)
	if nameLen < categoryNameMinLen || nameLen > categoryNameMaxLen {
		return apperrors.NewFieldValidationError("name", "category name must be between 2 and 50 characters")
	}
	if utf8.RuneCountInString(description) > categoryDescMaxLen {
		return apperrors.NewFieldValidationError("description", "category description must be at most 200 characters")
	}
	return nil
}
