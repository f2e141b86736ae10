package service

import (
	"context"

	"packtrail/internal/models"
	"packtrail/internal/repository"
	"packtrail/internal/validation"
)

// CategoryService handles category CRUD and reordering.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	bagRepo      repository.BagRepository
	userRepo     repository.UserRepository
}

// CategoryInput carries the writable category fields.
type CategoryInput struct {
	BagID uint
	Name  string
	Color string
}

// NewCategoryService returns a new CategoryService.
func NewCategoryService(categoryRepo repository.CategoryRepository, bagRepo repository.BagRepository, userRepo repository.UserRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, bagRepo: bagRepo, userRepo: userRepo}
}

// ownedCategory loads a category and verifies the viewer owns it.
func (s *CategoryService) ownedCategory(ctx context.Context, viewerID, categoryID uint) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}
	return category, nil
}

// ListCategories returns the categories of a bag the viewer owns, in position
// order.
func (s *CategoryService) ListCategories(ctx context.Context, viewerID, bagID uint) ([]models.Category, error) {
	bag, err := s.bagRepo.GetByID(ctx, bagID)
	if err != nil {
		return nil, err
	}
	if bag.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}
	return s.categoryRepo.ListByBag(ctx, bagID)
}

// AddCategory appends a category to a bag the viewer owns.
func (s *CategoryService) AddCategory(ctx context.Context, viewerID uint, in CategoryInput) (*models.Category, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateHexColor(in.Color); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	bag, err := s.bagRepo.GetByID(ctx, in.BagID)
	if err != nil {
		return nil, err
	}
	if bag.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}

	position, err := s.categoryRepo.NextPosition(ctx, in.BagID)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		TripID:   bag.TripID,
		BagID:    in.BagID,
		UserID:   viewerID,
		Name:     in.Name,
		Color:    in.Color,
		Position: position,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory renames or recolors a category the viewer owns.
func (s *CategoryService) UpdateCategory(ctx context.Context, viewerID, categoryID uint, name, color string) (*models.Category, error) {
	category, err := s.ownedCategory(ctx, viewerID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateHexColor(color); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	category.Name = name
	category.Color = color
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ReorderCategories rewrites the positions of a bag's categories to match the
// given ID order. The list must cover exactly the bag's categories.
func (s *CategoryService) ReorderCategories(ctx context.Context, viewerID, bagID uint, orderedIDs []uint) ([]models.Category, error) {
	bag, err := s.bagRepo.GetByID(ctx, bagID)
	if err != nil {
		return nil, err
	}
	if bag.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}

	existing, err := s.categoryRepo.ListByBag(ctx, bagID)
	if err != nil {
		return nil, err
	}
	if len(orderedIDs) != len(existing) {
		return nil, models.NewValidationError("Reorder list must include every category exactly once")
	}
	known := make(map[uint]struct{}, len(existing))
	for _, c := range existing {
		known[c.ID] = struct{}{}
	}
	for _, id := range orderedIDs {
		if _, ok := known[id]; !ok {
			return nil, models.NewValidationError("Reorder list references a category outside this bag")
		}
		delete(known, id)
	}

	if err := s.categoryRepo.Reorder(ctx, bagID, orderedIDs); err != nil {
		return nil, err
	}
	return s.categoryRepo.ListByBag(ctx, bagID)
}
