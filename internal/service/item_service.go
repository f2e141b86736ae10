package service

import (
	"context"

	"packtrail/internal/models"
	"packtrail/internal/repository"
	"packtrail/internal/validation"
	"packtrail/internal/weight"
)

// ItemService handles item CRUD and reordering.
type ItemService struct {
	itemRepo     repository.ItemRepository
	categoryRepo repository.CategoryRepository
}

// ItemInput carries the writable item fields.
type ItemInput struct {
	CategoryID  uint
	Name        string
	Description string
	Qty         int
	Weight      float64
	// WeightUnit may be empty, meaning the owner's preferred unit applies.
	WeightUnit string
	Priority   string
	Worn       bool
	Link       string
	ImageURL   string
}

// NewItemService returns a new ItemService.
func NewItemService(itemRepo repository.ItemRepository, categoryRepo repository.CategoryRepository) *ItemService {
	return &ItemService{itemRepo: itemRepo, categoryRepo: categoryRepo}
}

func (s *ItemService) validateInput(in *ItemInput) error {
	if err := validation.ValidateName(in.Name); err != nil {
		return models.NewValidationError(err.Error())
	}
	if in.Weight < 0 {
		return models.NewValidationError("Weight cannot be negative")
	}
	if in.Qty < 1 {
		in.Qty = 1
	}
	if in.WeightUnit != "" && !weight.Valid(weight.Unit(in.WeightUnit)) {
		return models.NewValidationError("Unknown weight unit")
	}
	if in.Priority == "" {
		in.Priority = models.PriorityLow
	}
	if !models.ValidPriority(in.Priority) {
		return models.NewValidationError("Unknown priority")
	}
	return nil
}

// ownedItem loads an item and verifies the viewer owns it.
func (s *ItemService) ownedItem(ctx context.Context, viewerID, itemID uint) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}
	return item, nil
}

// ListItems returns the items of a category the viewer owns, in position order.
func (s *ItemService) ListItems(ctx context.Context, viewerID, categoryID uint) ([]models.Item, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}
	return s.itemRepo.ListByCategory(ctx, categoryID)
}

// AddItem appends an item to a category the viewer owns.
func (s *ItemService) AddItem(ctx context.Context, viewerID uint, in ItemInput) (*models.Item, error) {
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}

	position, err := s.itemRepo.NextPosition(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		TripID:      category.TripID,
		BagID:       category.BagID,
		CategoryID:  in.CategoryID,
		UserID:      viewerID,
		Name:        in.Name,
		Description: in.Description,
		Qty:         in.Qty,
		Weight:      in.Weight,
		WeightUnit:  in.WeightUnit,
		Priority:    in.Priority,
		Worn:        in.Worn,
		Link:        in.Link,
		ImageURL:    in.ImageURL,
		Position:    position,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem applies a full update to an item the viewer owns. The item
// cannot be moved between categories here.
func (s *ItemService) UpdateItem(ctx context.Context, viewerID, itemID uint, in ItemInput) (*models.Item, error) {
	item, err := s.ownedItem(ctx, viewerID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	item.Name = in.Name
	item.Description = in.Description
	item.Qty = in.Qty
	item.Weight = in.Weight
	item.WeightUnit = in.WeightUnit
	item.Priority = in.Priority
	item.Worn = in.Worn
	item.Link = in.Link
	item.ImageURL = in.ImageURL

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ReorderItems rewrites the positions of a category's items to match the
// given ID order. The list must cover exactly the category's items.
func (s *ItemService) ReorderItems(ctx context.Context, viewerID, categoryID uint, orderedIDs []uint) ([]models.Item, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}

	existing, err := s.itemRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if len(orderedIDs) != len(existing) {
		return nil, models.NewValidationError("Reorder list must include every item exactly once")
	}
	known := make(map[uint]struct{}, len(existing))
	for _, it := range existing {
		known[it.ID] = struct{}{}
	}
	for _, id := range orderedIDs {
		if _, ok := known[id]; !ok {
			return nil, models.NewValidationError("Reorder list references an item outside this category")
		}
		delete(known, id)
	}

	if err := s.itemRepo.Reorder(ctx, categoryID, orderedIDs); err != nil {
		return nil, err
	}
	return s.itemRepo.ListByCategory(ctx, categoryID)
}
