package repository

import (
	"context"
	"errors"

	"packtrail/internal/cache"
	"packtrail/internal/models"

	"gorm.io/gorm"
)

// ItemRepository defines persistence operations for items.
type ItemRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Item, error)
	ListByCategory(ctx context.Context, categoryID uint) ([]models.Item, error)
	ListByBag(ctx context.Context, bagID uint) ([]models.Item, error)
	// NextPosition returns the position for an item appended to a category.
	NextPosition(ctx context.Context, categoryID uint) (int, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uint) error
	// Reorder rewrites positions 1..N for the given IDs in one transaction.
	Reorder(ctx context.Context, categoryID uint, orderedIDs []uint) error
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository returns a new ItemRepository implementation.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := readDB(r.db).WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Item", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &item, nil
}

func (r *itemRepository) ListByCategory(ctx context.Context, categoryID uint) ([]models.Item, error) {
	var items []models.Item
	if err := readDB(r.db).WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("position ASC").
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *itemRepository) ListByBag(ctx context.Context, bagID uint) ([]models.Item, error) {
	var items []models.Item
	if err := readDB(r.db).WithContext(ctx).
		Where("bag_id = ?", bagID).
		Order("position ASC").
		Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *itemRepository) NextPosition(ctx context.Context, categoryID uint) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.Item{}).
		Where("category_id = ?", categoryID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return max + 1, nil
}

func (r *itemRepository) Create(ctx context.Context, item *models.Item) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBag(ctx, item.BagID)
	return nil
}

func (r *itemRepository) Update(ctx context.Context, item *models.Item) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBag(ctx, item.BagID)
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id uint) error {
	item, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Item{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBag(ctx, item.BagID)
	return nil
}

func (r *itemRepository) Reorder(ctx context.Context, categoryID uint, orderedIDs []uint) error {
	var bagID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			res := tx.Model(&models.Item{}).
				Where("id = ? AND category_id = ?", id, categoryID).
				UpdateColumn("position", i+1)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.NewNotFoundError("Item", id)
			}
		}
		return tx.Model(&models.Category{}).
			Where("id = ?", categoryID).
			Pluck("bag_id", &bagID).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateBag(ctx, bagID)
	return nil
}
