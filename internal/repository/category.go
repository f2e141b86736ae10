package repository

import (
	"context"
	"errors"

	"packtrail/internal/cache"
	"packtrail/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetWithItems(ctx context.Context, id uint) (*models.Category, error)
	ListByBag(ctx context.Context, bagID uint) ([]models.Category, error)
	// NextPosition returns the position for a category appended to a bag.
	NextPosition(ctx context.Context, bagID uint) (int, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	// Reorder rewrites positions 1..N for the given IDs in one transaction.
	Reorder(ctx context.Context, bagID uint, orderedIDs []uint) error
	// DeleteTree removes the category and its items in a single transaction.
	DeleteTree(ctx context.Context, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository returns a new CategoryRepository implementation.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := readDB(r.db).WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &category, nil
}

func (r *categoryRepository) GetWithItems(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := readDB(r.db).WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("items.position ASC")
		}).
		First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &category, nil
}

func (r *categoryRepository) ListByBag(ctx context.Context, bagID uint) ([]models.Category, error) {
	var categories []models.Category
	if err := readDB(r.db).WithContext(ctx).
		Where("bag_id = ?", bagID).
		Order("position ASC").
		Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

func (r *categoryRepository) NextPosition(ctx context.Context, bagID uint) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("bag_id = ?", bagID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return max + 1, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBag(ctx, category.BagID)
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBag(ctx, category.BagID)
	return nil
}

func (r *categoryRepository) Reorder(ctx context.Context, bagID uint, orderedIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			res := tx.Model(&models.Category{}).
				Where("id = ? AND bag_id = ?", id, bagID).
				UpdateColumn("position", i+1)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return models.NewNotFoundError("Category", id)
			}
		}
		return nil
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

func (r *categoryRepository) DeleteTree(ctx context.Context, id uint) error {
	category, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, id).Error
	})
	if txErr != nil {
		return models.NewInternalError(txErr)
	}
	cache.InvalidateBag(ctx, category.BagID)
	return nil
}
