package repository

import (
	"context"
	"errors"

	"packtrail/internal/cache"
	"packtrail/internal/models"

	"gorm.io/gorm"
)

// TripRepository defines persistence operations for trips.
type TripRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Trip, error)
	// GetTree loads a trip with every bag, category and item under it.
	GetTree(ctx context.Context, id uint) (*models.Trip, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Trip, error)
	Create(ctx context.Context, trip *models.Trip) error
	// CreateTree persists a trip and all nested bags, categories and items in
	// a single transaction.
	CreateTree(ctx context.Context, trip *models.Trip) error
	Update(ctx context.Context, trip *models.Trip) error
	// DeleteTree removes the trip and everything under it, deepest level
	// first, in a single transaction.
	DeleteTree(ctx context.Context, id uint) error
}

type tripRepository struct {
	db *gorm.DB
}

// NewTripRepository returns a new TripRepository implementation.
func NewTripRepository(db *gorm.DB) TripRepository {
	return &tripRepository{db: db}
}

func (r *tripRepository) GetByID(ctx context.Context, id uint) (*models.Trip, error) {
	var trip models.Trip
	if err := readDB(r.db).WithContext(ctx).First(&trip, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Trip", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &trip, nil
}

func (r *tripRepository) GetTree(ctx context.Context, id uint) (*models.Trip, error) {
	var trip models.Trip
	err := readDB(r.db).WithContext(ctx).
		Preload("Bags", func(db *gorm.DB) *gorm.DB {
			return db.Order("bags.id ASC")
		}).
		Preload("Bags.Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("categories.position ASC")
		}).
		Preload("Bags.Categories.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("items.position ASC")
		}).
		First(&trip, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Trip", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &trip, nil
}

func (r *tripRepository) ListByUser(ctx context.Context, userID uint) ([]models.Trip, error) {
	var trips []models.Trip
	if err := readDB(r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&trips).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return trips, nil
}

func (r *tripRepository) Create(ctx context.Context, trip *models.Trip) error {
	if err := r.db.WithContext(ctx).Create(trip).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tripRepository) CreateTree(ctx context.Context, trip *models.Trip) error {
	// Created level by level: nested Create would only fill direct-parent
	// foreign keys, leaving trip_id blank on categories and items.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bags := trip.Bags
		trip.Bags = nil
		if err := tx.Create(trip).Error; err != nil {
			return err
		}

		for i := range bags {
			bag := &bags[i]
			bag.ID = 0
			bag.TripID = trip.ID
			if err := createBagTree(tx, bag); err != nil {
				return err
			}
		}
		trip.Bags = bags
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// createBagTree inserts a bag plus its categories and items inside tx.
// bag.TripID must already be set.
func createBagTree(tx *gorm.DB, bag *models.Bag) error {
	categories := bag.Categories
	bag.Categories = nil
	if err := tx.Create(bag).Error; err != nil {
		return err
	}

	for i := range categories {
		category := &categories[i]
		items := category.Items
		category.Items = nil
		category.ID = 0
		category.TripID = bag.TripID
		category.BagID = bag.ID
		if err := tx.Create(category).Error; err != nil {
			return err
		}

		for j := range items {
			items[j].ID = 0
			items[j].TripID = bag.TripID
			items[j].BagID = bag.ID
			items[j].CategoryID = category.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		category.Items = items
	}
	bag.Categories = categories
	return nil
}

func (r *tripRepository) Update(ctx context.Context, trip *models.Trip) error {
	if err := r.db.WithContext(ctx).Save(trip).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tripRepository) DeleteTree(ctx context.Context, id uint) error {
	var bagIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.Bag{}).
		Where("trip_id = ?", id).
		Pluck("id", &bagIDs).Error; err != nil {
		return models.NewInternalError(err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trip_id = ?", id).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trip_id = ?", id).Delete(&models.Category{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trip_id = ?", id).Delete(&models.Bag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Trip{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	for _, bagID := range bagIDs {
		cache.InvalidateBag(ctx, bagID)
	}
	return nil
}
