package repository

import (
	"context"
	"errors"

	"packtrail/internal/cache"
	"packtrail/internal/models"

	"gorm.io/gorm"
)

// BagRepository defines persistence operations for bags.
type BagRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Bag, error)
	// GetTree loads a bag with its categories and items ordered by position.
	GetTree(ctx context.Context, id uint) (*models.Bag, error)
	// GetSharedTree is GetTree behind the shared-bag cache, for the public
	// share-link read.
	GetSharedTree(ctx context.Context, id uint) (*models.Bag, error)
	ListByTrip(ctx context.Context, tripID uint) ([]models.Bag, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Bag, error)
	// ListExplore returns publicly shared bags, most liked first, newest
	// breaking ties.
	ListExplore(ctx context.Context, limit int) ([]models.Bag, error)
	Create(ctx context.Context, bag *models.Bag) error
	// CreateTree persists a bag and all nested categories and items in a
	// single transaction.
	CreateTree(ctx context.Context, bag *models.Bag) error
	Update(ctx context.Context, bag *models.Bag) error
	IncrementLikes(ctx context.Context, id uint) (int, error)
	// DeleteTree removes the bag and everything under it, deepest level
	// first, in a single transaction.
	DeleteTree(ctx context.Context, id uint) error
}

type bagRepository struct {
	db *gorm.DB
}

// NewBagRepository returns a new BagRepository implementation.
func NewBagRepository(db *gorm.DB) BagRepository {
	return &bagRepository{db: db}
}

func (r *bagRepository) GetByID(ctx context.Context, id uint) (*models.Bag, error) {
	var bag models.Bag
	if err := readDB(r.db).WithContext(ctx).First(&bag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Bag", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &bag, nil
}

func (r *bagRepository) GetTree(ctx context.Context, id uint) (*models.Bag, error) {
	var bag models.Bag
	err := readDB(r.db).WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("categories.position ASC")
		}).
		Preload("Categories.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("items.position ASC")
		}).
		First(&bag, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Bag", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &bag, nil
}

func (r *bagRepository) GetSharedTree(ctx context.Context, id uint) (*models.Bag, error) {
	var bag models.Bag
	err := cache.Aside(ctx, cache.SharedBagKey(id), &bag, cache.SharedTTL, func() error {
		loaded, err := r.GetTree(ctx, id)
		if err != nil {
			return err
		}
		bag = *loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bag, nil
}

func (r *bagRepository) ListByTrip(ctx context.Context, tripID uint) ([]models.Bag, error) {
	var bags []models.Bag
	if err := readDB(r.db).WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at ASC").
		Find(&bags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return bags, nil
}

func (r *bagRepository) ListByUser(ctx context.Context, userID uint) ([]models.Bag, error) {
	var bags []models.Bag
	if err := readDB(r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&bags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return bags, nil
}

// exploreMax is the window cached for the explore listing; requested limits
// are served by slicing it.
const exploreMax = 100

func (r *bagRepository) ListExplore(ctx context.Context, limit int) ([]models.Bag, error) {
	if limit <= 0 || limit > exploreMax {
		limit = 50
	}
	var bags []models.Bag
	err := cache.Aside(ctx, cache.ExploreKey, &bags, cache.ExploreTTL, func() error {
		// likes alone produces an unstable page order, so recency breaks ties.
		if err := readDB(r.db).WithContext(ctx).
			Where("explore_bags = ?", true).
			Order("likes DESC, created_at DESC").
			Limit(exploreMax).
			Find(&bags).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(bags) > limit {
		bags = bags[:limit]
	}
	return bags, nil
}

func (r *bagRepository) Create(ctx context.Context, bag *models.Bag) error {
	if err := r.db.WithContext(ctx).Create(bag).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *bagRepository) CreateTree(ctx context.Context, bag *models.Bag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createBagTree(tx, bag)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *bagRepository) Update(ctx context.Context, bag *models.Bag) error {
	if err := r.db.WithContext(ctx).Save(bag).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBag(ctx, bag.ID)
	return nil
}

func (r *bagRepository) IncrementLikes(ctx context.Context, id uint) (int, error) {
	res := r.db.WithContext(ctx).Model(&models.Bag{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, models.NewNotFoundError("Bag", id)
	}

	var likes int
	if err := r.db.WithContext(ctx).Model(&models.Bag{}).
		Where("id = ?", id).
		Pluck("likes", &likes).Error; err != nil {
		return 0, models.NewInternalError(err)
	}

	cache.InvalidateBag(ctx, id)
	return likes, nil
}

func (r *bagRepository) DeleteTree(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bag_id = ?", id).Delete(&models.Item{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bag_id = ?", id).Delete(&models.Category{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Bag{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBag(ctx, id)
	return nil
}
