package service

import (
	"context"

	"packtrail/internal/models"
	"packtrail/internal/repository"
	"packtrail/internal/validation"
	"packtrail/internal/weight"
)

// BagService handles bag CRUD, weight composition and the public share reads.
type BagService struct {
	bagRepo  repository.BagRepository
	tripRepo repository.TripRepository
	userRepo repository.UserRepository
}

// BagInput carries the writable bag fields.
type BagInput struct {
	TripID      uint
	Name        string
	Description string
	Goal        string
	Passed      bool
	ExploreBags bool
	ImageURL    string
}

// NewBagService returns a new BagService.
func NewBagService(bagRepo repository.BagRepository, tripRepo repository.TripRepository, userRepo repository.UserRepository) *BagService {
	return &BagService{bagRepo: bagRepo, tripRepo: tripRepo, userRepo: userRepo}
}

// ownedBag loads a bag and verifies the viewer owns it.
func (s *BagService) ownedBag(ctx context.Context, viewerID, bagID uint) (*models.Bag, error) {
	bag, err := s.bagRepo.GetByID(ctx, bagID)
	if err != nil {
		return nil, err
	}
	if bag.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}
	return bag, nil
}

// composeTotals fills the derived per-category weight totals, expressed in the
// owner's preferred unit. The owner is fetched once for the whole bag.
func (s *BagService) composeTotals(ctx context.Context, bag *models.Bag) error {
	owner, err := s.userRepo.GetByID(ctx, bag.UserID)
	if err != nil {
		return err
	}
	ownerUnit := weight.Unit(owner.WeightUnit)

	for i := range bag.Categories {
		category := &bag.Categories[i]
		category.TotalWeight, category.TotalWornWeight = weight.Totals(category.Items, ownerUnit)
	}
	return nil
}

// GetBag returns a bag the viewer owns, with categories, items and computed
// weight totals.
func (s *BagService) GetBag(ctx context.Context, viewerID, bagID uint) (*models.Bag, error) {
	bag, err := s.bagRepo.GetTree(ctx, bagID)
	if err != nil {
		return nil, err
	}
	if bag.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}
	if err := s.composeTotals(ctx, bag); err != nil {
		return nil, err
	}
	return bag, nil
}

// ListBags returns the bags of a trip the viewer owns.
func (s *BagService) ListBags(ctx context.Context, viewerID, tripID uint) ([]models.Bag, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}
	return s.bagRepo.ListByTrip(ctx, tripID)
}

// AddBag creates a bag under a trip the viewer owns.
func (s *BagService) AddBag(ctx context.Context, viewerID uint, in BagInput) (*models.Bag, error) {
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	trip, err := s.tripRepo.GetByID(ctx, in.TripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}

	bag := &models.Bag{
		TripID:      in.TripID,
		UserID:      viewerID,
		Name:        in.Name,
		Description: in.Description,
		Goal:        in.Goal,
		Passed:      in.Passed,
		ExploreBags: in.ExploreBags,
		ImageURL:    in.ImageURL,
	}
	if err := s.bagRepo.Create(ctx, bag); err != nil {
		return nil, err
	}
	return bag, nil
}

// UpdateBag applies a full update to a bag the viewer owns. The bag cannot be
// moved between trips.
func (s *BagService) UpdateBag(ctx context.Context, viewerID, bagID uint, in BagInput) (*models.Bag, error) {
	bag, err := s.ownedBag(ctx, viewerID, bagID)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	bag.Name = in.Name
	bag.Description = in.Description
	bag.Goal = in.Goal
	bag.Passed = in.Passed
	bag.ExploreBags = in.ExploreBags
	bag.ImageURL = in.ImageURL

	if err := s.bagRepo.Update(ctx, bag); err != nil {
		return nil, err
	}
	return bag, nil
}

// SharedBag is the public share-link read. It deliberately skips the
// ownership check: possession of the link is the gate, not token identity.
func (s *BagService) SharedBag(ctx context.Context, bagID uint) (*models.Bag, error) {
	bag, err := s.bagRepo.GetSharedTree(ctx, bagID)
	if err != nil {
		return nil, err
	}
	if err := s.composeTotals(ctx, bag); err != nil {
		return nil, err
	}
	return bag, nil
}

// UserShared lists a user's publicly listed bags, looked up by username so
// share links never expose numeric IDs. Public read.
func (s *BagService) UserShared(ctx context.Context, username string) ([]models.Bag, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	bags, err := s.bagRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	shared := make([]models.Bag, 0, len(bags))
	for _, b := range bags {
		if b.ExploreBags {
			shared = append(shared, b)
		}
	}
	return shared, nil
}

// ExploreBag pairs a shared bag with its owner for the community listing.
type ExploreBag struct {
	Bag   models.Bag
	Owner models.User
}

// Explore lists community-shared bags, most liked first, with owners fetched
// in one batched query.
func (s *BagService) Explore(ctx context.Context, limit int) ([]ExploreBag, error) {
	bags, err := s.bagRepo.ListExplore(ctx, limit)
	if err != nil {
		return nil, err
	}

	ownerIDs := make([]uint, 0, len(bags))
	seen := make(map[uint]struct{}, len(bags))
	for _, b := range bags {
		if _, ok := seen[b.UserID]; !ok {
			seen[b.UserID] = struct{}{}
			ownerIDs = append(ownerIDs, b.UserID)
		}
	}
	owners, err := s.userRepo.GetByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	out := make([]ExploreBag, 0, len(bags))
	for _, b := range bags {
		out = append(out, ExploreBag{Bag: b, Owner: owners[b.UserID]})
	}
	return out, nil
}

// LikeBag increments the like counter of a publicly shared bag.
func (s *BagService) LikeBag(ctx context.Context, bagID uint) (*models.Bag, error) {
	bag, err := s.bagRepo.GetByID(ctx, bagID)
	if err != nil {
		return nil, err
	}
	if !bag.ExploreBags {
		return nil, models.NewNotAuthorizedError()
	}

	likes, err := s.bagRepo.IncrementLikes(ctx, bagID)
	if err != nil {
		return nil, err
	}
	bag.Likes = likes
	return bag, nil
}
