package service

import (
	"context"
	"log/slog"
	"time"

	"packtrail/internal/middleware"
	"packtrail/internal/models"
	"packtrail/internal/observability"
	"packtrail/internal/repository"
	"packtrail/internal/storage"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// imageCopyConcurrency caps parallel object-store copies per cascade.
const imageCopyConcurrency = 8

// CascadeService implements the multi-entity operations: duplicating and
// deleting whole trip/bag/category subtrees, including their stored images.
type CascadeService struct {
	tripRepo     repository.TripRepository
	bagRepo      repository.BagRepository
	categoryRepo repository.CategoryRepository
	itemRepo     repository.ItemRepository
	store        storage.Store
}

// NewCascadeService returns a new CascadeService.
func NewCascadeService(
	tripRepo repository.TripRepository,
	bagRepo repository.BagRepository,
	categoryRepo repository.CategoryRepository,
	itemRepo repository.ItemRepository,
	store storage.Store,
) *CascadeService {
	return &CascadeService{
		tripRepo:     tripRepo,
		bagRepo:      bagRepo,
		categoryRepo: categoryRepo,
		itemRepo:     itemRepo,
		store:        store,
	}
}

// imageCopy is one pending object-store duplication. target points at the
// ImageURL field of the copied entity, written once the copy succeeds.
type imageCopy struct {
	srcURL string
	target *string
}

// copyImages runs the pending copies concurrently. It returns the keys of
// every object it created, including ones created before a failure, so the
// caller can delete them if the database phase never happens.
func (s *CascadeService) copyImages(ctx context.Context, copies []imageCopy) ([]string, error) {
	created := make([]string, len(copies))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(imageCopyConcurrency)
	for i := range copies {
		i := i
		g.Go(func() error {
			srcKey := storage.KeyFromURL(copies[i].srcURL)
			newKey, err := s.store.Copy(ctx, srcKey)
			observability.RecordStorageOp("copy", err)
			if err != nil {
				return models.NewUpstreamError("Image copy failed", err)
			}
			created[i] = newKey
			*copies[i].target = s.store.URL(newKey)
			return nil
		})
	}
	err := g.Wait()

	keys := make([]string, 0, len(created))
	for _, k := range created {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys, err
}

// compensate removes objects created by a cascade whose database phase
// failed. Best effort: a leaked object is logged, not fatal.
func (s *CascadeService) compensate(ctx context.Context, keys []string) {
	for _, key := range keys {
		err := s.store.Delete(ctx, key)
		observability.RecordStorageOp("delete", err)
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "orphaned object after failed cascade",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}

// stageImage queues an entity image for duplication when it lives in our
// store. External URLs are carried over as-is.
func (s *CascadeService) stageImage(copies []imageCopy, srcURL string, target *string) []imageCopy {
	if srcURL == "" {
		return copies
	}
	if !s.store.Owns(srcURL) {
		*target = srcURL
		return copies
	}
	return append(copies, imageCopy{srcURL: srcURL, target: target})
}

// buildBagCopy assembles an unsaved copy of a bag subtree and stages its
// image duplications. The copy is never publicly listed and starts unliked.
func (s *CascadeService) buildBagCopy(src *models.Bag, tripID, userID uint, copies []imageCopy) (*models.Bag, []imageCopy) {
	bag := &models.Bag{
		TripID:      tripID,
		UserID:      userID,
		Name:        src.Name,
		Description: src.Description,
		Goal:        src.Goal,
		Passed:      src.Passed,
		Likes:       0,
		ExploreBags: false,
	}
	copies = s.stageImage(copies, src.ImageURL, &bag.ImageURL)

	bag.Categories = make([]models.Category, len(src.Categories))
	for i := range src.Categories {
		srcCat := &src.Categories[i]
		bag.Categories[i] = models.Category{
			UserID:   userID,
			Name:     srcCat.Name,
			Color:    srcCat.Color,
			Position: srcCat.Position,
		}

		items := make([]models.Item, len(srcCat.Items))
		for j := range srcCat.Items {
			srcItem := &srcCat.Items[j]
			items[j] = models.Item{
				UserID:      userID,
				Name:        srcItem.Name,
				Description: srcItem.Description,
				Qty:         srcItem.Qty,
				Weight:      srcItem.Weight,
				WeightUnit:  srcItem.WeightUnit,
				Priority:    srcItem.Priority,
				Worn:        srcItem.Worn,
				Link:        srcItem.Link,
				Position:    srcItem.Position,
			}
			copies = s.stageImage(copies, srcItem.ImageURL, &items[j].ImageURL)
		}
		bag.Categories[i].Items = items
	}
	return bag, copies
}

// DuplicateTrip deep-copies a trip the viewer owns: every bag, category and
// item, with fresh IDs and duplicated images. Runs in two phases: object
// copies first (concurrent), then one database transaction. If the
// transaction fails the copied objects are deleted again.
func (s *CascadeService) DuplicateTrip(ctx context.Context, viewerID, tripID uint) (retTrip *models.Trip, retErr error) {
	defer func(start time.Time) {
		observability.CascadeDuration.WithLabelValues("duplicate_trip").Observe(time.Since(start).Seconds())
	}(time.Now())
	ctx, endSpan := observability.StartSpan(ctx, "cascade.duplicate_trip",
		attribute.Int("trip_id", int(tripID)))
	defer func() { endSpan(retErr) }()

	src, err := s.tripRepo.GetTree(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if src.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}

	trip := &models.Trip{
		UserID:    viewerID,
		Name:      src.Name,
		About:     src.About,
		Distance:  src.Distance,
		StartDate: src.StartDate,
		EndDate:   src.EndDate,
	}
	var copies []imageCopy
	copies = s.stageImage(copies, src.ImageURL, &trip.ImageURL)

	trip.Bags = make([]models.Bag, 0, len(src.Bags))
	for i := range src.Bags {
		bag, staged := s.buildBagCopy(&src.Bags[i], 0, viewerID, copies)
		copies = staged
		trip.Bags = append(trip.Bags, *bag)
	}

	createdKeys, err := s.copyImages(ctx, copies)
	if err != nil {
		s.compensate(ctx, createdKeys)
		return nil, err
	}

	if err := s.tripRepo.CreateTree(ctx, trip); err != nil {
		s.compensate(ctx, createdKeys)
		return nil, err
	}
	return trip, nil
}

// DuplicateBag deep-copies a bag the viewer owns into the same trip.
func (s *CascadeService) DuplicateBag(ctx context.Context, viewerID, bagID uint) (retBag *models.Bag, retErr error) {
	defer func(start time.Time) {
		observability.CascadeDuration.WithLabelValues("duplicate_bag").Observe(time.Since(start).Seconds())
	}(time.Now())
	ctx, endSpan := observability.StartSpan(ctx, "cascade.duplicate_bag",
		attribute.Int("bag_id", int(bagID)))
	defer func() { endSpan(retErr) }()

	src, err := s.bagRepo.GetTree(ctx, bagID)
	if err != nil {
		return nil, err
	}
	if src.UserID != viewerID {
		return nil, models.NewNotAuthorizedError()
	}

	var copies []imageCopy
	bag, copies := s.buildBagCopy(src, src.TripID, viewerID, copies)

	createdKeys, err := s.copyImages(ctx, copies)
	if err != nil {
		s.compensate(ctx, createdKeys)
		return nil, err
	}

	if err := s.bagRepo.CreateTree(ctx, bag); err != nil {
		s.compensate(ctx, createdKeys)
		return nil, err
	}
	return bag, nil
}

// collectImageKeys gathers every store-hosted image key in the given URLs.
func (s *CascadeService) collectImageKeys(urls []string) []string {
	keys := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != "" && s.store.Owns(u) {
			keys = append(keys, storage.KeyFromURL(u))
		}
	}
	return keys
}

// deleteObjects removes stored images after a committed deletion. Failures
// are logged; the database rows are already gone.
func (s *CascadeService) deleteObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		err := s.store.Delete(ctx, key)
		observability.RecordStorageOp("delete", err)
		if err != nil {
			middleware.Logger.ErrorContext(ctx, "stored image not deleted",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}

// DeleteTrip removes a trip the viewer owns and everything under it. The
// database rows go in one transaction; stored images are removed afterward.
func (s *CascadeService) DeleteTrip(ctx context.Context, viewerID, tripID uint) (retErr error) {
	defer func(start time.Time) {
		observability.CascadeDuration.WithLabelValues("delete_trip").Observe(time.Since(start).Seconds())
	}(time.Now())
	ctx, endSpan := observability.StartSpan(ctx, "cascade.delete_trip",
		attribute.Int("trip_id", int(tripID)))
	defer func() { endSpan(retErr) }()

	trip, err := s.tripRepo.GetTree(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.UserID != viewerID {
		return models.NewNotAuthorizedError()
	}

	urls := []string{trip.ImageURL}
	for i := range trip.Bags {
		urls = append(urls, bagImageURLs(&trip.Bags[i])...)
	}
	keys := s.collectImageKeys(urls)

	if err := s.tripRepo.DeleteTree(ctx, tripID); err != nil {
		return err
	}
	s.deleteObjects(ctx, keys)
	return nil
}

// DeleteBag removes a bag the viewer owns and everything under it.
func (s *CascadeService) DeleteBag(ctx context.Context, viewerID, bagID uint) error {
	defer func(start time.Time) {
		observability.CascadeDuration.WithLabelValues("delete_bag").Observe(time.Since(start).Seconds())
	}(time.Now())

	bag, err := s.bagRepo.GetTree(ctx, bagID)
	if err != nil {
		return err
	}
	if bag.UserID != viewerID {
		return models.NewNotAuthorizedError()
	}

	keys := s.collectImageKeys(bagImageURLs(bag))

	if err := s.bagRepo.DeleteTree(ctx, bagID); err != nil {
		return err
	}
	s.deleteObjects(ctx, keys)
	return nil
}

// DeleteCategory removes a category the viewer owns and its items.
func (s *CascadeService) DeleteCategory(ctx context.Context, viewerID, categoryID uint) error {
	defer func(start time.Time) {
		observability.CascadeDuration.WithLabelValues("delete_category").Observe(time.Since(start).Seconds())
	}(time.Now())

	category, err := s.categoryRepo.GetWithItems(ctx, categoryID)
	if err != nil {
		return err
	}
	if category.UserID != viewerID {
		return models.NewNotAuthorizedError()
	}

	urls := make([]string, 0, len(category.Items))
	for _, it := range category.Items {
		urls = append(urls, it.ImageURL)
	}
	keys := s.collectImageKeys(urls)

	if err := s.categoryRepo.DeleteTree(ctx, categoryID); err != nil {
		return err
	}
	s.deleteObjects(ctx, keys)
	return nil
}

// DeleteItem removes a single item the viewer owns.
func (s *CascadeService) DeleteItem(ctx context.Context, viewerID, itemID uint) error {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.UserID != viewerID {
		return models.NewNotAuthorizedError()
	}

	keys := s.collectImageKeys([]string{item.ImageURL})

	if err := s.itemRepo.Delete(ctx, itemID); err != nil {
		return err
	}
	s.deleteObjects(ctx, keys)
	return nil
}

// bagImageURLs lists every image URL in a loaded bag subtree.
func bagImageURLs(bag *models.Bag) []string {
	urls := []string{bag.ImageURL}
	for i := range bag.Categories {
		for _, it := range bag.Categories[i].Items {
			urls = append(urls, it.ImageURL)
		}
	}
	return urls
}
