package service

import (
	"context"
	"strings"
	"testing"

	"packtrail/internal/models"
	"packtrail/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMediaBase = "http://localhost:8430/media"

// seedObject stores a dummy object under a fresh key and returns its URL.
func seedObject(t *testing.T, store *storage.MemoryStore, name string) string {
	t.Helper()
	key := storage.NewKey(name)
	require.NoError(t, store.Put(context.Background(), key, []byte(name)))
	return store.URL(key)
}

// tripTree builds a trip owned by user 1 with 2 bags, 2 categories each,
// 2 items per category, and store-hosted images on the trip, the first bag,
// and the first item. One item carries an external image URL.
func tripTree(t *testing.T, store *storage.MemoryStore) *models.Trip {
	t.Helper()
	trip := &models.Trip{ID: 1, UserID: 1, Name: "PCT Section J", ImageURL: seedObject(t, store, "trip.jpg")}
	for b := 0; b < 2; b++ {
		bag := models.Bag{ID: uint(10 + b), TripID: 1, UserID: 1, Name: "Bag", Likes: 12, ExploreBags: true}
		if b == 0 {
			bag.ImageURL = seedObject(t, store, "bag.jpg")
		}
		for c := 0; c < 2; c++ {
			cat := models.Category{ID: uint(100 + b*10 + c), UserID: 1, Name: "Cat", Position: c + 1}
			for i := 0; i < 2; i++ {
				item := models.Item{ID: uint(1000 + b*100 + c*10 + i), UserID: 1, Name: "Item", Qty: 1, Position: i + 1}
				if b == 0 && c == 0 && i == 0 {
					item.ImageURL = seedObject(t, store, "tent.jpg")
				}
				if b == 1 && c == 0 && i == 0 {
					item.ImageURL = "https://cdn.example.com/external.jpg"
				}
				cat.Items = append(cat.Items, item)
			}
			bag.Categories = append(bag.Categories, cat)
		}
		trip.Bags = append(trip.Bags, bag)
	}
	return trip
}

func cascadeServiceWith(store storage.Store, tripRepo *tripRepoStub, bagRepo *bagRepoStub) *CascadeService {
	if tripRepo == nil {
		tripRepo = &tripRepoStub{}
	}
	if bagRepo == nil {
		bagRepo = &bagRepoStub{}
	}
	return NewCascadeService(tripRepo, bagRepo, &categoryRepoStub{}, &itemRepoStub{}, store)
}

func TestCascadeService_DuplicateTrip(t *testing.T) {
	t.Parallel()

	t.Run("copies the whole tree with fresh images", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemoryStore(testMediaBase)
		src := tripTree(t, store)
		objectsBefore := store.Len()

		var created *models.Trip
		tripRepo := &tripRepoStub{
			getTreeFn: func(_ context.Context, _ uint) (*models.Trip, error) { return src, nil },
			createTreeFn: func(_ context.Context, trip *models.Trip) error {
				trip.ID = 2
				created = trip
				return nil
			},
		}
		svc := cascadeServiceWith(store, tripRepo, nil)

		dup, err := svc.DuplicateTrip(context.Background(), 1, 1)
		require.NoError(t, err)
		require.NotNil(t, created)

		require.Len(t, dup.Bags, 2)
		for _, bag := range dup.Bags {
			assert.False(t, bag.ExploreBags, "copies start unlisted")
			assert.Zero(t, bag.Likes, "copies start unliked")
			require.Len(t, bag.Categories, 2)
			for _, cat := range bag.Categories {
				assert.Len(t, cat.Items, 2)
			}
		}

		// Three store-hosted images were duplicated; the external one passed
		// through untouched.
		assert.Equal(t, objectsBefore+3, store.Len())
		assert.NotEqual(t, src.ImageURL, dup.ImageURL)
		assert.True(t, store.Owns(dup.ImageURL))
		assert.True(t, strings.HasSuffix(dup.ImageURL, "-trip.jpg"), "copied key keeps the original name")
		assert.Equal(t, "https://cdn.example.com/external.jpg", dup.Bags[1].Categories[0].Items[0].ImageURL)
	})

	t.Run("non-owner rejected", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemoryStore(testMediaBase)
		src := tripTree(t, store)
		tripRepo := &tripRepoStub{
			getTreeFn: func(_ context.Context, _ uint) (*models.Trip, error) { return src, nil },
		}
		svc := cascadeServiceWith(store, tripRepo, nil)
		_, err := svc.DuplicateTrip(context.Background(), 99, 1)
		assertNotAuthorized(t, err)
	})

	t.Run("failed transaction reclaims copied objects", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemoryStore(testMediaBase)
		src := tripTree(t, store)
		objectsBefore := store.Len()

		tripRepo := &tripRepoStub{
			getTreeFn:    func(_ context.Context, _ uint) (*models.Trip, error) { return src, nil },
			createTreeFn: func(_ context.Context, _ *models.Trip) error { return assert.AnError },
		}
		svc := cascadeServiceWith(store, tripRepo, nil)

		_, err := svc.DuplicateTrip(context.Background(), 1, 1)
		require.Error(t, err)
		assert.Equal(t, objectsBefore, store.Len(), "copied objects should be deleted again")
		assert.Len(t, store.Deletes, 3)
	})

	t.Run("failed image copy aborts before the database", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemoryStore(testMediaBase)
		src := tripTree(t, store)
		store.CopyErr = assert.AnError

		createTreeCalls := 0
		tripRepo := &tripRepoStub{
			getTreeFn: func(_ context.Context, _ uint) (*models.Trip, error) { return src, nil },
			createTreeFn: func(_ context.Context, _ *models.Trip) error {
				createTreeCalls++
				return nil
			},
		}
		svc := cascadeServiceWith(store, tripRepo, nil)

		_, err := svc.DuplicateTrip(context.Background(), 1, 1)
		require.Error(t, err)
		assert.Zero(t, createTreeCalls, "nothing should be persisted")
	})
}

func TestCascadeService_DuplicateBag(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore(testMediaBase)
	src := &tripTree(t, store).Bags[0]
	objectsBefore := store.Len()

	var created *models.Bag
	bagRepo := &bagRepoStub{
		getTreeFn: func(_ context.Context, _ uint) (*models.Bag, error) { return src, nil },
		createTreeFn: func(_ context.Context, bag *models.Bag) error {
			bag.ID = 20
			created = bag
			return nil
		},
	}
	svc := cascadeServiceWith(store, nil, bagRepo)

	dup, err := svc.DuplicateBag(context.Background(), 1, 10)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, src.TripID, dup.TripID, "bag copy stays in the same trip")
	assert.False(t, dup.ExploreBags)
	assert.Zero(t, dup.Likes)
	require.Len(t, dup.Categories, 2)
	assert.Len(t, dup.Categories[0].Items, 2)

	// Bag image plus one item image.
	assert.Equal(t, objectsBefore+2, store.Len())
	assert.NotEqual(t, src.ImageURL, dup.ImageURL)
}

func TestCascadeService_DeleteTrip(t *testing.T) {
	t.Parallel()

	t.Run("removes rows then stored images", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemoryStore(testMediaBase)
		src := tripTree(t, store)

		deleteTreeCalls := 0
		tripRepo := &tripRepoStub{
			getTreeFn: func(_ context.Context, _ uint) (*models.Trip, error) { return src, nil },
			deleteTreeFn: func(_ context.Context, id uint) error {
				deleteTreeCalls++
				assert.Equal(t, uint(1), id)
				return nil
			},
		}
		svc := cascadeServiceWith(store, tripRepo, nil)

		require.NoError(t, svc.DeleteTrip(context.Background(), 1, 1))
		assert.Equal(t, 1, deleteTreeCalls)
		assert.Zero(t, store.Len(), "all stored images reclaimed")
		assert.Len(t, store.Deletes, 3, "external URLs are not ours to delete")
	})

	t.Run("failed transaction keeps images", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemoryStore(testMediaBase)
		src := tripTree(t, store)
		objectsBefore := store.Len()

		tripRepo := &tripRepoStub{
			getTreeFn:    func(_ context.Context, _ uint) (*models.Trip, error) { return src, nil },
			deleteTreeFn: func(_ context.Context, _ uint) error { return assert.AnError },
		}
		svc := cascadeServiceWith(store, tripRepo, nil)

		require.Error(t, svc.DeleteTrip(context.Background(), 1, 1))
		assert.Equal(t, objectsBefore, store.Len())
	})
}

func TestCascadeService_ThumbnailsFollowMasters(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore(testMediaBase)
	src := tripTree(t, store)
	// The upload pipeline stores a thumbnail next to each master.
	tripKey := storage.KeyFromURL(src.ImageURL)
	require.NoError(t, store.Put(context.Background(), storage.ThumbKey(tripKey), []byte("webpdata")))
	objectsBefore := store.Len()

	tripRepo := &tripRepoStub{
		getTreeFn: func(_ context.Context, _ uint) (*models.Trip, error) { return src, nil },
		createTreeFn: func(_ context.Context, trip *models.Trip) error {
			trip.ID = 2
			return nil
		},
		deleteTreeFn: func(_ context.Context, _ uint) error { return nil },
	}
	svc := cascadeServiceWith(store, tripRepo, nil)

	dup, err := svc.DuplicateTrip(context.Background(), 1, 1)
	require.NoError(t, err)

	// Three masters plus the one thumbnail were duplicated.
	assert.Equal(t, objectsBefore+4, store.Len())
	dupKey := storage.KeyFromURL(dup.ImageURL)
	assert.True(t, store.Has(storage.ThumbKey(dupKey)), "copy gets its own thumbnail")

	require.NoError(t, svc.DeleteTrip(context.Background(), 1, 1))
	assert.False(t, store.Has(storage.ThumbKey(tripKey)), "thumbnail reclaimed with its master")
	assert.True(t, store.Has(storage.ThumbKey(dupKey)), "the copy keeps its thumbnail")
}

func TestCascadeService_DeleteBag(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore(testMediaBase)
	src := &tripTree(t, store).Bags[0]

	bagRepo := &bagRepoStub{
		getTreeFn:    func(_ context.Context, _ uint) (*models.Bag, error) { return src, nil },
		deleteTreeFn: func(_ context.Context, _ uint) error { return nil },
	}
	svc := cascadeServiceWith(store, nil, bagRepo)

	require.Error(t, svc.DeleteBag(context.Background(), 99, 10), "non-owner rejected")

	require.NoError(t, svc.DeleteBag(context.Background(), 1, 10))
	assert.Len(t, store.Deletes, 2, "bag image and one item image")
}

func TestCascadeService_DeleteItem(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore(testMediaBase)
	url := seedObject(t, store, "stove.jpg")

	deleted := 0
	itemRepo := &itemRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Item, error) {
			return &models.Item{ID: id, UserID: 1, ImageURL: url}, nil
		},
		deleteFn: func(_ context.Context, _ uint) error {
			deleted++
			return nil
		},
	}
	svc := NewCascadeService(&tripRepoStub{}, &bagRepoStub{}, &categoryRepoStub{}, itemRepo, store)

	require.NoError(t, svc.DeleteItem(context.Background(), 1, 1000))
	assert.Equal(t, 1, deleted)
	assert.Zero(t, store.Len())
}
