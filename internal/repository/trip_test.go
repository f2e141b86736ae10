package repository

import (
	"context"
	"testing"

	"packtrail/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripRepository_CreateTree(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	trip := seedTrip(t, db, user.ID)

	// Every level must carry the trip reference, not just the direct parent.
	var categories []models.Category
	require.NoError(t, db.Where("trip_id = ?", trip.ID).Find(&categories).Error)
	require.Len(t, categories, 1)

	var items []models.Item
	require.NoError(t, db.Where("trip_id = ?", trip.ID).Find(&items).Error)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, trip.Bags[0].ID, it.BagID)
		assert.Equal(t, categories[0].ID, it.CategoryID)
	}
}

func TestTripRepository_GetTree(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)
	user := seedUser(t, db, "alice")
	trip := seedTrip(t, db, user.ID)

	got, err := repo.GetTree(context.Background(), trip.ID)
	require.NoError(t, err)
	require.Len(t, got.Bags, 1)
	require.Len(t, got.Bags[0].Categories, 1)
	assert.Len(t, got.Bags[0].Categories[0].Items, 2)

	_, err = repo.GetTree(context.Background(), 9999)
	assert.Error(t, err)
}

func TestTripRepository_ListByUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	seedTrip(t, db, alice.ID)
	seedTrip(t, db, alice.ID)
	seedTrip(t, db, bob.ID)

	trips, err := repo.ListByUser(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Len(t, trips, 2)
}

func TestTripRepository_DeleteTree(t *testing.T) {
	db := newTestDB(t)
	repo := NewTripRepository(db)
	user := seedUser(t, db, "alice")
	trip := seedTrip(t, db, user.ID)
	keep := seedTrip(t, db, user.ID)

	require.NoError(t, repo.DeleteTree(context.Background(), trip.ID))

	// Everything under the deleted trip is gone; the sibling trip is intact.
	assert.EqualValues(t, 1, countRows(t, db, &models.Trip{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.Bag{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.Category{}))
	assert.EqualValues(t, 2, countRows(t, db, &models.Item{}))

	_, err := repo.GetByID(context.Background(), keep.ID)
	assert.NoError(t, err)
}
