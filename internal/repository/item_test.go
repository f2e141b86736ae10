package repository

import (
	"context"
	"testing"

	"packtrail/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemRepository_Reorder(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	user := seedUser(t, db, "alice")
	trip := seedTrip(t, db, user.ID)
	category := trip.Bags[0].Categories[0]
	items := category.Items
	require.Len(t, items, 2)

	// Swap the two items.
	ordered := []uint{items[1].ID, items[0].ID}
	require.NoError(t, repo.Reorder(context.Background(), category.ID, ordered))

	got, err := repo.ListByCategory(context.Background(), category.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, items[1].ID, got[0].ID)
	assert.Equal(t, 1, got[0].Position)
	assert.Equal(t, items[0].ID, got[1].ID)
	assert.Equal(t, 2, got[1].Position)
}

func TestItemRepository_ReorderRejectsForeignItem(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	user := seedUser(t, db, "alice")
	trip := seedTrip(t, db, user.ID)
	other := seedTrip(t, db, user.ID)

	foreign := other.Bags[0].Categories[0].Items[0]
	err := repo.Reorder(context.Background(), trip.Bags[0].Categories[0].ID, []uint{foreign.ID})
	assert.Error(t, err)
}

func TestItemRepository_CreateAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db)
	user := seedUser(t, db, "alice")
	trip := seedTrip(t, db, user.ID)
	category := trip.Bags[0].Categories[0]

	pos, err := repo.NextPosition(context.Background(), category.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	item := &models.Item{
		TripID:     trip.ID,
		BagID:      trip.Bags[0].ID,
		CategoryID: category.ID,
		UserID:     user.ID,
		Name:       "Headlamp",
		Weight:     3,
		WeightUnit: models.UnitOunce,
		Qty:        1,
		Position:   pos,
	}
	require.NoError(t, repo.Create(context.Background(), item))
	require.NotZero(t, item.ID)

	require.NoError(t, repo.Delete(context.Background(), item.ID))
	_, err = repo.GetByID(context.Background(), item.ID)
	assert.Error(t, err)
}
