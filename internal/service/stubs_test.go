package service

import (
	"context"
	"errors"
	"testing"

	"packtrail/internal/models"

	"github.com/stretchr/testify/require"
)

// Func-field stubs shared by the service tests. Each stub satisfies its
// repository interface; unset fields panic loudly so a test only touches the
// paths it wired.

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, models.CodeValidation, appErr.Code)
}

func assertNotAuthorized(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, models.CodeNotAuthorized, appErr.Code)
}

type userRepoStub struct {
	getByIDFn          func(ctx context.Context, id uint) (*models.User, error)
	getByIDsFn         func(ctx context.Context, ids []uint) (map[uint]models.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*models.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*models.User, error)
	getByVerifyTokenFn func(ctx context.Context, token string) (*models.User, error)
	getByResetTokenFn  func(ctx context.Context, token string) (*models.User, error)
	createFn           func(ctx context.Context, user *models.User) error
	updateFn           func(ctx context.Context, user *models.User) error
	deleteFn           func(ctx context.Context, id uint) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByVerifyToken(ctx context.Context, token string) (*models.User, error) {
	return s.getByVerifyTokenFn(ctx, token)
}
func (s *userRepoStub) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	return s.getByResetTokenFn(ctx, token)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

// noopUserRepo returns a stub where lookups miss and writes succeed.
func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:          func(context.Context, uint) (*models.User, error) { return nil, errors.New("not found") },
		getByIDsFn:         func(context.Context, []uint) (map[uint]models.User, error) { return map[uint]models.User{}, nil },
		getByEmailFn:       func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByVerifyTokenFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		getByResetTokenFn:  func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:           func(context.Context, *models.User) error { return nil },
		updateFn:           func(context.Context, *models.User) error { return nil },
		deleteFn:           func(context.Context, uint) error { return nil },
	}
}

type tripRepoStub struct {
	getByIDFn    func(ctx context.Context, id uint) (*models.Trip, error)
	getTreeFn    func(ctx context.Context, id uint) (*models.Trip, error)
	listByUserFn func(ctx context.Context, userID uint) ([]models.Trip, error)
	createFn     func(ctx context.Context, trip *models.Trip) error
	createTreeFn func(ctx context.Context, trip *models.Trip) error
	updateFn     func(ctx context.Context, trip *models.Trip) error
	deleteTreeFn func(ctx context.Context, id uint) error
}

func (s *tripRepoStub) GetByID(ctx context.Context, id uint) (*models.Trip, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tripRepoStub) GetTree(ctx context.Context, id uint) (*models.Trip, error) {
	return s.getTreeFn(ctx, id)
}
func (s *tripRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Trip, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *tripRepoStub) Create(ctx context.Context, trip *models.Trip) error {
	return s.createFn(ctx, trip)
}
func (s *tripRepoStub) CreateTree(ctx context.Context, trip *models.Trip) error {
	return s.createTreeFn(ctx, trip)
}
func (s *tripRepoStub) Update(ctx context.Context, trip *models.Trip) error {
	return s.updateFn(ctx, trip)
}
func (s *tripRepoStub) DeleteTree(ctx context.Context, id uint) error {
	return s.deleteTreeFn(ctx, id)
}

type bagRepoStub struct {
	getByIDFn        func(ctx context.Context, id uint) (*models.Bag, error)
	getTreeFn        func(ctx context.Context, id uint) (*models.Bag, error)
	getSharedTreeFn  func(ctx context.Context, id uint) (*models.Bag, error)
	listByTripFn     func(ctx context.Context, tripID uint) ([]models.Bag, error)
	listByUserFn     func(ctx context.Context, userID uint) ([]models.Bag, error)
	listExploreFn    func(ctx context.Context, limit int) ([]models.Bag, error)
	createFn         func(ctx context.Context, bag *models.Bag) error
	createTreeFn     func(ctx context.Context, bag *models.Bag) error
	updateFn         func(ctx context.Context, bag *models.Bag) error
	incrementLikesFn func(ctx context.Context, id uint) (int, error)
	deleteTreeFn     func(ctx context.Context, id uint) error
}

func (s *bagRepoStub) GetByID(ctx context.Context, id uint) (*models.Bag, error) {
	return s.getByIDFn(ctx, id)
}
func (s *bagRepoStub) GetTree(ctx context.Context, id uint) (*models.Bag, error) {
	return s.getTreeFn(ctx, id)
}
func (s *bagRepoStub) GetSharedTree(ctx context.Context, id uint) (*models.Bag, error) {
	if s.getSharedTreeFn != nil {
		return s.getSharedTreeFn(ctx, id)
	}
	return s.getTreeFn(ctx, id)
}
func (s *bagRepoStub) ListByTrip(ctx context.Context, tripID uint) ([]models.Bag, error) {
	return s.listByTripFn(ctx, tripID)
}
func (s *bagRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Bag, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *bagRepoStub) ListExplore(ctx context.Context, limit int) ([]models.Bag, error) {
	return s.listExploreFn(ctx, limit)
}
func (s *bagRepoStub) Create(ctx context.Context, bag *models.Bag) error {
	return s.createFn(ctx, bag)
}
func (s *bagRepoStub) CreateTree(ctx context.Context, bag *models.Bag) error {
	return s.createTreeFn(ctx, bag)
}
func (s *bagRepoStub) Update(ctx context.Context, bag *models.Bag) error {
	return s.updateFn(ctx, bag)
}
func (s *bagRepoStub) IncrementLikes(ctx context.Context, id uint) (int, error) {
	return s.incrementLikesFn(ctx, id)
}
func (s *bagRepoStub) DeleteTree(ctx context.Context, id uint) error {
	return s.deleteTreeFn(ctx, id)
}

type categoryRepoStub struct {
	getByIDFn      func(ctx context.Context, id uint) (*models.Category, error)
	getWithItemsFn func(ctx context.Context, id uint) (*models.Category, error)
	listByBagFn    func(ctx context.Context, bagID uint) ([]models.Category, error)
	nextPositionFn func(ctx context.Context, bagID uint) (int, error)
	createFn       func(ctx context.Context, category *models.Category) error
	updateFn       func(ctx context.Context, category *models.Category) error
	reorderFn      func(ctx context.Context, bagID uint, orderedIDs []uint) error
	deleteTreeFn   func(ctx context.Context, id uint) error
}

func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) GetWithItems(ctx context.Context, id uint) (*models.Category, error) {
	return s.getWithItemsFn(ctx, id)
}
func (s *categoryRepoStub) ListByBag(ctx context.Context, bagID uint) ([]models.Category, error) {
	return s.listByBagFn(ctx, bagID)
}
func (s *categoryRepoStub) NextPosition(ctx context.Context, bagID uint) (int, error) {
	return s.nextPositionFn(ctx, bagID)
}
func (s *categoryRepoStub) Create(ctx context.Context, category *models.Category) error {
	return s.createFn(ctx, category)
}
func (s *categoryRepoStub) Update(ctx context.Context, category *models.Category) error {
	return s.updateFn(ctx, category)
}
func (s *categoryRepoStub) Reorder(ctx context.Context, bagID uint, orderedIDs []uint) error {
	return s.reorderFn(ctx, bagID, orderedIDs)
}
func (s *categoryRepoStub) DeleteTree(ctx context.Context, id uint) error {
	return s.deleteTreeFn(ctx, id)
}

type itemRepoStub struct {
	getByIDFn        func(ctx context.Context, id uint) (*models.Item, error)
	listByCategoryFn func(ctx context.Context, categoryID uint) ([]models.Item, error)
	listByBagFn      func(ctx context.Context, bagID uint) ([]models.Item, error)
	nextPositionFn   func(ctx context.Context, categoryID uint) (int, error)
	createFn         func(ctx context.Context, item *models.Item) error
	updateFn         func(ctx context.Context, item *models.Item) error
	deleteFn         func(ctx context.Context, id uint) error
	reorderFn        func(ctx context.Context, categoryID uint, orderedIDs []uint) error
}

func (s *itemRepoStub) GetByID(ctx context.Context, id uint) (*models.Item, error) {
	return s.getByIDFn(ctx, id)
}
func (s *itemRepoStub) ListByCategory(ctx context.Context, categoryID uint) ([]models.Item, error) {
	return s.listByCategoryFn(ctx, categoryID)
}
func (s *itemRepoStub) ListByBag(ctx context.Context, bagID uint) ([]models.Item, error) {
	return s.listByBagFn(ctx, bagID)
}
func (s *itemRepoStub) NextPosition(ctx context.Context, categoryID uint) (int, error) {
	return s.nextPositionFn(ctx, categoryID)
}
func (s *itemRepoStub) Create(ctx context.Context, item *models.Item) error {
	return s.createFn(ctx, item)
}
func (s *itemRepoStub) Update(ctx context.Context, item *models.Item) error {
	return s.updateFn(ctx, item)
}
func (s *itemRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *itemRepoStub) Reorder(ctx context.Context, categoryID uint, orderedIDs []uint) error {
	return s.reorderFn(ctx, categoryID, orderedIDs)
}

// mailerStub records outgoing mail; SendErr fails every send when set.
type mailerStub struct {
	Verifications []string
	Resets        []string
	SendErr       error
}

func (m *mailerStub) SendVerification(_ context.Context, to, _ string) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Verifications = append(m.Verifications, to)
	return nil
}

func (m *mailerStub) SendPasswordReset(_ context.Context, to, _ string) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Resets = append(m.Resets, to)
	return nil
}
