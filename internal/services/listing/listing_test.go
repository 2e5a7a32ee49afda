package listing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateListing(ctx context.Context, l models.Listing) (int64, error) {
	args := m.Called(ctx, l)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) GetListing(ctx context.Context, id int64) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *RepoMock) ListPublicListings(ctx context.Context, limit, offset int) ([]*models.PublicListing, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PublicListing), args.Error(1)
}

func (m *RepoMock) RemoveListing(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) CreateImage(ctx context.Context, img models.ListingImage) (int64, error) {
	args := m.Called(ctx, img)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) ListImages(ctx context.Context, listingID int64) ([]*models.ListingImage, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ListingImage), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreate(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CreateListing", mock.Anything, mock.MatchedBy(func(l models.Listing) bool {
		return l.OwnerID == 10 && l.Title == "Гараж" && l.AdNumber != ""
	})).Return(int64(5), nil)

	svc := New(repo, discardLogger())
	id, adNumber, err := svc.Create(context.Background(), 10, models.DummyListing{
		Title:        "Гараж",
		Category:     "garage",
		Price:        100000,
		ContactPhone: "+79990001122",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.Contains(t, adNumber, "AD-")
	repo.AssertExpectations(t)
}

func TestGetPublic(t *testing.T) {
	t.Run("Одобренное объявление возвращается без контактов", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetListing", mock.Anything, int64(5)).Return(&models.Listing{
			ID:           5,
			AdNumber:     "AD-0005",
			Title:        "Гараж",
			Status:       "approved",
			ContactPhone: "+79990001122",
		}, nil)

		svc := New(repo, discardLogger())
		l, err := svc.GetPublic(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, "AD-0005", l.AdNumber)
	})

	t.Run("Неодобренное объявление неотличимо от несуществующего", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetListing", mock.Anything, int64(5)).Return(&models.Listing{
			ID:     5,
			Status: "pending",
		}, nil)

		svc := New(repo, discardLogger())
		_, err := svc.GetPublic(context.Background(), 5)
		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestRemove(t *testing.T) {
	t.Run("Владелец удаляет своё объявление", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetListing", mock.Anything, int64(5)).Return(&models.Listing{ID: 5, OwnerID: 10}, nil)
		repo.On("RemoveListing", mock.Anything, int64(5)).Return(int64(1), nil)

		svc := New(repo, discardLogger())
		err := svc.Remove(context.Background(), 10, false, 5)
		require.NoError(t, err)
	})

	t.Run("Чужое объявление удалить нельзя", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetListing", mock.Anything, int64(5)).Return(&models.Listing{ID: 5, OwnerID: 10}, nil)

		svc := New(repo, discardLogger())
		err := svc.Remove(context.Background(), 99, false, 5)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotOwner)
		repo.AssertNotCalled(t, "RemoveListing", mock.Anything, mock.Anything)
	})

	t.Run("Администратор удаляет любое объявление", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetListing", mock.Anything, int64(5)).Return(&models.Listing{ID: 5, OwnerID: 10}, nil)
		repo.On("RemoveListing", mock.Anything, int64(5)).Return(int64(1), nil)

		svc := New(repo, discardLogger())
		err := svc.Remove(context.Background(), 1, true, 5)
		require.NoError(t, err)
	})
}

func TestAddImage(t *testing.T) {
	hash := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	t.Run("Изображение добавляется к своему объявлению", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetListing", mock.Anything, int64(5)).Return(&models.Listing{ID: 5, OwnerID: 10}, nil)
		repo.On("CreateImage", mock.Anything, mock.MatchedBy(func(img models.ListingImage) bool {
			return img.ListingID == 5 && img.ImageHash == hash
		})).Return(int64(3), nil)

		svc := New(repo, discardLogger())
		id, err := svc.AddImage(context.Background(), 10, 5, models.DummyListingImage{
			FilePath:  "uploads/garage.jpg",
			ImageHash: hash,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), id)
	})

	t.Run("Дубль изображения отклоняется", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetListing", mock.Anything, int64(5)).Return(&models.Listing{ID: 5, OwnerID: 10}, nil)
		repo.On("CreateImage", mock.Anything, mock.Anything).Return(int64(0), repository.ErrDuplicateImage)

		svc := New(repo, discardLogger())
		_, err := svc.AddImage(context.Background(), 10, 5, models.DummyListingImage{
			FilePath:  "uploads/garage.jpg",
			ImageHash: hash,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrDuplicateImage)
	})

	t.Run("Чужое объявление — отказ", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetListing", mock.Anything, int64(5)).Return(&models.Listing{ID: 5, OwnerID: 10}, nil)

		svc := New(repo, discardLogger())
		_, err := svc.AddImage(context.Background(), 99, 5, models.DummyListingImage{
			FilePath:  "uploads/garage.jpg",
			ImageHash: hash,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotOwner)
	})
}
