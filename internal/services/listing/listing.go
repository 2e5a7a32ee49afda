// Package listing содержит бизнес-логику объявлений: размещение,
// публичную выдачу, удаление и добавление изображений. Новые объявления
// и изображения всегда попадают в очередь модерации.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/moderation"
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

// ErrNotOwner возвращается, когда пользователь пытается изменить чужое объявление.
var ErrNotOwner = errors.New("listing belongs to another user")

// Repository определяет методы хранилища для работы с объявлениями.
type Repository interface {
	CreateListing(ctx context.Context, l models.Listing) (int64, error)
	GetListing(ctx context.Context, id int64) (*models.Listing, error)
	ListPublicListings(ctx context.Context, limit, offset int) ([]*models.PublicListing, error)
	RemoveListing(ctx context.Context, id int64) (int64, error)
	CreateImage(ctx context.Context, img models.ListingImage) (int64, error)
	ListImages(ctx context.Context, listingID int64) ([]*models.ListingImage, error)
}

// Service реализует операции над объявлениями.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// newAdNumber генерирует публичный номер объявления.
func newAdNumber() string {
	return "AD-" + strings.ToUpper(uuid.NewString()[:8])
}

// Create размещает новое объявление владельца. Объявление создаётся
// в статусе pending и не видно в публичной выдаче до одобрения.
func (s *Service) Create(ctx context.Context, ownerID int64, req models.DummyListing) (int64, string, error) {
	const op = "services.listing.Create"

	l := models.Listing{
		OwnerID:      ownerID,
		AdNumber:     newAdNumber(),
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price,
		Location:     req.Location,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
	}
	id, err := s.repo.CreateListing(ctx, l)
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("listing submitted for moderation",
		slog.Int64("listing_id", id),
		slog.Int64("owner_id", ownerID))
	return id, l.AdNumber, nil
}

// GetPublic возвращает объявление для публичного просмотра. Объявление
// в любом статусе кроме approved для читателя не существует.
func (s *Service) GetPublic(ctx context.Context, id int64) (*models.PublicListing, error) {
	const op = "services.listing.GetPublic"

	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if l.Status != string(moderation.StatusApproved) {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return &models.PublicListing{
		ID:          l.ID,
		AdNumber:    l.AdNumber,
		Title:       l.Title,
		Description: l.Description,
		Category:    l.Category,
		Price:       l.Price,
		Location:    l.Location,
		CreatedAt:   l.CreatedAt,
	}, nil
}

// ListPublic возвращает страницу одобренных объявлений.
func (s *Service) ListPublic(ctx context.Context, limit, offset int) ([]*models.PublicListing, error) {
	const op = "services.listing.ListPublic"

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	result, err := s.repo.ListPublicListings(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Remove удаляет объявление. Удалить может владелец объявления или
// администратор; история раскрытий контактов при этом сохраняется.
func (s *Service) Remove(ctx context.Context, actorID int64, isAdmin bool, listingID int64) error {
	const op = "services.listing.Remove"

	l, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !isAdmin && l.OwnerID != actorID {
		return fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	if _, err := s.repo.RemoveListing(ctx, listingID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("listing removed",
		slog.Int64("listing_id", listingID),
		slog.Int64("actor_id", actorID))
	return nil
}

// AddImage прикрепляет изображение к объявлению владельца. Изображение
// создаётся в статусе pending и модерируется отдельно от объявления.
// Повторная загрузка того же файла к тому же объявлению отклоняется
// по хешу содержимого.
func (s *Service) AddImage(ctx context.Context, ownerID, listingID int64, req models.DummyListingImage) (int64, error) {
	const op = "services.listing.AddImage"

	l, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if l.OwnerID != ownerID {
		return 0, fmt.Errorf("%s: %w", op, ErrNotOwner)
	}

	img := models.ListingImage{
		ListingID:   listingID,
		FilePath:    req.FilePath,
		ImageHash:   strings.ToLower(req.ImageHash),
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	}
	id, err := s.repo.CreateImage(ctx, img)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("listing image submitted for moderation",
		slog.Int64("listing_id", listingID),
		slog.Int64("image_id", id))
	return id, nil
}

// Images возвращает изображения объявления.
func (s *Service) Images(ctx context.Context, listingID int64) ([]*models.ListingImage, error) {
	const op = "services.listing.Images"

	result, err := s.repo.ListImages(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
