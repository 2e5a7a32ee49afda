// Package contact реализует раскрытие контактов объявлений с учётом квоты
// подписки. Раскрытие идемпотентно: повторный запрос той же пары
// (пользователь, объявление) возвращает контакт бесплатно.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/classifieds-backend/internal/lib/sl"
	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/moderation"
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

// Причины отказа в раскрытии контакта. Клиент должен уметь их различать:
// отсутствие подписки лечится покупкой, исчерпанная квота — ожиданием.
var (
	// ErrListingNotVisible — объявление не существует или не прошло модерацию.
	ErrListingNotVisible = errors.New("listing is not visible")
	// ErrNoActiveSubscription — нет действующей подписки и бесплатная квота исчерпана.
	ErrNoActiveSubscription = errors.New("no active subscription")
	// ErrQuotaExceeded — квота раскрытий текущего окна подписки исчерпана.
	ErrQuotaExceeded = errors.New("contact quota exceeded")
)

var revealsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "contact_reveals_total",
	Help: "Contact reveal requests by outcome.",
}, []string{"result"})

// Repository определяет методы хранилища, нужные для раскрытия контакта.
type Repository interface {
	GetListingContact(ctx context.Context, id int64) (*models.Listing, *models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUsage(ctx context.Context, userID, listingID int64) (*models.ContactUsage, error)
	InsertUsage(ctx context.Context, userID, listingID int64) (int64, error)
	CountUsageInWindow(ctx context.Context, userID int64, from, to time.Time) (int, error)
	CountUsageTotal(ctx context.Context, userID int64) (int, error)
}

// Entitlements отдаёт текущее право пользователя на раскрытия.
type Entitlements interface {
	CurrentEntitlement(ctx context.Context, userID int64, now time.Time) (*models.Entitlement, error)
}

// Publisher публикует событие о раскрытии контакта в очередь уведомлений.
type Publisher interface {
	PublishContactDisclosed(ctx context.Context, event models.ContactDisclosedEvent) error
}

// Service реализует бизнес-логику раскрытия контактов.
type Service struct {
	repo         Repository
	entitlements Entitlements
	publisher    Publisher
	freeLimit    int
	log          *slog.Logger
}

// New создает новый экземпляр Service. publisher может быть nil —
// тогда уведомления не отправляются.
func New(repo Repository, entitlements Entitlements, publisher Publisher, freeLimit int, log *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		entitlements: entitlements,
		publisher:    publisher,
		freeLimit:    freeLimit,
		log:          log,
	}
}

// Reveal раскрывает контакт объявления для пользователя.
//
// Порядок проверок:
//  1. объявление и его владелец должны быть одобрены модерацией;
//  2. повторный запрос уже раскрытой пары — бесплатный успех;
//  3. иначе проверяется квота (подписки или бесплатная) и атомарно
//     расходуется одна единица; проигравший гонку вставки запрос
//     трактуется как повтор и тоже получает контакт.
func (s *Service) Reveal(ctx context.Context, userID, listingID int64, now time.Time) (*models.ContactCard, error) {
	const op = "services.contact.Reveal"

	listing, owner, err := s.repo.GetListingContact(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			revealsTotal.WithLabelValues("denied_not_visible").Inc()
			return nil, fmt.Errorf("%s: %w", op, ErrListingNotVisible)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// Непрошедшее модерацию объявление неотличимо от несуществующего,
	// чтобы по ответу нельзя было узнать о его наличии.
	if listing.Status != string(moderation.StatusApproved) ||
		owner.ApprovalStatus != string(moderation.StatusApproved) {
		revealsTotal.WithLabelValues("denied_not_visible").Inc()
		return nil, fmt.Errorf("%s: %w", op, ErrListingNotVisible)
	}

	card := buildCard(listing, owner)

	_, err = s.repo.GetUsage(ctx, userID, listingID)
	if err == nil {
		revealsTotal.WithLabelValues("granted_repeat").Inc()
		return card, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.checkQuota(ctx, userID, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.InsertUsage(ctx, userID, listingID); err != nil {
		if errors.Is(err, repository.ErrUsageExists) {
			// Конкурентный запрос успел вставить строку первым,
			// квота уже списана им.
			revealsTotal.WithLabelValues("granted_repeat").Inc()
			return card, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	revealsTotal.WithLabelValues("granted_new").Inc()
	s.log.Info("contact disclosed",
		slog.Int64("user_id", userID),
		slog.Int64("listing_id", listingID))

	s.publishDisclosed(ctx, userID, listingID, card)
	return card, nil
}

// checkQuota проверяет, что у пользователя остались раскрытия.
// Квота считается по записям contact_usage внутри окна действующей
// подписки; без подписки действует бесплатный лимит за всё время.
func (s *Service) checkQuota(ctx context.Context, userID int64, now time.Time) error {
	ent, err := s.entitlements.CurrentEntitlement(ctx, userID, now)
	if err != nil {
		return err
	}
	if ent == nil {
		used, err := s.repo.CountUsageTotal(ctx, userID)
		if err != nil {
			return err
		}
		if used >= s.freeLimit {
			revealsTotal.WithLabelValues("denied_no_subscription").Inc()
			return ErrNoActiveSubscription
		}
		return nil
	}

	used, err := s.repo.CountUsageInWindow(ctx, userID, ent.WindowStart, ent.WindowEnd)
	if err != nil {
		return err
	}
	if used >= ent.Plan.ContactLimit {
		revealsTotal.WithLabelValues("denied_quota").Inc()
		return ErrQuotaExceeded
	}
	return nil
}

// publishDisclosed отправляет событие о раскрытии в очередь. Ошибка
// публикации не отменяет раскрытие: запись квоты уже зафиксирована.
func (s *Service) publishDisclosed(ctx context.Context, userID, listingID int64, card *models.ContactCard) {
	if s.publisher == nil {
		return
	}
	customer, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		s.log.Error("failed to load customer for notification", sl.Err(err))
		return
	}
	event := models.ContactDisclosedEvent{
		CustomerEmail: customer.Email,
		ListingID:     listingID,
		Card:          *card,
	}
	if err := s.publisher.PublishContactDisclosed(ctx, event); err != nil {
		s.log.Error("failed to publish contact disclosed event", sl.Err(err))
	}
}

func buildCard(listing *models.Listing, owner *models.User) *models.ContactCard {
	return &models.ContactCard{
		AdNumber:     listing.AdNumber,
		OwnerName:    owner.Username,
		CompanyName:  owner.CompanyName,
		ContactPhone: listing.ContactPhone,
		ContactEmail: listing.ContactEmail,
	}
}
