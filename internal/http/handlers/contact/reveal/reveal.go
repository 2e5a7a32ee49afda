// Package reveal реализует HTTP-обработчик раскрытия контактов объявления.
//
// Handler извлекает пользователя из контекста, идентификатор объявления из URL
// и делегирует раскрытие бизнес-логике. Причины отказа различимы по HTTP
// статусу: объявление недоступно, нет действующей подписки или квота
// раскрытий исчерпана.
package reveal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/classifieds-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/response"
	"github.com/magabrotheeeer/classifieds-backend/internal/lib/sl"
	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/services/contact"
)

// Handler управляет HTTP-запросами раскрытия контактов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики раскрытия контактов.
type Service interface {
	Reveal(ctx context.Context, userID, listingID int64, now time.Time) (*models.ContactCard, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Раскрыть контакты объявления
// @Description Возвращает контактную карточку владельца. Первое раскрытие расходует единицу квоты, повторные — бесплатны.
// @Tags Contacts
// @Produce  json
// @Param id path int true "ID объявления"
// @Success 200 {object} models.ContactCard "Контактная карточка"
// @Failure 400 {object} response.ErrorResponse "Некорректный id в URL"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.ErrorResponse "Нет действующей подписки"
// @Failure 403 {object} response.ErrorResponse "Квота раскрытий исчерпана"
// @Failure 404 {object} response.ErrorResponse "Объявление недоступно"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /listings/{id}/contact [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact.reveal"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	listingID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	card, err := h.service.Reveal(r.Context(), userID, listingID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, contact.ErrListingNotVisible):
			log.Error("listing not visible", slog.Int64("listing_id", listingID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("listing not found"))
		case errors.Is(err, contact.ErrNoActiveSubscription):
			log.Error("no active subscription", slog.Int64("user_id", userID))
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error("no active subscription"))
		case errors.Is(err, contact.ErrQuotaExceeded):
			log.Error("contact quota exceeded", slog.Int64("user_id", userID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("contact quota exceeded"))
		default:
			log.Error("failed to reveal contact", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not reveal contact"))
		}
		return
	}

	log.Info("contact revealed",
		slog.Int64("user_id", userID),
		slog.Int64("listing_id", listingID))
	render.JSON(w, r, response.StatusOKWithData(card))
}
