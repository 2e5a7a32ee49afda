// Package read реализует HTTP-обработчик публичного просмотра объявления.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/classifieds-backend/internal/http/response"
	"github.com/magabrotheeeer/classifieds-backend/internal/lib/sl"
	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

// Handler управляет HTTP-запросами просмотра объявления.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики объявлений.
type Service interface {
	GetPublic(ctx context.Context, id int64) (*models.PublicListing, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Просмотреть объявление
// @Description Возвращает одобренное объявление без контактных данных владельца.
// @Tags Listings
// @Produce  json
// @Param id path int true "ID объявления"
// @Success 200 {object} models.PublicListing "Объявление"
// @Failure 400 {object} response.ErrorResponse "Некорректный id в URL"
// @Failure 404 {object} response.ErrorResponse "Объявление недоступно"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /listings/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.listing.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	listing, err := h.service.GetPublic(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("listing not found"))
			return
		}
		log.Error("failed to read listing", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read listing"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(listing))
}
