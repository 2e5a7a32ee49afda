// Package list реализует HTTP-обработчик публичной выдачи объявлений.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/classifieds-backend/internal/http/response"
	"github.com/magabrotheeeer/classifieds-backend/internal/lib/sl"
	"github.com/magabrotheeeer/classifieds-backend/internal/models"
)

// Handler управляет HTTP-запросами публичной выдачи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики объявлений.
type Service interface {
	ListPublic(ctx context.Context, limit, offset int) ([]*models.PublicListing, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Публичная выдача объявлений
// @Description Возвращает страницу одобренных объявлений без контактных данных.
// @Tags Listings
// @Produce  json
// @Param limit query int false "Размер страницы (по умолчанию 20)"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Страница объявлений"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /listings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.listing.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	listings, err := h.service.ListPublic(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list listings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list listings"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"listings": listings,
		"count":    len(listings),
	}))
}
