// Package remove реализует HTTP-обработчик удаления объявления.
//
// Удалить объявление может его владелец или администратор. История
// раскрытий контактов при удалении сохраняется.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/classifieds-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/response"
	"github.com/magabrotheeeer/classifieds-backend/internal/lib/sl"
	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/services/listing"
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

// Handler управляет HTTP-запросами удаления объявлений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики объявлений.
type Service interface {
	Remove(ctx context.Context, actorID int64, isAdmin bool, listingID int64) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить объявление
// @Description Удаляет объявление владельца вместе с изображениями.
// @Tags Listings
// @Produce  json
// @Param id path int true "ID объявления"
// @Success 200 {object} map[string]any "Объявление удалено"
// @Failure 400 {object} response.ErrorResponse "Некорректный id в URL"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Объявление принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Объявление не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /listings/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.listing.remove"
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

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	role, _ := r.Context().Value(middlewarectx.Role).(string)

	err = h.service.Remove(r.Context(), userID, role == models.RoleAdmin, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("listing not found"))
		case errors.Is(err, listing.ErrNotOwner):
			log.Error("listing belongs to another user", slog.Int64("listing_id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("listing belongs to another user"))
		default:
			log.Error("failed to remove listing", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not remove listing"))
		}
		return
	}

	log.Info("listing removed", slog.Int64("listing_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"removed_id": id,
	}))
}
