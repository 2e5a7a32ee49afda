// Package addimage реализует HTTP-обработчик добавления изображения к объявлению.
//
// Изображение создаётся в статусе pending и модерируется отдельно
// от объявления. Дубликат того же файла отклоняется по хешу содержимого.
package addimage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/classifieds-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/response"
	"github.com/magabrotheeeer/classifieds-backend/internal/lib/sl"
	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/services/listing"
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

// Handler управляет HTTP-запросами добавления изображений.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис объявлений
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики объявлений.
type Service interface {
	AddImage(ctx context.Context, ownerID, listingID int64, req models.DummyListingImage) (int64, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Добавить изображение к объявлению
// @Description Прикрепляет метаданные изображения к объявлению владельца и ставит его в очередь модерации.
// @Tags Listings
// @Accept  json
// @Produce  json
// @Param id path int true "ID объявления"
// @Param request body models.DummyListingImage true "Метаданные изображения"
// @Success 200 {object} map[string]any "Изображение добавлено"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или id"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Объявление принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Объявление не найдено"
// @Failure 409 {object} response.ErrorResponse "Такое изображение уже загружено"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /listings/{id}/images [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.listing.addimage"
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

	var req models.DummyListingImage
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.AddImage(r.Context(), userID, listingID, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("listing not found"))
		case errors.Is(err, listing.ErrNotOwner):
			log.Error("listing belongs to another user", slog.Int64("listing_id", listingID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("listing belongs to another user"))
		case errors.Is(err, repository.ErrDuplicateImage):
			log.Error("duplicate image", slog.Int64("listing_id", listingID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("image already uploaded"))
		default:
			log.Error("failed to add image", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not add image"))
		}
		return
	}

	log.Info("image submitted", slog.Int64("image_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"image_id": id,
		"status":   "pending",
	}))
}
