// Package submit реализует HTTP-обработчик размещения нового объявления.
//
// Handler принимает JSON с данными объявления, валидирует их и создаёт
// объявление в статусе pending. До одобрения модератором объявление
// не попадает в публичную выдачу.
package submit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/classifieds-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/response"
	"github.com/magabrotheeeer/classifieds-backend/internal/lib/sl"
	"github.com/magabrotheeeer/classifieds-backend/internal/models"
)

// Handler управляет HTTP-запросами размещения объявлений.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис объявлений
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики объявлений.
type Service interface {
	Create(ctx context.Context, ownerID int64, req models.DummyListing) (int64, string, error)
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
// @Summary Разместить объявление
// @Description Создаёт объявление текущего владельца и ставит его в очередь модерации.
// @Tags Listings
// @Accept  json
// @Produce  json
// @Param request body models.DummyListing true "Данные объявления"
// @Success 200 {object} map[string]any "Объявление создано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Размещать объявления может только владелец"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /listings [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.listing.submit"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyListing
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
	role, _ := r.Context().Value(middlewarectx.Role).(string)
	if role != models.RoleOwner && role != models.RoleAdmin {
		log.Error("listing submission requires owner role", slog.String("role", role))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("owner role required"))
		return
	}

	id, adNumber, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		log.Error("failed to create listing", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create listing"))
		return
	}

	log.Info("listing submitted", slog.Int64("listing_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"listing_id": id,
		"adv_number": adNumber,
		"status":     "pending",
	}))
}
