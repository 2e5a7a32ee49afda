// Package verify реализует HTTP-обработчик регистрации покупки подписки.
//
// Handler принимает JSON с идентификатором плана и платёжным токеном,
// валидирует их и передаёт в бизнес-логику. Повторная отправка того же
// токена тем же пользователем возвращает уже созданную подписку, токен
// другого пользователя — конфликт.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/classifieds-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/response"
	"github.com/magabrotheeeer/classifieds-backend/internal/lib/sl"
	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/services/subscription"
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

// Handler управляет HTTP-запросами регистрации покупок подписки.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис учёта подписок
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс учёта подписок.
type Service interface {
	RecordPurchase(ctx context.Context, userID int64, req models.DummyVerifySubscription, now time.Time) (*models.UserSubscription, error)
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
// @Summary Зарегистрировать покупку подписки
// @Description Регистрирует провалидированную покупку подписки текущего пользователя.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body models.DummyVerifySubscription true "Данные покупки"
// @Success 200 {object} map[string]any "Подписка зарегистрирована"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Токен принадлежит другому пользователю"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неизвестный план"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.verify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyVerifySubscription
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

	sub, err := h.service.RecordPurchase(r.Context(), userID, req, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrUnknownPlan):
			log.Error("unknown plan", slog.String("plan_id", req.PlanID))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown plan"))
		case errors.Is(err, repository.ErrTokenTaken):
			log.Error("purchase token already used by another user")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("purchase token already used"))
		default:
			log.Error("failed to record purchase", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not record purchase"))
		}
		return
	}

	log.Info("purchase recorded", slog.Int64("subscription_id", sub.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription_id": sub.ID,
		"plan_id":         sub.PlanID,
		"start_time":      sub.StartTime,
		"end_time":        sub.EndTime,
	}))
}
