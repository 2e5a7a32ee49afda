// Package summary реализует HTTP-обработчик агрегата по расходам пользователя:
// число раскрытий контактов и сумма трат на подписки за скользящее окно.
package summary

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/classifieds-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/response"
	"github.com/magabrotheeeer/classifieds-backend/internal/lib/sl"
	"github.com/magabrotheeeer/classifieds-backend/internal/models"
)

const defaultWindowDays = 30

// Handler управляет HTTP-запросами агрегата по расходам.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс учёта подписок.
type Service interface {
	Summary(ctx context.Context, userID int64, windowDays int, now time.Time) (*models.SubscriptionSummary, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сводка по расходам пользователя
// @Description Возвращает число раскрытий контактов и сумму расходов на подписки за окно в days дней.
// @Tags Subscriptions
// @Produce  json
// @Param days query int false "Размер окна в днях (по умолчанию 30)"
// @Success 200 {object} map[string]any "Сводка"
// @Failure 400 {object} response.ErrorResponse "Некорректный параметр days"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /me/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.summary"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	days := defaultWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			log.Error("invalid days parameter", slog.String("days", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid days parameter"))
			return
		}
		days = parsed
	}

	sum, err := h.service.Summary(r.Context(), userID, days, time.Now())
	if err != nil {
		log.Error("failed to build summary", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build summary"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(sum))
}
