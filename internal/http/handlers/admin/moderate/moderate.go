// Package moderate реализует HTTP-обработчик модераторских решений.
//
// Handler принимает тип сущности, её идентификатор и действие из URL,
// необязательную причину из тела запроса и применяет решение через
// бизнес-логику модерации. Недопустимые переходы и конкурентные решения
// возвращают конфликт, а не молчаливую перезапись.
package moderate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/classifieds-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/response"
	"github.com/magabrotheeeer/classifieds-backend/internal/lib/sl"
	"github.com/magabrotheeeer/classifieds-backend/internal/moderation"
	services "github.com/magabrotheeeer/classifieds-backend/internal/services/moderation"
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

// Request — необязательное тело запроса с причиной решения.
type Request struct {
	Reason string `json:"reason,omitempty"`
}

// Handler управляет HTTP-запросами модераторских решений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики модерации.
type Service interface {
	Apply(ctx context.Context, entity moderation.EntityType, id int64,
		action moderation.Action, actorUserID int64, reason string) (*services.Decision, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// parseEntity преобразует сегмент URL в тип сущности.
func parseEntity(raw string) (moderation.EntityType, bool) {
	switch raw {
	case "listings":
		return moderation.EntityListing, true
	case "images":
		return moderation.EntityImage, true
	case "owners":
		return moderation.EntityOwner, true
	case "users":
		return moderation.EntityUser, true
	}
	return "", false
}

// ServeHTTP godoc
// @Summary Применить модераторское решение
// @Description Выполняет действие approve, reject, suspend или spam над сущностью и пишет запись в журнал.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param entity path string true "Тип сущности: listings, images, owners, users"
// @Param id path int true "ID сущности"
// @Param action path string true "Действие: approve, reject, suspend, spam"
// @Param request body Request false "Причина решения"
// @Success 200 {object} map[string]any "Решение применено"
// @Failure 400 {object} response.ErrorResponse "Некорректный URL"
// @Failure 404 {object} response.ErrorResponse "Сущность не найдена"
// @Failure 409 {object} response.ErrorResponse "Недопустимый переход или конкурентное решение"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/{entity}/{id}/{action} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.moderate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	entity, ok := parseEntity(chi.URLParam(r, "entity"))
	if !ok {
		log.Error("unknown entity type", slog.String("entity", chi.URLParam(r, "entity")))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown entity type"))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	action, ok := moderation.ParseAction(chi.URLParam(r, "action"))
	if !ok {
		log.Error("unknown action", slog.String("action", chi.URLParam(r, "action")))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown action"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	actorID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	decision, err := h.service.Apply(r.Context(), entity, id, action, actorID, req.Reason)
	if err != nil {
		var invalid *moderation.ErrInvalidTransition
		switch {
		case errors.Is(err, repository.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("entity not found"))
		case errors.As(err, &invalid):
			log.Error("invalid transition", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(invalid.Error()))
		case errors.Is(err, repository.ErrStatusConflict):
			log.Error("concurrent moderation decision", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("entity status changed concurrently"))
		default:
			log.Error("failed to apply decision", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not apply decision"))
		}
		return
	}

	log.Info("decision applied",
		slog.String("entity", string(decision.Entity)),
		slog.Int64("entity_id", decision.ID),
		slog.String("status", string(decision.To)))
	render.JSON(w, r, response.StatusOKWithData(decision))
}
