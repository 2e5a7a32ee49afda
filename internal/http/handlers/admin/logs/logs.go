// Package logs реализует HTTP-обработчик чтения журнала модераторских решений.
package logs

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
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

// Handler управляет HTTP-запросами чтения журнала.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения журнала модерации.
type Service interface {
	Query(ctx context.Context, filter repository.AuditFilter) ([]*models.AuditLogEntry, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Журнал модераторских решений
// @Description Возвращает записи журнала от новых к старым с фильтрацией по типу и идентификатору сущности.
// @Tags Admin
// @Produce  json
// @Param entity_type query string false "Тип сущности: listing, listing_image, owner, user"
// @Param entity_id query int false "ID сущности"
// @Param limit query int false "Максимум записей (по умолчанию 100)"
// @Success 200 {object} map[string]any "Записи журнала"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/logs [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.logs"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter := repository.AuditFilter{
		EntityType: r.URL.Query().Get("entity_type"),
	}
	if raw := r.URL.Query().Get("entity_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Error("invalid entity_id parameter", slog.String("entity_id", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid entity_id parameter"))
			return
		}
		filter.EntityID = id
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			log.Error("invalid limit parameter", slog.String("limit", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid limit parameter"))
			return
		}
		filter.Limit = limit
	}

	entries, err := h.service.Query(r.Context(), filter)
	if err != nil {
		log.Error("failed to query audit log", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not query audit log"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"entries": entries,
		"count":   len(entries),
	}))
}
