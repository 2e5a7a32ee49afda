package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/classifieds-backend/internal/http/response"
	"github.com/magabrotheeeer/classifieds-backend/internal/lib/sl"
)

var limiter = rate.NewLimiter(10, 30)

// RateLimitMiddleware ограничивает общую частоту запросов к сервису.
func RateLimitMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests")
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HitCounter считает запросы пользователя в скользящем окне.
type HitCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RevealRateLimitMiddleware ограничивает частоту запросов на раскрытие
// контактов для каждого пользователя отдельно. Счётчик живёт в Redis,
// поэтому лимит общий для всех экземпляров сервиса. Отказ Redis не
// блокирует запросы: квота всё равно проверяется в базе.
func RevealRateLimitMiddleware(counter HitCounter, perMinute int, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			key := "ratelimit:reveal:" + strconv.FormatInt(userID, 10)
			count, err := counter.Hit(r.Context(), key, time.Minute)
			if err != nil {
				log.Error("rate limit counter unavailable", sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if count > int64(perMinute) {
				log.Error("reveal rate limit exceeded", slog.Int64("user_id", userID))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
