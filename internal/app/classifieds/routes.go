// Package classifieds предоставляет маршруты основного приложения.
package classifieds

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/classifieds-backend/internal/cache"
	"github.com/magabrotheeeer/classifieds-backend/internal/config"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/handlers/admin/logs"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/handlers/admin/moderate"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/handlers/contact/reveal"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/handlers/health"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/handlers/listing/addimage"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/handlers/listing/list"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/handlers/listing/read"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/handlers/listing/remove"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/handlers/listing/submit"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/handlers/subscription/me"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/handlers/subscription/summary"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/handlers/subscription/verify"
	"github.com/magabrotheeeer/classifieds-backend/internal/http/middlewarectx"
	libjwt "github.com/magabrotheeeer/classifieds-backend/internal/lib/jwt"
	auditservice "github.com/magabrotheeeer/classifieds-backend/internal/services/audit"
	authservice "github.com/magabrotheeeer/classifieds-backend/internal/services/auth"
	contactservice "github.com/magabrotheeeer/classifieds-backend/internal/services/contact"
	listingservice "github.com/magabrotheeeer/classifieds-backend/internal/services/listing"
	moderationservice "github.com/magabrotheeeer/classifieds-backend/internal/services/moderation"
	subscriptionservice "github.com/magabrotheeeer/classifieds-backend/internal/services/subscription"
)

// Services группирует сервисы приложения для регистрации маршрутов.
type Services struct {
	Auth         *authservice.Service
	Subscription *subscriptionservice.Ledger
	Contact      *contactservice.Service
	Listing      *listingservice.Service
	Moderation   *moderationservice.Service
	Audit        *auditservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *Services,
	jwtMaker libjwt.Maker, cacheRedis *cache.Cache, cfg *config.Config) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger).ServeHTTP)
		r.Post("/auth/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/listings", list.New(logger, svc.Listing).ServeHTTP)
		r.Get("/listings/{id}", read.New(logger, svc.Listing).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/subscriptions/verify", verify.New(logger, svc.Subscription).ServeHTTP)
			r.Get("/me/subscription", me.New(logger, svc.Subscription).ServeHTTP)
			r.Get("/me/summary", summary.New(logger, svc.Subscription).ServeHTTP)
			r.Post("/listings", submit.New(logger, svc.Listing).ServeHTTP)
			r.Delete("/listings/{id}", remove.New(logger, svc.Listing).ServeHTTP)
			r.Post("/listings/{id}/images", addimage.New(logger, svc.Listing).ServeHTTP)

			// Раскрытие контактов дополнительно ограничено пер-пользовательским
			// счетчиком в Redis поверх общего лимитера.
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RevealRateLimitMiddleware(cacheRedis, cfg.ContactRateLimit, logger))
				r.Post("/listings/{id}/contact", reveal.New(logger, svc.Contact).ServeHTTP)
			})
		})

		// Административная группа
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.AdminOnlyMiddleware(logger))
			r.Post("/admin/{entity}/{id}/{action}", moderate.New(logger, svc.Moderation).ServeHTTP)
			r.Get("/admin/logs", logs.New(logger, svc.Audit).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
}
