// Package classifieds собирает основное HTTP-приложение доски объявлений:
// хранилище, кэш, брокер уведомлений, сервисы и маршруты.
package classifieds

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/classifieds-backend/internal/cache"
	"github.com/magabrotheeeer/classifieds-backend/internal/config"
	libjwt "github.com/magabrotheeeer/classifieds-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/classifieds-backend/internal/migrations"
	"github.com/magabrotheeeer/classifieds-backend/internal/moderation"
	"github.com/magabrotheeeer/classifieds-backend/internal/rabbitmq"
	auditservice "github.com/magabrotheeeer/classifieds-backend/internal/services/audit"
	authservice "github.com/magabrotheeeer/classifieds-backend/internal/services/auth"
	contactservice "github.com/magabrotheeeer/classifieds-backend/internal/services/contact"
	listingservice "github.com/magabrotheeeer/classifieds-backend/internal/services/listing"
	moderationservice "github.com/magabrotheeeer/classifieds-backend/internal/services/moderation"
	subscriptionservice "github.com/magabrotheeeer/classifieds-backend/internal/services/subscription"
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и внешние соединения приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	amqp   *amqp.Connection
}

// New создает приложение: подключается к PostgreSQL, применяет миграции,
// поднимает Redis и RabbitMQ, собирает сервисы и маршруты.
// Отказ брокера уведомлений не блокирует запуск: раскрытие контактов
// работает и без отправки писем.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var amqpConn *amqp.Connection
	var publisher *rabbitmq.Publisher
	amqpConn, err = rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		logger.Warn("rabbitmq unavailable, contact notifications disabled", slog.Any("err", err))
		amqpConn = nil
	} else {
		ch, chErr := rabbitmq.SetupChannel(amqpConn, rabbitmq.GetNotificationQueues())
		if chErr != nil {
			logger.Warn("rabbitmq channel setup failed, contact notifications disabled", slog.Any("err", chErr))
		} else {
			publisher = rabbitmq.NewPublisher(ch)
		}
	}

	jwtMaker := libjwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	subscriptionLedger := subscriptionservice.NewLedger(db, cacheRedis, logger)
	contactService := contactservice.New(db, subscriptionLedger, publisherOrNil(publisher), cfg.FreeContactLimit, logger)
	moderationService := moderationservice.New(db, moderation.New(cfg.AllowReapproveRejected), logger)
	auditService := auditservice.New(db, logger)
	listingService := listingservice.New(db, logger)
	authService := authservice.New(db, jwtMaker)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, &Services{
		Auth:         authService,
		Subscription: subscriptionLedger,
		Contact:      contactService,
		Listing:      listingService,
		Moderation:   moderationService,
		Audit:        auditService,
	}, jwtMaker, cacheRedis, cfg)

	router.Get("/docs/*", httpSwagger.WrapHandler)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   amqpConn,
	}, nil
}

// publisherOrNil приводит *Publisher к интерфейсу сервиса контактов,
// сохраняя nil вместо типизированного nil-указателя.
func publisherOrNil(p *rabbitmq.Publisher) contactservice.Publisher {
	if p == nil {
		return nil
	}
	return p
}

// Run запускает HTTP-сервер и завершает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.amqp != nil {
			_ = a.amqp.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
