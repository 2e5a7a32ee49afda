// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Entitlements            `yaml:"entitlements"`
	Moderation              `yaml:"moderation"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// RabbitMQ структура для настройки подключения к брокеру уведомлений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url"`
	RabbitMQMaxRetries int           `yaml:"max_retries"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay"`
}

// SMTP структура для настройки почтового транспорта
type SMTP struct {
	SMTPHost     string `yaml:"host"`
	SMTPPort     int    `yaml:"port"`
	SMTPUser     string `yaml:"user"`
	SMTPPassword string `yaml:"password"`
}

// Entitlements — бизнес-настройки квоты раскрытия контактов.
type Entitlements struct {
	// FreeContactLimit — сколько уникальных объявлений доступно
	// пользователю без подписки. 0 выключает бесплатную квоту.
	FreeContactLimit int `yaml:"free_contact_limit" env-default:"0"`
	// ContactRateLimit — максимум запросов раскрытия на пользователя в минуту.
	ContactRateLimit int `yaml:"contact_rate_limit" env-default:"60"`
}

// Moderation — политики машины состояний модерации.
type Moderation struct {
	// AllowReapproveRejected разрешает повторное одобрение отклонённых
	// объявлений после правок владельца.
	AllowReapproveRejected bool `yaml:"allow_reapprove_rejected" env-default:"false"`
}

// MustLoad функция для загрузки конфига, возвращает конфиг, сгенерированный из config/config.yaml
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
