package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config содержит все настройки Book Review API
// Включает конфигурацию HTTP сервера, MongoDB, Redis, Kafka и JWT
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	JWT     JWTConfig
	Worker  WorkerConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
}

// MongoDBConfig - настройки подключения к MongoDB
// Используется для хранения книг и отзывов
type MongoDBConfig struct {
	URI      string // URI подключения к MongoDB
	Database string // Имя базы данных
}

// RedisConfig - настройки подключения к Redis
// Используется для кеширования статистики по жанрам
type RedisConfig struct {
	Host     string // Хост Redis
	Port     string // Порт Redis
	Password string // Пароль Redis (опционально)
	DB       int    // Номер БД Redis (0-15)
}

// KafkaConfig - настройки Kafka для отправки событий об отзывах
type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик для событий REVIEW_CREATED/UPDATED/DELETED
}

// JWTConfig - настройки проверки JWT токенов
// Токены выдаёт внешний сервис аутентификации
type JWTConfig struct {
	Secret string // Секретный ключ для проверки подписи
}

// WorkerConfig - настройки фонового пересчёта рейтингов
type WorkerConfig struct {
	ReconcileSchedule string // Cron-выражение для сверки средних рейтингов
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "book_reviews"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "review_events"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		Worker: WorkerConfig{
			ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "@every 1h"),
		},
	}, nil
}

// Address возвращает адрес для http.Server
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Addr возвращает адрес Redis в формате host:port
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
