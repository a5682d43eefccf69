package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// StorageDriver выбирает бэкенд хранилища. Выбор делается явно конфигурацией
// при старте, без инспекции типов на лету.
type StorageDriver string

const (
	// StorageDriverMemory — in-memory хранилище для разработки и тестов.
	StorageDriverMemory StorageDriver = "memory"
	// StorageDriverJSONStore — REST-хранилище документов (json-server).
	StorageDriverJSONStore StorageDriver = "jsonstore"
	// StorageDriverPostgres — PostgreSQL.
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	APIAddr     string
	MetricsAddr string

	StorageDriver StorageDriver
	// Адрес REST-хранилища (для jsonstore).
	JSONStoreHost string
	JSONStorePort int
	// Подключение к PostgreSQL (для postgres).
	PostgresDSN         string
	PostgresAutoMigrate bool

	// Брокеры Kafka; пустой список отключает публикацию событий.
	KafkaBrokers []string

	// Таймаут probe бэкенда для health-проверок.
	ProbeTimeout time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию: in-memory хранилище
// и стандартные адреса API и метрик.
func DefaultConfig() Config {
	return Config{
		APIAddr:             ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		JSONStoreHost:       "localhost",
		JSONStorePort:       3000,
		PostgresAutoMigrate: true,
		ProbeTimeout:        5 * time.Second,
	}
}

// LoadConfig читает конфигурацию из переменных окружения поверх дефолтов.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	cfg.APIAddr = getEnv("STOREFRONT_API_ADDR", cfg.APIAddr)
	cfg.MetricsAddr = getEnv("STOREFRONT_METRICS_ADDR", cfg.MetricsAddr)
	cfg.StorageDriver = StorageDriver(getEnv("STORAGE_DRIVER", string(cfg.StorageDriver)))
	cfg.JSONStoreHost = getEnv("JSON_STORE_HOST", cfg.JSONStoreHost)
	cfg.JSONStorePort = getEnvAsInt("JSON_STORE_PORT", cfg.JSONStorePort)
	cfg.PostgresDSN = getEnv("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.PostgresAutoMigrate = getEnvAsBool("POSTGRES_AUTO_MIGRATE", cfg.PostgresAutoMigrate)
	cfg.KafkaBrokers = getEnvAsSlice("KAFKA_BROKERS", nil)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность конфигурации.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverJSONStore:
		if c.JSONStoreHost == "" {
			return fmt.Errorf("JSON_STORE_HOST is required for the jsonstore driver")
		}
		if c.JSONStorePort < 1 || c.JSONStorePort > 65535 {
			return fmt.Errorf("JSON_STORE_PORT is out of range: %d", c.JSONStorePort)
		}
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.StorageDriver)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
