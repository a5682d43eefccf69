package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/repository"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/order"
	"github.com/vladislavdragonenkov/storefront/internal/storage"
	"github.com/vladislavdragonenkov/storefront/internal/storage/jsonstore"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения. Репозитории передаются
// в сервисы явно при сборке, без глобального реестра.
type Dependencies struct {
	Storage       storage.Client
	Products      domain.ProductRepository
	Orders        domain.OrderRepository
	Catalog       *catalog.Service
	Placement     *order.Workflow
	KafkaProducer *kafka.Producer
	Logger        *log.Entry

	closers []func() error
}

// NewDependencies собирает зависимости под выбранный драйвер хранилища.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		deps.Storage = memory.NewClient()
	case StorageDriverJSONStore:
		deps.Storage = jsonstore.NewClient(jsonstore.Config{
			Host: cfg.JSONStoreHost,
			Port: cfg.JSONStorePort,
		})
	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		deps.Storage = postgres.NewClient(store)
		deps.closers = append(deps.closers, store.Close)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}

	deps.Storage = storage.WithMetrics(deps.Storage, string(cfg.StorageDriver), metrics.NewStorageMetrics())
	logger.WithField("driver", cfg.StorageDriver).Info("storage client initialized")

	deps.Products = repository.NewProductRepository(deps.Storage)
	deps.Orders = repository.NewOrderRepository(deps.Storage)
	deps.Catalog = catalog.NewService(deps.Products, logger.WithField("layer", "catalog"))

	// Kafka producer опционален: без брокеров события не публикуются.
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			deps.KafkaProducer = producer
			deps.closers = append(deps.closers, producer.Close)
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}

	placementLogger := logger.WithField("layer", "order-placement")
	if deps.KafkaProducer != nil {
		deps.Placement = order.NewWorkflowWithKafka(deps.Products, deps.Orders, deps.KafkaProducer, placementLogger)
	} else {
		deps.Placement = order.NewWorkflow(deps.Products, deps.Orders, placementLogger)
	}

	return deps, nil
}

// Close освобождает ресурсы в обратном порядке создания.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Logger.WithError(err).Warn("failed to close dependency")
		}
	}
	d.closers = nil
}
