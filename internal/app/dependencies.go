package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
	"github.com/saraelainee/1023B-backend-novo/internal/storage/memory"
	"github.com/saraelainee/1023B-backend-novo/internal/storage/postgres"
)

// Dependencies содержит хранилища и общие ресурсы приложения.
type Dependencies struct {
	CartRepo      domain.CartRepository
	AnalyticsRepo domain.CartAnalyticsRepository
	ProductRepo   domain.ProductRepository
	UserRepo      domain.UserRepository
	OutboxRepo    domain.OutboxRepository
	Logger        *log.Entry

	// store не nil только для postgres-драйвера; закрывается в Close.
	store *postgres.Store
}

// NewDependencies собирает зависимости по выбранному драйверу хранилища.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		return newPostgresDependencies(ctx, cfg, logger)
	case StorageDriverMemory, "":
		cartStore := memory.NewCartStore()
		return &Dependencies{
			CartRepo:      cartStore,
			AnalyticsRepo: cartStore,
			ProductRepo:   memory.NewProductRepository(),
			UserRepo:      memory.NewUserRepository(),
			OutboxRepo:    memory.NewOutboxRepository(),
			Logger:        logger,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if cfg.PostgresAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("postgres schema is up to date")
	}

	return &Dependencies{
		CartRepo:      postgres.NewCartRepository(store),
		AnalyticsRepo: postgres.NewCartAnalyticsRepository(store),
		ProductRepo:   postgres.NewProductRepository(store),
		UserRepo:      postgres.NewUserRepository(store),
		OutboxRepo:    postgres.NewOutboxRepository(store),
		Logger:        logger,
		store:         store,
	}, nil
}

// Store возвращает postgres-хранилище или nil для in-memory драйвера.
func (d *Dependencies) Store() *postgres.Store {
	return d.store
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d.store == nil {
		return nil
	}
	return d.store.Close()
}
