package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
	"github.com/saraelainee/1023B-backend-novo/internal/metrics"
)

// Input — поля товара, задаваемые администратором.
type Input struct {
	Name        string
	Category    string
	PriceMinor  int64
	Description string
	PhotoURL    string
}

// Service — каталог товаров: публичный список и админ-CRUD.
type Service interface {
	// List возвращает товары под фильтром в порядке имени.
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	// Get возвращает товар по идентификатору.
	Get(ctx context.Context, id string) (domain.Product, error)
	// Create добавляет товар в каталог.
	Create(ctx context.Context, input Input) (domain.Product, error)
	// Update перезаписывает поля товара.
	Update(ctx context.Context, id string, input Input) (domain.Product, error)
	// Delete удаляет товар. Уже лежащие в корзинах позиции не трогаются:
	// при сверке они будут помечены недоступными.
	Delete(ctx context.Context, id string) error
}

type service struct {
	catalog domain.ProductRepository
	logger  *log.Entry
	metrics *metrics.CartMetrics
}

// NewService создаёт сервис каталога.
func NewService(catalog domain.ProductRepository, logger *log.Entry, m *metrics.CartMetrics) Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &service{
		catalog: catalog,
		logger:  logger,
		metrics: m,
	}
}

// NewServiceWithoutMetrics — вариант для тестов и вспомогательных утилит.
func NewServiceWithoutMetrics(catalog domain.ProductRepository, logger *log.Entry) Service {
	return NewService(catalog, logger, nil)
}

func (s *service) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.catalog.List(filter)
}

func (s *service) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.catalog.FindByID(id)
}

func (s *service) Create(ctx context.Context, input Input) (domain.Product, error) {
	product := domain.Product{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Category:    input.Category,
		PriceMinor:  input.PriceMinor,
		Description: input.Description,
		PhotoURL:    input.PhotoURL,
	}
	if issues := product.Validate(); len(issues) > 0 {
		return domain.Product{}, errors.Join(issues...)
	}

	if err := s.catalog.Insert(product); err != nil {
		return domain.Product{}, err
	}

	s.logger.WithField("product_id", product.ID).Info("product created")
	return product, nil
}

func (s *service) Update(ctx context.Context, id string, input Input) (domain.Product, error) {
	product, err := s.catalog.FindByID(id)
	if err != nil {
		return domain.Product{}, err
	}

	if input.Name != "" {
		product.Name = input.Name
	}
	if input.Category != "" {
		product.Category = input.Category
	}
	if input.PriceMinor != 0 {
		product.PriceMinor = input.PriceMinor
	}
	if input.Description != "" {
		product.Description = input.Description
	}
	if input.PhotoURL != "" {
		product.PhotoURL = input.PhotoURL
	}
	if issues := product.Validate(); len(issues) > 0 {
		return domain.Product{}, errors.Join(issues...)
	}

	if err := s.catalog.Update(product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.catalog.Delete(id); err != nil {
		return err
	}
	s.logger.WithField("product_id", id).Info("product deleted")
	return nil
}
