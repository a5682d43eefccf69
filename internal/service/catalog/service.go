// Package catalog реализует сценарии работы с каталогом товаров поверх
// репозитория: валидация входа и перевод отсутствия товара в типизированную
// ошибку.
package catalog

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pagination"
)

// CreateProductInput — данные нового товара.
type CreateProductInput struct {
	Name        string
	Category    string
	Description string
	Price       float64
	Quantity    int
}

// Service — сценарии каталога.
type Service struct {
	products domain.ProductRepository
	logger   *log.Entry
}

// NewService создаёт сервис каталога.
func NewService(products domain.ProductRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "catalog")
	}
	return &Service{products: products, logger: logger}
}

// Create валидирует и сохраняет новый товар.
func (s *Service) Create(ctx context.Context, input CreateProductInput) (domain.Product, error) {
	product := domain.Product{
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
	}
	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, errs[0])
	}
	return s.products.Create(ctx, product)
}

// Get возвращает товар по идентификатору или ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, &domain.ProductNotFoundError{ProductID: id}
	}
	return *product, nil
}

// Update применяет частичное обновление, проверяя значения изменяемых полей.
func (s *Service) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	if patch.IsEmpty() {
		return domain.Product{}, fmt.Errorf("%w: update requires at least one field", domain.ErrInvalidInput)
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return domain.Product{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, domain.ErrProductNameRequired)
		}
		if len(*patch.Name) > domain.MaxProductNameLength {
			return domain.Product{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, domain.ErrProductNameTooLong)
		}
	}
	if patch.Category != nil && *patch.Category == "" {
		return domain.Product{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, domain.ErrProductCategoryRequired)
	}
	if patch.Price != nil && *patch.Price < 0 {
		return domain.Product{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, domain.ErrProductPriceNegative)
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return domain.Product{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, domain.ErrProductQuantityNegative)
	}

	return s.products.Update(ctx, id, patch)
}

// Delete удаляет товар.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// List возвращает страницу каталога с учётом фильтров.
func (s *Service) List(ctx context.Context, filter domain.ProductFilter, params pagination.Params) (pagination.Response[domain.Product], error) {
	if filter.PriceMin != nil && *filter.PriceMin < 0 {
		return pagination.Response[domain.Product]{}, fmt.Errorf("%w: price_gte must be non-negative", domain.ErrInvalidInput)
	}
	if filter.PriceMax != nil && *filter.PriceMax < 0 {
		return pagination.Response[domain.Product]{}, fmt.Errorf("%w: price_lte must be non-negative", domain.ErrInvalidInput)
	}
	return s.products.List(ctx, filter, params)
}
