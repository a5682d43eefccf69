package domain

import (
	"context"

	"github.com/vladislavdragonenkov/storefront/internal/pagination"
)

// ProductFilter — опциональные фильтры листинга каталога.
type ProductFilter struct {
	// Category — точное совпадение категории.
	Category string
	// PriceMin/PriceMax задают границы диапазона цены (включительно).
	PriceMin *float64
	PriceMax *float64
}

// ProductRepository описывает требования к хранилищу каталога товаров.
type ProductRepository interface {
	// FindByID возвращает товар или nil без ошибки, если товара нет.
	FindByID(ctx context.Context, id string) (*Product, error)
	// FindByName возвращает первый товар с таким названием или nil, если его нет.
	// Уникальность названий на этом уровне не гарантируется.
	FindByName(ctx context.Context, name string) (*Product, error)
	// Create сохраняет новый товар. Возвращает ErrConflict, если товар
	// с таким названием уже существует.
	Create(ctx context.Context, product Product) (Product, error)
	// Update применяет частичное обновление. Возвращает ErrNotFound, если товара нет.
	Update(ctx context.Context, id string, patch ProductPatch) (Product, error)
	// Delete удаляет товар. Возвращает ErrNotFound, если товара нет.
	Delete(ctx context.Context, id string) error
	// List возвращает страницу каталога с учётом фильтров.
	List(ctx context.Context, filter ProductFilter, params pagination.Params) (pagination.Response[Product], error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет заказ, проставляя идентификатор и таймстемпы.
	Create(ctx context.Context, data NewOrder) (Order, error)
	// List возвращает страницу заказов, новые первыми.
	List(ctx context.Context, params pagination.Params) (pagination.Response[Order], error)
	// UpdateStatus переводит заказ в новый статус. Используется компенсацией
	// workflow при неудачном списании остатков.
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
}
