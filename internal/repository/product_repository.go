// Package repository реализует репозитории каталога и заказов поверх
// клиента хранилища: доменные сущности сериализуются в документы, параметры
// пагинации и фильтры переводятся в Query ровно в одном месте.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pagination"
	"github.com/vladislavdragonenkov/storefront/internal/storage"
)

const productsCollection = "products"

// docTimeLayout — формат таймстемпов документа с фиксированной шириной дробной
// части. Бэкенды сортируют createdAt как строку, поэтому лексикографический
// порядок обязан совпадать с хронологическим; RFC3339Nano здесь не годится,
// он обрезает хвостовые нули и ломает сравнение внутри одной секунды.
const docTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// productDoc — документное представление товара, как его хранит бэкенд.
type productDoc struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func (d productDoc) toDomain() domain.Product {
	createdAt, _ := time.Parse(time.RFC3339Nano, d.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, d.UpdatedAt)
	return domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		Price:       d.Price,
		Quantity:    d.Quantity,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

type productRepository struct {
	client storage.Client
	logger *log.Entry
}

// NewProductRepository создаёт репозиторий каталога над клиентом хранилища.
func NewProductRepository(client storage.Client) domain.ProductRepository {
	return &productRepository{
		client: client,
		logger: log.WithField("component", "product-repository"),
	}
}

// FindByID возвращает товар или nil без ошибки: отсутствие товара — валидный
// результат, а не сбой.
func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	data, err := r.client.Get(ctx, productsCollection+"/"+id, nil)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product by id: %w", err)
	}

	var doc productDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	product := doc.toDomain()
	return &product, nil
}

// FindByName возвращает первый товар с таким названием; бэкенд может хранить
// дубликаты, уникальность здесь не гарантируется.
func (r *productRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	data, err := r.client.Get(ctx, productsCollection, &storage.Query{
		Filters: map[string]string{"name": name},
	})
	if err != nil {
		return nil, fmt.Errorf("find product by name: %w", err)
	}

	var docs []productDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	product := docs[0].toDomain()
	return &product, nil
}

// Create сохраняет новый товар, предварительно проверяя занятость названия.
// Проверка и запись — два отдельных запроса: на schemaless-бэкенде гонка
// конкурентных создателей возможна, реляционный бэкенд дополнительно
// закрывает её уникальным индексом.
func (r *productRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	existing, err := r.FindByName(ctx, product.Name)
	if err != nil {
		return domain.Product{}, err
	}
	if existing != nil {
		return domain.Product{}, fmt.Errorf("%w: product name %q", domain.ErrConflict, product.Name)
	}

	now := time.Now().UTC()
	doc := productDoc{
		ID:          uuid.NewString(),
		Name:        product.Name,
		Category:    product.Category,
		Description: product.Description,
		Price:       product.Price,
		Quantity:    product.Quantity,
		CreatedAt:   now.Format(docTimeLayout),
		UpdatedAt:   now.Format(docTimeLayout),
	}

	data, err := r.client.Post(ctx, productsCollection, doc)
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	var stored productDoc
	if err := json.Unmarshal(data, &stored); err != nil {
		return domain.Product{}, fmt.Errorf("decode created product: %w", err)
	}

	r.logger.WithFields(log.Fields{
		"product_id": stored.ID,
		"name":       stored.Name,
	}).Info("product created")

	return stored.toDomain(), nil
}

// Update применяет частичное обновление: в документ попадают только
// заполненные поля патча.
func (r *productRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	fields := map[string]any{
		"updatedAt": time.Now().UTC().Format(docTimeLayout),
	}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		fields["quantity"] = *patch.Quantity
	}

	data, err := r.client.Patch(ctx, productsCollection+"/"+id, fields)
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}

	var doc productDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Product{}, fmt.Errorf("decode updated product: %w", err)
	}
	return doc.toDomain(), nil
}

// Delete удаляет товар. Каскадного удаления заказов нет: заказ хранит
// снимок позиций и остаётся валидным.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, productsCollection+"/"+id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// List возвращает страницу каталога. Если бэкенд не сообщает полный размер
// выборки, выполняется дополнительный не-пагинированный запрос для подсчёта —
// осознанная цена за единый конверт пагинации.
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter, params pagination.Params) (pagination.Response[domain.Product], error) {
	params = params.Normalize()

	filters := map[string]string{}
	if filter.Category != "" {
		filters["category"] = filter.Category
	}
	if filter.PriceMin != nil {
		filters["price_gte"] = strconv.FormatFloat(*filter.PriceMin, 'f', -1, 64)
	}
	if filter.PriceMax != nil {
		filters["price_lte"] = strconv.FormatFloat(*filter.PriceMax, 'f', -1, 64)
	}

	query := &storage.Query{
		Filters: filters,
		Page:    params.Page,
		Limit:   params.Limit,
	}

	data, meta, err := r.client.GetWithMeta(ctx, productsCollection, query)
	if err != nil {
		return pagination.Response[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}

	var docs []productDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return pagination.Response[domain.Product]{}, fmt.Errorf("decode products page: %w", err)
	}

	total := meta.Total
	if !meta.HasTotal {
		total, err = r.countAll(ctx, filters)
		if err != nil {
			return pagination.Response[domain.Product]{}, err
		}
	}

	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.toDomain())
	}

	return pagination.NewResponse(products, params, total), nil
}

// countAll считает полный размер выборки отдельным запросом без пагинации.
func (r *productRepository) countAll(ctx context.Context, filters map[string]string) (int, error) {
	data, err := r.client.Get(ctx, productsCollection, &storage.Query{Filters: filters})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return 0, fmt.Errorf("decode products for count: %w", err)
	}
	return len(docs), nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
