package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pagination"
	"github.com/vladislavdragonenkov/storefront/internal/storage"
)

const ordersCollection = "orders"

// orderItemDoc — позиция заказа в документном представлении. Цена
// фиксируется на момент покупки и не зависит от каталога.
type orderItemDoc struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type orderDoc struct {
	ID         string         `json:"id,omitempty"`
	Items      []orderItemDoc `json:"items"`
	TotalValue float64        `json:"total_value"`
	Status     string         `json:"status"`
	CreatedAt  string         `json:"createdAt"`
	UpdatedAt  string         `json:"updatedAt"`
}

func (d orderDoc) toDomain() domain.Order {
	createdAt, _ := time.Parse(time.RFC3339Nano, d.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, d.UpdatedAt)
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return domain.Order{
		ID:         d.ID,
		Items:      items,
		TotalValue: d.TotalValue,
		Status:     domain.OrderStatus(d.Status),
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

type orderRepository struct {
	client storage.Client
	logger *log.Entry
}

// NewOrderRepository создаёт репозиторий заказов над клиентом хранилища.
func NewOrderRepository(client storage.Client) domain.OrderRepository {
	return &orderRepository{
		client: client,
		logger: log.WithField("component", "order-repository"),
	}
}

// Create сохраняет заказ с уже провалидированными позициями и посчитанной
// суммой, проставляя идентификатор и таймстемпы.
func (r *orderRepository) Create(ctx context.Context, data domain.NewOrder) (domain.Order, error) {
	now := time.Now().UTC()
	items := make([]orderItemDoc, 0, len(data.Items))
	for _, item := range data.Items {
		items = append(items, orderItemDoc{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	doc := orderDoc{
		ID:         uuid.NewString(),
		Items:      items,
		TotalValue: data.TotalValue,
		Status:     string(data.Status),
		CreatedAt:  now.Format(docTimeLayout),
		UpdatedAt:  now.Format(docTimeLayout),
	}

	body, err := r.client.Post(ctx, ordersCollection, doc)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	var stored orderDoc
	if err := json.Unmarshal(body, &stored); err != nil {
		return domain.Order{}, fmt.Errorf("decode created order: %w", err)
	}

	r.logger.WithFields(log.Fields{
		"order_id":    stored.ID,
		"total_value": stored.TotalValue,
		"items":       len(stored.Items),
	}).Info("order created")

	return stored.toDomain(), nil
}

// List возвращает страницу заказов, отсортированных по времени создания,
// новые первыми. Если бэкенд не сообщил полный размер выборки, выполняется
// дополнительный подсчёт.
func (r *orderRepository) List(ctx context.Context, params pagination.Params) (pagination.Response[domain.Order], error) {
	params = params.Normalize()

	query := &storage.Query{
		Page:  params.Page,
		Limit: params.Limit,
		Sort:  &storage.Sort{Field: "createdAt", Desc: true},
	}

	data, meta, err := r.client.GetWithMeta(ctx, ordersCollection, query)
	if err != nil {
		return pagination.Response[domain.Order]{}, fmt.Errorf("list orders: %w", err)
	}

	var docs []orderDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return pagination.Response[domain.Order]{}, fmt.Errorf("decode orders page: %w", err)
	}

	total := meta.Total
	if !meta.HasTotal {
		total, err = r.countAll(ctx)
		if err != nil {
			return pagination.Response[domain.Order]{}, err
		}
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		orders = append(orders, doc.toDomain())
	}

	return pagination.NewResponse(orders, params, total), nil
}

// UpdateStatus переводит заказ в новый статус; используется компенсацией
// workflow при неудачном списании остатков.
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	patch := map[string]any{
		"status":    string(status),
		"updatedAt": time.Now().UTC().Format(docTimeLayout),
	}
	if _, err := r.client.Patch(ctx, ordersCollection+"/"+id, patch); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

func (r *orderRepository) countAll(ctx context.Context) (int, error) {
	data, err := r.client.Get(ctx, ordersCollection, nil)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return 0, fmt.Errorf("decode orders for count: %w", err)
	}
	return len(docs), nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
