// Package order реализует workflow оформления заказа: валидация корзины по
// каталогу, подсчёт суммы, сохранение заказа и списание остатков.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// Причины отказов для метрик.
const (
	rejectInvalidInput      = "invalid_input"
	rejectProductNotFound   = "product_not_found"
	rejectInsufficientStock = "insufficient_stock"
	rejectStorage           = "storage"
)

// Workflow оформляет заказы. Шаги выполняются строго последовательно, позиции
// корзины обрабатываются во входном порядке — первой сообщается ошибка самой
// ранней невалидной позиции.
//
// Бэкенд не даёт межзапросной атомарности, поэтому workflow компенсирует
// неудачное списание: возвращает уже применённые списания и переводит заказ
// в canceled. Конкурентные оформления сериализуются по товару блокировками
// внутри процесса; между процессами гонка проверка-списание остаётся
// ограничением schemaless-бэкенда.
type Workflow struct {
	products domain.ProductRepository
	orders   domain.OrderRepository
	locks    *keyedMutex
	logger   *log.Entry
	metrics  *metrics.OrderMetrics
	producer *kafka.Producer // опциональный producer событий заказов
}

// NewWorkflow создаёт рабочий экземпляр workflow.
func NewWorkflow(products domain.ProductRepository, orders domain.OrderRepository, logger *log.Entry) *Workflow {
	if logger == nil {
		logger = log.WithField("component", "order-placement")
	}
	return &Workflow{
		products: products,
		orders:   orders,
		locks:    newKeyedMutex(),
		logger:   logger,
		metrics:  metrics.NewOrderMetrics(),
	}
}

// NewWorkflowWithKafka создаёт workflow, публикующий события заказов в Kafka.
func NewWorkflowWithKafka(products domain.ProductRepository, orders domain.OrderRepository, producer *kafka.Producer, logger *log.Entry) *Workflow {
	w := NewWorkflow(products, orders, logger)
	w.producer = producer
	return w
}

// NewWorkflowWithoutMetrics создаёт workflow без метрик (для тестов).
func NewWorkflowWithoutMetrics(products domain.ProductRepository, orders domain.OrderRepository, logger *log.Entry) *Workflow {
	if logger == nil {
		logger = log.WithField("component", "order-placement")
	}
	return &Workflow{
		products: products,
		orders:   orders,
		locks:    newKeyedMutex(),
		logger:   logger,
	}
}

// validatedLine связывает позицию корзины с товаром, прочитанным на этапе
// валидации; остаток и цена берутся из этого снимка.
type validatedLine struct {
	product domain.Product
	line    domain.CartLine
}

// PlaceOrder оформляет заказ по корзине.
//
// Алгоритм: для каждой позиции во входном порядке читается товар
// (отсутствие — ProductNotFoundError, нехватка остатка —
// InsufficientStockError, обе ошибки прерывают оформление без побочных
// эффектов); после валидации всех позиций заказ сохраняется со статусом
// pending и суммой по ценам на момент валидации; затем остатки списываются
// по одной позиции в порядке валидации. Ошибка списания запускает
// компенсацию и возвращается вызывающему.
func (w *Workflow) PlaceOrder(ctx context.Context, cart []domain.CartLine) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if w.metrics != nil {
			w.metrics.RecordPlacementDuration(time.Since(start))
		}
	}()

	if err := domain.ValidateCart(cart); err != nil {
		w.reject(rejectInvalidInput)
		return domain.Order{}, err
	}

	ids := make([]string, 0, len(cart))
	for _, line := range cart {
		ids = append(ids, line.ProductID)
	}
	unlock := w.locks.lockAll(ids)
	defer unlock()

	// Шаг 1: валидация позиций и подсчёт суммы.
	var totalValue float64
	validated := make([]validatedLine, 0, len(cart))
	for _, line := range cart {
		product, err := w.products.FindByID(ctx, line.ProductID)
		if err != nil {
			w.reject(rejectStorage)
			return domain.Order{}, err
		}
		if product == nil {
			w.reject(rejectProductNotFound)
			return domain.Order{}, &domain.ProductNotFoundError{ProductID: line.ProductID}
		}
		if line.Quantity > product.Quantity {
			w.reject(rejectInsufficientStock)
			return domain.Order{}, &domain.InsufficientStockError{
				ProductID: product.ID,
				Name:      product.Name,
				Available: product.Quantity,
				Requested: line.Quantity,
			}
		}

		totalValue += product.Price * float64(line.Quantity)
		validated = append(validated, validatedLine{product: *product, line: line})
	}

	// Шаг 2: сохраняем заказ; остатки ещё не тронуты, ошибка здесь
	// не оставляет побочных эффектов.
	items := make([]domain.OrderItem, 0, len(validated))
	for _, v := range validated {
		items = append(items, domain.OrderItem{
			ProductID: v.product.ID,
			Name:      v.product.Name,
			UnitPrice: v.product.Price,
			Quantity:  v.line.Quantity,
		})
	}

	created, err := w.orders.Create(ctx, domain.NewOrder{
		Items:      items,
		TotalValue: totalValue,
		Status:     domain.OrderStatusPending,
	})
	if err != nil {
		w.reject(rejectStorage)
		return domain.Order{}, err
	}

	// Шаг 3: списание остатков в порядке валидации, по одному запросу
	// на позицию.
	applied := make([]validatedLine, 0, len(validated))
	for _, v := range validated {
		newQuantity := v.product.Quantity - v.line.Quantity
		if _, err := w.products.Update(ctx, v.product.ID, domain.ProductPatch{Quantity: &newQuantity}); err != nil {
			w.logger.WithError(err).WithFields(log.Fields{
				"order_id":   created.ID,
				"product_id": v.product.ID,
			}).Error("stock decrement failed, compensating")
			w.compensate(ctx, created, applied)
			w.reject(rejectStorage)
			return domain.Order{}, fmt.Errorf("decrement stock for product %s: %w", v.product.ID, err)
		}
		applied = append(applied, v)
	}

	if w.metrics != nil {
		w.metrics.RecordOrderPlaced()
	}
	w.logger.WithFields(log.Fields{
		"order_id":    created.ID,
		"total_value": created.TotalValue,
		"items":       len(created.Items),
	}).Info("order placed")

	w.publishEvent(kafka.EventTypeOrderCreated, created)

	return created, nil
}

// compensate возвращает уже применённые списания и переводит заказ в
// canceled. Ошибки компенсации логируются, но не маскируют исходную ошибку
// списания.
func (w *Workflow) compensate(ctx context.Context, order domain.Order, applied []validatedLine) {
	for i := len(applied) - 1; i >= 0; i-- {
		v := applied[i]
		restored := v.product.Quantity
		if _, err := w.products.Update(ctx, v.product.ID, domain.ProductPatch{Quantity: &restored}); err != nil {
			w.logger.WithError(err).WithFields(log.Fields{
				"order_id":   order.ID,
				"product_id": v.product.ID,
			}).Error("stock restore failed")
		}
	}

	if err := w.orders.UpdateStatus(ctx, order.ID, domain.OrderStatusCanceled); err != nil {
		w.logger.WithError(err).WithField("order_id", order.ID).Error("order cancel failed")
	}

	if w.metrics != nil {
		w.metrics.RecordOrderCompensated()
	}
	order.Status = domain.OrderStatusCanceled
	w.publishEvent(kafka.EventTypeOrderCanceled, order)
}

func (w *Workflow) reject(reason string) {
	if w.metrics != nil {
		w.metrics.RecordOrderRejected(reason)
	}
}

// publishEvent отправляет событие заказа, если producer настроен. Публикация
// выполняется после записи и не влияет на результат оформления.
func (w *Workflow) publishEvent(eventType kafka.EventType, order domain.Order) {
	if w.producer == nil {
		return
	}

	items := make([]kafka.OrderEventItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, kafka.OrderEventItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	event := kafka.NewOrderEvent(eventType, order.ID, order.TotalValue, string(order.Status), items)
	if err := w.producer.PublishEvent(kafka.TopicOrderEvents, order.ID, event); err != nil {
		w.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order event")
	}
}

// ReasonForError сообщает причину отказа для ошибки оформления; используется
// транспортным слоем и метриками.
func ReasonForError(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return rejectInvalidInput
	case errors.Is(err, domain.ErrInsufficientStock):
		return rejectInsufficientStock
	case errors.Is(err, domain.ErrNotFound):
		return rejectProductNotFound
	default:
		return rejectStorage
	}
}
