package kafka

import "time"

// EventType определяет тип события заказа.
type EventType string

const (
	// EventTypeOrderCreated — заказ успешно оформлен.
	EventTypeOrderCreated EventType = "order.created"
	// EventTypeOrderCanceled — заказ отменён компенсацией после
	// неудачного списания остатков.
	EventTypeOrderCanceled EventType = "order.canceled"
)

// TopicOrderEvents — топик событий заказов.
const TopicOrderEvents = "storefront.order.events"

// OrderEventItem — позиция заказа в составе события.
type OrderEventItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderEvent представляет событие жизненного цикла заказа.
type OrderEvent struct {
	EventType  EventType        `json:"event_type"`
	OrderID    string           `json:"order_id"`
	TotalValue float64          `json:"total_value"`
	Status     string           `json:"status"`
	Items      []OrderEventItem `json:"items"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewOrderEvent создаёт событие заказа с текущим таймстемпом.
func NewOrderEvent(eventType EventType, orderID string, totalValue float64, status string, items []OrderEventItem) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		TotalValue: totalValue,
		Status:     status,
		Items:      items,
		Timestamp:  time.Now(),
	}
}
