package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, дальнейшая обработка не выполнялась.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusCompleted — заказ исполнен.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCanceled — заказ отменён, в том числе компенсацией
	// после неудачного списания остатков.
	OrderStatusCanceled OrderStatus = "canceled"
)

// CartLine — одна позиция корзины во входящем запросе на оформление заказа.
// Сама по себе не сохраняется, живёт только как вход workflow.
type CartLine struct {
	ProductID string
	Quantity  int
}

// OrderItem представляет одну позицию заказа. Цена фиксируется на момент
// валидации и не пересчитывается при изменении цены товара.
type OrderItem struct {
	ProductID string
	// Name — название товара на момент покупки, для отображения заказа.
	Name string
	// UnitPrice — цена за единицу на момент валидации.
	UnitPrice float64
	Quantity  int
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID    string
	Items []OrderItem
	// TotalValue фиксируется при создании и равен сумме позиций.
	TotalValue float64
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewOrder — данные заказа перед сохранением: позиции уже провалидированы
// workflow, сумма посчитана. Идентификатор и таймстемпы проставляет репозиторий.
type NewOrder struct {
	Items      []OrderItem
	TotalValue float64
	Status     OrderStatus
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if len(o.Items) == 0 {
		errs = append(errs, ErrOrderItemsRequired)
	}
	if o.TotalValue < 0 {
		errs = append(errs, ErrOrderTotalNegative)
	}

	// Сверяем сумму заказа с суммой позиций: quantity * unit_price.
	var calc float64
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrOrderItemQtyInvalid)
		}
		if item.UnitPrice < 0 {
			errs = append(errs, ErrOrderItemPriceInvalid)
		}
		calc += float64(item.Quantity) * item.UnitPrice
	}
	if calc != o.TotalValue {
		errs = append(errs, ErrOrderTotalMismatch)
	}

	return errs
}

// ValidateCart проверяет корзину до запуска workflow: корзина непуста,
// каждая позиция ссылается на товар и запрашивает хотя бы одну единицу.
func ValidateCart(cart []CartLine) error {
	if len(cart) == 0 {
		return ErrCartEmpty
	}
	for _, line := range cart {
		if line.ProductID == "" {
			return ErrCartProductIDRequired
		}
		if line.Quantity < 1 {
			return ErrCartQtyInvalid
		}
	}
	return nil
}
