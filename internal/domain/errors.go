package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound возвращается, когда сущность отсутствует в хранилище.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict возвращается при попытке создать дубликат (например, товар с занятым именем).
	ErrConflict = errors.New("resource already exists")
	// ErrInvalidInput — входные данные не прошли валидацию.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable — бэкенд хранилища недоступен или ответил серверной ошибкой.
	ErrUnavailable = errors.New("storage backend unavailable")
	// ErrInsufficientStock — на складе меньше единиц, чем запрошено.
	ErrInsufficientStock = errors.New("insufficient stock")

	// Ошибка отсутствующего названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка превышения максимальной длины названия товара.
	ErrProductNameTooLong = errors.New("product name is too long")
	// Ошибка отсутствующей категории товара.
	ErrProductCategoryRequired = errors.New("product category is required")
	// Ошибка отрицательной цены товара.
	ErrProductPriceNegative = errors.New("product price must be non-negative")
	// Ошибка отрицательного остатка товара.
	ErrProductQuantityNegative = errors.New("product quantity must be non-negative")

	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrOrderItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrOrderTotalNegative = errors.New("order total must be non-negative")
	// Ошибка при некорректном количестве в позиции заказа (<= 0).
	ErrOrderItemQtyInvalid = errors.New("order item quantity must be greater than zero")
	// Ошибка отрицательной цены позиции заказа.
	ErrOrderItemPriceInvalid = errors.New("order item price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrOrderTotalMismatch = errors.New("order total does not match items sum")

	// Ошибка пустой корзины.
	ErrCartEmpty = fmt.Errorf("%w: cart must not be empty", ErrInvalidInput)
	// Ошибка позиции корзины без идентификатора товара.
	ErrCartProductIDRequired = fmt.Errorf("%w: cart line product_id is required", ErrInvalidInput)
	// Ошибка позиции корзины с количеством меньше единицы.
	ErrCartQtyInvalid = fmt.Errorf("%w: cart line quantity must be at least 1", ErrInvalidInput)
)

// ProductNotFoundError возвращается workflow, когда позиция корзины ссылается
// на несуществующий товар. Совместима с errors.Is(err, ErrNotFound).
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// Is позволяет ловить ошибку как общий ErrNotFound.
func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InsufficientStockError несёт контекст для пользовательского сообщения:
// какой товар, сколько доступно и сколько запрошено.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for product %s (%s): available %d, requested %d",
		e.Name, e.ProductID, e.Available, e.Requested,
	)
}

// Is позволяет ловить ошибку как общий ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IsNotFound проверяет, является ли ошибка отсутствием сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailable проверяет, является ли ошибка недоступностью бэкенда.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
