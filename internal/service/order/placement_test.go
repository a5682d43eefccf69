package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pagination"
	"github.com/vladislavdragonenkov/storefront/internal/repository"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

type fixture struct {
	workflow *Workflow
	products domain.ProductRepository
	orders   domain.OrderRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := memory.NewClient()
	products := repository.NewProductRepository(client)
	orders := repository.NewOrderRepository(client)
	return &fixture{
		workflow: NewWorkflowWithoutMetrics(products, orders, nil),
		products: products,
		orders:   orders,
	}
}

func (f *fixture) seedProduct(t *testing.T, name string, price float64, quantity int) domain.Product {
	t.Helper()
	created, err := f.products.Create(context.Background(), domain.Product{
		Name:     name,
		Category: "peripherals",
		Price:    price,
		Quantity: quantity,
	})
	require.NoError(t, err)
	return created
}

func (f *fixture) productQuantity(t *testing.T, id string) int {
	t.Helper()
	product, err := f.products.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, product)
	return product.Quantity
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	page, err := f.orders.List(context.Background(), pagination.Params{Page: 1, Limit: 100})
	require.NoError(t, err)
	return page.Total
}

func TestPlaceOrder_SingleLine(t *testing.T) {
	f := newFixture(t)
	keyboard := f.seedProduct(t, "Keyboard", 100, 10)

	order, err := f.workflow.PlaceOrder(context.Background(), []domain.CartLine{
		{ProductID: keyboard.ID, Quantity: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 200.0, order.TotalValue)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, keyboard.ID, order.Items[0].ProductID)
	assert.Equal(t, 100.0, order.Items[0].UnitPrice)
	assert.Equal(t, 2, order.Items[0].Quantity)

	assert.Equal(t, 8, f.productQuantity(t, keyboard.ID))
}

func TestPlaceOrder_MultipleLines(t *testing.T) {
	f := newFixture(t)
	keyboard := f.seedProduct(t, "Keyboard", 100, 10)
	mouse := f.seedProduct(t, "Mouse", 50, 20)

	order, err := f.workflow.PlaceOrder(context.Background(), []domain.CartLine{
		{ProductID: keyboard.ID, Quantity: 2},
		{ProductID: mouse.ID, Quantity: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, 350.0, order.TotalValue)
	require.Len(t, order.Items, 2)

	assert.Equal(t, 8, f.productQuantity(t, keyboard.ID))
	assert.Equal(t, 17, f.productQuantity(t, mouse.ID))
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	keyboard := f.seedProduct(t, "Keyboard", 100, 10)

	_, err := f.workflow.PlaceOrder(context.Background(), []domain.CartLine{
		{ProductID: keyboard.ID, Quantity: 1000},
	})
	require.Error(t, err)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, keyboard.ID, insufficient.ProductID)
	assert.Equal(t, 10, insufficient.Available)
	assert.Equal(t, 1000, insufficient.Requested)

	// Никаких побочных эффектов: остаток не тронут, заказ не создан.
	assert.Equal(t, 10, f.productQuantity(t, keyboard.ID))
	assert.Equal(t, 0, f.orderCount(t))
}

func TestPlaceOrder_ProductNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.PlaceOrder(context.Background(), []domain.CartLine{
		{ProductID: "missing", Quantity: 1},
	})
	require.Error(t, err)

	var notFound *domain.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ProductID)
	assert.Equal(t, 0, f.orderCount(t))
}

// Ошибка поздней позиции прерывает оформление до любых списаний.
func TestPlaceOrder_LaterLineFailsWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	keyboard := f.seedProduct(t, "Keyboard", 100, 10)
	mouse := f.seedProduct(t, "Mouse", 50, 2)

	_, err := f.workflow.PlaceOrder(context.Background(), []domain.CartLine{
		{ProductID: keyboard.ID, Quantity: 2},
		{ProductID: mouse.ID, Quantity: 5},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 10, f.productQuantity(t, keyboard.ID))
	assert.Equal(t, 2, f.productQuantity(t, mouse.ID))
	assert.Equal(t, 0, f.orderCount(t))
}

func TestPlaceOrder_InvalidCart(t *testing.T) {
	f := newFixture(t)
	keyboard := f.seedProduct(t, "Keyboard", 100, 10)

	testCases := []struct {
		name string
		cart []domain.CartLine
	}{
		{name: "empty cart", cart: nil},
		{name: "missing product id", cart: []domain.CartLine{{Quantity: 1}}},
		{name: "zero quantity", cart: []domain.CartLine{{ProductID: keyboard.ID, Quantity: 0}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.workflow.PlaceOrder(context.Background(), tc.cart)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	assert.Equal(t, 10, f.productQuantity(t, keyboard.ID))
	assert.Equal(t, 0, f.orderCount(t))
}

// failingProducts пропускает все вызовы к настоящему репозиторию, но
// проваливает Update для одного товара — имитация сбоя бэкенда посреди
// списания остатков.
type failingProducts struct {
	domain.ProductRepository
	failID string
}

func (f *failingProducts) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	if id == f.failID {
		return domain.Product{}, errors.New("backend gone")
	}
	return f.ProductRepository.Update(ctx, id, patch)
}

func TestPlaceOrder_CompensatesFailedDecrement(t *testing.T) {
	client := memory.NewClient()
	products := repository.NewProductRepository(client)
	orders := repository.NewOrderRepository(client)

	ctx := context.Background()
	keyboard, err := products.Create(ctx, domain.Product{Name: "Keyboard", Category: "peripherals", Price: 100, Quantity: 10})
	require.NoError(t, err)
	mouse, err := products.Create(ctx, domain.Product{Name: "Mouse", Category: "peripherals", Price: 50, Quantity: 20})
	require.NoError(t, err)

	workflow := NewWorkflowWithoutMetrics(&failingProducts{ProductRepository: products, failID: mouse.ID}, orders, nil)

	_, err = workflow.PlaceOrder(ctx, []domain.CartLine{
		{ProductID: keyboard.ID, Quantity: 2},
		{ProductID: mouse.ID, Quantity: 3},
	})
	require.Error(t, err)

	// Списание с первого товара откачено.
	restored, err := products.FindByID(ctx, keyboard.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, restored.Quantity)

	untouched, err := products.FindByID(ctx, mouse.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, untouched.Quantity)

	// Заказ остаётся, но переведён в canceled.
	page, err := orders.List(ctx, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, domain.OrderStatusCanceled, page.Data[0].Status)
}

// Конкурентные оформления одного товара сериализуются: при остатке 1 ровно
// одно из двух оформлений успешно.
func TestPlaceOrder_ConcurrentPlacements(t *testing.T) {
	f := newFixture(t)
	keyboard := f.seedProduct(t, "Keyboard", 100, 1)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.workflow.PlaceOrder(context.Background(), []domain.CartLine{
				{ProductID: keyboard.ID, Quantity: 1},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
		rejected++
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 0, f.productQuantity(t, keyboard.ID))
	assert.Equal(t, 1, f.orderCount(t))
}

func TestReasonForError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{name: "invalid input", err: domain.ErrCartEmpty, want: rejectInvalidInput},
		{name: "insufficient stock", err: &domain.InsufficientStockError{ProductID: "p1"}, want: rejectInsufficientStock},
		{name: "not found", err: &domain.ProductNotFoundError{ProductID: "p1"}, want: rejectProductNotFound},
		{name: "anything else", err: errors.New("boom"), want: rejectStorage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ReasonForError(tc.err))
		})
	}
}
