package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pagination"
	"github.com/vladislavdragonenkov/storefront/internal/service/order"
)

type cartLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	Cart []cartLineRequest `json:"cart"`
}

type orderItemResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	Items      []orderItemResponse `json:"items"`
	TotalValue float64             `json:"total_value"`
	Status     string              `json:"status"`
	CreatedAt  string              `json:"createdAt"`
	UpdatedAt  string              `json:"updatedAt"`
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return orderResponse{
		ID:         o.ID,
		Items:      items,
		TotalValue: o.TotalValue,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  o.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// OrderHandler обрабатывает запросы заказов.
type OrderHandler struct {
	workflow *order.Workflow
	orders   domain.OrderRepository
	logger   *log.Entry
}

// NewOrderHandler создаёт обработчик заказов.
func NewOrderHandler(workflow *order.Workflow, orders domain.OrderRepository, logger *log.Entry) *OrderHandler {
	if logger == nil {
		logger = log.WithField("component", "order-handler")
	}
	return &OrderHandler{workflow: workflow, orders: orders, logger: logger}
}

// Create обрабатывает POST /orders: валидирует корзину и запускает workflow
// оформления.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput))
		return
	}

	cart := make([]domain.CartLine, 0, len(req.Cart))
	for _, line := range req.Cart {
		cart = append(cart, domain.CartLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	if err := domain.ValidateCart(cart); err != nil {
		writeError(w, h.logger, err)
		return
	}

	placed, err := h.workflow.PlaceOrder(r.Context(), cart)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(placed))
}

// List обрабатывает GET /orders: страница заказов, новые первыми.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parsePagination(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	page, err := h.orders.List(r.Context(), params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	data := make([]orderResponse, 0, len(page.Data))
	for _, o := range page.Data {
		data = append(data, toOrderResponse(o))
	}

	writeJSON(w, http.StatusOK, pagination.Response[orderResponse]{
		Data:       data,
		Items:      page.Items,
		Page:       page.Page,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
}
