package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/pagination"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
)

// productResponse — представление товара в API.
type productResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type createProductRequest struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
}

// ProductHandler обрабатывает запросы каталога.
type ProductHandler struct {
	catalog *catalog.Service
	logger  *log.Entry
}

// NewProductHandler создаёт обработчик каталога.
func NewProductHandler(svc *catalog.Service, logger *log.Entry) *ProductHandler {
	if logger == nil {
		logger = log.WithField("component", "product-handler")
	}
	return &ProductHandler{catalog: svc, logger: logger}
}

// Create обрабатывает POST /products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput))
		return
	}
	if req.Price == nil {
		writeError(w, h.logger, fmt.Errorf("%w: price is required", domain.ErrInvalidInput))
		return
	}
	if req.Quantity == nil {
		writeError(w, h.logger, fmt.Errorf("%w: quantity is required", domain.ErrInvalidInput))
		return
	}

	product, err := h.catalog.Create(r.Context(), catalog.CreateProductInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       *req.Price,
		Quantity:    *req.Quantity,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(product))
}

// Get обрабатывает GET /products/{productID}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Update обрабатывает PATCH /products/{productID}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput))
		return
	}

	product, err := h.catalog.Update(r.Context(), chi.URLParam(r, "productID"), domain.ProductPatch{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// Delete обрабатывает DELETE /products/{productID}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "productID")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List обрабатывает GET /products с фильтрами и пагинацией.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parsePagination(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	filter := domain.ProductFilter{Category: r.URL.Query().Get("category")}
	if filter.PriceMin, err = parseOptionalFloat(r, "price_gte"); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if filter.PriceMax, err = parseOptionalFloat(r, "price_lte"); err != nil {
		writeError(w, h.logger, err)
		return
	}

	page, err := h.catalog.List(r.Context(), filter, params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	data := make([]productResponse, 0, len(page.Data))
	for _, p := range page.Data {
		data = append(data, toProductResponse(p))
	}

	writeJSON(w, http.StatusOK, pagination.Response[productResponse]{
		Data:       data,
		Items:      page.Items,
		Page:       page.Page,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
}

func parsePagination(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, fmt.Errorf("%w: page must be a positive integer", domain.ErrInvalidInput)
		}
		params.Page = page
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return params, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidInput)
		}
		params.Limit = limit
	}
	return params.Normalize(), nil
}

func parseOptionalFloat(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, name)
	}
	return &value, nil
}
