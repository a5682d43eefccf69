// Package jsonstore реализует клиент хранилища поверх REST-сервера документов
// (json-server). Бэкенд схемы не имеет: коллекции адресуются путём, фильтры и
// пагинация передаются query-параметрами.
package jsonstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage"
)

// Config задаёт адрес REST-хранилища.
type Config struct {
	Host string
	Port int
}

// BaseURL собирает корневой адрес бэкенда.
func (c Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// Client — storage.Client поверх HTTP. Запросы не ретраятся, таймауты и
// отмена приходят через контекст вызывающего.
type Client struct {
	base   string
	http   *http.Client
	logger *log.Entry
}

// NewClient создаёт клиент REST-хранилища.
func NewClient(cfg Config) *Client {
	return &Client{
		base:   cfg.BaseURL(),
		http:   &http.Client{},
		logger: log.WithField("component", "jsonstore"),
	}
}

// Probe проверяет доступность бэкенда: любой HTTP-ответ в пределах timeout
// считается признаком жизни, ошибки соединения превращаются в false.
func (c *Client) Probe(ctx context.Context, timeout time.Duration) bool {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.base, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).Debug("probe failed")
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return true
}

func (c *Client) Get(ctx context.Context, location string, query *storage.Query) ([]byte, error) {
	data, _, err := c.GetWithMeta(ctx, location, query)
	return data, err
}

// paginatedBody — конверт постраничного ответа json-server: полезные данные
// в data, полный размер выборки в items.
type paginatedBody struct {
	Data  json.RawMessage `json:"data"`
	Items int             `json:"items"`
	Pages int             `json:"pages"`
}

func (c *Client) GetWithMeta(ctx context.Context, location string, query *storage.Query) ([]byte, storage.Meta, error) {
	body, header, err := c.do(ctx, http.MethodGet, location, query, nil)
	if err != nil {
		return nil, storage.Meta{}, err
	}

	if query.Paginated() {
		var envelope paginatedBody
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
			return envelope.Data, storage.Meta{Total: envelope.Items, HasTotal: true}, nil
		}
	}

	// Старые версии json-server сообщают полный размер выборки заголовком.
	if raw := header.Get("X-Total-Count"); raw != "" {
		if total, err := strconv.Atoi(raw); err == nil {
			return body, storage.Meta{Total: total, HasTotal: true}, nil
		}
	}

	return body, storage.Meta{}, nil
}

func (c *Client) Post(ctx context.Context, location string, payload any) ([]byte, error) {
	body, _, err := c.do(ctx, http.MethodPost, location, nil, payload)
	return body, err
}

func (c *Client) Patch(ctx context.Context, location string, payload any) ([]byte, error) {
	body, _, err := c.do(ctx, http.MethodPatch, location, nil, payload)
	return body, err
}

func (c *Client) Delete(ctx context.Context, location string) error {
	_, _, err := c.do(ctx, http.MethodDelete, location, nil, nil)
	return err
}

// do выполняет ровно один HTTP-запрос и переводит ответ в типизированные
// ошибки: 404 — ErrNotFound, 409 — ErrConflict, сетевые сбои и прочие
// не-2xx — ErrUnavailable.
func (c *Client) do(ctx context.Context, method, location string, query *storage.Query, payload any) ([]byte, http.Header, error) {
	endpoint := c.base + "/" + location
	if params := encodeQuery(query); params != "" {
		endpoint += "?" + params
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal payload: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s %s: %v", domain.ErrUnavailable, method, location, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read response: %v", domain.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, resp.Header, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrNotFound, location)
	case resp.StatusCode == http.StatusConflict:
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrConflict, location)
	default:
		c.logger.WithFields(log.Fields{
			"method":   method,
			"location": location,
			"status":   resp.StatusCode,
		}).Warn("backend returned unexpected status")
		return nil, nil, fmt.Errorf("%w: %s %s: status %d", domain.ErrUnavailable, method, location, resp.StatusCode)
	}
}

// encodeQuery переводит Query в параметры json-server: фильтры как есть,
// пагинация — _page/_per_page, сортировка — _sort с "-" для убывания.
func encodeQuery(query *storage.Query) string {
	if query == nil {
		return ""
	}

	params := url.Values{}
	for key, value := range query.Filters {
		params.Set(key, value)
	}
	if query.Paginated() {
		params.Set("_page", strconv.Itoa(query.Page))
		params.Set("_per_page", strconv.Itoa(query.Limit))
	}
	if query.Sort != nil {
		field := query.Sort.Field
		if query.Sort.Desc {
			field = "-" + field
		}
		params.Set("_sort", field)
	}
	return params.Encode()
}

var _ storage.Client = (*Client)(nil)
