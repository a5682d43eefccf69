package storage

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// instrumentedClient оборачивает Client, замеряя каждый запрос к бэкенду.
type instrumentedClient struct {
	next    Client
	backend string
	metrics *metrics.StorageMetrics
}

// WithMetrics возвращает клиент, сообщающий длительность и исход каждого
// запроса в метрики. backend попадает в метки как имя драйвера.
func WithMetrics(next Client, backend string, m *metrics.StorageMetrics) Client {
	if m == nil {
		return next
	}
	return &instrumentedClient{next: next, backend: backend, metrics: m}
}

func (c *instrumentedClient) Probe(ctx context.Context, timeout time.Duration) bool {
	start := time.Now()
	ok := c.next.Probe(ctx, timeout)
	c.metrics.RecordRequest(c.backend, "probe", time.Since(start), nil)
	return ok
}

func (c *instrumentedClient) Get(ctx context.Context, location string, query *Query) ([]byte, error) {
	start := time.Now()
	data, err := c.next.Get(ctx, location, query)
	c.metrics.RecordRequest(c.backend, "get", time.Since(start), err)
	return data, err
}

func (c *instrumentedClient) GetWithMeta(ctx context.Context, location string, query *Query) ([]byte, Meta, error) {
	start := time.Now()
	data, meta, err := c.next.GetWithMeta(ctx, location, query)
	c.metrics.RecordRequest(c.backend, "get", time.Since(start), err)
	return data, meta, err
}

func (c *instrumentedClient) Post(ctx context.Context, location string, payload any) ([]byte, error) {
	start := time.Now()
	data, err := c.next.Post(ctx, location, payload)
	c.metrics.RecordRequest(c.backend, "post", time.Since(start), err)
	return data, err
}

func (c *instrumentedClient) Patch(ctx context.Context, location string, payload any) ([]byte, error) {
	start := time.Now()
	data, err := c.next.Patch(ctx, location, payload)
	c.metrics.RecordRequest(c.backend, "patch", time.Since(start), err)
	return data, err
}

func (c *instrumentedClient) Delete(ctx context.Context, location string) error {
	start := time.Now()
	err := c.next.Delete(ctx, location)
	c.metrics.RecordRequest(c.backend, "delete", time.Since(start), err)
	return err
}

var _ Client = (*instrumentedClient)(nil)
