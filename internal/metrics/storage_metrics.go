package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorageMetrics содержит метрики запросов к бэкенду хранилища.
type StorageMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
}

// NewStorageMetrics создаёт и регистрирует метрики хранилища.
func NewStorageMetrics() *StorageMetrics {
	return newStorageMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newStorageMetricsWithRegisterer(registerer prometheus.Registerer) *StorageMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StorageMetrics{
		requestDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "storefront_storage_request_duration_seconds",
			Help:    "Duration of storage backend requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		requestErrors: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_storage_request_errors_total",
			Help: "Total number of failed storage backend requests",
		}, []string{"backend", "operation"}),
	}
}

// RecordRequest фиксирует длительность и исход одного запроса к бэкенду.
func (m *StorageMetrics) RecordRequest(backend, operation string, d time.Duration, err error) {
	m.requestDuration.WithLabelValues(backend, operation).Observe(d.Seconds())
	if err != nil {
		m.requestErrors.WithLabelValues(backend, operation).Inc()
	}
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}
