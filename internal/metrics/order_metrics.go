package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики оформления заказов.
type OrderMetrics struct {
	// Счётчики исходов оформления
	ordersPlaced      prometheus.Counter
	ordersRejected    *prometheus.CounterVec
	ordersCompensated prometheus.Counter

	// Гистограмма времени оформления
	placementDuration prometheus.Histogram
}

// NewOrderMetrics создаёт и регистрирует метрики заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders placed successfully",
		}),
		ordersRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_rejected_total",
			Help: "Total number of order placements rejected, by reason",
		}, []string{"reason"}),
		ordersCompensated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_compensated_total",
			Help: "Total number of orders canceled by stock compensation",
		}),
		placementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_order_placement_duration_seconds",
			Help:    "Duration of order placement in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordOrderPlaced фиксирует успешное оформление.
func (m *OrderMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordOrderRejected фиксирует отказ с причиной (product_not_found,
// insufficient_stock, invalid_input, storage).
func (m *OrderMetrics) RecordOrderRejected(reason string) {
	m.ordersRejected.WithLabelValues(reason).Inc()
}

// RecordOrderCompensated фиксирует компенсацию после неудачного списания.
func (m *OrderMetrics) RecordOrderCompensated() {
	m.ordersCompensated.Inc()
}

// RecordPlacementDuration фиксирует длительность оформления.
func (m *OrderMetrics) RecordPlacementDuration(d time.Duration) {
	m.placementDuration.Observe(d.Seconds())
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}
