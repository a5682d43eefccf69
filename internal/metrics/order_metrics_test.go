package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOrderMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOrderMetricsWithRegisterer(registry)

	m.RecordOrderPlaced()
	m.RecordOrderPlaced()
	m.RecordOrderRejected("insufficient_stock")
	m.RecordOrderCompensated()
	m.RecordPlacementDuration(50 * time.Millisecond)

	if got := testutil.ToFloat64(m.ordersPlaced); got != 2 {
		t.Errorf("expected 2 placed orders, got %v", got)
	}
	if got := testutil.ToFloat64(m.ordersRejected.WithLabelValues("insufficient_stock")); got != 1 {
		t.Errorf("expected 1 rejection, got %v", got)
	}
	if got := testutil.ToFloat64(m.ordersCompensated); got != 1 {
		t.Errorf("expected 1 compensation, got %v", got)
	}
}

func TestOrderMetrics_ReRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newOrderMetricsWithRegisterer(registry)
	first.RecordOrderPlaced()

	// Повторная регистрация в том же registry возвращает существующие
	// коллекторы вместо паники.
	second := newOrderMetricsWithRegisterer(registry)
	second.RecordOrderPlaced()

	if got := testutil.ToFloat64(first.ordersPlaced); got != 2 {
		t.Errorf("expected shared counter at 2, got %v", got)
	}
}
