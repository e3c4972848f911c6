package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CommerceMetrics counts storefront business events.
type CommerceMetrics struct {
	ordersPlaced  prometheus.Counter
	statusChanges *prometheus.CounterVec
	cartConflicts prometheus.Counter
}

// NewCommerceMetrics registers the commerce counters on reg. A nil registerer
// yields a no-op recorder.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Orders successfully placed.",
	})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_changes_total",
		Help:      "Order status updates by resulting status.",
	}, []string{"status"})
	cartConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_write_conflicts_total",
		Help:      "Cart writes rejected because the cart changed concurrently.",
	})
	reg.MustRegister(ordersPlaced, statusChanges, cartConflicts)
	return &CommerceMetrics{
		ordersPlaced:  ordersPlaced,
		statusChanges: statusChanges,
		cartConflicts: cartConflicts,
	}
}

func (m *CommerceMetrics) IncOrderPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

func (m *CommerceMetrics) IncStatusChange(status string) {
	if m == nil || m.statusChanges == nil {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *CommerceMetrics) IncCartConflict() {
	if m == nil || m.cartConflicts == nil {
		return
	}
	m.cartConflicts.Inc()
}
