package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service's prometheus collectors.
type Metrics struct {
	OrdersCreated      prometheus.Counter
	OrderTransitions   *prometheus.CounterVec
	ComplaintsCreated  prometheus.Counter
	ComplaintsResolved prometheus.Counter
	StockAdjustments   *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge
	LowStockAlerts     prometheus.Counter
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OrdersCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: "laundry",
			Name:      "orders_created_total",
			Help:      "Orders placed by students.",
		}),
		OrderTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laundry",
			Name:      "order_transitions_total",
			Help:      "Order status changes, by target status.",
		}, []string{"status"}),
		ComplaintsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: "laundry",
			Name:      "complaints_created_total",
			Help:      "Complaints submitted by students.",
		}),
		ComplaintsResolved: f.NewCounter(prometheus.CounterOpts{
			Namespace: "laundry",
			Name:      "complaints_resolved_total",
			Help:      "Complaints marked resolved.",
		}),
		StockAdjustments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laundry",
			Name:      "stock_adjustments_total",
			Help:      "Stock quantity updates, by direction.",
		}, []string{"direction"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "laundry",
			Name:      "active_sessions",
			Help:      "Sessions currently holding seeded records.",
		}),
		LowStockAlerts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "laundry",
			Name:      "low_stock_alerts_total",
			Help:      "Low-stock alerts handed to the notification workers.",
		}),
	}
}

// Direction labels a stock delta.
func Direction(delta int) string {
	if delta < 0 {
		return "decrease"
	}
	return "increase"
}
