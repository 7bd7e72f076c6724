package subscriber

import (
	"context"

	"github.com/ViduraMC/Bakery-App/internal/notifier"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ordersCreated prometheus.Counter
	itemsSold     prometheus.Counter
	revenue       prometheus.Counter
	statusUpdates *prometheus.CounterVec
}

// NewMetrics registers the order counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ordersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "bakery_orders_created_total",
			Help: "Orders committed",
		}),
		itemsSold: f.NewCounter(prometheus.CounterOpts{
			Name: "bakery_items_sold_total",
			Help: "Units sold across all committed orders",
		}),
		revenue: f.NewCounter(prometheus.CounterOpts{
			Name: "bakery_order_revenue_total",
			Help: "Sum of committed order totals",
		}),
		statusUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bakery_order_status_updates_total",
			Help: "Order status writes by new status",
		}, []string{"status"}),
	}
}

func (m *Metrics) Name() string { return "metrics" }

func (m *Metrics) Update(_ context.Context, ev notifier.Event) error {
	switch p := ev.Payload.(type) {
	case usecase.OrderCreatedEvent:
		m.ordersCreated.Inc()
		total, _ := p.TotalAmount.Float64()
		m.revenue.Add(total)
		for _, it := range p.Items {
			m.itemsSold.Add(float64(it.Quantity))
		}
	case usecase.OrderStatusUpdatedEvent:
		m.statusUpdates.WithLabelValues(string(p.NewStatus)).Inc()
	default:
		return errUnexpectedPayload(ev)
	}
	return nil
}
