package booking

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver exports purchase metrics to Prometheus.
type PrometheusObserver struct {
	duration   *prometheus.HistogramVec
	outcomes   *prometheus.CounterVec
	discounted *prometheus.CounterVec
	revenue    *prometheus.CounterVec
}

// NewPrometheusObserver registers the booking metrics on reg, reusing
// collectors that are already registered under the same names.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "booking"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "purchase_duration_seconds",
			Help:      "Latency of ticket purchase transactions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchases_total",
			Help:      "Ticket purchases by pricing mode and result code.",
		}, []string{"mode", "code"}),
		discounted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_cents_total",
			Help:      "Discount granted by promo codes, in cents.",
		}, []string{"mode"}),
		revenue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_cents_total",
			Help:      "Order amount of committed tickets, in cents.",
		}, []string{"mode"}),
	}
	var err error
	if o.duration, err = register(reg, o.duration); err != nil {
		return nil, err
	}
	if o.outcomes, err = register(reg, o.outcomes); err != nil {
		return nil, err
	}
	if o.discounted, err = register(reg, o.discounted); err != nil {
		return nil, err
	}
	if o.revenue, err = register(reg, o.revenue); err != nil {
		return nil, err
	}
	return o, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register booking metric: %w", err)
	}
	return c, nil
}

// ObservePurchase records a committed ticket.
func (o *PrometheusObserver) ObservePurchase(mode string, q Quote, elapsed time.Duration) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
	o.outcomes.WithLabelValues(mode, "OK").Inc()
	o.discounted.WithLabelValues(mode).Add(float64(q.DiscountCents))
	o.revenue.WithLabelValues(mode).Add(float64(q.OrderCents))
}

// ObserveRejection records a failed purchase.
func (o *PrometheusObserver) ObserveRejection(mode string, code Code, elapsed time.Duration) {
	if o == nil {
		return
	}
	if mode == "" {
		mode = "unresolved"
	}
	o.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
	o.outcomes.WithLabelValues(mode, string(code)).Inc()
}
