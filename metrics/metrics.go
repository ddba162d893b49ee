package metrics

import (
	"github.com/computebench/arsenal/placement"
	"github.com/computebench/arsenal/usm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records resolver activity. Each Collector registers its own metrics, so tests and
// benchmarks can give every run a fresh registry.
type Collector struct {
	Allocations    *prometheus.CounterVec
	Deallocations  *prometheus.CounterVec
	LiveBytes      *prometheus.GaugeVec
	AllocationSize prometheus.Histogram
	Skipped        *prometheus.CounterVec
}

// NewCollector creates the resolver metrics and registers them with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		Allocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usm_allocations_total",
			Help: "The total number of allocations made through the resolver",
		}, []string{"placement", "kind"}),

		Deallocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usm_deallocations_total",
			Help: "The total number of allocations released through the resolver",
		}, []string{"placement", "kind"}),

		LiveBytes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "usm_live_bytes",
			Help: "Bytes currently allocated through the resolver",
		}, []string{"placement"}),

		AllocationSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "usm_allocation_size_bytes",
			Help:    "Size of allocations made through the resolver",
			Buckets: prometheus.ExponentialBuckets(1, 4, 16), // 1B to 1GiB
		}),

		Skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usm_skipped_combinations_total",
			Help: "Placement and selection combinations skipped because they cannot be allocated",
		}, []string{"placement", "selection"}),
	}
}

func kindLabel(handle *usm.Handle) string {
	if handle.Kind() == placement.RuntimeUnknown {
		return "none"
	}
	return handle.Kind().String()
}

// Callbacks returns resolver callbacks that feed the collector
func (c *Collector) Callbacks() *usm.CallbackOptions {
	return &usm.CallbackOptions{
		Allocate: func(resolver *usm.Resolver, handle *usm.Handle, userData interface{}) {
			name := handle.Placement().String()
			c.Allocations.WithLabelValues(name, kindLabel(handle)).Inc()
			c.LiveBytes.WithLabelValues(name).Add(float64(handle.Size()))
			c.AllocationSize.Observe(float64(handle.Size()))
		},
		Free: func(resolver *usm.Resolver, handle *usm.Handle, userData interface{}) {
			name := handle.Placement().String()
			c.Deallocations.WithLabelValues(name, kindLabel(handle)).Inc()
			c.LiveBytes.WithLabelValues(name).Sub(float64(handle.Size()))
		},
	}
}
