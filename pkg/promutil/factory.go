package promutil

import "github.com/prometheus/client_golang/prometheus"

// Factory produces native prometheus metrics that are registered as a
// side effect of being created, similar to promauto. Components receive a
// Factory instead of a Registerer so that every metric they create carries
// the same prefix and const labels.
type Factory interface {
	// NewCounter works like the function of the same name in the prometheus
	// package, but it automatically registers the Counter with the Factory's
	// Registerer. Panic if it can't register successfully.
	NewCounter(opts prometheus.CounterOpts) prometheus.Counter

	// NewCounterVec works like the function of the same name in the
	// prometheus, package but it automatically registers the CounterVec with
	// the Factory's Registerer. Panic if it can't register successfully.
	NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec

	// NewGauge works like the function of the same name in the prometheus
	// package, but it automatically registers the Gauge with the Factory's
	// Registerer. Panic if it can't register successfully.
	NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge

	// NewHistogram works like the function of the same name in the prometheus
	// package but it automatically registers the Histogram with the Factory's
	// Registerer. Panic if it can't register successfully.
	NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram
}

// NewFactory returns a Factory registering into r. prefix is prepended to
// every metric namespace and constLabels are added to every metric.
// A nil r yields metrics that are not registered anywhere, which is what
// tests and embedders without a metrics endpoint want.
func NewFactory(r prometheus.Registerer, prefix string, constLabels prometheus.Labels) Factory {
	return &wrappingFactory{
		r:           r,
		prefix:      prefix,
		constLabels: constLabels,
	}
}

// NewNopFactory returns a Factory whose metrics are never registered.
func NewNopFactory() Factory {
	return NewFactory(nil, "", nil)
}
