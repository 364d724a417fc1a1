package promutil

import (
	"github.com/prometheus/client_golang/prometheus"
)

type wrappingFactory struct {
	r prometheus.Registerer
	// prefix is added to the metric name to avoid cross app metric conflict
	// e.g. $prefix_$namespace_$subsystem_$name
	prefix string
	// constLabels is added to user metric by default to avoid metric conflict
	constLabels prometheus.Labels
}

// NewCounter works like the function of the same name in the prometheus
// package, but it automatically registers the Counter with the Factory's
// Registerer. Panic if it can't register successfully. Thread-safe.
func (f *wrappingFactory) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(*wrapCounterOpts(f.prefix, f.constLabels, &opts))
	f.mustRegister(c)
	return c
}

// NewCounterVec works like the function of the same name in the
// prometheus, package but it automatically registers the CounterVec with
// the Factory's Registerer. Panic if it can't register successfully.Thread-safe.
func (f *wrappingFactory) NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(*wrapCounterOpts(f.prefix, f.constLabels, &opts), labelNames)
	f.mustRegister(c)
	return c
}

// NewGauge works like the function of the same name in the prometheus
// package, but it automatically registers the Gauge with the Factory's
// Registerer. Panic if it can't register successfully.Thread-safe.
func (f *wrappingFactory) NewGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	c := prometheus.NewGauge(*wrapGaugeOpts(f.prefix, f.constLabels, &opts))
	f.mustRegister(c)
	return c
}

// NewHistogram works like the function of the same name in the prometheus
// package but it automatically registers the Histogram with the Factory's
// Registerer. Panic if it can't register successfully.Thread-safe.
func (f *wrappingFactory) NewHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	c := prometheus.NewHistogram(*wrapHistogramOpts(f.prefix, f.constLabels, &opts))
	f.mustRegister(c)
	return c
}

func (f *wrappingFactory) mustRegister(c prometheus.Collector) {
	if f.r == nil {
		return
	}
	f.r.MustRegister(c)
}

func wrapNamespace(prefix, namespace string) string {
	switch {
	case prefix == "":
		return namespace
	case namespace == "":
		return prefix
	default:
		return prefix + "_" + namespace
	}
}

func mergeLabels(constLabels, own prometheus.Labels) prometheus.Labels {
	if len(constLabels) == 0 {
		return own
	}
	merged := make(prometheus.Labels, len(own)+len(constLabels))
	for name, value := range own {
		merged[name] = value
	}
	for name, value := range constLabels {
		// labels set by the metric itself take precedence
		if _, exists := merged[name]; !exists {
			merged[name] = value
		}
	}
	return merged
}

func wrapCounterOpts(prefix string, constLabels prometheus.Labels, opts *prometheus.CounterOpts) *prometheus.CounterOpts {
	opts.Namespace = wrapNamespace(prefix, opts.Namespace)
	opts.ConstLabels = mergeLabels(constLabels, opts.ConstLabels)
	return opts
}

func wrapGaugeOpts(prefix string, constLabels prometheus.Labels, opts *prometheus.GaugeOpts) *prometheus.GaugeOpts {
	opts.Namespace = wrapNamespace(prefix, opts.Namespace)
	opts.ConstLabels = mergeLabels(constLabels, opts.ConstLabels)
	return opts
}

func wrapHistogramOpts(prefix string, constLabels prometheus.Labels, opts *prometheus.HistogramOpts) *prometheus.HistogramOpts {
	opts.Namespace = wrapNamespace(prefix, opts.Namespace)
	opts.ConstLabels = mergeLabels(constLabels, opts.ConstLabels)
	return opts
}
