// Package metrics registers the prometheus collectors of the resolver components
// and exports them for node exporter style textfile collection.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes all collectors registered by this module.
const Namespace = "pomresolve"

const (
	// ResultSuccess labels a successful operation.
	ResultSuccess = "success"
	// ResultNotFound labels an operation that failed because nothing matched.
	ResultNotFound = "not_found"
	// ResultFailure labels any other failed operation.
	ResultFailure = "failure"
)

// MustRegisterCounterVec creates and registers a counter vector.
// Must be called from `init`.
func MustRegisterCounterVec(component, name, help string, labelNames ...string) *prometheus.CounterVec {
	m := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
	}, labelNames)
	prometheus.MustRegister(m)
	return m
}

// MustRegisterHistogramVec creates and registers a histogram vector.
// Must be called from `init`.
func MustRegisterHistogramVec(component, name, help string, buckets []float64, labelNames ...string) *prometheus.HistogramVec {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	m := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labelNames)
	prometheus.MustRegister(m)
	return m
}

// WriteTextfile writes all collectors of the default gatherer to path
// in the prometheus text exposition format.
func WriteTextfile(path string) error {
	return WriteTextfileFrom(prometheus.DefaultGatherer, path)
}

// WriteTextfileFrom is like WriteTextfile but reads from the given gatherer.
func WriteTextfileFrom(gatherer prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("writing metrics to %q failed: %w", path, err)
	}
	return nil
}
