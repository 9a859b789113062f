// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics provides process wide meters. They default to no-op
// until InitializePrometheusMetrics is called.
package metrics

import (
	"net/http"
	"sync"
)

// metrics is the process wide meter provider.
var metrics = defaultNoopMetrics()

// Metrics creates meters, registering each name once.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter
	GetOrCreateHandler() http.Handler
}

// HTTPHandler returns the handler exposing the meters.
func HTTPHandler() http.Handler {
	return metrics.GetOrCreateHandler()
}

// Bucket10s is the histogram buckets for durations in milliseconds up to 10s.
var Bucket10s = []int64{0, 500, 1000, 2000, 3000, 4000, 5000, 7500, 10_000}

// CountMeter is a monotonically increasing counter.
type CountMeter interface {
	Add(int64)
}

// CountVecMeter is a family of counters partitioned by labels.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

// GaugeMeter is a value that goes up and down.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

// HistogramMeter samples observations into buckets.
type HistogramMeter interface {
	Observe(int64)
}

func Counter(name string) CountMeter { return metrics.GetOrCreateCountMeter(name) }

func CounterVec(name string, labels []string) CountVecMeter {
	return metrics.GetOrCreateCountVecMeter(name, labels)
}

func Gauge(name string) GaugeMeter { return metrics.GetOrCreateGaugeMeter(name) }

func Histogram(name string, buckets []int64) HistogramMeter {
	return metrics.GetOrCreateHistogramMeter(name, buckets)
}

// The LazyLoad functions define a meter as a package variable, and create it on first use.
// So the provider is picked by the time the meter is used rather than defined.

func LazyLoadCounter(name string) func() CountMeter {
	return sync.OnceValue(func() CountMeter { return Counter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return sync.OnceValue(func() CountVecMeter { return CounterVec(name, labels) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return sync.OnceValue(func() GaugeMeter { return Gauge(name) })
}

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return sync.OnceValue(func() HistogramMeter { return Histogram(name, buckets) })
}
