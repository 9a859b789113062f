// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vechain/praos/log"
)

const namespace = "praos_metrics"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics creates a new instance of the Prometheus service and
// sets the implementation as the default metrics services
func InitializePrometheusMetrics() {
	// don't allow for reset
	if _, ok := metrics.(*prometheusMetrics); !ok {
		metrics = newPrometheusMetrics()
	}
}

type prometheusMetrics struct {
	meters sync.Map // kind+name => meter
}

func newPrometheusMetrics() Metrics {
	return &prometheusMetrics{}
}

// getOrCreate returns the meter registered under kind and name, or creates it with newFn.
func getOrCreate[T any](o *prometheusMetrics, kind, name string, newFn func() (prometheus.Collector, T)) T {
	key := kind + ":" + name
	if item, ok := o.meters.Load(key); ok {
		return item.(T)
	}
	collector, meter := newFn()
	if err := prometheus.Register(collector); err != nil {
		logger.Warn("unable to register metric", "name", name, "err", err)
	}
	actual, _ := o.meters.LoadOrStore(key, meter)
	return actual.(T)
}

func toFloatBuckets(buckets []int64) []float64 {
	var floatBuckets []float64
	for _, bucket := range buckets {
		floatBuckets = append(floatBuckets, float64(bucket))
	}
	return floatBuckets
}

func (o *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.Handler()
}

func (o *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	return getOrCreate(o, "counter", name, func() (prometheus.Collector, CountMeter) {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
		return c, &promCountMeter{c}
	})
}

func (o *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	return getOrCreate(o, "counterVec", name, func() (prometheus.Collector, CountVecMeter) {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
		return c, &promCountVecMeter{c}
	})
}

func (o *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	return getOrCreate(o, "gauge", name, func() (prometheus.Collector, GaugeMeter) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
		return g, &promGaugeMeter{g}
	})
}

func (o *prometheusMetrics) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	return getOrCreate(o, "histogram", name, func() (prometheus.Collector, HistogramMeter) {
		h := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   toFloatBuckets(buckets),
		})
		return h, &promHistogramMeter{h}
	})
}

type promHistogramMeter struct {
	histogram prometheus.Histogram
}

func (c *promHistogramMeter) Observe(i int64) {
	c.histogram.Observe(float64(i))
}

type promCountMeter struct {
	counter prometheus.Counter
}

func (c *promCountMeter) Add(i int64) {
	c.counter.Add(float64(i))
}

type promCountVecMeter struct {
	counter *prometheus.CounterVec
}

func (c *promCountVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(i))
}

type promGaugeMeter struct {
	gauge prometheus.Gauge
}

func (c *promGaugeMeter) Add(i int64) {
	c.gauge.Add(float64(i))
}

func (c *promGaugeMeter) Set(i int64) {
	c.gauge.Set(float64(i))
}
