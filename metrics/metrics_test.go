// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	metricFamilies, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	m := make(map[string]*dto.MetricFamily)
	for _, mf := range metricFamilies {
		m[mf.GetName()] = mf
	}
	return m
}

func TestNoopAndLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics() // make sure it starts in the default state of noopMeter

	for _, a := range []any{
		Gauge("noopGauge"),
		Counter("noopCounter"),
		CounterVec("noopCounter", nil),
		Histogram("noopHist", nil),
	} {
		require.IsType(t, &noopMeters{}, a)
	}

	server := httptest.NewServer(HTTPHandler())
	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	server.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", []string{"type"})
	lazyHistogram := LazyLoadHistogram("lazyHistogram", nil)

	// after initialization, newly created metrics become of the prometheus type
	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	Counter("window_pushes").Add(3)
	Counter("window_pushes").Add(2)
	CounterVec("rollbacks", []string{"result"}).AddWithLabel(1, map[string]string{"result": "ok"})
	CounterVec("rollbacks", []string{"result"}).AddWithLabel(1, map[string]string{"result": "not-found"})

	Gauge("window_len").Set(10)
	Gauge("window_len").Add(-1)

	hist := Histogram("recovery_ms", Bucket10s)
	hist.Observe(100)
	hist.Observe(200)

	m := gather(t)
	require.Equal(t, float64(5), m["praos_metrics_window_pushes"].Metric[0].GetCounter().GetValue())
	require.Len(t, m["praos_metrics_rollbacks"].Metric, 2)
	require.Equal(t, float64(9), m["praos_metrics_window_len"].Metric[0].GetGauge().GetValue())
	require.Equal(t, float64(300), m["praos_metrics_recovery_ms"].Metric[0].GetHistogram().GetSampleSum())
}
