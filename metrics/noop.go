// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

// noopMetrics hands out meters that record nothing.
type noopMetrics struct{}

func defaultNoopMetrics() Metrics { return &noopMetrics{} }

func (n *noopMetrics) GetOrCreateCountMeter(string) CountMeter                  { return &noopMetric }
func (n *noopMetrics) GetOrCreateCountVecMeter(string, []string) CountVecMeter  { return &noopMetric }
func (n *noopMetrics) GetOrCreateGaugeMeter(string) GaugeMeter                  { return &noopMetric }
func (n *noopMetrics) GetOrCreateHistogramMeter(string, []int64) HistogramMeter { return &noopMetric }

// GetOrCreateHandler returns a handler that serves nothing, metrics are disabled.
func (n *noopMetrics) GetOrCreateHandler() http.Handler { return http.NotFoundHandler() }

var noopMetric = noopMeters{}

type noopMeters struct{}

func (n noopMeters) AddWithLabel(int64, map[string]string) {}
func (n noopMeters) Add(int64)                             {}
func (n noopMeters) Set(int64)                             {}
func (n noopMeters) Observe(int64)                         {}
