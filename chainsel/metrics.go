// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chainsel

import "github.com/vechain/praos/metrics"

var (
	metricEvaluateCount = metrics.LazyLoadCounterVec("chainsel_evaluate_count", []string{"result"})
	metricCandidates    = metrics.LazyLoadGauge("chainsel_candidates")
)
