// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package volatile

import "github.com/vechain/praos/metrics"

var (
	metricWindowLength  = metrics.LazyLoadGauge("volatile_window_length")
	metricRollbackCount = metrics.LazyLoadCounterVec("volatile_rollback_count", []string{"result"})
	metricRollbackDepth = metrics.LazyLoadHistogram("volatile_rollback_depth", []int64{0, 1, 2, 5, 10, 50, 100, 500, 2160})
)
