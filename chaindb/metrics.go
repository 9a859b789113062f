// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chaindb

import "github.com/vechain/praos/metrics"

var (
	metricPromoteCount  = metrics.LazyLoadCounter("chaindb_promote_count")
	metricRollbackCount = metrics.LazyLoadCounterVec("chaindb_rollback_count", []string{"result"})
	metricRunnerBacklog = metrics.LazyLoadGauge("chaindb_runner_backlog")
)
