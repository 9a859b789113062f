// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stable

import "github.com/vechain/praos/metrics"

var (
	metricAppendCount   = metrics.LazyLoadCounterVec("stable_append_count", []string{"path"})
	metricTipSlot       = metrics.LazyLoadGauge("stable_tip_slot")
	metricRecoveryCount = metrics.LazyLoadCounter("stable_recovery_count")
	metricCacheAccess   = metrics.LazyLoadCounterVec("stable_payload_cache_access", []string{"result"})
)
