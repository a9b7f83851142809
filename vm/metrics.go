// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	executed  prometheus.Counter
	committed prometheus.Counter
	reverted  prometheus.Counter
	failed    prometheus.Counter
	queries   prometheus.Counter
	maxDepth  prometheus.Gauge
}

func newMetrics(namespace string, registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		executed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txs_executed",
			Help:      "Number of top level transactions executed",
		}),
		committed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txs_committed",
			Help:      "Number of top level transactions whose effects were committed",
		}),
		reverted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txs_reverted",
			Help:      "Number of top level transactions reverted on request",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txs_failed",
			Help:      "Number of top level transactions that failed",
		}),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_executed",
			Help:      "Number of read only queries executed",
		}),
		maxDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "max_call_depth_reached",
			Help:      "Deepest nested call frame seen so far",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.executed),
		registerer.Register(m.committed),
		registerer.Register(m.reverted),
		registerer.Register(m.failed),
		registerer.Register(m.queries),
		registerer.Register(m.maxDepth),
	)
	return m, errs.Err
}
