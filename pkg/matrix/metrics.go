package matrix

import (
	"github.com/prometheus/client_golang/prometheus"
)

type builderMetrics struct {
	pairsTotal       prometheus.Counter
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	unreachablePairs prometheus.Counter
	noPathPairs      prometheus.Counter
}

func newBuilderMetrics(reg prometheus.Registerer) *builderMetrics {
	m := &builderMetrics{
		pairsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streetgraph_matrix_pairs_total",
			Help: "Ordered point pairs processed by the distance matrix builder.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streetgraph_matrix_path_cache_hits_total",
			Help: "Pairs served from the path cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streetgraph_matrix_path_cache_misses_total",
			Help: "Pairs that required a shortest path search.",
		}),
		unreachablePairs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streetgraph_matrix_unreachable_pairs_total",
			Help: "Pairs rejected because an endpoint is outside the largest SCC.",
		}),
		noPathPairs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streetgraph_matrix_no_path_pairs_total",
			Help: "Within-SCC searches that exhausted the frontier.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.pairsTotal, m.cacheHits, m.cacheMisses,
			m.unreachablePairs, m.noPathPairs)
	}
	return m
}
