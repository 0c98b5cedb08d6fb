package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fortidash_cache_hits_total",
		Help: "Number of cache reads served without upstream I/O.",
	}, []string{"cache"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fortidash_cache_misses_total",
		Help: "Number of cache reads that found no live entry.",
	}, []string{"cache"})

	cacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fortidash_cache_evictions_total",
		Help: "Number of expired entries removed by reads or sweeps.",
	}, []string{"cache"})
)
