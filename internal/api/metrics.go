// SPDX-License-Identifier: MIT

package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fileRequestsDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adrkit_file_requests_denied_total",
		Help: "Number of artifact requests denied for security reasons",
	}, []string{"reason"})

	fileRequestsAllowedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adrkit_file_requests_allowed_total",
		Help: "Number of artifact requests allowed",
	})

	fileCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adrkit_file_cache_hits_total",
		Help: "Number of artifact requests served as 304 Not Modified",
	})

	fileCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adrkit_file_cache_misses_total",
		Help: "Number of artifact requests resulting in 200 OK (content served)",
	})
)

func recordFileRequestAllowed() {
	fileRequestsAllowedTotal.Inc()
}

func recordFileRequestDenied(reason string) {
	fileRequestsDeniedTotal.WithLabelValues(reason).Inc()
}

func recordFileCacheHit() {
	fileCacheHitsTotal.Inc()
}

func recordFileCacheMiss() {
	fileCacheMissesTotal.Inc()
}
