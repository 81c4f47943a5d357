// SPDX-License-Identifier: MIT

// Package ratelimit guards expensive operations with token buckets. A full
// directory scan walks and re-parses every document, so scan triggers are
// limited globally and per client IP.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var rateLimitExceeded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "adrkit",
		Name:      "ratelimit_exceeded_total",
		Help:      "Total rate limit rejections",
	},
	[]string{"limit_type"},
)

// Config holds rate limiting configuration.
type Config struct {
	// Global limits across all clients
	GlobalRate  rate.Limit
	GlobalBurst int

	// Per-IP limits
	PerIPRate  rate.Limit
	PerIPBurst int

	// Cleanup interval for per-IP limiters
	CleanupInterval time.Duration
}

// DefaultConfig returns the scan-trigger defaults: a steady state of one
// trigger per 10s globally and one per 30s per client, with a small burst.
func DefaultConfig() Config {
	return Config{
		GlobalRate:  rate.Every(10 * time.Second),
		GlobalBurst: 2,

		PerIPRate:  rate.Every(30 * time.Second),
		PerIPBurst: 2,

		CleanupInterval: 5 * time.Minute,
	}
}

// Limiter manages the global and per-IP token buckets.
type Limiter struct {
	config Config

	global *rate.Limiter
	perIP  map[string]*rate.Limiter
	mu     sync.Mutex

	lastCleanup time.Time
}

// New creates a limiter with the given config.
func New(config Config) *Limiter {
	return &Limiter{
		config:      config,
		global:      rate.NewLimiter(config.GlobalRate, config.GlobalBurst),
		perIP:       make(map[string]*rate.Limiter),
		lastCleanup: time.Now(),
	}
}

// Allow reports whether a request from clientIP may proceed, consuming one
// token from the global and the per-IP bucket.
func (l *Limiter) Allow(clientIP string) bool {
	if !l.global.Allow() {
		rateLimitExceeded.WithLabelValues("global").Inc()
		return false
	}

	if !l.ipLimiter(clientIP).Allow() {
		rateLimitExceeded.WithLabelValues("per_ip").Inc()
		return false
	}
	return true
}

// ipLimiter returns the bucket for ip, creating it on first use. Once the
// cleanup interval has passed, all buckets are dropped first; a fresh bucket
// starts full, which only ever relaxes the limit briefly.
func (l *Limiter) ipLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) >= l.config.CleanupInterval {
		l.perIP = make(map[string]*rate.Limiter)
		l.lastCleanup = time.Now()
	}

	limiter, ok := l.perIP[ip]
	if !ok {
		limiter = rate.NewLimiter(l.config.PerIPRate, l.config.PerIPBurst)
		l.perIP[ip] = limiter
	}
	return limiter
}

// GetClientIP extracts the real client IP from the request, preferring
// X-Forwarded-For, then X-Real-IP, then RemoteAddr.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Multiple hops: "client, proxy1, proxy2". The first entry is the
		// original client.
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
