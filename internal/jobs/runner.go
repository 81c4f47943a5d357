// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adrkit/adrkit/internal/library"
)

// ErrScanInFlight is returned by Runner.Run when a scan is already active.
var ErrScanInFlight = errors.New("scan already in progress")

// Runner serializes scans so the API trigger, the docs watcher and the
// startup scan cannot rebuild the index concurrently. It remembers the most
// recent Status for the status endpoint and the readiness probe.
type Runner struct {
	store *library.Store

	running atomic.Bool

	mu   sync.RWMutex
	last Status
	seen bool
}

// NewRunner returns a Runner bound to the given store.
func NewRunner(store *library.Store) *Runner {
	return &Runner{store: store}
}

// Run executes one scan. A second caller while a scan is active gets
// ErrScanInFlight instead of queueing.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Status, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrScanInFlight
	}
	defer r.running.Store(false)

	status, err := Scan(ctx, cfg, r.store)

	r.mu.Lock()
	switch {
	case status != nil:
		r.last = *status
		r.seen = true
	case err != nil:
		r.last = Status{LastScan: time.Now().UTC(), Error: err.Error()}
		r.seen = true
	}
	r.mu.Unlock()

	return status, err
}

// Running reports whether a scan is currently active.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// Last returns the most recent scan status. ok is false until the first
// attempt finishes.
func (r *Runner) Last() (status Status, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.seen
}
