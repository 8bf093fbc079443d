// Package resolve implements debounced lookup-by-name against the backend
// search endpoints, with the shared lookup caches as local fallback.
package resolve

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"orderdesk/internal/cache"
)

// LookupFunc issues one remote search for the given query.
type LookupFunc[T any] func(ctx context.Context, query string) ([]T, error)

// Resolver turns free-text queries into a ranked result set. An empty query
// returns the full local collection with no network call; a non-empty query
// waits out a quiet period and then issues one remote lookup.
//
// Correctness against out-of-order arrivals does not rely on timer
// cancellation: every dispatch carries the token that was current when it
// left, and a result whose token is no longer current is dropped on arrival.
// The timer only throttles call volume.
type Resolver[T any] struct {
	lookup   LookupFunc[T]
	local    *cache.Collection[T]
	nameOf   func(T) string
	debounce time.Duration
	log      *zap.Logger

	mu       sync.Mutex
	token    uint64
	results  []T
	timer    *time.Timer
	disabled bool
}

// New builds a resolver. The result set starts as the full local collection.
// A debounce of zero dispatches synchronously, which tests rely on.
func New[T any](lookup LookupFunc[T], local *cache.Collection[T], nameOf func(T) string, debounce time.Duration, log *zap.Logger) *Resolver[T] {
	return &Resolver[T]{
		lookup:   lookup,
		local:    local,
		nameOf:   nameOf,
		debounce: debounce,
		log:      log,
		results:  local.All(),
	}
}

// Search updates the active query. Any lookup dispatched for an earlier
// query is superseded from this moment: its result will fail the token check
// when it arrives.
func (r *Resolver[T]) Search(ctx context.Context, query string) {
	r.mu.Lock()
	if r.disabled {
		r.mu.Unlock()
		return
	}
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.token++
	token := r.token
	query = strings.TrimSpace(query)

	if query == "" {
		r.results = r.local.All()
		r.mu.Unlock()
		return
	}

	if r.debounce <= 0 {
		r.mu.Unlock()
		r.dispatch(ctx, token, query)
		return
	}
	r.timer = time.AfterFunc(r.debounce, func() {
		if r.stale(token) {
			return
		}
		r.dispatch(ctx, token, query)
	})
	r.mu.Unlock()
}

// Results returns a snapshot of the current result set.
func (r *Resolver[T]) Results() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.results...)
}

// Clear empties the result set and supersedes any in-flight lookup. The UI
// calls this after a selection is made.
func (r *Resolver[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token++
	r.results = nil
}

// SetDisabled turns the resolver off entirely. While disabled, Search is a
// no-op: when editing an existing order the customer identity is immutable
// and must never be replaced by a live search result.
func (r *Resolver[T]) SetDisabled(disabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled = disabled
	if disabled && r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Resolver[T]) dispatch(ctx context.Context, token uint64, query string) {
	res, err := r.lookup(ctx, query)
	if err != nil {
		// Lookup failures are recovered locally, never surfaced.
		r.log.Debug("remote lookup failed, falling back to local filter",
			zap.String("query", query), zap.Error(err))
		res = r.filterLocal(query)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if token != r.token {
		// Superseded while in flight. A response for "Mar" must not
		// clobber the result set for "Maria".
		return
	}
	r.results = res
}

func (r *Resolver[T]) stale(token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return token != r.token
}

// filterLocal is the offline fallback: case-insensitive substring match over
// the local collection.
func (r *Resolver[T]) filterLocal(query string) []T {
	q := strings.ToLower(query)
	var out []T
	for _, item := range r.local.All() {
		if strings.Contains(strings.ToLower(r.nameOf(item)), q) {
			out = append(out, item)
		}
	}
	return out
}
