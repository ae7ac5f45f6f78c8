// Package ratelimit enforces per-client request budgets for the API.
//
// Budgets are continuously refilled token buckets: a rule granting 10
// requests per hour with burst 2 admits two back-to-back calls, then one
// more every six minutes.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Info reports the outcome of one admission check. Limit is zero when no
// budget applied (limiter disabled, allow-listed client, or an unlimited
// endpoint).
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// bucket is a token counter refilled lazily on each take.
type bucket struct {
	mu    sync.Mutex
	rate  float64 // tokens per second
	cap   float64
	level float64
	at    time.Time
}

func newBucket(l Limit) *bucket {
	capacity := l.Burst
	if capacity <= 0 {
		capacity = l.Requests
	}
	return &bucket{
		rate:  float64(l.Requests) / l.Window.Seconds(),
		cap:   float64(capacity),
		level: float64(capacity),
		at:    time.Now(),
	}
}

// take refills for the elapsed time, consumes one token when available, and
// reports the post-decision state. RetryAfter is the wait until the next
// whole token; ResetTime is when the bucket is full again.
func (b *bucket) take() (ok bool, remaining int, reset time.Time, retry time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.level = math.Min(b.cap, b.level+now.Sub(b.at).Seconds()*b.rate)
	b.at = now

	if b.level >= 1 {
		b.level--
		ok = true
	} else {
		retry = time.Duration((1 - b.level) / b.rate * float64(time.Second))
	}

	remaining = int(b.level)
	reset = now
	if b.level < b.cap {
		reset = now.Add(time.Duration((b.cap - b.level) / b.rate * float64(time.Second)))
	}
	return ok, remaining, reset, retry
}

// entry pairs a bucket with its last use so the sweeper can drop idle ones.
type entry struct {
	b    *bucket
	seen time.Time
}

// Limiter admits or rejects requests against per-endpoint budgets, tracked
// separately per client.
type Limiter struct {
	cfg *Config

	mu      sync.Mutex
	entries map[string]*entry

	sweep *time.Ticker
	done  chan struct{}
}

// NewLimiter builds a limiter from cfg. A nil cfg means enabled with the
// default budget only.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = &Config{
			Enabled:       true,
			Default:       Limit{Requests: 1000, Window: time.Minute},
			SweepInterval: 5 * time.Minute,
		}
	}

	l := &Limiter{
		cfg:     cfg,
		entries: make(map[string]*entry),
	}
	if cfg.Enabled && cfg.SweepInterval > 0 {
		l.sweep = time.NewTicker(cfg.SweepInterval)
		l.done = make(chan struct{})
		go l.sweeper()
	}
	return l
}

// Allow decides whether clientID may call method+path right now.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.cfg.Enabled || l.cfg.AlwaysAllow[clientID] {
		return true, Info{Allowed: true}
	}
	if l.cfg.AlwaysDeny[clientID] {
		return false, Info{}
	}

	limit := l.cfg.limitFor(path, method)
	if limit.Requests <= 0 {
		return true, Info{Allowed: true}
	}

	key := clientID + " " + method + " " + path
	ok, remaining, reset, retry := l.bucket(key, limit).take()
	return ok, Info{
		Allowed:    ok,
		Limit:      limit.Requests,
		Remaining:  remaining,
		ResetTime:  reset,
		RetryAfter: retry,
	}
}

func (l *Limiter) bucket(key string, limit Limit) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{b: newBucket(limit)}
		l.entries[key] = e
	}
	e.seen = time.Now()
	return e.b
}

// sweeper drops buckets idle for over an hour.
func (l *Limiter) sweeper() {
	for {
		select {
		case <-l.sweep.C:
			cutoff := time.Now().Add(-time.Hour)
			l.mu.Lock()
			for key, e := range l.entries {
				if e.seen.Before(cutoff) {
					delete(l.entries, key)
				}
			}
			l.mu.Unlock()
		case <-l.done:
			return
		}
	}
}

// Stop ends the background sweeper.
func (l *Limiter) Stop() {
	if l.sweep != nil {
		l.sweep.Stop()
	}
	if l.done != nil {
		close(l.done)
	}
}
