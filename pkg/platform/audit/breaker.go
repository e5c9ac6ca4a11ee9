package audit

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by Recorder.Record while the breaker is open.
var ErrCircuitOpen = errors.New("audit circuit open")

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// Breaker stops write attempts against an unhealthy store. After threshold
// consecutive failures it opens for cooldown. Once the cooldown passes a
// single trial write is let through: success closes the breaker, failure
// reopens it for another cooldown.
type Breaker struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration
	now       func() time.Time

	state     breakerState
	failures  int
	openUntil time.Time
}

// NewBreaker creates a breaker. Non-positive arguments fall back to 5
// failures and one minute.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a write may be attempted. Every true result must be
// followed by RecordSuccess or RecordFailure.
func (b *Breaker) Allow() bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateClosed:
		return true
	case stateOpen:
		if b.now().Before(b.openUntil) {
			return false
		}
		b.state = stateHalfOpen
		return true
	default:
		// trial in flight
		return false
	}
}

// RecordSuccess closes the breaker.
func (b *Breaker) RecordSuccess() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = stateClosed
	b.failures = 0
}

// RecordFailure counts a failed write. It opens the breaker at threshold, or
// immediately when the failed write was the half-open trial.
func (b *Breaker) RecordFailure() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.state == stateHalfOpen || b.failures >= b.threshold {
		b.state = stateOpen
		b.openUntil = b.now().Add(b.cooldown)
	}
}

// IsOpen reports whether writes are currently being refused, including while
// a half-open trial is in flight.
func (b *Breaker) IsOpen() bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state != stateClosed
}
