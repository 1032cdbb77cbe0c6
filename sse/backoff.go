package sse

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes reconnect delays with exponential growth and jitter.
type Backoff struct {
	BaseDelay time.Duration // Delay before the first reconnect (default: 1s)
	MaxDelay  time.Duration // Maximum delay cap (default: 30s)
	Jitter    float64       // Jitter factor 0.0-1.0 (default: 0.2)
}

// DefaultBackoff returns the backoff used when Config leaves it unset.
func DefaultBackoff() Backoff {
	return Backoff{
		BaseDelay: time.Second,
		MaxDelay:  30 * time.Second,
		Jitter:    0.2,
	}
}

func (b Backoff) withDefaults() Backoff {
	d := DefaultBackoff()
	if b.BaseDelay <= 0 {
		b.BaseDelay = d.BaseDelay
	}
	if b.MaxDelay <= 0 {
		b.MaxDelay = d.MaxDelay
	}
	if b.Jitter < 0 || b.Jitter > 1 {
		b.Jitter = d.Jitter
	}
	return b
}

// Delay returns the wait before reconnect attempt number attempt (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	b = b.withDefaults()

	// baseDelay * 2^attempt
	delay := float64(b.BaseDelay) * math.Pow(2, float64(attempt))

	// delay * (1 + random(-jitter, +jitter))
	if b.Jitter > 0 {
		jitterRange := delay * b.Jitter
		delay += (rand.Float64()*2 - 1) * jitterRange
	}

	if delay > float64(b.MaxDelay) {
		delay = float64(b.MaxDelay)
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
