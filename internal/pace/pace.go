// Package pace spaces out requests to the target server. Pacing protects the
// server; it is not a retry or smoothing mechanism.
package pace

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks until the next request may be sent.
type Pacer interface {
	Wait(ctx context.Context) error
}

// None returns a pacer that never waits.
func None() Pacer {
	return noop{}
}

type noop struct{}

func (noop) Wait(ctx context.Context) error {
	return ctx.Err()
}

// Delay returns a pacer that sleeps d before every call except the first,
// leaving a fixed gap between consecutive requests.
func Delay(d time.Duration) Pacer {
	if d <= 0 {
		return None()
	}
	return &delay{d: d}
}

type delay struct {
	d       time.Duration
	mu      sync.Mutex
	started bool
}

func (p *delay) Wait(ctx context.Context) error {
	p.mu.Lock()
	first := !p.started
	p.started = true
	p.mu.Unlock()

	if first {
		return ctx.Err()
	}

	timer := time.NewTimer(p.d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Limit returns a pacer that caps throughput at perSecond requests per
// second. A non-positive rate disables the cap.
func Limit(perSecond float64) Pacer {
	if perSecond <= 0 {
		return None()
	}
	return limiter{rate.NewLimiter(rate.Limit(perSecond), 1)}
}

type limiter struct {
	l *rate.Limiter
}

func (p limiter) Wait(ctx context.Context) error {
	return p.l.Wait(ctx)
}

// Chain waits on each pacer in order.
func Chain(pacers ...Pacer) Pacer {
	return chain(pacers)
}

type chain []Pacer

func (c chain) Wait(ctx context.Context) error {
	for _, p := range c {
		if err := p.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}
