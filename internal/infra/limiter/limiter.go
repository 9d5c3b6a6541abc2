package limiter

import (
	"context"
	"math"

	"golang.org/x/time/rate"
)

// Limiter bounds how many generation calls run at once and how fast new ones start.
type Limiter struct {
	semaphore   chan struct{}
	rateLimiter *rate.Limiter
}

func New(maxConcurrent int, ratePerSecond float64) *Limiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	burst := int(math.Ceil(ratePerSecond))
	return &Limiter{
		semaphore:   make(chan struct{}, maxConcurrent),
		rateLimiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	if err := l.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	select {
	case l.semaphore <- struct{}{}:
		return func() { <-l.semaphore }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryAcquire takes a slot only if one is free and the rate allows it right now.
func (l *Limiter) TryAcquire() (release func(), ok bool) {
	if !l.rateLimiter.Allow() {
		return nil, false
	}

	select {
	case l.semaphore <- struct{}{}:
		return func() { <-l.semaphore }, true
	default:
		return nil, false
	}
}
