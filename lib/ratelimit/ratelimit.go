package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/mazen160/go-random"
)

// Tier selects the inter-request delay applied after a permit. Coarser
// scopes use longer delays to shape load toward the remote site.
type Tier int

const (
	TierReview Tier = iota
	TierModel
	TierBrand
)

type Config struct {
	ReviewDelay time.Duration `json:"review_delay"`
	ModelDelay  time.Duration `json:"model_delay"`
	BrandDelay  time.Duration `json:"brand_delay"`
	// MaxJitter bounds the random extra wait added on top of the tier
	// delay so the request pattern is never perfectly periodic.
	MaxJitter time.Duration `json:"max_jitter"`
}

func DefaultConfig() Config {
	return Config{
		ReviewDelay: time.Second,
		ModelDelay:  2 * time.Second,
		BrandDelay:  4 * time.Second,
		MaxJitter:   time.Second,
	}
}

// Limiter is the single point of backpressure toward the remote site.
// One Limiter is shared by all workers of a run.
type Limiter struct {
	cfg Config

	mu   sync.Mutex
	next time.Time
}

func New(cfg Config) *Limiter {
	return &Limiter{cfg: cfg}
}

func (l *Limiter) delayFor(tier Tier) time.Duration {
	switch tier {
	case TierBrand:
		return l.cfg.BrandDelay
	case TierModel:
		return l.cfg.ModelDelay
	default:
		return l.cfg.ReviewDelay
	}
}

func (l *Limiter) jitter() time.Duration {
	if l.cfg.MaxJitter <= 0 {
		return 0
	}
	ms, err := random.IntRange(0, int(l.cfg.MaxJitter/time.Millisecond)+1)
	if err != nil {
		return l.cfg.MaxJitter / 2
	}
	return time.Duration(ms) * time.Millisecond
}

// Throttle blocks until the next request is permitted or the context is
// cancelled. Each permit pushes the following permit at least one tier
// delay (plus jitter) into the future.
func (l *Limiter) Throttle(ctx context.Context, tier Tier) error {
	l.mu.Lock()
	now := time.Now()
	permitAt := l.next
	if permitAt.Before(now) {
		permitAt = now
	}
	l.next = permitAt.Add(l.delayFor(tier) + l.jitter())
	l.mu.Unlock()

	wait := time.Until(permitAt)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
