// Package ratelimit implements fixed-window request counting keyed by client.
//
// A window opens on the first request for a key and lasts for the configured
// duration. Up to max requests are accepted inside it; further requests are
// rejected until the window resets.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long the caller should wait before the window resets,
// rounded up to whole seconds.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return 0
	}
	return (wait + time.Second - 1) / time.Second * time.Second
}

// Limiter counts one request for key and reports whether it is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
