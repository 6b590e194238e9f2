package poll

import (
	"context"
	"time"
)

const (
	DefaultTimeout  = 5 * time.Second
	DefaultInterval = 100 * time.Millisecond
)

// Options controls a bounded poll. Zero fields fall back to the defaults.
type Options struct {
	Timeout  time.Duration
	Interval time.Duration
}

// Defaults returns the options used when none are configured.
func Defaults() Options {
	return Options{Timeout: DefaultTimeout, Interval: DefaultInterval}
}

func (o Options) normalized() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	return o
}

// Until evaluates probe until it reports ok or the timeout elapses.
// The first present value is returned immediately. A timeout yields
// (zero, false, nil); a probe error is returned as-is without retrying.
// Cancelling ctx ends the wait with ctx.Err().
func Until[T any](ctx context.Context, opts Options, probe func() (T, bool, error)) (T, bool, error) {
	opts = opts.normalized()
	deadline := time.Now().Add(opts.Timeout)

	var zero T
	for {
		v, ok, err := probe()
		if err != nil {
			return zero, false, err
		}
		if ok {
			return v, true, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return zero, false, nil
		}
		wait := opts.Interval
		if wait > remaining {
			wait = remaining
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, false, ctx.Err()
		case <-timer.C:
		}
	}
}
