package capability

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/pkg/errors"

	"github.com/kalybrate/kalybrate/internal/logger"
)

const (
	defaultTimeout    = 2 * time.Minute
	defaultRetryDelay = 2 * time.Second
	// one retry on transient failure, so two attempts total
	defaultAttempts = 2
)

// Caller wraps a Client with the per-call policy every engine component
// needs: a deadline on each invocation and one retry with backoff on
// transient failure. Context cancellation and empty responses are not
// retried.
type Caller struct {
	client   Client
	timeout  time.Duration
	attempts uint
	delay    time.Duration
}

// CallerOption configures a Caller.
type CallerOption func(*Caller)

// WithTimeout sets the per-invocation deadline.
func WithTimeout(d time.Duration) CallerOption {
	return func(c *Caller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAttempts sets the total attempt count, including the first call.
func WithAttempts(n uint) CallerOption {
	return func(c *Caller) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithRetryDelay sets the base backoff delay between attempts.
func WithRetryDelay(d time.Duration) CallerOption {
	return func(c *Caller) {
		if d > 0 {
			c.delay = d
		}
	}
}

// NewCaller wraps client with the default policy, adjusted by opts.
func NewCaller(client Client, opts ...CallerOption) *Caller {
	c := &Caller{
		client:   client,
		timeout:  defaultTimeout,
		attempts: defaultAttempts,
		delay:    defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model reports the wrapped client's model id.
func (c *Caller) Model() string { return c.client.Model() }

// Invoke calls the wrapped client under the configured deadline, retrying
// transient failures. The parent ctx still governs overall cancellation.
func (c *Caller) Invoke(ctx context.Context, systemContext, prompt string) (*Invocation, error) {
	var result *Invocation

	err := retry.Do(
		func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			inv, err := c.client.Invoke(callCtx, systemContext, prompt)
			if err != nil {
				return err
			}
			result = inv
			return nil
		},
		retry.RetryIf(func(err error) bool {
			// the parent context being done means the session is shutting
			// down, not that the provider hiccuped
			if ctx.Err() != nil {
				return false
			}
			return !errors.Is(err, ErrEmptyResponse)
		}),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).Warn("capability call failed, retrying")
		}),
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}
