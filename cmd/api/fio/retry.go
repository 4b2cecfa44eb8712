package fio

import (
	"context"
	"math/rand"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var errConflict = errors.New("409 conflict")

// withRetry runs do until it stops failing with errConflict or the attempts
// run out, in which case a *ThrottlingError is returned. Any other error
// ends the loop at once.
func (c *Client) withRetry(ctx context.Context, a action, do func() error) error {
	var attempts uint

	err := retry.Do(
		func() error {
			attempts++
			return do()
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.Attempts),
		retry.MaxDelay(c.cfg.MaxDelay),
		retry.DelayType(c.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Cause(err) == errConflict
		}),
		retry.OnRetry(func(n uint, err error) {
			log.WithFields(log.Fields{
				"action":  a,
				"attempt": n + 1,
			}).Warn("fio api throttled the token")
		}),
	)

	if errors.Cause(err) == errConflict {
		return &ThrottlingError{Attempts: attempts}
	}
	return err
}

// backoff waits a random duration below Delay*2^n, capped at MaxDelay.
func (c *Client) backoff(n uint, _ error, _ *retry.Config) time.Duration {
	return time.Duration(rand.Int63n(int64(c.ceiling(n))))
}

func (c *Client) ceiling(n uint) time.Duration {
	if c.cfg.Delay > c.cfg.MaxDelay>>n {
		return c.cfg.MaxDelay
	}
	return c.cfg.Delay << n
}
