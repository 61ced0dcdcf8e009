package source

import (
	"time"

	"github.com/avast/retry-go"
)

// RetryPolicy is a fixed retry schedule. Delays[n] is the wait after the
// (n+1)th failed attempt; the last delay repeats when Attempts exceeds the
// schedule. No wait follows the final attempt.
type RetryPolicy struct {
	Attempts uint
	Delays   []time.Duration
}

// DefaultRetryPolicy makes three attempts, waiting 1s and then 2s between them.
// The trailing 5s only applies to a policy with more attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 3,
		Delays:   []time.Duration{1 * time.Second, 2 * time.Second, 5 * time.Second},
	}
}

// Delay returns the wait after the failed attempt with 0-based index n.
func (p RetryPolicy) Delay(n uint) time.Duration {
	if len(p.Delays) == 0 {
		return 0
	}
	if int(n) >= len(p.Delays) {
		return p.Delays[len(p.Delays)-1]
	}
	return p.Delays[n]
}

func (p RetryPolicy) attempts() uint {
	if p.Attempts == 0 {
		return 1
	}
	return p.Attempts
}

func (p RetryPolicy) options() []retry.Option {
	return []retry.Option{
		retry.Attempts(p.attempts()),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return p.Delay(n)
		}),
		retry.LastErrorOnly(true),
	}
}
