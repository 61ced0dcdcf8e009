package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Delay(t *testing.T) {
	tests := []struct {
		name   string
		policy RetryPolicy
		n      uint
		want   time.Duration
	}{
		{name: "default after first attempt", policy: DefaultRetryPolicy(), n: 0, want: time.Second},
		{name: "default after second attempt", policy: DefaultRetryPolicy(), n: 1, want: 2 * time.Second},
		{name: "default after third attempt", policy: DefaultRetryPolicy(), n: 2, want: 5 * time.Second},
		{name: "last delay repeats", policy: DefaultRetryPolicy(), n: 7, want: 5 * time.Second},
		{name: "empty schedule retries immediately", policy: RetryPolicy{Attempts: 2}, n: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Delay(tt.n))
		})
	}
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := DefaultRetryPolicy()

	assert.Equal(t, uint(3), policy.Attempts)

	// three attempts wait exactly twice: 1s then 2s
	var waits []time.Duration
	for n := uint(0); n < policy.Attempts-1; n++ {
		waits = append(waits, policy.Delay(n))
	}
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits)
}

func TestRetryPolicy_AttemptsAtLeastOne(t *testing.T) {
	assert.Equal(t, uint(1), RetryPolicy{}.attempts())
	assert.Equal(t, uint(4), RetryPolicy{Attempts: 4}.attempts())
}
