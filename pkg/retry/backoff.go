package retry

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// newBackOff builds the exponential schedule described by the policy.
// MaxElapsedTime of zero means attempts alone bound the loop.
func newBackOff(p Policy) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = p.Multiplier
	exp.MaxElapsedTime = p.MaxElapsedTime
	return exp
}

// TotalBackoff reports the nominal sum of delays between the policy's
// attempts, ignoring jitter. A full retry cycle occupies at most
// MaxAttempts timeouts plus this much waiting.
func (p Policy) TotalBackoff() time.Duration {
	var total time.Duration
	for i := 0; i < p.MaxAttempts-1; i++ {
		total += CalculateBackoffDuration(i, p.InitialInterval, p.Multiplier, p.MaxInterval)
	}
	return total
}

// CalculateBackoffDuration reports the nominal delay before the given
// attempt, ignoring jitter. Used for logging what the loop is about to do.
func CalculateBackoffDuration(attempt int, initialInterval time.Duration, multiplier float64, maxInterval time.Duration) time.Duration {
	duration := float64(initialInterval) * math.Pow(multiplier, float64(attempt))
	if duration > float64(maxInterval) {
		return maxInterval
	}
	return time.Duration(duration)
}
