// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"time"
)

// RetryWithBackoff runs op up to maxAttempts times, doubling the wait after
// each failed attempt. op returns whether its error is worth retrying; a nil
// error or a non-retryable one ends the loop immediately. Cancelling ctx
// interrupts the wait. On exhaustion the last error is returned.
func RetryWithBackoff(
	ctx context.Context,
	maxAttempts int,
	baseBackoff time.Duration,
	op func(attempt int) (retry bool, err error),
) error {
	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			timer := time.NewTimer(baseBackoff << (attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-timer.C:
			}
		}

		retry, err := op(attempt)
		if err == nil || !retry {
			return err
		}
		lastErr = err
	}
	return lastErr
}
