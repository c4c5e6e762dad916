package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
	"github.com/ukydev/gps-telemetry-collector/internal/provider"
)

// ExhaustedError is the terminal failure after the retry budget is spent.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("provider call failed after %d attempt(s): %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// RetryExecutor wraps a single provider fetch with bounded retries and
// exponential backoff. Non-retryable failures (auth, missing vehicle) fail
// immediately without consuming the retry budget. The whole call, retries
// included, runs under one absolute timeout.
type RetryExecutor struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	CallTimeout time.Duration
	// Limiter, when set, gates every attempt so retries cannot exceed the
	// provider rate limit either.
	Limiter *rate.Limiter
}

// Fetch performs the provider call for one vehicle. It returns the payload
// and the number of attempts made, or an ExhaustedError.
func (r *RetryExecutor) Fetch(ctx context.Context, client provider.Client, vin string, reportType models.ReportType) (*provider.RawReport, int, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.CallTimeout)
	defer cancel()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.BaseDelay
	bo.MaxInterval = r.MaxDelay
	bo.Multiplier = 2

	attempts := 0
	operation := func() (*provider.RawReport, error) {
		if r.Limiter != nil {
			if err := r.Limiter.Wait(callCtx); err != nil {
				return nil, backoff.Permanent(err)
			}
		}
		attempts++
		report, err := client.FetchByVIN(callCtx, vin, reportType)
		if err != nil {
			if !isRetryable(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return report, nil
	}

	report, err := backoff.Retry(callCtx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(r.MaxAttempts)),
		backoff.WithMaxElapsedTime(r.CallTimeout),
	)
	if err != nil {
		return nil, attempts, &ExhaustedError{Attempts: attempts, LastErr: err}
	}
	return report, attempts, nil
}

func isRetryable(err error) bool {
	if errors.Is(err, provider.ErrVehicleNotFound) {
		return false
	}
	var provErr *provider.Error
	if errors.As(err, &provErr) {
		return provErr.Retryable()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Unclassified errors are treated as transient.
	return true
}
