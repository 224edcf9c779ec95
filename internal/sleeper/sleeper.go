package sleeper

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidDuration happens when the initial sleep duration is not positive
	// or the maximum is below the initial duration.
	ErrInvalidDuration = errors.New("invalid sleep duration")
)

// exponentialBackoffSleeper doubles the sleep duration on every
// consecutive sleep, up to the maximum.
type exponentialBackoffSleeper struct {
	initial       time.Duration
	max           time.Duration
	sleepDuration time.Duration

	sleep func(ctx context.Context, d time.Duration)
}

// NewExponentialSleeper
func NewExponentialSleeper(initial, max time.Duration) (*exponentialBackoffSleeper, error) {
	if initial <= 0 || max < initial {
		return nil, ErrInvalidDuration
	}

	return &exponentialBackoffSleeper{
		initial:       initial,
		max:           max,
		sleepDuration: initial,
		sleep:         sleepContext,
	}, nil
}

// Sleep blocks for the current back-off duration or until ctx is done.
func (e *exponentialBackoffSleeper) Sleep(ctx context.Context) {
	e.sleep(ctx, e.sleepDuration)
	e.sleepDuration += e.sleepDuration
	if e.sleepDuration > e.max {
		e.sleepDuration = e.max
	}
}

// Reset
func (e *exponentialBackoffSleeper) Reset() {
	e.sleepDuration = e.initial
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
