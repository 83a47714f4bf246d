package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func newTestBreaker(clock *time.Time) (*CircuitBreaker, *[]string) {
	var transitions []string
	cb := New(Config{
		FailureThreshold:    2,
		SuccessThreshold:    2,
		OpenFor:             time.Minute,
		HalfOpenMaxRequests: 1,
	}, func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})
	cb.now = func() time.Time { return *clock }
	return cb, &transitions
}

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb, transitions := newTestBreaker(&clock)

	assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateClosed, cb.State(), "success resets the failure count")

	assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	assert.ErrorIs(t, cb.Execute(func() error { called = true; return nil }), ErrOpen)
	assert.False(t, called)
	assert.Equal(t, []string{"closed->open"}, *transitions)
}

func TestHalfOpenRecovery(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb, transitions := newTestBreaker(&clock)
	_ = cb.Execute(func() error { return errBoom })
	_ = cb.Execute(func() error { return errBoom })

	clock = clock.Add(time.Minute)
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, []string{"closed->open", "open->half_open", "half_open->closed"}, *transitions)
}

func TestHalfOpenFailureReopens(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb, _ := newTestBreaker(&clock)
	_ = cb.Execute(func() error { return errBoom })
	_ = cb.Execute(func() error { return errBoom })

	clock = clock.Add(time.Minute)
	assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)
}

func TestStaleResultDoesNotCountAsTrial(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb, _ := newTestBreaker(&clock)

	// slow call admitted while closed
	slow, err := cb.before()
	assert.NoError(t, err)

	_ = cb.Execute(func() error { return errBoom })
	_ = cb.Execute(func() error { return errBoom })
	assert.Equal(t, StateOpen, cb.State())

	clock = clock.Add(time.Minute)
	trial, err := cb.before()
	assert.NoError(t, err)
	assert.Equal(t, StateHalfOpen, cb.State())

	// the slow call finishing now must not close the breaker or free the trial slot
	cb.after(slow, nil)
	assert.Equal(t, StateHalfOpen, cb.State())
	_, err = cb.before()
	assert.ErrorIs(t, err, ErrOpen)

	cb.after(trial, nil)
	assert.Equal(t, StateHalfOpen, cb.State(), "one trial call is below SuccessThreshold")
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestStaleFailureDoesNotReopen(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb, _ := newTestBreaker(&clock)

	slow, err := cb.before()
	assert.NoError(t, err)
	_ = cb.Execute(func() error { return errBoom })
	_ = cb.Execute(func() error { return errBoom })

	clock = clock.Add(time.Minute)
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.State())

	cb.after(slow, errBoom)
	assert.Equal(t, StateHalfOpen, cb.State())
}
