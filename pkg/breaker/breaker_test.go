package breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/pkg/breaker"
)

func TestBreaker_Call(t *testing.T) {
	okCall := func() error { return nil }
	failCall := func() error { return errors.New("remote error") }

	b := breaker.New(10, 50*time.Millisecond, 0.5, 3)

	for i := 0; i < 20; i++ {
		require.NoError(t, b.Call(okCall))
	}

	// half the window failing trips it open
	for i := 0; i < 5; i++ {
		require.Error(t, b.Call(failCall))
	}
	require.ErrorIs(t, b.Call(okCall), breaker.ErrOpen)

	// after the cooldown it half-opens and recovers on successive successes
	time.Sleep(60 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Call(okCall))
	}
	require.NoError(t, b.Call(okCall))
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	failCall := func() error { return errors.New("remote error") }

	b := breaker.New(4, 50*time.Millisecond, 0.5, 2)
	for i := 0; i < 4; i++ {
		require.Error(t, b.Call(failCall))
	}
	require.ErrorIs(t, b.Call(failCall), breaker.ErrOpen)

	time.Sleep(60 * time.Millisecond)
	require.Error(t, b.Call(failCall))
	require.ErrorIs(t, b.Call(failCall), breaker.ErrOpen)
}
