package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdown_RunsHooksNewestFirst(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	for _, name := range []string{"storage", "monitor", "http"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http", "monitor", "storage"}, order)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3, "hooks run once")
}

func TestShutdown_JoinsErrorsAndContinues(t *testing.T) {
	m := New(time.Second, nil)
	errDB := errors.New("close failed")

	ran := false
	m.Register("storage", func(context.Context) error {
		ran = true
		return nil
	})
	m.Register("db", func(context.Context) error { return errDB })

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errDB)
	assert.Contains(t, err.Error(), "db")
	assert.True(t, ran)
}

func TestShutdown_HooksSeeDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		<-ctx.Done()
		return ctx.Err()
	})

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegisterAfterShutdownIsIgnored(t *testing.T) {
	m := New(time.Second, nil)
	require.NoError(t, m.Shutdown(context.Background()))

	m.Register("late", func(context.Context) error { return errors.New("should not run") })
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestWait(t *testing.T) {
	t.Run("context cancelled", func(t *testing.T) {
		m := New(time.Second, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NoError(t, m.Wait(ctx))
	})

	t.Run("component failure", func(t *testing.T) {
		m := New(time.Second, nil)
		errListen := errors.New("address in use")
		m.Go("http", func() error { return errListen })

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := m.Wait(ctx)
		assert.ErrorIs(t, err, errListen)
		assert.Contains(t, err.Error(), "http")
	})

	t.Run("clean exit is not a failure", func(t *testing.T) {
		m := New(time.Second, nil)
		m.Go("worker", func() error { return nil })

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		assert.NoError(t, m.Wait(ctx))
	})
}
