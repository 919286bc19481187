package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownFunc describes a graceful shutdown callback.
type ShutdownFunc func(ctx context.Context) error

type hook struct {
	name string
	fn   ShutdownFunc
}

// Manager owns the background components of the process (HTTP server, monitor)
// and stops them in reverse registration order.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	hooks    []hook
	stopped  bool
	failures chan error
}

// New creates a lifecycle manager with the desired timeout.
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout:  timeout,
		logger:   logger,
		failures: make(chan error, 1),
	}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Register adds a shutdown hook. Hooks registered after Shutdown are ignored.
func (m *Manager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.hooks = append(m.hooks, hook{name: name, fn: fn})
}

// Go runs a long-lived component. If run returns an error, Wait returns it.
func (m *Manager) Go(name string, run func() error) {
	go func() {
		err := run()
		if err == nil {
			return
		}
		err = fmt.Errorf("%s: %w", name, err)
		m.logger.Error("component failed", zap.String("component", name), zap.Error(err))
		select {
		case m.failures <- err:
		default:
		}
	}()
}

// Wait blocks until ctx is done or a component started with Go fails.
// It returns the failure, or nil when ctx ended.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		m.logger.Info("shutdown requested")
		return nil
	case err := <-m.failures:
		return err
	}
}

// Shutdown runs every hook once, newest first, under the configured timeout.
// Later calls are no-ops.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	hooks := m.hooks
	m.hooks = nil
	m.mu.Unlock()

	var result error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		start := time.Now()
		if err := h.fn(ctx); err != nil {
			m.logger.Error("shutdown hook failed", zap.String("component", h.name), zap.Error(err))
			result = errors.Join(result, fmt.Errorf("%s: %w", h.name, err))
			continue
		}
		m.logger.Info("component stopped",
			zap.String("component", h.name),
			zap.Duration("elapsed", time.Since(start)))
	}
	return result
}
