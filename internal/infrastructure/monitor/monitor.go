package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RealtimeStats is satisfied by the realtime hub.
type RealtimeStats interface {
	Stats() (connections, rooms int)
}

// Monitor periodically samples dependency health so /health never blocks on I/O.
type Monitor struct {
	storage  string
	db       Pinger
	realtime RealtimeStats

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

// New builds a monitor. A nil db means the storage is in-process and always online.
func New(storage string, db Pinger, realtime RealtimeStats, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		storage:  storage,
		db:       db,
		realtime: realtime,
		interval: interval,
		cron:     cron.New(),
		logger:   logger,
	}
	schedule := fmt.Sprintf("@every %s", interval)
	if _, err := m.cron.AddFunc(schedule, m.Refresh); err != nil {
		logger.Error("invalid monitor schedule", zap.String("schedule", schedule), zap.Error(err))
	}
	return m
}

func (m *Monitor) Start() {
	m.Refresh()
	m.cron.Start()
}

func (m *Monitor) Stop(ctx context.Context) {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.StorageOnline
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh samples every dependency once.
func (m *Monitor) Refresh() {
	status := Status{
		Storage:       m.storage,
		StorageOnline: m.checkStorage(),
		LastCheck:     time.Now().UTC(),
	}
	if m.realtime != nil {
		status.Connections, status.Rooms = m.realtime.Stats()
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if !prev.LastCheck.IsZero() && prev.StorageOnline != status.StorageOnline {
		m.logger.Warn("storage availability changed",
			zap.String("storage", m.storage),
			zap.Bool("online", status.StorageOnline))
	}
}

func (m *Monitor) checkStorage() bool {
	if m.db == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.db.Ping(ctx) == nil
}
