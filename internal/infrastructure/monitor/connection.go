package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is implemented by the load, user and session stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check names one dependency to probe.
type Check struct {
	Name    string
	Target  Pinger
	Timeout time.Duration
}

type Monitor struct {
	checks []Check

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger, checks ...Check) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	for i := range checks {
		if checks[i].Timeout <= 0 {
			checks[i].Timeout = 3 * time.Second
		}
	}
	return &Monitor{
		checks:   checks,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for name, ok := range m.status.Services {
		services[name] = ok
	}
	return Status{Services: services, LastCheck: m.status.LastCheck}
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes every dependency once and records the result.
func (m *Monitor) Refresh() {
	status := Status{
		Services:  make(map[string]bool, len(m.checks)),
		LastCheck: time.Now(),
	}
	for _, check := range m.checks {
		status.Services[check.Name] = m.probe(check)
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	for name, ok := range status.Services {
		if was, seen := previous.Services[name]; seen && was != ok {
			m.logger.Warn("dependency health changed", zap.String("service", name), zap.Bool("healthy", ok))
		}
	}
}

func (m *Monitor) probe(check Check) bool {
	if check.Target == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), check.Timeout)
	defer cancel()
	if err := check.Target.Ping(ctx); err != nil {
		m.logger.Debug("health probe failed", zap.String("service", check.Name), zap.Error(err))
		return false
	}
	return true
}
