package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestRefresh(t *testing.T) {
	healthy := pingFunc(func(context.Context) error { return nil })
	failing := pingFunc(func(context.Context) error { return errors.New("down") })

	m := New(time.Minute, nil,
		Check{Name: "loads", Target: healthy},
		Check{Name: "sessions", Target: failing},
	)
	assert.False(t, m.IsOnline(), "no probe has run yet")

	m.Refresh()
	status := m.GetStatus()
	assert.True(t, status.Services["loads"])
	assert.False(t, status.Services["sessions"])
	assert.False(t, m.IsOnline())

	m = New(time.Minute, nil, Check{Name: "loads", Target: healthy})
	m.Refresh()
	assert.True(t, m.IsOnline())
}

func TestProbeTimeout(t *testing.T) {
	slow := pingFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	m := New(time.Minute, nil, Check{Name: "slow", Target: slow, Timeout: 10 * time.Millisecond})
	m.Refresh()
	assert.False(t, m.GetStatus().Services["slow"])
}

func TestStartStop(t *testing.T) {
	m := New(5*time.Millisecond, nil, Check{Name: "loads", Target: pingFunc(func(context.Context) error { return nil })})
	m.Start()
	assert.Eventually(t, m.IsOnline, time.Second, 5*time.Millisecond)
	m.Stop()
	m.Stop()
}
