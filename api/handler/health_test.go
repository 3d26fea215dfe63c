package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	"github.com/truckmitra/backend/internal/infrastructure/monitor"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	cases := []struct {
		name   string
		target monitor.Pinger
		status int
	}{
		{"healthy", pinger{}, http.StatusOK},
		{"degraded", pinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mon := monitor.New(time.Minute, nil, monitor.Check{Name: "loads", Target: tc.target})
			mon.Refresh()

			var ctx fasthttp.RequestCtx
			NewHealthHandler(mon, nil, nil).Check(&ctx)
			assert.Equal(t, tc.status, ctx.Response.StatusCode())
			assert.Contains(t, string(ctx.Response.Body()), `"loads"`)
		})
	}
}
