package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/truckmitra/backend/domain"
	appLogger "github.com/truckmitra/backend/pkg/logger"
)

func TestAttachCarriesMetadata(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set("X-Request-ID", "req-1")
	rc.Request.Header.SetUserAgent("probe/1.0")
	SetCaller(&rc, domain.Caller{UserID: "u1", Role: domain.RoleLoader, SessionID: "s1"})

	ctx, cancel := NewAdapter(time.Second).Attach(&rc)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)
	assert.Equal(t, "req-1", appLogger.RequestID(ctx))
	assert.Equal(t, "req-1", string(rc.Response.Header.Peek("X-Request-ID")))
	assert.Equal(t, "probe/1.0", ctx.Value(KeyUserAgent))

	caller, ok := CallerFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", caller.UserID)
}

func TestRequestIDGeneratedOnce(t *testing.T) {
	var rc fasthttp.RequestCtx
	first := RequestID(&rc)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, RequestID(&rc))
	assert.Equal(t, first, string(rc.Response.Header.Peek("X-Request-ID")))

	_, ok := CallerOf(&rc)
	assert.False(t, ok)
}
