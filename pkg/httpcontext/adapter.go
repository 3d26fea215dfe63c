package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/truckmitra/backend/domain"
	appLogger "github.com/truckmitra/backend/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyCaller     Key = "caller"

	requestIDKey Key = "request_id"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches
// it with request metadata and the authenticated caller, if any.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := RequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if caller, ok := CallerOf(ctx); ok {
		stdCtx = context.WithValue(stdCtx, KeyCaller, caller)
	}

	return stdCtx, cancel
}

// RequestID returns the request's X-Request-ID, generating and echoing one if absent.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if id, ok := ctx.UserValue(string(requestIDKey)).(string); ok {
		return id
	}
	id := strings.TrimSpace(string(ctx.Request.Header.Peek("X-Request-ID")))
	if id == "" {
		id = uuid.NewString()
	}
	ctx.SetUserValue(string(requestIDKey), id)
	ctx.Response.Header.Set("X-Request-ID", id)
	return id
}

// SetCaller stores the resolved caller on the request.
func SetCaller(ctx *fasthttp.RequestCtx, caller domain.Caller) {
	ctx.SetUserValue(string(KeyCaller), caller)
}

// CallerOf returns the caller stored by the auth middleware.
func CallerOf(ctx *fasthttp.RequestCtx) (domain.Caller, bool) {
	caller, ok := ctx.UserValue(string(KeyCaller)).(domain.Caller)
	return caller, ok
}

// CallerFrom returns the caller carried by a context built with Attach.
func CallerFrom(ctx context.Context) (domain.Caller, bool) {
	caller, ok := ctx.Value(KeyCaller).(domain.Caller)
	return caller, ok
}
