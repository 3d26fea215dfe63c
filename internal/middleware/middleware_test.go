package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/pkg/httpcontext"
)

type stubResolver struct {
	tokens map[string]domain.Caller
	err    error
}

func (s stubResolver) Resolve(_ context.Context, token string) (domain.Caller, error) {
	if s.err != nil {
		return domain.Caller{}, s.err
	}
	caller, ok := s.tokens[token]
	if !ok {
		return domain.Caller{}, domain.ErrUnauthorized
	}
	return caller, nil
}

func protected(t *testing.T, resolver Resolver, header string) (*fasthttp.RequestCtx, *domain.Caller) {
	t.Helper()
	var seen *domain.Caller
	next := func(ctx *fasthttp.RequestCtx) {
		caller, ok := httpcontext.CallerOf(ctx)
		require.True(t, ok)
		seen = &caller
		ctx.SetStatusCode(http.StatusOK)
	}

	ctx := &fasthttp.RequestCtx{}
	if header != "" {
		ctx.Request.Header.Set("Authorization", header)
	}
	BearerAuth(resolver, httpcontext.NewAdapter(time.Second), nil)(next)(ctx)
	return ctx, seen
}

func TestBearerAuth(t *testing.T) {
	loader := domain.Caller{UserID: "u-1", Role: domain.RoleLoader, SessionID: "s-1"}
	resolver := stubResolver{tokens: map[string]domain.Caller{"good": loader}}

	ctx, seen := protected(t, resolver, "Bearer good")
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	require.NotNil(t, seen)
	assert.Equal(t, loader, *seen)

	ctx, seen = protected(t, resolver, "bearer good")
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.NotNil(t, seen)
}

func TestBearerAuthRejects(t *testing.T) {
	resolver := stubResolver{tokens: map[string]domain.Caller{
		"good": {UserID: "u-1", Role: domain.RoleLoader},
	}}

	for _, header := range []string{"", "Bearer expired", "Bearer ", "good", "Basic good", "Token good"} {
		ctx, seen := protected(t, resolver, header)
		assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode(), header)
		assert.Nil(t, seen)
		assert.Equal(t, "Bearer", string(ctx.Response.Header.Peek("WWW-Authenticate")))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
		assert.Equal(t, "UNAUTHORIZED", body["code"])
	}
}

func TestBearerAuthStoreFailureIsUnauthorized(t *testing.T) {
	ctx, seen := protected(t, stubResolver{err: errors.New("redis: connection refused")}, "Bearer any")
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Nil(t, seen)
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := Recover(zap.New(core))(func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString("partial")
		panic("boom")
	})

	ctx := &fasthttp.RequestCtx{}
	require.NotPanics(t, func() { handler(ctx) })
	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Equal(t, "INTERNAL", body["code"])
	assert.Equal(t, 1, logs.FilterMessage("handler panic").Len())
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := AccessLog(zap.New(core))(func(ctx *fasthttp.RequestCtx) {
		httpcontext.SetCaller(ctx, domain.Caller{UserID: "u-9", Role: domain.RoleShipper})
		ctx.SetStatusCode(http.StatusCreated)
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("POST")
	ctx.Request.SetRequestURI("/loads/")
	ctx.Request.Header.Set("X-Request-ID", "req-42")
	handler(ctx)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "/loads/", fields["path"])
	assert.Equal(t, int64(http.StatusCreated), fields["status"])
	assert.Equal(t, "u-9", fields["user_id"])
}
