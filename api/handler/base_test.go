package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/truckmitra/backend/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.Validation("weight", "weight must be positive"), http.StatusUnprocessableEntity, "VALIDATION"},
		{"invalid", domain.ErrInvalidPayload, http.StatusBadRequest, "INVALID"},
		{"unauthorized", domain.ErrBadCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", domain.Forbidden("nope"), http.StatusForbidden, "FORBIDDEN"},
		{"not found", domain.ErrLoadNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"transition", domain.InvalidTransition(domain.StatusDelivered, domain.EventCancel), http.StatusConflict, "INVALID_TRANSITION"},
		{"already accepted", domain.ErrAlreadyAccepted, http.StatusConflict, "ALREADY_ACCEPTED"},
		{"conflict", domain.ErrStatusConflict, http.StatusConflict, "CONFLICT"},
		{"wrapped", fmt.Errorf("accept: %w", domain.ErrAlreadyAccepted), http.StatusConflict, "ALREADY_ACCEPTED"},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "INTERNAL"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	h := newBaseHandler(nil, nil)
	var ctx fasthttp.RequestCtx

	h.respondError(&ctx, errors.New("pq: password authentication failed"))

	require.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "internal server error", body["error"])
	assert.NotEmpty(t, ctx.Response.Header.Peek("X-Request-ID"))
}

func TestRespondErrorCarriesField(t *testing.T) {
	h := newBaseHandler(nil, nil)
	var ctx fasthttp.RequestCtx

	h.respondError(&ctx, domain.Validation("origin", "origin is required"))

	require.Equal(t, http.StatusUnprocessableEntity, ctx.Response.StatusCode())
	var body struct {
		Code string `json:"code"`
		Meta struct {
			Field string `json:"field"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "origin", body.Meta.Field)
}

func TestCallerRequired(t *testing.T) {
	h := newBaseHandler(nil, nil)
	var ctx fasthttp.RequestCtx

	_, ok := h.caller(&ctx)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
}
