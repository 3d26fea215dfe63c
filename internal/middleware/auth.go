package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/truckmitra/backend/api/transport"
	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/pkg/httpcontext"
)

// Resolver maps a raw bearer token to the caller it belongs to.
type Resolver interface {
	Resolve(ctx context.Context, token string) (domain.Caller, error)
}

// BearerAuth resolves the Authorization header and stores the caller on the
// request. Requests without a valid token are answered with 401.
func BearerAuth(resolver Resolver, adapter *httpcontext.Adapter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing bearer token")
				return
			}

			stdCtx, cancel := adapter.Attach(ctx)
			caller, err := resolver.Resolve(stdCtx, tokenString)
			cancel()
			if err != nil {
				if !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.Error("token resolution failed", zap.Error(err))
				} else {
					logger.Debug("rejected bearer token", zap.Error(err))
				}
				unauthorized(ctx, "invalid or expired token")
				return
			}

			httpcontext.SetCaller(ctx, caller)
			next(ctx)
		}
	}
}

// extractToken returns the credentials of a Bearer Authorization header and "" for any other scheme.
func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), message, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.Header.Set("WWW-Authenticate", "Bearer")
	ctx.SetStatusCode(http.StatusUnauthorized)
	ctx.SetBody(body)
}
