package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/truckmitra/backend/api/transport"
	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/pkg/httpcontext"
	appLogger "github.com/truckmitra/backend/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

// caller returns the identity resolved by the auth middleware, answering 401
// itself when there is none.
func (h baseHandler) caller(ctx *fasthttp.RequestCtx) (domain.Caller, bool) {
	caller, ok := httpcontext.CallerOf(ctx)
	if !ok || caller.UserID == "" {
		h.respondError(ctx, domain.ErrUnauthorized)
		return domain.Caller{}, false
	}
	return caller, true
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondInvalid(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), message, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)

	if status == http.StatusInternalServerError {
		reqID := httpcontext.RequestID(ctx)
		appLogger.WithRequestID(appLogger.ContextWithRequestID(context.Background(), reqID), h.logger).
			Error("request failed",
				zap.String("path", string(ctx.Path())),
				zap.Error(err),
			)
		h.respondJSON(ctx, status, transport.NewError(code, "internal server error", nil))
		return
	}

	var meta interface{}
	if field := domain.FieldOf(err); field != "" {
		meta = transport.FieldMeta{Field: field}
	}
	h.respondJSON(ctx, status, transport.NewError(code, err.Error(), meta))
}

func mapError(err error) (int, string) {
	var dErr *domain.Error
	if !errors.As(err, &dErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, string(domain.ErrCodeInternal)
		}
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}

	switch dErr.Code {
	case domain.ErrCodeValidation:
		return http.StatusUnprocessableEntity, string(dErr.Code)
	case domain.ErrCodeInvalid:
		return http.StatusBadRequest, string(dErr.Code)
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized, string(dErr.Code)
	case domain.ErrCodeForbidden:
		return http.StatusForbidden, string(dErr.Code)
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, string(dErr.Code)
	case domain.ErrCodeInvalidTransition, domain.ErrCodeAlreadyAccepted, domain.ErrCodeConflict:
		return http.StatusConflict, string(dErr.Code)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
