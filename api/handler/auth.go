package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/truckmitra/backend/api/transport"
	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/pkg/httpcontext"
	authUC "github.com/truckmitra/backend/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a shipper or loader
// @Tags auth
// @Router /auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Register(stdCtx, domain.Registration{
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		UserName: req.UserName,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.RegisterResponse{UserID: user.ID})
}

// @Summary Exchange credentials for a bearer token
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Router /auth/token [post]
func (h *AuthHandler) Token(ctx *fasthttp.RequestCtx) {
	req, ok := h.parseTokenRequest(ctx)
	if !ok {
		h.respondInvalid(ctx, "username and password are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	token, err := h.uc.Login(stdCtx, req.Username, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		Role:        string(token.Role),
	})
}

// @Summary Revoke the current session
// @Tags auth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, caller); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) parseTokenRequest(ctx *fasthttp.RequestCtx) (transport.TokenRequest, bool) {
	var req transport.TokenRequest
	if bytes.HasPrefix(ctx.Request.Header.ContentType(), []byte("application/json")) {
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			return req, false
		}
	} else {
		args := ctx.PostArgs()
		req.Username = string(args.Peek("username"))
		req.Password = string(args.Peek("password"))
	}
	return req, req.Username != "" && req.Password != ""
}
