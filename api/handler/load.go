package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/truckmitra/backend/api/transport"
	"github.com/truckmitra/backend/domain"
	"github.com/truckmitra/backend/pkg/httpcontext"
	loadUC "github.com/truckmitra/backend/usecase/load"
	marketUC "github.com/truckmitra/backend/usecase/marketplace"
)

type LoadHandler struct {
	baseHandler
	engine *loadUC.UseCase
	market *marketUC.UseCase
}

func NewLoadHandler(engine *loadUC.UseCase, market *marketUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *LoadHandler {
	return &LoadHandler{
		baseHandler: newBaseHandler(adapter, logger),
		engine:      engine,
		market:      market,
	}
}

// @Summary Post a load
// @Tags loads
// @Router /loads/ [post]
func (h *LoadHandler) Create(ctx *fasthttp.RequestCtx) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	var req transport.LoadRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	load, err := h.engine.Create(stdCtx, caller, domain.LoadDraft{
		Origin:       req.Origin,
		Destination:  req.Destination,
		MaterialType: req.MaterialType,
		Weight:       req.Weight,
		Description:  req.Description,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.LoadCreatedResponse{LoadID: load.ID})
}

// @Summary Get a load
// @Tags loads
// @Router /loads/{id} [get]
func (h *LoadHandler) Get(ctx *fasthttp.RequestCtx) {
	h.withLoadID(ctx, func(stdCtx context.Context, caller domain.Caller, id string) (interface{}, error) {
		return h.engine.Get(stdCtx, caller, id)
	})
}

// @Summary Load history
// @Tags loads
// @Router /loads/{id}/history [get]
func (h *LoadHandler) History(ctx *fasthttp.RequestCtx) {
	h.withLoadID(ctx, func(stdCtx context.Context, caller domain.Caller, id string) (interface{}, error) {
		return h.engine.History(stdCtx, caller, id)
	})
}

// @Summary Accept a load
// @Tags loads
// @Router /loads/{id}/accept [put]
func (h *LoadHandler) Accept(ctx *fasthttp.RequestCtx) {
	// A loader_id query parameter from older clients is ignored: the loader is always the caller.
	h.withLoadID(ctx, func(stdCtx context.Context, caller domain.Caller, id string) (interface{}, error) {
		return h.engine.Accept(stdCtx, caller, id)
	})
}

// @Summary Cancel a load
// @Tags loads
// @Router /loads/{id}/cancel [put]
func (h *LoadHandler) Cancel(ctx *fasthttp.RequestCtx) {
	h.withLoadID(ctx, func(stdCtx context.Context, caller domain.Caller, id string) (interface{}, error) {
		return h.engine.Cancel(stdCtx, caller, id)
	})
}

// @Summary Start the trip
// @Tags loads
// @Router /loads/{id}/start-transit [put]
func (h *LoadHandler) StartTransit(ctx *fasthttp.RequestCtx) {
	h.withLoadID(ctx, func(stdCtx context.Context, caller domain.Caller, id string) (interface{}, error) {
		return h.engine.StartTransit(stdCtx, caller, id)
	})
}

// @Summary Mark a load delivered
// @Tags loads
// @Router /loads/{id}/deliver [put]
func (h *LoadHandler) Deliver(ctx *fasthttp.RequestCtx) {
	h.withLoadID(ctx, func(stdCtx context.Context, caller domain.Caller, id string) (interface{}, error) {
		return h.engine.MarkDelivered(stdCtx, caller, id)
	})
}

// @Summary Loads waiting for a loader
// @Tags loads
// @Router /loads/available [get]
func (h *LoadHandler) Available(ctx *fasthttp.RequestCtx) {
	h.list(ctx, h.market.Available)
}

// @Summary Caller's active loads
// @Tags loads
// @Router /loads/my-active [get]
func (h *LoadHandler) MyActive(ctx *fasthttp.RequestCtx) {
	h.list(ctx, h.market.MyActive)
}

// @Summary Caller's delivered loads
// @Tags loads
// @Router /loads/my-history [get]
func (h *LoadHandler) MyHistory(ctx *fasthttp.RequestCtx) {
	h.list(ctx, h.market.MyHistory)
}

// @Summary Shipper's own loads
// @Tags loads
// @Router /loads/shipper/me [get]
func (h *LoadHandler) MyPosted(ctx *fasthttp.RequestCtx) {
	h.list(ctx, h.market.MyPosted)
}

func (h *LoadHandler) list(ctx *fasthttp.RequestCtx, query func(context.Context, domain.Caller) ([]domain.Load, error)) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	loads, err := query(stdCtx, caller)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, loads)
}

func (h *LoadHandler) withLoadID(ctx *fasthttp.RequestCtx, op func(context.Context, domain.Caller, string) (interface{}, error)) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing load id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := op(stdCtx, caller, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}
