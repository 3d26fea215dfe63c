package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/truckmitra/backend/api/handler"
)

type Handlers struct {
	Auth   *apiHandler.AuthHandler
	User   *apiHandler.UserHandler
	Load   *apiHandler.LoadHandler
	Stats  *apiHandler.StatsHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/auth/register", handlers.Auth.Register)
	r.POST("/auth/token", handlers.Auth.Token)
	r.POST("/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Protected routes
	r.GET("/users/me", authMiddleware(handlers.User.Me))

	r.POST("/loads/", authMiddleware(handlers.Load.Create))
	r.GET("/loads/available", authMiddleware(handlers.Load.Available))
	r.GET("/loads/my-active", authMiddleware(handlers.Load.MyActive))
	r.GET("/loads/my-history", authMiddleware(handlers.Load.MyHistory))
	r.GET("/loads/shipper/me", authMiddleware(handlers.Load.MyPosted))
	r.GET("/loads/stats", authMiddleware(handlers.Stats.Snapshot))

	r.GET("/loads/{id}", authMiddleware(handlers.Load.Get))
	r.GET("/loads/{id}/history", authMiddleware(handlers.Load.History))
	r.PUT("/loads/{id}/accept", authMiddleware(handlers.Load.Accept))
	r.PUT("/loads/{id}/cancel", authMiddleware(handlers.Load.Cancel))
	r.PUT("/loads/{id}/start-transit", authMiddleware(handlers.Load.StartTransit))
	r.PUT("/loads/{id}/deliver", authMiddleware(handlers.Load.Deliver))

	return r
}
