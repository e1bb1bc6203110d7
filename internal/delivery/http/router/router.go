// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"postly/internal/delivery/http/middleware"
	"postly/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	PostHandler         *handler.PostHandler
	HealthHandler       *handler.HealthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler         *handler.AuthHandler
	postHandler         *handler.PostHandler
	healthHandler       *handler.HealthHandler
	authMiddleware      *middleware.AuthMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:         params.AuthHandler,
		postHandler:         params.PostHandler,
		healthHandler:       params.HealthHandler,
		authMiddleware:      params.AuthMiddleware,
		rateLimitMiddleware: params.RateLimitMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/", r.healthHandler.Root)
	e.GET("/health", r.healthHandler.Health)

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", r.authHandler.Signup, r.rateLimitMiddleware.Limit)
		authGroup.POST("/signin", r.authHandler.Signin, r.rateLimitMiddleware.Limit)
		authGroup.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)
		authGroup.DELETE("/me", r.authHandler.DeleteMe, r.authMiddleware.Authenticate)
	}

	// Static segments ("users", "media") take priority over ":id" in echo's router.
	authenticated := r.authMiddleware.Authenticate
	postsGroup := e.Group("/posts")
	{
		postsGroup.GET("", r.postHandler.List)
		postsGroup.GET("/users/:userId", r.postHandler.ListByUser)
		postsGroup.GET("/media/:filename", r.postHandler.Media)
		postsGroup.GET("/:id", r.postHandler.Get)
		postsGroup.GET("/:id/qrcode", r.postHandler.ShareQRCode)

		postsGroup.POST("", r.postHandler.Create, authenticated)
		postsGroup.PUT("/:id", r.postHandler.Update, authenticated)
		postsGroup.DELETE("/:id", r.postHandler.Delete, authenticated)
		postsGroup.POST("/:id/upload", r.postHandler.UploadMedia, authenticated)
	}
}
