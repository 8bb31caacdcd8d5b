package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shopcart/internal/handler"
	"github.com/iliyamo/shopcart/internal/middleware"
	"github.com/iliyamo/shopcart/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the credential endpoints and /api/me.  limit is
// applied to register and login only.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tokens middleware.TokenVerifier, limit echo.MiddlewareFunc) {
	g := e.Group("/api", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	// Any valid session may read its own claims.
	e.GET("/api/me", a.Me,
		middleware.JWTAuth(tokens),
		middleware.RequireRole(model.RoleAdmin, model.RoleUser),
	)
}

// RegisterProducts registers the admin catalog under /api/products.  The
// cache middleware runs after the role check so that only admins ever see
// cached bodies.
func RegisterProducts(e *echo.Echo, p *handler.ProductHandler, tokens middleware.TokenVerifier, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/api/products",
		middleware.JWTAuth(tokens),
		middleware.AdminOnly(),
		cache,
	)
	g.POST("", p.Create)
	g.GET("", p.List)
	g.GET("/search", p.Search)
}
