// Package router registers the HTTP routes and their middleware.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-reservation/internal/handler"
)

// RegisterHealth exposes the liveness and readiness probes.
func RegisterHealth(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth mounts /v1/auth. Register, login and refresh are open;
// logout and me need an access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, auth)
	g.GET("/me", a.Me, auth)
}
