package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-reservation/internal/handler"
	"github.com/iliyamo/train-reservation/internal/middleware"
	"github.com/iliyamo/train-reservation/internal/model"
)

// RegisterOrders mounts the booking endpoints for admins and customers.
// limit throttles booking and pre-check calls per user.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, t *handler.TicketHandler, auth, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", auth, middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	g.POST("/orders", o.Create, limit)
	g.GET("/orders", o.List)
	g.DELETE("/orders/:id", o.Delete)
	g.POST("/tickets/validate", t.Validate, limit)
}
