package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-reservation/internal/handler"
	"github.com/iliyamo/train-reservation/internal/middleware"
)

// RegisterCatalog mounts the catalog and journey endpoints. Every route
// needs an access token; writes additionally need the admin role. cache
// wraps catalog reads and invalidate wraps catalog writes; journeys are
// never cached since they carry live availability.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, j *handler.JourneyHandler,
	auth, cache, invalidate echo.MiddlewareFunc) {
	g := e.Group("/v1", auth, middleware.AdminOrReadOnly())

	c := g.Group("", cache, invalidate)
	c.GET("/stations", h.ListStations)
	c.POST("/stations", h.CreateStation)
	c.GET("/stations/:id", h.GetStation)

	c.GET("/train-types", h.ListTrainTypes)
	c.POST("/train-types", h.CreateTrainType)
	c.GET("/train-types/:id", h.GetTrainType)
	c.POST("/train-types/:id/upload-image", h.UploadTrainTypeImage)

	c.GET("/crews", h.ListCrews)
	c.POST("/crews", h.CreateCrew)

	c.GET("/routes", h.ListRoutes)
	c.POST("/routes", h.CreateRoute)
	c.GET("/routes/:id", h.GetRoute)
	c.PUT("/routes/:id", h.UpdateRoute)

	c.GET("/trains", h.ListTrains)
	c.POST("/trains", h.CreateTrain)
	c.GET("/trains/:id", h.GetTrain)

	g.GET("/journeys", j.List)
	g.POST("/journeys", j.Create)
	g.GET("/journeys/:id", j.Get)
	g.PUT("/journeys/:id", j.Update)
	g.DELETE("/journeys/:id", j.Delete)
}
