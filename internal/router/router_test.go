package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/train-reservation/internal/handler"
	"github.com/iliyamo/train-reservation/internal/middleware"
	"github.com/iliyamo/train-reservation/internal/repository"
)

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func TestCatalogRoutesRequireToken(t *testing.T) {
	e := echo.New()
	catalog := handler.NewCatalogHandler(
		repository.NewStationRepo(nil), repository.NewTrainTypeRepo(nil), repository.NewCrewRepo(nil),
		repository.NewRouteRepo(nil), repository.NewTrainRepo(nil), t.TempDir())
	journeys := handler.NewJourneyHandler(repository.NewJourneyRepo(nil))
	RegisterCatalog(e, catalog, journeys, middleware.JWTAuth("secret"), passthrough, passthrough)

	for _, path := range []string{"/v1/stations", "/v1/trains", "/v1/journeys", "/v1/routes/1"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	RegisterHealth(e, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
