package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-reservation/internal/model"
	"github.com/iliyamo/train-reservation/internal/repository"
)

// JourneyHandler serves the journey schedule.
type JourneyHandler struct {
	Journeys *repository.JourneyRepo
}

func NewJourneyHandler(j *repository.JourneyRepo) *JourneyHandler {
	if j == nil {
		panic("nil repository passed to NewJourneyHandler")
	}
	return &JourneyHandler{Journeys: j}
}

const dateLayout = "2006-01-02"

// parseJourneyFilter reads the list query parameters. Dates are calendar
// days in YYYY-MM-DD form.
func parseJourneyFilter(c echo.Context) (repository.JourneyFilter, string, error) {
	f := repository.JourneyFilter{
		SourceName:      c.QueryParam("source_name"),
		DestinationName: c.QueryParam("destination_name"),
		TrainName:       c.QueryParam("train_name"),
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"departure_time", &f.DepartureDate},
		{"arrival_time", &f.ArrivalDate},
	} {
		v := c.QueryParam(p.name)
		if v == "" {
			continue
		}
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, p.name, err
		}
		*p.dst = &d
	}
	return f, "", nil
}

// List returns journeys newest departure first with tickets_available.
func (h *JourneyHandler) List(c echo.Context) error {
	f, field, err := parseJourneyFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD", "field": field})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	out, err := h.Journeys.List(ctx, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns the detail projection with taken places.
func (h *JourneyHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	det, err := h.Journeys.GetDetail(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, det)
}

type journeyReq struct {
	Route         uint64    `json:"route"`
	Train         uint64    `json:"train"`
	Crew          []uint64  `json:"crew"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
}

func (r journeyReq) validate() (string, string) {
	switch {
	case r.Route == 0:
		return "route", "route is required"
	case r.Train == 0:
		return "train", "train is required"
	case r.DepartureTime.IsZero():
		return "departure_time", "departure_time is required"
	case !r.ArrivalTime.After(r.DepartureTime):
		return "arrival_time", "arrival_time must be after departure_time"
	}
	return "", ""
}

func (r journeyReq) journey(id uint64) *model.Journey {
	crew := r.Crew
	if crew == nil {
		crew = []uint64{}
	}
	return &model.Journey{
		ID:            id,
		RouteID:       r.Route,
		TrainID:       r.Train,
		CrewIDs:       crew,
		DepartureTime: r.DepartureTime.UTC(),
		ArrivalTime:   r.ArrivalTime.UTC(),
	}
}

func (h *JourneyHandler) Create(c echo.Context) error {
	var req journeyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if field, msg := req.validate(); field != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "field": field})
	}
	j := req.journey(0)
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Journeys.Create(ctx, j); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, j)
}

func (h *JourneyHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req journeyReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if field, msg := req.validate(); field != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "field": field})
	}
	j := req.journey(id)
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Journeys.Update(ctx, j); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, j)
}

func (h *JourneyHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Journeys.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
