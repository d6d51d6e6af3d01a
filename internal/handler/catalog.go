package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-reservation/internal/model"
	"github.com/iliyamo/train-reservation/internal/repository"
)

// CatalogHandler serves stations, train types, crews, routes and trains.
// Reads are open to every authenticated user; writes are guarded by the
// router.
type CatalogHandler struct {
	Stations   *repository.StationRepo
	TrainTypes *repository.TrainTypeRepo
	Crews      *repository.CrewRepo
	Routes     *repository.RouteRepo
	Trains     *repository.TrainRepo
	MediaDir   string
}

// NewCatalogHandler panics when a repository is missing.
func NewCatalogHandler(st *repository.StationRepo, tt *repository.TrainTypeRepo, cr *repository.CrewRepo,
	ro *repository.RouteRepo, tr *repository.TrainRepo, mediaDir string) *CatalogHandler {
	if st == nil || tt == nil || cr == nil || ro == nil || tr == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Stations: st, TrainTypes: tt, Crews: cr, Routes: ro, Trains: tr, MediaDir: mediaDir}
}

// ---- stations ----

type stationReq struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *CatalogHandler) CreateStation(c echo.Context) error {
	var req stationReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Latitude == nil || req.Longitude == nil {
		return badRequest(c, "name, latitude and longitude are required")
	}
	s := model.Station{Name: req.Name, Latitude: *req.Latitude, Longitude: *req.Longitude}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Stations.Create(ctx, &s); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *CatalogHandler) ListStations(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()
	out, err := h.Stations.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetStation(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	s, err := h.Stations.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// ---- train types ----

type trainTypeReq struct {
	Name string `json:"name"`
}

func (h *CatalogHandler) CreateTrainType(c echo.Context) error {
	var req trainTypeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	t := model.TrainType{Name: strings.TrimSpace(req.Name)}
	if t.Name == "" {
		return badRequest(c, "name is required")
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.TrainTypes.Create(ctx, &t); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *CatalogHandler) ListTrainTypes(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()
	out, err := h.TrainTypes.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetTrainType(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	t, err := h.TrainTypes.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

var imageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// UploadTrainTypeImage stores the multipart "image" file under the media
// directory with a random name and records its relative path.
func (h *CatalogHandler) UploadTrainTypeImage(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file required", "field": "image"})
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExt[ext] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported image type", "field": "image"})
	}

	ctx, cancel := dbContext(c)
	defer cancel()
	if _, err := h.TrainTypes.GetByID(ctx, id); err != nil {
		return respondError(c, err)
	}

	rel := path.Join("train_types", uuid.NewString()+ext)
	if err := h.saveUpload(fh, rel); err != nil {
		return respondError(c, err)
	}
	if err := h.TrainTypes.SetImage(ctx, id, rel); err != nil {
		_ = os.Remove(filepath.Join(h.MediaDir, filepath.FromSlash(rel)))
		return respondError(c, err)
	}
	t, err := h.TrainTypes.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *CatalogHandler) saveUpload(fh *multipart.FileHeader, rel string) error {
	dst := filepath.Join(h.MediaDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

// ---- crews ----

type crewReq struct {
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Position  model.CrewPosition `json:"position"`
}

func (h *CatalogHandler) CreateCrew(c echo.Context) error {
	var req crewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body: " + err.Error()})
	}
	cr := model.Crew{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Position:  req.Position,
	}
	if cr.FirstName == "" || cr.LastName == "" {
		return badRequest(c, "first_name and last_name are required")
	}
	if !cr.Position.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "position is required", "field": "position"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Crews.Create(ctx, &cr); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, cr)
}

func (h *CatalogHandler) ListCrews(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()
	out, err := h.Crews.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ---- routes ----

type routeReq struct {
	Source      uint64 `json:"source"`
	Destination uint64 `json:"destination"`
}

func (h *CatalogHandler) CreateRoute(c echo.Context) error {
	var req routeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Source == 0 || req.Destination == 0 {
		return badRequest(c, "source and destination are required")
	}
	if req.Source == req.Destination {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "source and destination must differ", "field": "destination"})
	}
	rt := model.Route{SourceID: req.Source, DestinationID: req.Destination}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Routes.Create(ctx, &rt); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, rt)
}

func (h *CatalogHandler) UpdateRoute(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req routeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Source == 0 || req.Destination == 0 || req.Source == req.Destination {
		return badRequest(c, "source and destination must be distinct stations")
	}
	rt := model.Route{ID: id, SourceID: req.Source, DestinationID: req.Destination}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Routes.Update(ctx, &rt); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rt)
}

func (h *CatalogHandler) ListRoutes(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()
	out, err := h.Routes.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetRoute(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	det, err := h.Routes.GetDetail(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, det)
}

// ---- trains ----

type trainReq struct {
	Name          string `json:"name"`
	CargoNum      int    `json:"cargo_num"`
	PlacesInCargo int    `json:"places_in_cargo"`
	TrainType     uint64 `json:"train_type"`
}

func (h *CatalogHandler) CreateTrain(c echo.Context) error {
	var req trainReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	t := model.Train{
		Name:          strings.TrimSpace(req.Name),
		CargoNum:      req.CargoNum,
		PlacesInCargo: req.PlacesInCargo,
		TrainTypeID:   req.TrainType,
	}
	switch {
	case t.Name == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required", "field": "name"})
	case t.CargoNum < 1:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cargo_num must be positive", "field": "cargo_num"})
	case t.PlacesInCargo < 1:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "places_in_cargo must be positive", "field": "places_in_cargo"})
	case t.TrainTypeID == 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "train_type is required", "field": "train_type"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	if err := h.Trains.Create(ctx, &t); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *CatalogHandler) ListTrains(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()
	out, err := h.Trains.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetTrain(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	det, err := h.Trains.GetDetail(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, det)
}
