package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/train-reservation/internal/geo"
	"github.com/iliyamo/train-reservation/internal/model"
)

// RouteRepo persists routes. Distance is always recomputed from the
// station coordinates on write; any value set by the caller is ignored.
type RouteRepo struct {
	db *sql.DB
}

func NewRouteRepo(db *sql.DB) *RouteRepo { return &RouteRepo{db: db} }

// RouteListRow is the list projection: stations by name.
type RouteListRow struct {
	ID          uint64 `json:"id"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Distance    int    `json:"distance"`
}

// RouteDetail is the detail projection with both stations nested.
type RouteDetail struct {
	ID          uint64        `json:"id"`
	Source      model.Station `json:"source"`
	Destination model.Station `json:"destination"`
	Distance    int           `json:"distance"`
}

// Create computes the distance and inserts the route. Missing stations
// return an error wrapping ErrNotFound.
func (r *RouteRepo) Create(ctx context.Context, rt *model.Route) error {
	if err := r.applyDistance(ctx, rt); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO routes (source_id, destination_id, distance) VALUES (?, ?, ?)",
		rt.SourceID, rt.DestinationID, rt.Distance)
	if err != nil {
		return translateWrite(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	return nil
}

// Update changes the stations of an existing route and recomputes its
// distance.
func (r *RouteRepo) Update(ctx context.Context, rt *model.Route) error {
	if err := r.applyDistance(ctx, rt); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE routes SET source_id = ?, destination_id = ?, distance = ? WHERE id = ?",
		rt.SourceID, rt.DestinationID, rt.Distance, rt.ID)
	if err != nil {
		return translateWrite(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 affected rows for unchanged values too
		if _, err := r.Get(ctx, rt.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *RouteRepo) applyDistance(ctx context.Context, rt *model.Route) error {
	src, err := getStation(ctx, r.db, rt.SourceID)
	if err != nil {
		return fmt.Errorf("source station %d: %w", rt.SourceID, err)
	}
	dst, err := getStation(ctx, r.db, rt.DestinationID)
	if err != nil {
		return fmt.Errorf("destination station %d: %w", rt.DestinationID, err)
	}
	rt.Distance = geo.DistanceKm(src.Latitude, src.Longitude, dst.Latitude, dst.Longitude)
	return nil
}

// Get returns the raw route row.
func (r *RouteRepo) Get(ctx context.Context, id uint64) (*model.Route, error) {
	var rt model.Route
	err := r.db.QueryRowContext(ctx, "SELECT id, source_id, destination_id, distance FROM routes WHERE id = ?", id).
		Scan(&rt.ID, &rt.SourceID, &rt.DestinationID, &rt.Distance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rt, nil
}

func (r *RouteRepo) List(ctx context.Context) ([]RouteListRow, error) {
	const q = `SELECT r.id, s.name, d.name, r.distance
               FROM routes r
               JOIN stations s ON s.id = r.source_id
               JOIN stations d ON d.id = r.destination_id
               ORDER BY r.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RouteListRow, 0)
	for rows.Next() {
		var row RouteListRow
		if err := rows.Scan(&row.ID, &row.Source, &row.Destination, &row.Distance); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *RouteRepo) GetDetail(ctx context.Context, id uint64) (*RouteDetail, error) {
	const q = `SELECT r.id, r.distance,
                      s.id, s.name, s.latitude, s.longitude,
                      d.id, d.name, d.latitude, d.longitude
               FROM routes r
               JOIN stations s ON s.id = r.source_id
               JOIN stations d ON d.id = r.destination_id
               WHERE r.id = ?`
	var det RouteDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.Distance,
		&det.Source.ID, &det.Source.Name, &det.Source.Latitude, &det.Source.Longitude,
		&det.Destination.ID, &det.Destination.Name, &det.Destination.Latitude, &det.Destination.Longitude,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &det, nil
}
