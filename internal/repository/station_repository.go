package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/train-reservation/internal/booking"
	"github.com/iliyamo/train-reservation/internal/model"
)

// StationRepo persists stations.
type StationRepo struct {
	db *sql.DB
}

// NewStationRepo constructs a StationRepo with the given DB handle.
func NewStationRepo(db *sql.DB) *StationRepo { return &StationRepo{db: db} }

// Create validates the coordinates and inserts the station. Out of range
// coordinates return a *booking.RangeError before any query runs; a
// taken name returns ErrNameExists.
func (r *StationRepo) Create(ctx context.Context, s *model.Station) error {
	if err := booking.ValidateCoordinates(s.Latitude, s.Longitude); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO stations (name, latitude, longitude) VALUES (?, ?, ?)",
		s.Name, s.Latitude, s.Longitude)
	if err != nil {
		return translateWrite(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// List returns all stations ordered by name.
func (r *StationRepo) List(ctx context.Context) ([]model.Station, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, latitude, longitude FROM stations ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Station, 0)
	for rows.Next() {
		var s model.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID returns ErrNotFound when the station does not exist.
func (r *StationRepo) GetByID(ctx context.Context, id uint64) (*model.Station, error) {
	return getStation(ctx, r.db, id)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getStation(ctx context.Context, q queryer, id uint64) (*model.Station, error) {
	var s model.Station
	err := q.QueryRowContext(ctx, "SELECT id, name, latitude, longitude FROM stations WHERE id = ?", id).
		Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
