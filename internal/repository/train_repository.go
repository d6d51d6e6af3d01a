package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/train-reservation/internal/model"
)

// TrainRepo persists trains.
type TrainRepo struct {
	db *sql.DB
}

func NewTrainRepo(db *sql.DB) *TrainRepo { return &TrainRepo{db: db} }

// TrainListRow is the list projection of a train with its type flattened.
type TrainListRow struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	CargoNum       int     `json:"cargo_num"`
	PlacesInCargo  int     `json:"places_in_cargo"`
	TrainTypeName  string  `json:"train_type_name"`
	TrainTypeImage *string `json:"train_type_image"`
	TotalPlaces    int     `json:"total_places"`
}

// TrainDetail nests the train type.
type TrainDetail struct {
	ID            uint64          `json:"id"`
	Name          string          `json:"name"`
	CargoNum      int             `json:"cargo_num"`
	PlacesInCargo int             `json:"places_in_cargo"`
	TrainType     model.TrainType `json:"train_type"`
}

// Create inserts a train. A taken name returns ErrNameExists and an
// unknown train type returns ErrConflict.
func (r *TrainRepo) Create(ctx context.Context, t *model.Train) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO trains (name, cargo_num, places_in_cargo, train_type_id) VALUES (?, ?, ?, ?)",
		t.Name, t.CargoNum, t.PlacesInCargo, t.TrainTypeID)
	if err != nil {
		return translateWrite(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

func (r *TrainRepo) List(ctx context.Context) ([]TrainListRow, error) {
	const q = `SELECT t.id, t.name, t.cargo_num, t.places_in_cargo, tt.name, tt.image
               FROM trains t
               JOIN train_types tt ON tt.id = t.train_type_id
               ORDER BY t.name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]TrainListRow, 0)
	for rows.Next() {
		var row TrainListRow
		var img sql.NullString
		if err := rows.Scan(&row.ID, &row.Name, &row.CargoNum, &row.PlacesInCargo, &row.TrainTypeName, &img); err != nil {
			return nil, err
		}
		row.TrainTypeImage = nullString(img)
		row.TotalPlaces = row.CargoNum * row.PlacesInCargo
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *TrainRepo) GetDetail(ctx context.Context, id uint64) (*TrainDetail, error) {
	const q = `SELECT t.id, t.name, t.cargo_num, t.places_in_cargo, tt.id, tt.name, tt.image
               FROM trains t
               JOIN train_types tt ON tt.id = t.train_type_id
               WHERE t.id = ?`
	var det TrainDetail
	var img sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.Name, &det.CargoNum, &det.PlacesInCargo,
		&det.TrainType.ID, &det.TrainType.Name, &img,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	det.TrainType.Image = nullString(img)
	return &det, nil
}
