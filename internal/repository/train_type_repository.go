package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/train-reservation/internal/model"
)

// TrainTypeRepo persists train types and their image references.
type TrainTypeRepo struct {
	db *sql.DB
}

func NewTrainTypeRepo(db *sql.DB) *TrainTypeRepo { return &TrainTypeRepo{db: db} }

// Create inserts a train type. A taken name returns ErrNameExists.
func (r *TrainTypeRepo) Create(ctx context.Context, t *model.TrainType) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO train_types (name, image) VALUES (?, ?)", t.Name, t.Image)
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

func (r *TrainTypeRepo) List(ctx context.Context) ([]model.TrainType, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, image FROM train_types ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TrainType, 0)
	for rows.Next() {
		var t model.TrainType
		var img sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &img); err != nil {
			return nil, err
		}
		t.Image = nullString(img)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TrainTypeRepo) GetByID(ctx context.Context, id uint64) (*model.TrainType, error) {
	var t model.TrainType
	var img sql.NullString
	err := r.db.QueryRowContext(ctx, "SELECT id, name, image FROM train_types WHERE id = ?", id).Scan(&t.ID, &t.Name, &img)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Image = nullString(img)
	return &t, nil
}

// SetImage stores the image path for a train type.
func (r *TrainTypeRepo) SetImage(ctx context.Context, id uint64, path string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE train_types SET image = ? WHERE id = ?", path, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
