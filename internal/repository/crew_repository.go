package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/train-reservation/internal/model"
)

// CrewRepo persists crew members.
type CrewRepo struct {
	db *sql.DB
}

func NewCrewRepo(db *sql.DB) *CrewRepo { return &CrewRepo{db: db} }

func (r *CrewRepo) Create(ctx context.Context, c *model.Crew) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO crews (first_name, last_name, position) VALUES (?, ?, ?)",
		c.FirstName, c.LastName, c.Position)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

func (r *CrewRepo) List(ctx context.Context) ([]model.Crew, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, first_name, last_name, position FROM crews ORDER BY last_name, first_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Crew, 0)
	for rows.Next() {
		var c model.Crew
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Position); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
