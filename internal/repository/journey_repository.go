package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/train-reservation/internal/booking"
	"github.com/iliyamo/train-reservation/internal/model"
)

// JourneyRepo persists journeys together with their crew assignments and
// answers availability queries.
type JourneyRepo struct {
	db *sql.DB
}

func NewJourneyRepo(db *sql.DB) *JourneyRepo { return &JourneyRepo{db: db} }

// JourneyFilter narrows List. Name filters are case-insensitive
// substring matches; date filters match the calendar day (UTC).
type JourneyFilter struct {
	SourceName      string
	DestinationName string
	TrainName       string
	DepartureDate   *time.Time
	ArrivalDate     *time.Time
}

// CrewBrief is the crew projection embedded in journey listings.
type CrewBrief struct {
	FullName string             `json:"full_name"`
	Position model.CrewPosition `json:"position"`
}

// JourneyListRow is the list projection of a journey. TicketsAvailable
// is computed by the query from the train capacity and the distinct
// count of sold tickets.
type JourneyListRow struct {
	ID               uint64      `json:"id"`
	RouteSource      string      `json:"route_source"`
	RouteDestination string      `json:"route_destination"`
	TrainName        string      `json:"train_name"`
	TrainTypeName    string      `json:"train_type_name"`
	Crew             []CrewBrief `json:"crew"`
	DepartureTime    time.Time   `json:"departure_time"`
	ArrivalTime      time.Time   `json:"arrival_time"`
	TicketsAvailable int         `json:"tickets_available"`
}

// SeatRef identifies a sold seat.
type SeatRef struct {
	Cargo int `json:"cargo"`
	Seat  int `json:"seat"`
}

// JourneyDetail is the detail projection with route, train and crew
// nested and the list of taken places.
type JourneyDetail struct {
	ID               uint64       `json:"id"`
	Route            model.Route  `json:"route"`
	Train            model.Train  `json:"train"`
	Crew             []model.Crew `json:"crew"`
	DepartureTime    time.Time    `json:"departure_time"`
	ArrivalTime      time.Time    `json:"arrival_time"`
	TakenPlaces      []SeatRef    `json:"taken_places"`
	TicketsAvailable int          `json:"tickets_available"`
}

// listSelect aggregates tickets per journey. Crew is loaded by a
// separate query so crew rows never multiply the ticket count; DISTINCT
// keeps the count exact even if more joins are added later. The layout
// columns are unsigned, so capacity is cast to SIGNED before subtracting:
// a journey moved to a smaller train reports a negative value.
const listSelect = `SELECT j.id, src.name, dst.name, t.name, tt.name, j.departure_time, j.arrival_time,
                           CAST(t.cargo_num * t.places_in_cargo AS SIGNED) - COUNT(DISTINCT tk.id) AS tickets_available
                    FROM journeys j
                    JOIN routes r       ON r.id = j.route_id
                    JOIN stations src   ON src.id = r.source_id
                    JOIN stations dst   ON dst.id = r.destination_id
                    JOIN trains t       ON t.id = j.train_id
                    JOIN train_types tt ON tt.id = t.train_type_id
                    LEFT JOIN tickets tk ON tk.journey_id = j.id`

const listGroup = ` GROUP BY j.id, src.name, dst.name, t.name, tt.name, j.departure_time, j.arrival_time, t.cargo_num, t.places_in_cargo
                    ORDER BY j.departure_time DESC, j.id DESC`

// List returns journeys matching f, newest departure first.
func (r *JourneyRepo) List(ctx context.Context, f JourneyFilter) ([]JourneyListRow, error) {
	where := []string{}
	args := []any{}
	if f.SourceName != "" {
		where = append(where, "LOWER(src.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.SourceName)+"%")
	}
	if f.DestinationName != "" {
		where = append(where, "LOWER(dst.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.DestinationName)+"%")
	}
	if f.TrainName != "" {
		where = append(where, "LOWER(t.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.TrainName)+"%")
	}
	if f.DepartureDate != nil {
		where = append(where, "DATE(j.departure_time) = ?")
		args = append(args, f.DepartureDate.Format("2006-01-02"))
	}
	if f.ArrivalDate != nil {
		where = append(where, "DATE(j.arrival_time) = ?")
		args = append(args, f.ArrivalDate.Format("2006-01-02"))
	}
	return r.listWhere(ctx, where, args)
}

// ListByIDs returns the list projection for the given journeys.
func (r *JourneyRepo) ListByIDs(ctx context.Context, ids []uint64) ([]JourneyListRow, error) {
	if len(ids) == 0 {
		return []JourneyListRow{}, nil
	}
	ph, args := inClause(ids)
	return r.listWhere(ctx, []string{"j.id IN (" + ph + ")"}, args)
}

func (r *JourneyRepo) listWhere(ctx context.Context, where []string, args []any) ([]JourneyListRow, error) {
	q := listSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += listGroup
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]JourneyListRow, 0)
	index := make(map[uint64]int)
	ids := make([]uint64, 0)
	for rows.Next() {
		var row JourneyListRow
		if err := rows.Scan(
			&row.ID, &row.RouteSource, &row.RouteDestination, &row.TrainName, &row.TrainTypeName,
			&row.DepartureTime, &row.ArrivalTime, &row.TicketsAvailable,
		); err != nil {
			return nil, err
		}
		row.Crew = []CrewBrief{}
		index[row.ID] = len(out)
		ids = append(ids, row.ID)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	crew, err := r.crewFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for jid, members := range crew {
		idx, ok := index[jid]
		if !ok {
			continue
		}
		for _, c := range members {
			out[idx].Crew = append(out[idx].Crew, CrewBrief{FullName: c.FullName(), Position: c.Position})
		}
	}
	return out, nil
}

// crewFor loads the crew of several journeys in one query.
func (r *JourneyRepo) crewFor(ctx context.Context, journeyIDs []uint64) (map[uint64][]model.Crew, error) {
	ph, args := inClause(journeyIDs)
	q := `SELECT jc.journey_id, c.id, c.first_name, c.last_name, c.position
          FROM journey_crews jc
          JOIN crews c ON c.id = jc.crew_id
          WHERE jc.journey_id IN (` + ph + `)
          ORDER BY jc.journey_id, c.last_name, c.first_name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64][]model.Crew)
	for rows.Next() {
		var jid uint64
		var c model.Crew
		if err := rows.Scan(&jid, &c.ID, &c.FirstName, &c.LastName, &c.Position); err != nil {
			return nil, err
		}
		out[jid] = append(out[jid], c)
	}
	return out, rows.Err()
}

// GetDetail returns the detail projection or ErrNotFound.
func (r *JourneyRepo) GetDetail(ctx context.Context, id uint64) (*JourneyDetail, error) {
	const q = `SELECT j.id, j.departure_time, j.arrival_time,
                      r.id, r.source_id, r.destination_id, r.distance,
                      t.id, t.name, t.cargo_num, t.places_in_cargo, t.train_type_id
               FROM journeys j
               JOIN routes r ON r.id = j.route_id
               JOIN trains t ON t.id = j.train_id
               WHERE j.id = ?`
	var det JourneyDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.DepartureTime, &det.ArrivalTime,
		&det.Route.ID, &det.Route.SourceID, &det.Route.DestinationID, &det.Route.Distance,
		&det.Train.ID, &det.Train.Name, &det.Train.CargoNum, &det.Train.PlacesInCargo, &det.Train.TrainTypeID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	crew, err := r.crewFor(ctx, []uint64{id})
	if err != nil {
		return nil, err
	}
	det.Crew = crew[id]
	if det.Crew == nil {
		det.Crew = []model.Crew{}
	}

	rows, err := r.db.QueryContext(ctx, `SELECT cargo, seat FROM tickets WHERE journey_id = ? ORDER BY cargo, seat`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	det.TakenPlaces = []SeatRef{}
	for rows.Next() {
		var s SeatRef
		if err := rows.Scan(&s.Cargo, &s.Seat); err != nil {
			return nil, err
		}
		det.TakenPlaces = append(det.TakenPlaces, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	det.TicketsAvailable = det.Train.Available(len(det.TakenPlaces))
	return &det, nil
}

// Create inserts the journey and its crew rows in one transaction.
// Unknown route, train or crew ids return ErrConflict.
func (r *JourneyRepo) Create(ctx context.Context, j *model.Journey) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO journeys (route_id, train_id, departure_time, arrival_time) VALUES (?, ?, ?, ?)",
		j.RouteID, j.TrainID, j.DepartureTime.UTC(), j.ArrivalTime.UTC())
	if err != nil {
		return translateWrite(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := insertCrewTx(ctx, tx, uint64(id), j.CrewIDs); err != nil {
		return translateWrite(err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	j.ID = uint64(id)
	return nil
}

// Update replaces every field of the journey including its crew set.
func (r *JourneyRepo) Update(ctx context.Context, j *model.Journey) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var exists bool
	if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM journeys WHERE id = ? FOR UPDATE)", j.ID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE journeys SET route_id = ?, train_id = ?, departure_time = ?, arrival_time = ? WHERE id = ?",
		j.RouteID, j.TrainID, j.DepartureTime.UTC(), j.ArrivalTime.UTC(), j.ID); err != nil {
		return translateWrite(err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM journey_crews WHERE journey_id = ?", j.ID); err != nil {
		return err
	}
	if err := insertCrewTx(ctx, tx, j.ID, j.CrewIDs); err != nil {
		return translateWrite(err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a journey. Its tickets and crew rows go with it.
func (r *JourneyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM journeys WHERE id = ?", id)
	if err != nil {
		return translateWrite(err)
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

// Train returns the train assigned to a journey or
// booking.ErrJourneyNotFound.
func (r *JourneyRepo) Train(ctx context.Context, journeyID uint64) (model.Train, error) {
	return journeyTrain(ctx, r.db, journeyID, "")
}

// SeatTaken reports whether a ticket holds the seat on the journey.
func (r *JourneyRepo) SeatTaken(ctx context.Context, journeyID uint64, cargo, seat int) (bool, error) {
	return seatTaken(ctx, r.db, journeyID, cargo, seat)
}

func journeyTrain(ctx context.Context, q queryer, journeyID uint64, lock string) (model.Train, error) {
	query := `SELECT t.id, t.name, t.cargo_num, t.places_in_cargo, t.train_type_id
              FROM journeys j
              JOIN trains t ON t.id = j.train_id
              WHERE j.id = ?` + lock
	var t model.Train
	err := q.QueryRowContext(ctx, query, journeyID).Scan(&t.ID, &t.Name, &t.CargoNum, &t.PlacesInCargo, &t.TrainTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Train{}, booking.ErrJourneyNotFound
		}
		return model.Train{}, err
	}
	return t, nil
}

func seatTaken(ctx context.Context, q queryer, journeyID uint64, cargo, seat int) (bool, error) {
	var taken bool
	err := q.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM tickets WHERE journey_id = ? AND cargo = ? AND seat = ?)",
		journeyID, cargo, seat).Scan(&taken)
	return taken, err
}

func insertCrewTx(ctx context.Context, tx *sql.Tx, journeyID uint64, crewIDs []uint64) error {
	if len(crewIDs) == 0 {
		return nil
	}
	query := "INSERT INTO journey_crews (journey_id, crew_id) VALUES "
	args := make([]any, 0, len(crewIDs)*2)
	seen := make(map[uint64]struct{}, len(crewIDs))
	for _, cid := range crewIDs {
		if _, ok := seen[cid]; ok {
			continue
		}
		seen[cid] = struct{}{}
		if len(args) > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, journeyID, cid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func inClause(ids []uint64) (string, []any) {
	args := make([]any, 0, len(ids))
	ph := make([]string, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
		ph = append(ph, "?")
	}
	return strings.Join(ph, ","), args
}
