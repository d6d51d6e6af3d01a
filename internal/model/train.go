package model

// Train describes the physical layout of a train: CargoNum cars, each
// holding PlacesInCargo seats. Cars and seats are numbered from 1.
type Train struct {
	ID            uint64 `json:"id"`              // trains.id
	Name          string `json:"name"`            // trains.name (unique)
	CargoNum      int    `json:"cargo_num"`       // trains.cargo_num, > 0
	PlacesInCargo int    `json:"places_in_cargo"` // trains.places_in_cargo, > 0
	TrainTypeID   uint64 `json:"train_type"`      // trains.train_type_id
}

// TotalPlaces is the number of seats the train can sell per journey.
func (t Train) TotalPlaces() int {
	return t.CargoNum * t.PlacesInCargo
}

// Available returns the seats left after sold tickets. It is not clamped;
// a negative value means the data violates the capacity invariant.
func (t Train) Available(sold int) int {
	return t.TotalPlaces() - sold
}
