package booking

import (
	"math"

	"github.com/iliyamo/train-reservation/internal/model"
)

// ValidateTicket checks that cargo and seat fit the physical layout of
// train. Cargo is checked first; the returned *CapacityError names the
// violated field and its allowed range. Seat uniqueness is not checked
// here.
func ValidateTicket(cargo, seat int, train model.Train) error {
	if err := checkCapacity("cargo", cargo, train.CargoNum); err != nil {
		return err
	}
	return checkCapacity("seat", seat, train.PlacesInCargo)
}

func checkCapacity(field string, v, limit int) error {
	if v < 1 || v > limit {
		return &CapacityError{Field: field, Value: v, Min: 1, Max: limit}
	}
	return nil
}

// ValidateCoordinates checks station coordinates against geographic
// bounds and returns a *RangeError for the first field out of range.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return &RangeError{Field: "latitude", Value: lat, Min: -90, Max: 90}
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return &RangeError{Field: "longitude", Value: lon, Min: -180, Max: 180}
	}
	return nil
}
