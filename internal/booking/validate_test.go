package booking

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/train-reservation/internal/model"
)

func TestValidateTicketWithinLayout(t *testing.T) {
	layouts := [][2]int{{1, 1}, {2, 10}, {12, 54}}
	for _, l := range layouts {
		train := model.Train{CargoNum: l[0], PlacesInCargo: l[1]}
		for cargo := 1; cargo <= train.CargoNum; cargo++ {
			for seat := 1; seat <= train.PlacesInCargo; seat++ {
				assert.NoError(t, ValidateTicket(cargo, seat, train), "cargo=%d seat=%d layout=%v", cargo, seat, l)
			}
		}
	}
}

func TestValidateTicketOutsideLayout(t *testing.T) {
	train := model.Train{CargoNum: 2, PlacesInCargo: 10}
	cases := []struct {
		cargo, seat int
		field       string
		max         int
	}{
		{0, 1, "cargo", 2},
		{3, 1, "cargo", 2},
		{-1, 5, "cargo", 2},
		{1, 0, "seat", 10},
		{2, 11, "seat", 10},
		{3, 11, "cargo", 2},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("cargo=%d/seat=%d", tc.cargo, tc.seat), func(t *testing.T) {
			err := ValidateTicket(tc.cargo, tc.seat, train)
			var ce *CapacityError
			require.True(t, errors.As(err, &ce), "want CapacityError, got %v", err)
			assert.Equal(t, tc.field, ce.FieldName())
			assert.Equal(t, 1, ce.Min)
			assert.Equal(t, tc.max, ce.Max)
		})
	}
}

func TestValidateTicketMessage(t *testing.T) {
	err := ValidateTicket(3, 1, model.Train{CargoNum: 2, PlacesInCargo: 10})
	assert.EqualError(t, err, "cargo number must be in available range: (1, 2), got 3")
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, ValidateCoordinates(50.45, 30.52))
	assert.NoError(t, ValidateCoordinates(-90, 180))
	assert.NoError(t, ValidateCoordinates(90, -180))

	cases := []struct {
		lat, lon float64
		field    string
	}{
		{90.01, 0, "latitude"},
		{-91, 0, "latitude"},
		{math.NaN(), 0, "latitude"},
		{0, 180.5, "longitude"},
		{0, -181, "longitude"},
	}
	for _, tc := range cases {
		err := ValidateCoordinates(tc.lat, tc.lon)
		var re *RangeError
		require.True(t, errors.As(err, &re), "lat=%v lon=%v", tc.lat, tc.lon)
		assert.Equal(t, tc.field, re.Field)
	}
}
