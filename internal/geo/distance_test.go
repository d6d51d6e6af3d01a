package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   int
	}{
		{"kyiv to kherson", 50.45, 30.52, 46.64, 32.61, 451},
		{"london to paris", 51.5074, -0.1278, 48.8566, 2.3522, 344},
		{"same point", 50.45, 30.52, 50.45, 30.52, 0},
		{"quarter meridian", 0, 0, 90, 0, 10008},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DistanceKm(tc.lat1, tc.lon1, tc.lat2, tc.lon2))
		})
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	points := [][2]float64{
		{50.45, 30.52}, {46.64, 32.61}, {-33.86, 151.21}, {40.71, -74.01}, {0, 179.9}, {0, -179.9},
	}
	for _, a := range points {
		for _, b := range points {
			ab := DistanceKm(a[0], a[1], b[0], b[1])
			ba := DistanceKm(b[0], b[1], a[0], a[1])
			assert.Equal(t, ab, ba, "distance %v -> %v", a, b)
			assert.Equal(t, ab, DistanceKm(a[0], a[1], b[0], b[1]), "recomputation must be stable")
		}
	}
}
