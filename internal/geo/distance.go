// Package geo holds the great-circle helpers used to derive route
// distances from station coordinates.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by DistanceKm.
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine distance in whole kilometres between
// two points given in degrees. The result is rounded to the nearest
// integer and does not depend on argument order.
func DistanceKm(lat1, lon1, lat2, lon2 float64) int {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return int(math.Round(EarthRadiusKm * c))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
