package model

// Station is a named stop with geographic coordinates. Names are unique
// across the catalog and coordinates are stored in degrees.
type Station struct {
	ID        uint64  `json:"id"`        // stations.id
	Name      string  `json:"name"`      // stations.name (unique)
	Latitude  float64 `json:"latitude"`  // stations.latitude, -90..90
	Longitude float64 `json:"longitude"` // stations.longitude, -180..180
}
