package model

// Route connects a source station to a destination station. Distance is
// derived from the stations' coordinates on every save and is never
// accepted from clients.
type Route struct {
	ID            uint64 `json:"id"`          // routes.id
	SourceID      uint64 `json:"source"`      // routes.source_id
	DestinationID uint64 `json:"destination"` // routes.destination_id
	Distance      int    `json:"distance"`    // routes.distance, km
}
