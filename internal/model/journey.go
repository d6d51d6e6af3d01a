package model

import "time"

// Journey is one scheduled run of a train over a route. Listings order
// journeys by DepartureTime, newest first.
type Journey struct {
	ID            uint64    `json:"id"`             // journeys.id
	RouteID       uint64    `json:"route"`          // journeys.route_id
	TrainID       uint64    `json:"train"`          // journeys.train_id
	CrewIDs       []uint64  `json:"crew"`           // journey_crews.crew_id
	DepartureTime time.Time `json:"departure_time"` // journeys.departure_time
	ArrivalTime   time.Time `json:"arrival_time"`   // journeys.arrival_time
}
