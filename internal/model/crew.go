package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// CrewPosition is the closed set of roles a crew member can hold on a
// journey. The zero value is not a valid position.
type CrewPosition uint8

const (
	CrewDriver CrewPosition = iota + 1
	CrewAssistantDriver
	CrewConductor
	CrewSeniorConductor
	CrewTrainManager
)

// CrewPositions lists every valid position in display order.
var CrewPositions = []CrewPosition{
	CrewDriver,
	CrewAssistantDriver,
	CrewConductor,
	CrewSeniorConductor,
	CrewTrainManager,
}

// String returns the label stored in crews.position.
func (p CrewPosition) String() string {
	switch p {
	case CrewDriver:
		return "driver"
	case CrewAssistantDriver:
		return "assistant driver"
	case CrewConductor:
		return "conductor"
	case CrewSeniorConductor:
		return "senior conductor"
	case CrewTrainManager:
		return "train manager"
	}
	return "unknown"
}

// Valid reports whether p is one of the declared positions.
func (p CrewPosition) Valid() bool {
	return p >= CrewDriver && p <= CrewTrainManager
}

// ParseCrewPosition maps a label such as "senior conductor" (case and
// surrounding space insensitive, underscores accepted) to its position.
func ParseCrewPosition(s string) (CrewPosition, error) {
	label := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", " ")
	for _, p := range CrewPositions {
		if p.String() == label {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown crew position %q", s)
}

func (p CrewPosition) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid crew position %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *CrewPosition) UnmarshalText(b []byte) error {
	v, err := ParseCrewPosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Value stores the position as its label.
func (p CrewPosition) Value() (driver.Value, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid crew position %d", uint8(p))
	}
	return p.String(), nil
}

// Scan reads a label written by Value.
func (p *CrewPosition) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return p.UnmarshalText([]byte(v))
	case []byte:
		return p.UnmarshalText(v)
	}
	return fmt.Errorf("cannot scan %T into CrewPosition", src)
}

// Crew is a member of the train staff. Crew members are assigned to
// journeys through the journey_crews join table.
type Crew struct {
	ID        uint64       `json:"id"`         // crews.id
	FirstName string       `json:"first_name"` // crews.first_name
	LastName  string       `json:"last_name"`  // crews.last_name
	Position  CrewPosition `json:"position"`   // crews.position
}

// FullName joins first and last name with a single space.
func (c Crew) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
