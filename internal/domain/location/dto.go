package location

import (
	"errors"
	"fmt"
	"time"
)

type AssignedLocationResponse struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	AllowedRadiusMeters float64  `json:"allowed_radius_meters"`
	HasCoordinates      bool     `json:"has_coordinates"`
}

func NewAssignedLocationResponse(loc AssignedLocation) AssignedLocationResponse {
	return AssignedLocationResponse{
		ID:                  loc.ID,
		Name:                loc.Name,
		Latitude:            loc.Latitude,
		Longitude:           loc.Longitude,
		AllowedRadiusMeters: loc.AllowedRadiusMeters,
		HasCoordinates:      loc.HasCoordinates(),
	}
}

var errMalformedLocation = errors.New("malformed assigned location payload")

// ToEntity converts a decoded payload, failing on fields the attendance flow depends on.
func (r AssignedLocationResponse) ToEntity() (AssignedLocation, error) {
	if r.ID == "" {
		return AssignedLocation{}, fmt.Errorf("%w: id is required", errMalformedLocation)
	}
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return AssignedLocation{}, fmt.Errorf("%w: latitude and longitude must be set together", errMalformedLocation)
	}
	if r.AllowedRadiusMeters < 0 {
		return AssignedLocation{}, fmt.Errorf("%w: allowed_radius_meters must not be negative", errMalformedLocation)
	}
	return AssignedLocation{
		ID:                  r.ID,
		Name:                r.Name,
		Latitude:            r.Latitude,
		Longitude:           r.Longitude,
		AllowedRadiusMeters: r.AllowedRadiusMeters,
	}, nil
}

// PositionRequest is the coordinate part of a check-in/out payload.
type PositionRequest struct {
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	AccuracyMeters float64    `json:"accuracy_meters,omitempty"`
	CapturedAt     *time.Time `json:"captured_at,omitempty"`
}
