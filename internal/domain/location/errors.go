package location

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrNoLocationAssigned      = errors.New("no work location is assigned to this employee")
	ErrNoCoordinatesConfigured = errors.New("assigned work location has no coordinates configured")
	ErrLocationNotFound        = errors.New("work location not found")

	// Geofence
	ErrOutOfGeofence = errors.New("you are outside the allowed radius")

	// Device capability errors
	ErrGeoPermissionDenied    = errors.New("location permission denied")
	ErrGeoPositionUnavailable = errors.New("location information is unavailable")
	ErrGeoTimeout             = errors.New("timed out while getting location")
)

// OutOfGeofenceError carries the measured distance so the caller can show how far off the device is.
type OutOfGeofenceError struct {
	LocationName        string
	DistanceMeters      float64
	AllowedRadiusMeters float64
}

func (e *OutOfGeofenceError) Error() string {
	return fmt.Sprintf("you are %.0fm from %s, allowed radius is %.0fm",
		e.DistanceMeters, e.LocationName, e.AllowedRadiusMeters)
}

func (e *OutOfGeofenceError) Is(target error) bool {
	return target == ErrOutOfGeofence
}
