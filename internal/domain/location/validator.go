package location

import "github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"

// Result is the outcome of comparing a device position with an assigned location.
type Result struct {
	WithinRadius   bool
	DistanceMeters float64
	LocationName   string
}

// Validate measures the distance between pos and loc. The radius is inclusive:
// a position exactly AllowedRadiusMeters away is within the geofence.
func Validate(loc *AssignedLocation, pos DevicePosition) (Result, error) {
	if loc == nil {
		return Result{}, ErrNoLocationAssigned
	}
	if !loc.HasCoordinates() {
		return Result{}, ErrNoCoordinatesConfigured
	}

	distance := geo.Distance(loc.Point(), pos.Point())

	return Result{
		WithinRadius:   distance <= loc.AllowedRadiusMeters,
		DistanceMeters: distance,
		LocationName:   loc.Name,
	}, nil
}

// Require is Validate that turns an outside result into an *OutOfGeofenceError.
func Require(loc *AssignedLocation, pos DevicePosition) (Result, error) {
	res, err := Validate(loc, pos)
	if err != nil {
		return Result{}, err
	}
	if !res.WithinRadius {
		return res, &OutOfGeofenceError{
			LocationName:        res.LocationName,
			DistanceMeters:      res.DistanceMeters,
			AllowedRadiusMeters: loc.AllowedRadiusMeters,
		}
	}
	return res, nil
}
