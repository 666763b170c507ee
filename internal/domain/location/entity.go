package location

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
)

// AssignedLocation is a company work site an employee clocks in against.
// Coordinates stay nil until an administrator configures them.
type AssignedLocation struct {
	ID                  string
	CompanyID           string
	Name                string
	Latitude            *float64
	Longitude           *float64
	AllowedRadiusMeters float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasCoordinates reports whether both latitude and longitude are configured.
func (l *AssignedLocation) HasCoordinates() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

// Point returns the configured coordinates. Callers must check HasCoordinates first.
func (l *AssignedLocation) Point() geo.Point {
	return geo.Point{Latitude: *l.Latitude, Longitude: *l.Longitude}
}

// DevicePosition is a single fix captured for one check-in or check-out attempt.
type DevicePosition struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	CapturedAt     time.Time
}

func (p DevicePosition) Point() geo.Point {
	return geo.Point{Latitude: p.Latitude, Longitude: p.Longitude}
}
