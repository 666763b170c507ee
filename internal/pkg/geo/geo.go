package geo

import "math"

// EarthRadiusMeters is the mean earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Valid reports whether the point lies inside the latitude/longitude ranges.
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)

	// cos(lat1)*cos(lat2) is taken as one product so Distance(a, b) and
	// Distance(b, a) round identically.
	cosProduct := math.Cos(lat1) * math.Cos(lat2)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*cosProduct

	// Rounding can push h a hair past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Offset returns the point reached by moving north and east by the given
// number of meters on a spherical earth. It is accurate for the short
// distances a geofence deals with.
func Offset(p Point, northMeters, eastMeters float64) Point {
	dLat := northMeters / EarthRadiusMeters
	dLon := eastMeters / (EarthRadiusMeters * math.Cos(toRadians(p.Latitude)))
	return Point{
		Latitude:  p.Latitude + toDegrees(dLat),
		Longitude: p.Longitude + toDegrees(dLon),
	}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func toDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
