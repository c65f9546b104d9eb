package geometry

// MetersPerDegree approximates the length of one degree of WGS84 latitude.
const MetersPerDegree = 111000.0

// DegreesFromMeters converts a ground distance to an approximate distance in
// WGS84 degrees, for tolerances on geographic data.
func DegreesFromMeters(meters float64) float64 {
	return meters / MetersPerDegree
}
