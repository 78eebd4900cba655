package geospatial

import "math"

// BodyRadiusKm is the sphere radius used for landmark distances. It is the
// terrestrial mean radius, kept so both surfaces agree on the same numbers.
const BodyRadiusKm = 6371.0

// Haversine calculates the great-circle distance in kilometers between two
// points on a sphere of radius BodyRadiusKm.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return BodyRadiusKm * c
}

// DegreeDistance is the planar Euclidean distance between two points measured
// directly in degrees. It is not a surface distance.
func DegreeDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat1 - lat2
	dLon := lon1 - lon2
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToRad converts degrees to radians.
func ToRad(deg float64) float64 { return toRad(deg) }

// ToDeg converts radians to degrees.
func ToDeg(rad float64) float64 { return rad * 180 / math.Pi }
