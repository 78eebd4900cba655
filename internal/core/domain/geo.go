package domain

import "math"

// Geographic ranges of the body's surface reference frame.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// GeoCoordinate is a (latitude, longitude) pair in degrees.
type GeoCoordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewGeoCoordinate clamps latitude and wraps longitude into range.
func NewGeoCoordinate(lat, lon float64) GeoCoordinate {
	return GeoCoordinate{Lat: ClampLatitude(lat), Lon: NormalizeLongitude(lon)}
}

// InRange reports whether both components lie inside the geographic ranges.
func (g GeoCoordinate) InRange() bool {
	return g.Lat >= MinLatitude && g.Lat <= MaxLatitude &&
		g.Lon >= MinLongitude && g.Lon <= MaxLongitude
}

// Round returns the coordinate rounded to the given number of decimals.
func (g GeoCoordinate) Round(decimals int) GeoCoordinate {
	p := math.Pow(10, float64(decimals))
	return GeoCoordinate{Lat: math.Round(g.Lat*p) / p, Lon: math.Round(g.Lon*p) / p}
}

// NormalizeLongitude wraps lon into [-180, 180] by whole turns.
// 180 and -180 are both kept as-is. Values east of the range land in
// (-180, 180], values west of it in [-180, 180).
func NormalizeLongitude(lon float64) float64 {
	switch {
	case math.IsNaN(lon) || math.IsInf(lon, 0):
		return lon
	case lon > MaxLongitude:
		m := math.Mod(lon-MaxLongitude, 360)
		if m == 0 {
			return MaxLongitude
		}
		return m + MinLongitude
	case lon < MinLongitude:
		m := math.Mod(lon-MinLongitude, 360)
		if m == 0 {
			return MinLongitude
		}
		return m + MaxLongitude
	}
	return lon
}

// ClampLatitude limits lat to [-90, 90]. Latitude is never wrapped.
func ClampLatitude(lat float64) float64 {
	return math.Max(MinLatitude, math.Min(MaxLatitude, lat))
}

// Coordinate is an optional GeoCoordinate. The zero value means
// "no coordinate" (pointer off the surface or outside the valid range).
type Coordinate struct {
	GeoCoordinate
	Valid bool `json:"valid"`
}

// Some wraps a coordinate as present.
func Some(g GeoCoordinate) Coordinate {
	return Coordinate{GeoCoordinate: g, Valid: true}
}

// None is the absent coordinate.
func None() Coordinate {
	return Coordinate{}
}

// Finite reports whether v is a usable number (not NaN, not ±Inf).
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}
