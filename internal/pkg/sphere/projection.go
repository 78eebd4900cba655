// Package sphere converts between points on the rendered globe and
// geographic coordinates. The scene is y-up; azimuth is measured from +z
// toward +x, polar angle from +y.
package sphere

import (
	"math"

	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/pkg/geospatial"
)

// Vec3 is a point or direction in scene space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec3) finite() bool {
	return domain.Finite(v.X) && domain.Finite(v.Y) && domain.Finite(v.Z)
}

// Normalize returns v scaled to unit length; the zero vector is returned as is.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Ray is a pointer ray cast from the camera.
type Ray struct {
	Origin    Vec3 `json:"origin"`
	Direction Vec3 `json:"direction"`
}

// Sphere is the rendered body.
type Sphere struct {
	Center Vec3    `json:"center"`
	Radius float64 `json:"radius"`
}

// Spherical holds spherical coordinates of a point.
type Spherical struct {
	Radius float64 // r
	Phi    float64 // polar angle from +y, [0, π]
	Theta  float64 // azimuth from +z toward +x, (-π, π]
}

// RayHit intersects r with s and returns the nearest hit in front of the ray
// origin, translated and scaled onto the unit sphere. ok is false when the
// ray misses.
func RayHit(r Ray, s Sphere) (Vec3, bool) {
	if s.Radius <= 0 || !r.Origin.finite() || !r.Direction.finite() {
		return Vec3{}, false
	}
	d := r.Direction.Normalize()
	if d.Len() == 0 {
		return Vec3{}, false
	}
	oc := r.Origin.Sub(s.Center)
	b := oc.Dot(d)
	c := oc.Dot(oc) - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return Vec3{}, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		// origin inside the sphere: take the exit point
		t = -b + sq
	}
	if t < 0 {
		return Vec3{}, false
	}
	hit := r.Origin.Add(d.Scale(t))
	return hit.Sub(s.Center).Scale(1 / s.Radius), true
}

// ToSpherical converts a scene point to spherical coordinates.
func ToSpherical(p Vec3) Spherical {
	r := p.Len()
	if r == 0 {
		return Spherical{}
	}
	cos := math.Max(-1, math.Min(1, p.Y/r))
	return Spherical{Radius: r, Phi: math.Acos(cos), Theta: math.Atan2(p.X, p.Z)}
}

// SphericalToGeo maps a point on the sphere to latitude/longitude:
// lat = 90 - φ, lon = 90 + θ, longitude wrapped into [-180,180].
func SphericalToGeo(p Vec3) domain.GeoCoordinate {
	s := ToSpherical(p)
	lat := 90 - geospatial.ToDeg(s.Phi)
	lon := 90 + geospatial.ToDeg(s.Theta)
	if lon > 180 {
		lon -= 360
	} else if lon < -180 {
		lon += 360
	}
	return domain.GeoCoordinate{Lat: lat, Lon: lon}
}

// GeoToSpherical places a geographic coordinate on the unit sphere; it is the
// inverse of SphericalToGeo.
func GeoToSpherical(g domain.GeoCoordinate) Vec3 {
	phi := geospatial.ToRad(90 - g.Lat)
	theta := geospatial.ToRad(g.Lon - 90)
	return Vec3{
		X: math.Sin(phi) * math.Sin(theta),
		Y: math.Cos(phi),
		Z: math.Sin(phi) * math.Cos(theta),
	}
}

// GeoToUV returns equirectangular texture coordinates for g: u grows east
// from -180°, v grows south from the north pole.
func GeoToUV(g domain.GeoCoordinate) (u, v float64) {
	return (g.Lon + 180) / 360, (90 - g.Lat) / 180
}

// Project resolves a pointer ray to a coordinate. A miss yields no coordinate.
func Project(r Ray, s Sphere) domain.Coordinate {
	p, ok := RayHit(r, s)
	if !ok {
		return domain.None()
	}
	return domain.Some(SphericalToGeo(p))
}
