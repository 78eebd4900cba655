// Package tiling addresses the equirectangular tile pyramid used by the flat
// map. World space spans x in [0,360] (longitude + 180) and y in [0,180]
// (latitude + 90), with the grid origin at world (0,0).
package tiling

import (
	"fmt"
	"math"

	"github.com/samirrijal/selene/internal/core/domain"
)

const (
	// TileSize is the edge length of a tile in pixels.
	TileSize = 256
	// BaseResolution is world units per pixel at zoom 0.
	BaseResolution = 1.40625
	// Levels is the number of zoom levels in the pyramid.
	Levels = 9
)

// Extent is the world-space extent of the pyramid.
var Extent = Rect{MinX: 0, MinY: 0, MaxX: 360, MaxY: 180}

// TileCoordinate addresses a tile. Rows follow the renderer's convention:
// they are negative and grow more negative going up from the origin, so the
// tile directly above the origin has row -1.
type TileCoordinate struct {
	Zoom   int `json:"z"`
	Column int `json:"x"`
	Row    int `json:"row"`
}

func (t TileCoordinate) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.Column, t.Row)
}

// URLRow is the y index used in tile image paths: -1 - row.
func (t TileCoordinate) URLRow() int {
	return -1 - t.Row
}

// FromURL rebuilds a tile coordinate from an image path index.
func FromURL(z, x, y int) TileCoordinate {
	return TileCoordinate{Zoom: z, Column: x, Row: -1 - y}
}

// Point is a position in world units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in world units.
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Grid is a fixed tile pyramid.
type Grid struct {
	origin      Point
	resolutions []float64
	tileSize    int
}

// NewGrid returns the pyramid shared by the base and every overlay layer.
func NewGrid() *Grid {
	res := make([]float64, Levels)
	r := BaseResolution
	for i := range res {
		res[i] = r
		r /= 2
	}
	return &Grid{origin: Point{X: Extent.MinX, Y: Extent.MinY}, resolutions: res, tileSize: TileSize}
}

// Resolutions returns world units per pixel for every zoom level.
func (g *Grid) Resolutions() []float64 {
	out := make([]float64, len(g.resolutions))
	copy(out, g.resolutions)
	return out
}

// Resolution returns world units per pixel at zoom z.
func (g *Grid) Resolution(z int) (float64, error) {
	if z < 0 || z >= len(g.resolutions) {
		return 0, fmt.Errorf("zoom %d out of range [0,%d]", z, len(g.resolutions)-1)
	}
	return g.resolutions[z], nil
}

// MaxZoom is the deepest zoom level.
func (g *Grid) MaxZoom() int { return len(g.resolutions) - 1 }

func (g *Grid) span(z int) (float64, error) {
	res, err := g.Resolution(z)
	if err != nil {
		return 0, err
	}
	return res * float64(g.tileSize), nil
}

// TileBounds returns the world rectangle covered by t.
func (g *Grid) TileBounds(t TileCoordinate) (Rect, error) {
	span, err := g.span(t.Zoom)
	if err != nil {
		return Rect{}, err
	}
	minX := g.origin.X + float64(t.Column)*span
	maxY := g.origin.Y - float64(t.Row)*span
	return Rect{MinX: minX, MinY: maxY - span, MaxX: minX + span, MaxY: maxY}, nil
}

// TileAt returns the tile containing world point p at zoom z.
func (g *Grid) TileAt(p Point, z int) (TileCoordinate, error) {
	span, err := g.span(z)
	if err != nil {
		return TileCoordinate{}, err
	}
	col := int(math.Floor((p.X - g.origin.X) / span))
	row := -1 - int(math.Floor((p.Y-g.origin.Y)/span))
	return TileCoordinate{Zoom: z, Column: col, Row: row}, nil
}

// TilePixelToWorld converts a pixel offset inside tile t into world units.
// px grows right, py grows down, both from the tile's top-left corner.
func (g *Grid) TilePixelToWorld(t TileCoordinate, px, py float64) (Point, error) {
	b, err := g.TileBounds(t)
	if err != nil {
		return Point{}, err
	}
	res := g.resolutions[t.Zoom]
	return Point{X: b.MinX + px*res, Y: b.MaxY - py*res}, nil
}

// Covers reports whether t intersects the world extent.
func (g *Grid) Covers(t TileCoordinate) bool {
	b, err := g.TileBounds(t)
	if err != nil {
		return false
	}
	return b.MaxX > Extent.MinX && b.MinX < Extent.MaxX &&
		b.MaxY > Extent.MinY && b.MinY < Extent.MaxY
}

// WorldToGeo shifts a world point into signed geographic coordinates. A point
// whose result falls outside [-90,90]x[-180,180] yields no coordinate.
func WorldToGeo(p Point) domain.Coordinate {
	g := domain.GeoCoordinate{Lat: p.Y - 90, Lon: p.X - 180}
	if !domain.Finite(g.Lat) || !domain.Finite(g.Lon) || !g.InRange() {
		return domain.None()
	}
	return domain.Some(g)
}

// GeoToWorld is the inverse of WorldToGeo.
func GeoToWorld(g domain.GeoCoordinate) Point {
	return Point{X: g.Lon + 180, Y: g.Lat + 90}
}

// GeoBounds converts a world rectangle into geographic bounds, clipped to the
// valid range.
func GeoBounds(r Rect) domain.Bounds {
	return domain.Bounds{
		MinLat: domain.ClampLatitude(r.MinY - 90),
		MinLon: math.Max(domain.MinLongitude, r.MinX-180),
		MaxLat: domain.ClampLatitude(r.MaxY - 90),
		MaxLon: math.Min(domain.MaxLongitude, r.MaxX-180),
	}
}
