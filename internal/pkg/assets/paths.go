// Package assets builds the static asset paths shared with the front-end
// bundle. The layout must match the published tile and data sets exactly.
package assets

import (
	"fmt"
	"strings"

	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/pkg/tiling"
)

const (
	datasetRoot  = "TilesHigh/generated/generated"
	baseTileRoot = "TilesHigh/base/base"
	landmarksCSV = "data.csv"
)

// Paths resolves asset locations relative to Root. Root may be a URL prefix
// or a directory; it is joined with a single '/'.
type Paths struct {
	Root string
}

// NewPaths returns Paths rooted at root.
func NewPaths(root string) Paths {
	return Paths{Root: strings.TrimRight(root, "/")}
}

func (p Paths) join(rel string) string {
	if p.Root == "" {
		return rel
	}
	return p.Root + "/" + rel
}

// DatasetCSV is the sample table of d: <root>/TilesHigh/generated/generated/<f>/<f>.csv.
func (p Paths) DatasetCSV(d domain.Dataset) string {
	f := d.Folder()
	return p.join(fmt.Sprintf("%s/%s/%s.csv", datasetRoot, f, f))
}

// PreviewImage is the flat preview image of d, next to its CSV.
func (p Paths) PreviewImage(d domain.Dataset) string {
	f := d.Folder()
	return p.join(fmt.Sprintf("%s/%s/%s.png", datasetRoot, f, f))
}

// SphereTexture is the equirectangular overlay texture wrapped on the globe.
func (p Paths) SphereTexture(d domain.Dataset) string {
	return p.join(fmt.Sprintf("%s/%s.png", datasetRoot, d.Folder()))
}

// OverlayTile is the tile image of d at t. The path uses y = -1 - row.
func (p Paths) OverlayTile(d domain.Dataset, t tiling.TileCoordinate) string {
	return p.join(fmt.Sprintf("%s/%s/%d/%d/%d.png", datasetRoot, d.Folder(), t.Zoom, t.Column, t.URLRow()))
}

// OverlayTemplate is the renderer URL template for d's tiles.
func (p Paths) OverlayTemplate(d domain.Dataset) string {
	return p.join(datasetRoot + "/" + d.Folder() + "/{z}/{x}/{y}.png")
}

// BaseTile is the base layer tile at t.
func (p Paths) BaseTile(t tiling.TileCoordinate) string {
	return p.join(fmt.Sprintf("%s/%d/%d/%d.png", baseTileRoot, t.Zoom, t.Column, t.URLRow()))
}

// BaseTemplate is the renderer URL template for the base layer.
func (p Paths) BaseTemplate() string {
	return p.join(baseTileRoot + "/{z}/{x}/{y}.png")
}

// LandmarksCSV is the headerless lon,lat,name landmark table.
func (p Paths) LandmarksCSV() string {
	return p.join(landmarksCSV)
}

// Catalogue lists every asset of one dataset.
type Catalogue struct {
	Dataset       domain.Dataset `json:"dataset"`
	Folder        string         `json:"folder"`
	CSV           string         `json:"csv"`
	Preview       string         `json:"preview"`
	SphereTexture string         `json:"sphere_texture"`
	TileTemplate  string         `json:"tile_template"`
}

// Catalogue returns the asset catalogue of d.
func (p Paths) Catalogue(d domain.Dataset) Catalogue {
	return Catalogue{
		Dataset:       d,
		Folder:        d.Folder(),
		CSV:           p.DatasetCSV(d),
		Preview:       p.PreviewImage(d),
		SphereTexture: p.SphereTexture(d),
		TileTemplate:  p.OverlayTemplate(d),
	}
}
