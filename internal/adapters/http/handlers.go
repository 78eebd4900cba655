package http

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/core/usecases"
	"github.com/samirrijal/selene/internal/pkg/assets"
	"github.com/samirrijal/selene/internal/pkg/sphere"
	"github.com/samirrijal/selene/internal/pkg/tiling"
)

// DatasetInfo describes one selectable overlay.
type DatasetInfo struct {
	Name   domain.Dataset   `json:"name"`
	Folder string           `json:"folder"`
	Active bool             `json:"active"`
	Rows   *int             `json:"rows,omitempty"`
	Assets assets.Catalogue `json:"assets"`
}

// RowDTO is a dataset row on the wire; unusable cells are null.
type RowDTO struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Value     *float64 `json:"value"`
}

// ReadoutResponse is a readout together with its display strings.
type ReadoutResponse struct {
	domain.Readout
	Display usecases.Display `json:"display"`
}

// TileResponse resolves one tile of a layer to its image.
type TileResponse struct {
	Layer     string                `json:"layer"`
	Tile      tiling.TileCoordinate `json:"tile"`
	URLRow    int                   `json:"url_y"`
	URL       string                `json:"url"`
	Bounds    domain.Bounds         `json:"bounds"`
	Footprint *geojson.Geometry     `json:"footprint"`
}

func toReadoutResponse(r domain.Readout) ReadoutResponse {
	return ReadoutResponse{Readout: r, Display: usecases.FormatReadout(r)}
}

func finitePtr(v float64) *float64 {
	if !domain.Finite(v) {
		return nil
	}
	return &v
}

func toRowDTOs(rows []domain.DatasetRow) []RowDTO {
	out := make([]RowDTO, len(rows))
	for i, r := range rows {
		out[i] = RowDTO{Latitude: finitePtr(r.Lat), Longitude: finitePtr(r.Lon)}
		if r.Value != nil {
			out[i].Value = finitePtr(*r.Value)
		}
	}
	return out
}

// datasetParam parses the :name route parameter. "Mg#_Si" arrives escaped.
func datasetParam(c *fiber.Ctx) (domain.Dataset, error) {
	raw, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return domain.NoDataset, domain.ErrUnknownDataset
	}
	ds, err := domain.ParseDataset(raw)
	if err != nil {
		return domain.NoDataset, err
	}
	if ds.IsNone() {
		return domain.NoDataset, domain.ErrUnknownDataset
	}
	return ds, nil
}

// ListDatasetsHandler returns every overlay with its assets and, when a
// store is configured, its imported row count.
func ListDatasetsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var counts map[domain.Dataset]int
		if deps.Datasets != nil {
			var err error
			counts, err = deps.Datasets.Counts(c.UserContext())
			if err != nil {
				LoggerFromCtx(c.UserContext()).Warn("dataset counts", "error", err)
			}
		}

		active := deps.Selection.Selection().Dataset
		out := make([]DatasetInfo, 0, len(domain.Datasets))
		for _, ds := range domain.Datasets {
			info := DatasetInfo{
				Name:   ds,
				Folder: ds.Folder(),
				Active: ds == active,
				Assets: deps.Paths.Catalogue(ds),
			}
			if n, ok := counts[ds]; ok {
				info.Rows = &n
			}
			out = append(out, info)
		}

		return c.JSON(fiber.Map{
			"data":          out,
			"base_template": deps.Paths.BaseTemplate(),
			"landmarks_csv": deps.Paths.LandmarksCSV(),
		})
	}
}

// DatasetAssetsHandler returns the asset catalogue of one dataset.
func DatasetAssetsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ds, err := datasetParam(c)
		if err != nil {
			return errNotFound(c, "unknown dataset")
		}
		return c.JSON(deps.Paths.Catalogue(ds))
	}
}

// DatasetRowsHandler pages through the rows of one dataset.
func DatasetRowsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ds, err := datasetParam(c)
		if err != nil {
			return errNotFound(c, "unknown dataset")
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 1000 {
			limit = 100
		}

		var rows []domain.DatasetRow
		var total int
		switch {
		case deps.Datasets != nil:
			rows, total, err = deps.Datasets.ListRows(c.UserContext(), ds, limit, offset)
			if err != nil {
				return errInternal(c, err.Error())
			}
		case deps.Source != nil:
			all, err := deps.Source.Fetch(c.UserContext(), ds)
			if err != nil {
				return errUnavailable(c, err.Error())
			}
			total = len(all)
			if offset < total {
				end := offset + limit
				if end > total {
					end = total
				}
				rows = all[offset:end]
			}
		default:
			return errUnavailable(c, "no dataset source configured")
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: toRowDTOs(rows), Pagination: pg})
	}
}

// TileHandler resolves a renderer tile coordinate of the base layer or a
// dataset overlay to its image path. ?redirect=true answers with a 302.
func TileHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		z, errZ := strconv.Atoi(c.Params("z"))
		x, errX := strconv.Atoi(c.Params("x"))
		row, errR := strconv.Atoi(c.Params("row"))
		if errZ != nil || errX != nil || errR != nil {
			return errBadRequest(c, "z, x and row must be integers")
		}
		t := tiling.TileCoordinate{Zoom: z, Column: x, Row: row}

		grid := deps.Selection.Grid()
		if !grid.Covers(t) {
			return errNotFound(c, "tile "+t.String()+" is outside the grid")
		}
		rect, _ := grid.TileBounds(t)

		layer, err := url.PathUnescape(c.Params("layer"))
		if err != nil {
			return errBadRequest(c, "invalid layer")
		}
		var src string
		if layer == "base" {
			src = deps.Paths.BaseTile(t)
		} else {
			ds, err := domain.ParseDataset(layer)
			if err != nil || ds.IsNone() {
				return errNotFound(c, "unknown layer")
			}
			layer = string(ds)
			src = deps.Paths.OverlayTile(ds, t)
		}

		if c.QueryBool("redirect", false) {
			return c.Redirect(src, fiber.StatusFound)
		}

		b := tiling.GeoBounds(rect)
		footprint := orb.Bound{
			Min: orb.Point{b.MinLon, b.MinLat},
			Max: orb.Point{b.MaxLon, b.MaxLat},
		}
		return c.JSON(TileResponse{
			Layer:     layer,
			Tile:      t,
			URLRow:    t.URLRow(),
			URL:       src,
			Bounds:    b,
			Footprint: geojson.NewGeometry(footprint.ToPolygon()),
		})
	}
}

// GetSelectionHandler returns selection, composition and readout.
func GetSelectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := deps.Selection.Snapshot()
		return c.JSON(fiber.Map{
			"selection":   st.Selection,
			"composition": st.Composition,
			"readout":     toReadoutResponse(st.Readout),
		})
	}
}

// SelectDatasetHandler selects a dataset. A null, empty or "none" dataset
// returns to the base layer only.
func SelectDatasetHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Dataset *string `json:"dataset"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		name := ""
		if req.Dataset != nil {
			name = *req.Dataset
		}
		ds, err := domain.ParseDataset(name)
		if err != nil {
			return errBadRequest(c, err.Error()+": "+name)
		}

		sel := deps.Selection.Select(c.UserContext(), ds)
		return c.JSON(fiber.Map{
			"selection":   sel,
			"composition": usecases.Compose(sel.Dataset, sel.Opacity),
		})
	}
}

// SetOpacityHandler moves the opacity slider.
func SetOpacityHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Opacity *float64 `json:"opacity"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil || req.Opacity == nil {
			return errBadRequest(c, domain.ErrInvalidOpacity.Error())
		}
		comp, err := deps.Selection.SetOpacity(c.UserContext(), *req.Opacity)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(comp)
	}
}

// SetViewModeHandler switches between the flat map and the globe.
func SetViewModeHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		ViewMode string `json:"view_mode"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		mode, err := domain.ParseViewMode(req.ViewMode)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		sel, err := deps.Selection.SetViewMode(c.UserContext(), mode)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(sel)
	}
}

// GetCompositionHandler returns the current layer opacities.
func GetCompositionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Selection.Composition())
	}
}

// GetReadoutHandler returns the last resolved pointer state.
func GetReadoutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(toReadoutResponse(deps.Selection.Snapshot().Readout))
	}
}

// GetValueHandler returns only the current value. Superseded by /v1/readout.
func GetValueHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if v, ok := deps.Selection.CurrentValue(); ok {
			return c.JSON(fiber.Map{"value": v})
		}
		return c.JSON(fiber.Map{"value": nil})
	}
}

// ResolveGeoHandler resolves a geographic coordinate.
func ResolveGeoHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil || req.Lat == nil || req.Lon == nil {
			return errBadRequest(c, "lat and lon are required")
		}
		r := deps.Selection.ResolveGeo(c.UserContext(), *req.Lat, *req.Lon)
		return c.JSON(toReadoutResponse(r))
	}
}

// ResolveMapHandler resolves a pointer position on the flat map in world units.
func ResolveMapHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil || req.X == nil || req.Y == nil {
			return errBadRequest(c, "x and y are required")
		}
		r := deps.Selection.ResolveMap(c.UserContext(), tiling.Point{X: *req.X, Y: *req.Y})
		return c.JSON(toReadoutResponse(r))
	}
}

// ResolveTileHandler resolves a pixel inside a map tile.
func ResolveTileHandler(deps *Dependencies) fiber.Handler {
	type request struct {
		Tile tiling.TileCoordinate `json:"tile"`
		PX   float64               `json:"px"`
		PY   float64               `json:"py"`
	}
	return func(c *fiber.Ctx) error {
		var req request
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.PX < 0 || req.PX > tiling.TileSize || req.PY < 0 || req.PY > tiling.TileSize {
			return errBadRequest(c, "px and py must be within the tile")
		}
		r, err := deps.Selection.ResolveTilePixel(c.UserContext(), req.Tile, req.PX, req.PY)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(toReadoutResponse(r))
	}
}

// ResolveSphereHandler resolves a pointer ray cast at the globe.
func ResolveSphereHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ray sphere.Ray
		if err := c.BodyParser(&ray); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		r := deps.Selection.ResolveSphere(c.UserContext(), ray)
		return c.JSON(toReadoutResponse(r))
	}
}

// ListLandmarksHandler returns the gazetteer.
func ListLandmarksHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		g := deps.Selection.Gazetteer()
		return c.JSON(fiber.Map{
			"radius_km": g.RadiusKm(),
			"data":      g.Landmarks(),
		})
	}
}

// LandmarksGeoJSONHandler returns the gazetteer as a GeoJSON marker layer.
func LandmarksGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fc := geojson.NewFeatureCollection()
		for _, l := range deps.Selection.Gazetteer().Landmarks() {
			f := geojson.NewFeature(orb.Point{l.Lon, l.Lat})
			f.Properties["name"] = l.Name
			fc.Append(f)
		}
		data, err := fc.MarshalJSON()
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}
