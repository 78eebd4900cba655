package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/selene/internal/core/domain"
	"github.com/samirrijal/selene/internal/core/usecases"
	"github.com/samirrijal/selene/internal/pkg/sphere"
	"github.com/samirrijal/selene/internal/pkg/tiling"
)

// The schema resolves against plain maps so embedded domain structs need no
// per-field resolvers.

func gqlSelection(s domain.Selection) map[string]any {
	return map[string]any{
		"dataset":    string(s.Dataset),
		"view_mode":  string(s.ViewMode),
		"opacity":    s.Opacity,
		"phase":      string(s.Phase),
		"token":      int(s.Token),
		"rows":       s.Rows,
		"last_error": s.LastError,
	}
}

func gqlLayer(l domain.LayerOpacity) map[string]any {
	return map[string]any{
		"base":            l.Base,
		"overlay":         l.Overlay,
		"base_visible":    l.BaseVisible,
		"overlay_visible": l.OverlayVisible,
	}
}

func gqlComposition(c domain.Composition) map[string]any {
	sph := gqlLayer(c.Sphere.LayerOpacity)
	sph["mode"] = string(c.Sphere.Mode)
	sph["image_texture"] = c.Sphere.ImageTexture
	return map[string]any{
		"dataset": string(c.Dataset),
		"slider":  c.Slider,
		"map":     gqlLayer(c.Map),
		"sphere":  sph,
	}
}

func gqlLandmark(l domain.Landmark) map[string]any {
	return map[string]any{"name": l.Name, "latitude": l.Lat, "longitude": l.Lon}
}

func gqlReadout(r domain.Readout) map[string]any {
	d := usecases.FormatReadout(r)
	out := map[string]any{
		"coordinate": nil,
		"value":      nil,
		"landmark":   nil,
		"surface":    string(r.Surface),
		"display": map[string]any{
			"coordinate": d.Coordinate,
			"value":      d.Value,
			"landmark":   d.Landmark,
		},
	}
	if r.Coordinate.Valid {
		out["coordinate"] = map[string]any{"lat": r.Coordinate.Lat, "lon": r.Coordinate.Lon}
	}
	if r.Value != nil {
		out["value"] = *r.Value
	}
	if r.Landmark != nil {
		out["landmark"] = gqlLandmark(*r.Landmark)
	}
	return out
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	svc := deps.Selection

	geoType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoCoordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	landmarkType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Landmark",
		Fields: graphql.Fields{
			"name":      &graphql.Field{Type: graphql.String},
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
		},
	})

	assetsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DatasetAssets",
		Fields: graphql.Fields{
			"csv":            &graphql.Field{Type: graphql.String},
			"preview":        &graphql.Field{Type: graphql.String},
			"sphere_texture": &graphql.Field{Type: graphql.String},
			"tile_template":  &graphql.Field{Type: graphql.String},
		},
	})

	datasetType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Dataset",
		Fields: graphql.Fields{
			"name":   &graphql.Field{Type: graphql.String},
			"folder": &graphql.Field{Type: graphql.String},
			"active": &graphql.Field{Type: graphql.Boolean},
			"assets": &graphql.Field{Type: assetsType},
		},
	})

	selectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Selection",
		Fields: graphql.Fields{
			"dataset":    &graphql.Field{Type: graphql.String},
			"view_mode":  &graphql.Field{Type: graphql.String},
			"opacity":    &graphql.Field{Type: graphql.Float},
			"phase":      &graphql.Field{Type: graphql.String},
			"token":      &graphql.Field{Type: graphql.Int},
			"rows":       &graphql.Field{Type: graphql.Int},
			"last_error": &graphql.Field{Type: graphql.String},
		},
	})

	layerFields := func() graphql.Fields {
		return graphql.Fields{
			"base":            &graphql.Field{Type: graphql.Float},
			"overlay":         &graphql.Field{Type: graphql.Float},
			"base_visible":    &graphql.Field{Type: graphql.Boolean},
			"overlay_visible": &graphql.Field{Type: graphql.Boolean},
		}
	}
	layerType := graphql.NewObject(graphql.ObjectConfig{Name: "LayerOpacity", Fields: layerFields()})
	sphereFields := layerFields()
	sphereFields["mode"] = &graphql.Field{Type: graphql.String}
	sphereFields["image_texture"] = &graphql.Field{Type: graphql.Boolean}
	sphereType := graphql.NewObject(graphql.ObjectConfig{Name: "SphereComposition", Fields: sphereFields})

	compositionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Composition",
		Fields: graphql.Fields{
			"dataset": &graphql.Field{Type: graphql.String},
			"slider":  &graphql.Field{Type: graphql.Float},
			"map":     &graphql.Field{Type: layerType},
			"sphere":  &graphql.Field{Type: sphereType},
		},
	})

	displayType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Display",
		Fields: graphql.Fields{
			"coordinate": &graphql.Field{Type: graphql.String},
			"value":      &graphql.Field{Type: graphql.String},
			"landmark":   &graphql.Field{Type: graphql.String},
		},
	})

	readoutType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Readout",
		Fields: graphql.Fields{
			"coordinate": &graphql.Field{Type: geoType},
			"value":      &graphql.Field{Type: graphql.Float},
			"landmark":   &graphql.Field{Type: landmarkType},
			"surface":    &graphql.Field{Type: graphql.String},
			"display":    &graphql.Field{Type: displayType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"datasets": &graphql.Field{
				Type:        graphql.NewList(datasetType),
				Description: "List the selectable overlays",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					active := svc.Selection().Dataset
					out := make([]map[string]any, 0, len(domain.Datasets))
					for _, ds := range domain.Datasets {
						cat := deps.Paths.Catalogue(ds)
						out = append(out, map[string]any{
							"name":   string(ds),
							"folder": cat.Folder,
							"active": ds == active,
							"assets": map[string]any{
								"csv":            cat.CSV,
								"preview":        cat.Preview,
								"sphere_texture": cat.SphereTexture,
								"tile_template":  cat.TileTemplate,
							},
						})
					}
					return out, nil
				},
			},
			"selection": &graphql.Field{
				Type: selectionType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return gqlSelection(svc.Selection()), nil
				},
			},
			"composition": &graphql.Field{
				Type: compositionType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return gqlComposition(svc.Composition()), nil
				},
			},
			"readout": &graphql.Field{
				Type:        readoutType,
				Description: "The last resolved pointer state",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return gqlReadout(svc.Snapshot().Readout), nil
				},
			},
			"landmarks": &graphql.Field{
				Type: graphql.NewList(landmarkType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lms := svc.Gazetteer().Landmarks()
					out := make([]map[string]any, len(lms))
					for i, l := range lms {
						out[i] = gqlLandmark(l)
					}
					return out, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"selectDataset": &graphql.Field{
				Type:        selectionType,
				Description: "Select an overlay; null or \"none\" shows the base layer only",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name, _ := p.Args["name"].(string)
					ds, err := domain.ParseDataset(name)
					if err != nil {
						return nil, err
					}
					return gqlSelection(svc.Select(p.Context, ds)), nil
				},
			},
			"setOpacity": &graphql.Field{
				Type: compositionType,
				Args: graphql.FieldConfigArgument{
					"value": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					comp, err := svc.SetOpacity(p.Context, p.Args["value"].(float64))
					if err != nil {
						return nil, err
					}
					return gqlComposition(comp), nil
				},
			},
			"setViewMode": &graphql.Field{
				Type: selectionType,
				Args: graphql.FieldConfigArgument{
					"mode": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					mode, err := domain.ParseViewMode(p.Args["mode"].(string))
					if err != nil {
						return nil, err
					}
					sel, err := svc.SetViewMode(p.Context, mode)
					if err != nil {
						return nil, err
					}
					return gqlSelection(sel), nil
				},
			},
			"resolveGeo": &graphql.Field{
				Type: readoutType,
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					r := svc.ResolveGeo(p.Context, p.Args["lat"].(float64), p.Args["lon"].(float64))
					return gqlReadout(r), nil
				},
			},
			"resolveMap": &graphql.Field{
				Type:        readoutType,
				Description: "Resolve a flat-map pointer position in world units",
				Args: graphql.FieldConfigArgument{
					"x": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"y": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pt := tiling.Point{X: p.Args["x"].(float64), Y: p.Args["y"].(float64)}
					return gqlReadout(svc.ResolveMap(p.Context, pt)), nil
				},
			},
			"resolveSphere": &graphql.Field{
				Type:        readoutType,
				Description: "Resolve a pointer ray cast at the globe",
				Args: graphql.FieldConfigArgument{
					"ox": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"oy": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"oz": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"dx": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"dy": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"dz": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					f := func(k string) float64 { return p.Args[k].(float64) }
					ray := sphere.Ray{
						Origin:    sphere.Vec3{X: f("ox"), Y: f("oy"), Z: f("oz")},
						Direction: sphere.Vec3{X: f("dx"), Y: f("dy"), Z: f("dz")},
					}
					return gqlReadout(svc.ResolveSphere(p.Context, ray)), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
