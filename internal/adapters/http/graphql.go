package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/imanolz/gravelpass/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services. The catalog
// is read-only over GraphQL; mutations go through the REST endpoints.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"north": &graphql.Field{Type: graphql.Float},
			"south": &graphql.Field{Type: graphql.Float},
			"east":  &graphql.Field{Type: graphql.Float},
			"west":  &graphql.Field{Type: graphql.Float},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TrackStats",
		Fields: graphql.Fields{
			"total_points":           &graphql.Field{Type: graphql.Int},
			"total_distance_km":      &graphql.Field{Type: graphql.Float},
			"total_elevation_gain_m": &graphql.Field{Type: graphql.Float},
			"total_elevation_loss_m": &graphql.Field{Type: graphql.Float},
		},
	})

	attrsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Attributes",
		Fields: graphql.Fields{
			"difficulty": &graphql.Field{Type: graphql.Int},
			"surfaces":   &graphql.Field{Type: graphql.NewList(graphql.String)},
			"tire_dry":   &graphql.Field{Type: graphql.String},
			"tire_wet":   &graphql.Field{Type: graphql.String},
		},
	})

	trackType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Track",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"name":   &graphql.Field{Type: graphql.String},
			"stats":  &graphql.Field{Type: statsType},
			"bounds": &graphql.Field{Type: boundsType},
		},
	})

	segmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Segment",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"track_id": &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"bounds":   &graphql.Field{Type: boundsType},
			"attrs": &graphql.Field{
				Type: attrsType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					seg, ok := p.Source.(domain.Segment)
					if !ok {
						if sp, ok := p.Source.(*domain.Segment); ok {
							seg = *sp
						} else {
							return nil, nil
						}
					}
					return attrsMap(seg.Attrs.DifficultyLevel, seg.Attrs.Surfaces,
						seg.Attrs.TireDry, seg.Attrs.TireWet), nil
				},
			},
		},
	})

	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Position",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.String},
			"name": &graphql.Field{Type: graphql.String},
			"bounds": &graphql.Field{
				Type: boundsType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if rt := routeSource(p.Source); rt != nil {
						return rt.Composite.Bounds, nil
					}
					return nil, nil
				},
			},
			"barycenter": &graphql.Field{
				Type: positionType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if rt := routeSource(p.Source); rt != nil {
						return rt.Composite.Barycenter, nil
					}
					return nil, nil
				},
			},
			"attrs": &graphql.Field{
				Type: attrsType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if rt := routeSource(p.Source); rt != nil {
						return attrsMap(rt.Attrs.DifficultyLevel, rt.Attrs.Surfaces,
							rt.Attrs.TireDry, rt.Attrs.TireWet), nil
					}
					return nil, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"tracks": &graphql.Field{
				Type:        graphql.NewList(trackType),
				Description: "List tracks, newest first",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit := p.Args["limit"].(int)
					offset := p.Args["offset"].(int)
					return deps.Tracks.List(p.Context, limit, offset)
				},
			},
			"track": &graphql.Field{
				Type:        trackType,
				Description: "Get a track by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Tracks.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"segment": &graphql.Field{
				Type:        segmentType,
				Description: "Get a segment by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Segments.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"segmentsNearby": &graphql.Field{
				Type:        graphql.NewList(segmentType),
				Description: "Find segments near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Segments.FindNearby(p.Context, lat, lon, radius, limit)
				},
			},
			"routes": &graphql.Field{
				Type:        graphql.NewList(routeType),
				Description: "List routes, newest first",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit := p.Args["limit"].(int)
					offset := p.Args["offset"].(int)
					return deps.Routes.List(p.Context, limit, offset)
				},
			},
			"route": &graphql.Field{
				Type:        routeType,
				Description: "Get a route by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Routes.GetByID(p.Context, p.Args["id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func routeSource(src interface{}) *domain.Route {
	switch v := src.(type) {
	case *domain.Route:
		return v
	case domain.Route:
		return &v
	default:
		return nil
	}
}

func attrsMap(difficulty int, surfaces domain.SurfaceSet, dry, wet domain.TireRank) map[string]interface{} {
	return map[string]interface{}{
		"difficulty": difficulty,
		"surfaces":   surfaces.Sorted(),
		"tire_dry":   dry.String(),
		"tire_wet":   wet.String(),
	}
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
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
