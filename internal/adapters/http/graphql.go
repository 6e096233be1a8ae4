package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/core/trail"
)

// buildSchema creates the GraphQL schema wired to the tracking service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Position",
		Fields: graphql.Fields{
			"timestamp": &graphql.Field{Type: graphql.Int},
			"datetime":  &graphql.Field{Type: graphql.String},
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
		},
	})

	statusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Status",
		Fields: graphql.Fields{
			"positions_stored": &graphql.Field{Type: graphql.Int},
			"max_positions":    &graphql.Field{Type: graphql.Int},
			"update_interval":  &graphql.Field{Type: graphql.Int},
			"last_update":      &graphql.Field{Type: graphql.String},
		},
	})

	segmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Segment",
		Fields: graphql.Fields{
			"rank":    &graphql.Field{Type: graphql.Int},
			"current": &graphql.Field{Type: graphql.Boolean},
			"color":   &graphql.Field{Type: graphql.String},
			"opacity": &graphql.Field{Type: graphql.Float},
			"points":  &graphql.Field{Type: graphql.NewList(geoPointType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"positions": &graphql.Field{
				Type:        graphql.NewList(positionType),
				Description: "Stored positions, oldest first; limit keeps the newest N",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit := p.Args["limit"].(int)
					positions := deps.Tracker.Positions(limit)
					out := make([]map[string]interface{}, len(positions))
					for i, pos := range positions {
						out[i] = positionMap(pos)
					}
					return out, nil
				},
			},
			"latest": &graphql.Field{
				Type:        positionType,
				Description: "Newest position, null before the first fix",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pos := deps.Tracker.Latest(p.Context)
					if pos == nil {
						return nil, nil
					}
					return positionMap(*pos), nil
				},
			},
			"status": &graphql.Field{
				Type:        statusType,
				Description: "Tracker buffer and poll settings",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					st := deps.Tracker.Status()
					m := map[string]interface{}{
						"positions_stored": st.PositionsStored,
						"max_positions":    st.MaxPositions,
						"update_interval":  st.UpdateInterval,
					}
					if st.LastUpdate != nil {
						m["last_update"] = st.LastUpdate.Format(time.RFC3339)
					}
					return m, nil
				},
			},
			"trail": &graphql.Field{
				Type:        graphql.NewList(segmentType),
				Description: "Stored history split at the antimeridian, oldest first",
				Args: graphql.FieldConfigArgument{
					"segments": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: trail.DefaultMaxSegments},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					n := min(max(p.Args["segments"].(int), 0), maxTrailSegments)
					styled := deps.Tracker.Trail(n).Styled()
					out := make([]map[string]interface{}, len(styled))
					for i, s := range styled {
						out[i] = map[string]interface{}{
							"rank":    s.Rank,
							"current": s.Current,
							"color":   s.Style.Color,
							"opacity": s.Style.Opacity,
							"points":  []domain.GeoPoint(s.Points),
						}
					}
					return out, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func positionMap(p domain.Position) map[string]interface{} {
	return map[string]interface{}{
		"timestamp": p.Timestamp,
		"datetime":  p.Datetime.Format(time.RFC3339),
		"latitude":  p.Latitude,
		"longitude": p.Longitude,
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
		if err := c.BodyParser(&req); err != nil || req.Query == "" {
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
