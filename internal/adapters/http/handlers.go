package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/core/trail"
)

// maxPageSize caps ?limit on /api/positions.
const maxPageSize = 1000

// maxTrailSegments caps ?segments on /api/trail.
const maxTrailSegments = 64

// PositionsResponse is the body of GET /api/positions.
type PositionsResponse struct {
	Count      int               `json:"count"`
	LastUpdate *time.Time        `json:"last_update"`
	Positions  []domain.Position `json:"positions"`
}

// LatestResponse is the body of GET /api/latest.
type LatestResponse struct {
	LastUpdate *time.Time       `json:"last_update"`
	Position   *domain.Position `json:"position"`
}

// PositionsHandler returns the stored history, oldest first. With offset or
// limit query parameters the history is paged and Link headers are set.
func PositionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		positions := deps.Tracker.Positions(0)

		pg, paged, err := parsePagination(c, maxPageSize)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if paged {
			positions = page(positions, &pg)
			SetLinkHeaders(c, pg)
		}

		return c.JSON(PositionsResponse{
			Count:      len(positions),
			LastUpdate: deps.Tracker.Status().LastUpdate,
			Positions:  positions,
		})
	}
}

// LatestHandler returns the newest position, or null when none is known.
func LatestHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pos := deps.Tracker.Latest(c.UserContext())
		resp := LatestResponse{Position: pos}
		if pos != nil {
			t := pos.Datetime
			resp.LastUpdate = &t
		}
		return c.JSON(resp)
	}
}

// StatusHandler reports buffer usage and poll settings.
func StatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Tracker.Status())
	}
}

// TrailHandler renders the stored history as antimeridian-split GeoJSON.
func TrailHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		segments := c.QueryInt("segments", trail.DefaultMaxSegments)
		if segments < 0 || segments > maxTrailSegments {
			return errBadRequest(c, "segments must be between 0 and 64")
		}

		t := deps.Tracker.Trail(segments)
		fc := t.FeatureCollection()
		if pos := deps.Tracker.Latest(c.UserContext()); pos != nil {
			fc.Append(trail.MarkerFeature(*pos))
		}

		data, err := fc.MarshalJSON()
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}
