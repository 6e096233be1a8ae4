package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/isstrack/internal/core/domain"
)

// SceneHandler returns the map view and GeoJSON features to draw.
func SceneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Viewer.Scene())
	}
}

// ViewerStatusHandler returns the status panel.
func ViewerStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Viewer.Status())
	}
}

// ResetViewHandler recenters the map.
func ResetViewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Viewer.ResetView())
	}
}

// ToggleTerrainHandler flips the base tile layer.
func ToggleTerrainHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Viewer.ToggleTerrain())
	}
}

// ZoomHandler records the client's zoom level from ?z=.
func ZoomHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("z")
		if raw == "" {
			return errBadRequest(c, "missing required query parameter: z")
		}
		z, err := strconv.Atoi(raw)
		if err != nil {
			return errBadRequest(c, "z must be an integer")
		}

		view, err := deps.Viewer.SetZoom(z)
		if errors.Is(err, domain.ErrInvalidInput) {
			return errBadRequest(c, err.Error())
		}
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(view)
	}
}
