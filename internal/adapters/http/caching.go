package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses and answers
// conditional requests with 304 using a weak ETag over the body.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		if c.Method() != fiber.MethodGet {
			return nil
		}

		if c.GetRespHeader(fiber.HeaderCacheControl) == "" {
			if ttl := cachePolicy(c.Path()); ttl != "" {
				c.Set(fiber.HeaderCacheControl, ttl)
			}
		}

		if c.Response().StatusCode() != fiber.StatusOK || !etagged(c.Path()) {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		h := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(h[:8]) + `"`
		c.Set(fiber.HeaderETag, etag)

		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}

func cachePolicy(path string) string {
	switch {
	case path == "/metrics", path == "/v1/health", path == "/v1/ready":
		return "no-cache"
	case strings.HasPrefix(path, "/api/"), strings.HasPrefix(path, "/viewer/"):
		// Positions change every poll interval; clients must revalidate.
		return "no-cache"
	case strings.HasPrefix(path, "/docs"):
		return "public, max-age=3600"
	}
	return ""
}

// etagged reports whether responses for path are worth hashing.
func etagged(path string) bool {
	return strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/viewer/")
}
