package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// parsePagination reads offset/limit. ok is false when neither is present.
func parsePagination(c *fiber.Ctx, maxLimit int) (p Pagination, ok bool, err error) {
	rawOffset, rawLimit := c.Query("offset"), c.Query("limit")
	if rawOffset == "" && rawLimit == "" {
		return Pagination{}, false, nil
	}

	p.Limit = maxLimit
	if rawLimit != "" {
		if p.Limit, err = strconv.Atoi(rawLimit); err != nil || p.Limit <= 0 {
			return Pagination{}, true, fmt.Errorf("limit must be a positive integer")
		}
		p.Limit = min(p.Limit, maxLimit)
	}
	if rawOffset != "" {
		if p.Offset, err = strconv.Atoi(rawOffset); err != nil || p.Offset < 0 {
			return Pagination{}, true, fmt.Errorf("offset must be a non-negative integer")
		}
	}
	return p, true, nil
}

// page returns the window of items selected by p, setting p.Total.
func page[T any](items []T, p *Pagination) []T {
	p.Total = len(items)
	if p.Offset >= len(items) {
		return []T{}
	}
	end := min(p.Offset+p.Limit, len(items))
	return items[p.Offset:end]
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses.
// It uses the current request path and query parameters.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	var links []string

	// first
	links = append(links, fmt.Sprintf(`<%s?offset=0&limit=%d>; rel="first"`, base, p.Limit))

	// prev
	if p.Offset > 0 {
		prev := max(p.Offset-p.Limit, 0)
		links = append(links, fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="prev"`, base, prev, p.Limit))
	}

	// next
	if p.Offset+p.Limit < p.Total {
		links = append(links, fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="next"`, base, p.Offset+p.Limit, p.Limit))
	}

	// last
	lastOffset := max(p.Total-p.Limit, 0)
	links = append(links, fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="last"`, base, lastOffset, p.Limit))

	c.Set("Link", strings.Join(links, ", "))
	c.Set("X-Total-Count", strconv.Itoa(p.Total))
}
