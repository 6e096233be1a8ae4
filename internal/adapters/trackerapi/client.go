// Package trackerapi is the viewer's HTTP client for the tracker backend.
package trackerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/pkg/telemetry"
)

// maxBody caps response bodies; a full 15000-point history is well under it.
const maxBody = 8 << 20

// Client implements ports.TrackerClient.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the tracker rooted at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type positionsResponse struct {
	Count      int               `json:"count"`
	LastUpdate *time.Time        `json:"last_update"`
	Positions  []domain.Position `json:"positions"`
}

type latestResponse struct {
	LastUpdate *time.Time       `json:"last_update"`
	Position   *domain.Position `json:"position"`
}

// Positions fetches the full stored history, oldest first.
func (c *Client) Positions(ctx context.Context) ([]domain.Position, error) {
	var resp positionsResponse
	if err := c.get(ctx, "/api/positions", &resp); err != nil {
		return nil, err
	}
	if resp.Positions == nil {
		return nil, fmt.Errorf("%w: missing positions array", domain.ErrMalformedPayload)
	}
	for i := range resp.Positions {
		fillDatetime(&resp.Positions[i])
	}
	return resp.Positions, nil
}

// Latest fetches the newest position. A null position yields (nil, nil).
func (c *Client) Latest(ctx context.Context) (*domain.Position, error) {
	var resp latestResponse
	if err := c.get(ctx, "/api/latest", &resp); err != nil {
		return nil, err
	}
	if resp.Position != nil {
		fillDatetime(resp.Position)
	}
	return resp.Position, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanAPIRequest)
	defer span.End()
	span.SetAttributes(attribute.String("http.route", path))

	err := c.do(ctx, path, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) do(ctx context.Context, path string, out any) error {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: HTTP %d for %s", domain.ErrUnexpectedStatus, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedPayload, path, err)
	}
	return nil
}

func fillDatetime(p *domain.Position) {
	if p.Datetime.IsZero() && p.Timestamp != 0 {
		p.Datetime = time.Unix(p.Timestamp, 0).UTC()
	}
}
