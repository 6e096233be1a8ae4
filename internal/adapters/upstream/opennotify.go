// Package upstream implements position sources the tracker polls.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/pkg/telemetry"
)

// DefaultOpenNotifyURL is the public ISS position endpoint.
const DefaultOpenNotifyURL = "http://api.open-notify.org/iss-now.json"

const userAgent = "isstrack/1.0"

// OpenNotify fetches the current position from the Open Notify API.
type OpenNotify struct {
	url    string
	client *http.Client
}

// NewOpenNotify creates a source reading from url with the given request timeout.
func NewOpenNotify(url string, timeout time.Duration) *OpenNotify {
	if url == "" {
		url = DefaultOpenNotifyURL
	}
	return &OpenNotify{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type openNotifyResponse struct {
	Message     string             `json:"message"`
	Timestamp   int64              `json:"timestamp"`
	ISSPosition openNotifyPosition `json:"iss_position"`
}

// Coordinates arrive as decimal strings.
type openNotifyPosition struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// Fetch implements ports.PositionSource.
func (o *OpenNotify) Fetch(ctx context.Context) (*domain.Position, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanUpstreamFetch)
	defer span.End()
	span.SetAttributes(attribute.String("source", "opennotify"))

	pos, err := o.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return pos, nil
}

func (o *OpenNotify) fetch(ctx context.Context) (*domain.Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", o.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d for %s", domain.ErrUnexpectedStatus, resp.StatusCode, o.url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var payload openNotifyResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if payload.Message != "success" {
		return nil, fmt.Errorf("%w: message %q", domain.ErrMalformedPayload, payload.Message)
	}

	lat, err := strconv.ParseFloat(payload.ISSPosition.Latitude, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: latitude %q", domain.ErrMalformedPayload, payload.ISSPosition.Latitude)
	}
	lon, err := strconv.ParseFloat(payload.ISSPosition.Longitude, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: longitude %q", domain.ErrMalformedPayload, payload.ISSPosition.Longitude)
	}

	pos := domain.NewPosition(payload.Timestamp, lat, lon)
	return &pos, nil
}
