package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samirrijal/isstrack/internal/adapters/upstream"
	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/pkg/geospatial"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Errorf("expected a User-Agent header")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenNotify_Fetch(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"message":"success","timestamp":1700000000,"iss_position":{"latitude":"-12.3456","longitude":"179.9000"}}`)

	pos, err := upstream.NewOpenNotify(srv.URL, time.Second).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.Latitude != -12.3456 || pos.Longitude != 179.9 {
		t.Errorf("unexpected coordinates %v,%v", pos.Latitude, pos.Longitude)
	}
	if pos.Timestamp != 1700000000 || !pos.Datetime.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("unexpected time %d %v", pos.Timestamp, pos.Datetime)
	}
	if pos.Datetime.Location() != time.UTC {
		t.Errorf("expected UTC datetime, got %v", pos.Datetime.Location())
	}
}

func TestOpenNotify_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusServiceUnavailable, `oops`, domain.ErrUnexpectedStatus},
		{"not json", http.StatusOK, `<html>`, domain.ErrMalformedPayload},
		{"failure message", http.StatusOK, `{"message":"failure","timestamp":1}`, domain.ErrMalformedPayload},
		{"bad latitude", http.StatusOK, `{"message":"success","timestamp":1,"iss_position":{"latitude":"north","longitude":"1"}}`, domain.ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			_, err := upstream.NewOpenNotify(srv.URL, time.Second).Fetch(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOpenNotify_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := upstream.NewOpenNotify(srv.URL, 50*time.Millisecond).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

const (
	issLine1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
)

func TestSGP4_At(t *testing.T) {
	src, err := upstream.NewSGP4(issLine1, issLine2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t0 := time.Date(2008, 9, 20, 12, 30, 0, 0, time.UTC)
	a, err := src.At(t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := src.At(t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range []*domain.Position{a, b} {
		if p.Latitude < -52 || p.Latitude > 52 {
			t.Errorf("latitude %v outside the orbit's inclination", p.Latitude)
		}
		if p.Longitude < -180 || p.Longitude >= 180 {
			t.Errorf("longitude %v not normalised", p.Longitude)
		}
	}

	kmh, ok := geospatial.GroundSpeedKmh(a.Latitude, a.Longitude, b.Latitude, b.Longitude, b.Timestamp-a.Timestamp)
	if !ok || kmh < 20000 || kmh > 32000 {
		t.Errorf("implausible ground speed %v km/h", kmh)
	}
}

func TestSGP4_FetchUsesClock(t *testing.T) {
	src, err := upstream.NewSGP4(issLine1, issLine2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	at := time.Date(2008, 9, 20, 13, 0, 0, 0, time.UTC)
	pos, err := src.WithClock(func() time.Time { return at }).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.Timestamp != at.Unix() {
		t.Errorf("expected timestamp %d, got %d", at.Unix(), pos.Timestamp)
	}
}

func TestNewSGP4_RejectsShortLines(t *testing.T) {
	if _, err := upstream.NewSGP4("1 25544U", issLine2); err == nil {
		t.Fatal("expected error for truncated TLE")
	}
}
