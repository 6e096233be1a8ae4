package trackerapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samirrijal/isstrack/internal/adapters/trackerapi"
	"github.com/samirrijal/isstrack/internal/core/domain"
)

func newServer(t *testing.T, routes map[string]func(w http.ResponseWriter)) *trackerapi.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w)
	}))
	t.Cleanup(srv.Close)
	return trackerapi.New(srv.URL+"/", time.Second)
}

func body(status int, s string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(s))
	}
}

func TestClient_Positions(t *testing.T) {
	c := newServer(t, map[string]func(http.ResponseWriter){
		"/api/positions": body(http.StatusOK, `{"count":2,"last_update":"2023-11-14T22:14:20Z","positions":[
			{"timestamp":1700000000,"datetime":"2023-11-14T22:13:20Z","latitude":1.5,"longitude":170},
			{"timestamp":1700000060,"latitude":2.5,"longitude":-170}]}`),
	})

	got, err := c.Positions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(got))
	}
	if got[1].Longitude != -170 || got[0].Latitude != 1.5 {
		t.Errorf("unexpected positions %+v", got)
	}
	if !got[1].Datetime.Equal(time.Unix(1700000060, 0)) {
		t.Errorf("expected datetime derived from timestamp, got %v", got[1].Datetime)
	}
}

func TestClient_LatestNull(t *testing.T) {
	c := newServer(t, map[string]func(http.ResponseWriter){
		"/api/latest": body(http.StatusOK, `{"last_update":null,"position":null}`),
	})

	got, err := c.Latest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil position, got %+v", got)
	}
}

func TestClient_Latest(t *testing.T) {
	c := newServer(t, map[string]func(http.ResponseWriter){
		"/api/latest": body(http.StatusOK, `{"last_update":"2023-11-14T22:13:20Z","position":{"timestamp":1700000000,"datetime":"2023-11-14T22:13:20Z","latitude":-3,"longitude":4}}`),
	})

	got, err := c.Latest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Latitude != -3 || got.Longitude != 4 {
		t.Errorf("unexpected position %+v", got)
	}
}

func TestClient_Errors(t *testing.T) {
	c := newServer(t, map[string]func(http.ResponseWriter){
		"/api/positions": body(http.StatusInternalServerError, `{"error":"boom"}`),
		"/api/latest":    body(http.StatusOK, `{"position":`),
	})

	if _, err := c.Positions(context.Background()); !errors.Is(err, domain.ErrUnexpectedStatus) {
		t.Errorf("expected ErrUnexpectedStatus, got %v", err)
	}
	if _, err := c.Latest(context.Background()); !errors.Is(err, domain.ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestClient_MissingPositionsArray(t *testing.T) {
	c := newServer(t, map[string]func(http.ResponseWriter){
		"/api/positions": body(http.StatusOK, `{"count":0}`),
	})
	if _, err := c.Positions(context.Background()); !errors.Is(err, domain.ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestClient_Unreachable(t *testing.T) {
	c := trackerapi.New("http://127.0.0.1:1", 200*time.Millisecond)
	if _, err := c.Latest(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}
}
