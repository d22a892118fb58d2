package geocode

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"transitbot/internal/live"
)

type server struct {
	last http.Request
	hits atomic.Int32
}

func testClient(t *testing.T, body string, status int) (*Client, *server) {
	t.Helper()
	s := &server{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.last = *r.Clone(context.Background())
		s.hits.Add(1)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fetcher := live.NewClient(live.Options{
		UserAgent:     "transitbot-test",
		Timeout:       time.Second,
		RetryInterval: time.Millisecond,
	}, logger)
	return New(srv.URL, fetcher, CentralLondon, 30000, logger), s
}

func TestGeocode(t *testing.T) {
	body := `[
		{"lat": "51.5136", "lon": "-0.1366", "display_name": "Soho, London"},
		{"lat": "53.4808", "lon": "-2.2426", "display_name": "Soho, Manchester"},
		{"lat": "51.4700", "lon": "-0.4543", "display_name": "Heathrow"}
	]`
	c, srv := testClient(t, body, http.StatusOK)
	req := &srv.last

	points, err := c.Geocode(context.Background(), "Soho")
	if err != nil {
		t.Fatalf("Geocode() error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("Geocode() = %v, want 2 points inside 30km", points)
	}
	if points[0].Lat != 51.5136 || points[0].Lon != -0.1366 {
		t.Errorf("Geocode()[0] = %v, want Soho", points[0])
	}

	q := req.URL.Query()
	if q.Get("q") != "Soho, London" {
		t.Errorf("q = %q, want %q", q.Get("q"), "Soho, London")
	}
	if q.Get("countrycodes") != "gb" || q.Get("bounded") != "1" {
		t.Errorf("query = %v, want a bounded gb search", q)
	}
	if box := strings.Split(q.Get("viewbox"), ","); len(box) != 4 || box[0] >= box[2] {
		t.Errorf("viewbox = %q, want left,top,right,bottom", q.Get("viewbox"))
	}
	if ua := req.Header.Get("User-Agent"); ua != "transitbot-test" {
		t.Errorf("User-Agent = %q", ua)
	}
}

func TestGeocodeNothingFound(t *testing.T) {
	c, _ := testClient(t, `[]`, http.StatusOK)
	points, err := c.Geocode(context.Background(), "Nonexistentplace123")
	if err != nil || len(points) != 0 {
		t.Errorf("Geocode() = %v, %v; want no points and no error", points, err)
	}
}

func TestGeocodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"server error", `oops`, http.StatusInternalServerError},
		{"not json", `<html></html>`, http.StatusOK},
		{"bad coordinate", `[{"lat": "north", "lon": "0"}]`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testClient(t, tt.body, tt.status)
			if _, err := c.Geocode(context.Background(), "Soho"); err == nil {
				t.Error("Geocode() error = nil")
			}
		})
	}
}

func TestGeocodeCached(t *testing.T) {
	c, srv := testClient(t, `[{"lat": "51.5136", "lon": "-0.1366"}]`, http.StatusOK)
	for range 2 {
		if _, err := c.Geocode(context.Background(), "Soho"); err != nil {
			t.Fatal(err)
		}
	}
	if n := srv.hits.Load(); n != 1 {
		t.Errorf("Nominatim asked %d times for the same place, want 1", n)
	}
}

func TestGeocodeBadBodyNotCached(t *testing.T) {
	c, srv := testClient(t, `<html></html>`, http.StatusOK)
	for range 2 {
		if _, err := c.Geocode(context.Background(), "Soho"); err == nil {
			t.Fatal("Geocode() error = nil")
		}
	}
	if n := srv.hits.Load(); n != 2 {
		t.Errorf("Nominatim asked %d times, want 2 after an undecodable reply", n)
	}
}
