// Package geocode turns free-text place names into candidate points near London.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"transitbot/internal/geo"
	"transitbot/internal/transit"
)

// CentralLondon is Charing Cross, the traditional centre of London.
var CentralLondon = transit.Position{Lat: 51.5073, Lon: -0.1276}

// maxResults caps how many candidate points are asked for.
const maxResults = 5

// Fetcher gets a URL's body, caching and retrying as it sees fit. Forget drops a
// cached body that could not be decoded.
type Fetcher interface {
	Fetch(ctx context.Context, url, accept string) ([]byte, error)
	Forget(url string)
}

// Client is a Nominatim geocoding client restricted to a circle around a centre.
type Client struct {
	baseURL string
	fetcher Fetcher
	centre  transit.Position
	radius  float64
	logger  *slog.Logger
}

// New creates a Nominatim geocoding client fetching through f, which must send a
// User-Agent as Nominatim's usage policy requires. Results farther than radiusMeters
// from centre are discarded.
func New(baseURL string, f Fetcher, centre transit.Position, radiusMeters float64, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		fetcher: f,
		centre:  centre,
		radius:  radiusMeters,
		logger:  logger,
	}
}

// viewbox is the left,top,right,bottom box enclosing the search circle.
func (c *Client) viewbox() string {
	dLat, dLon := geo.BoundingBoxRadius(c.centre.Lat, c.radius)
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
	return f(c.centre.Lon-dLon) + "," + f(c.centre.Lat+dLat) + "," + f(c.centre.Lon+dLon) + "," + f(c.centre.Lat-dLat)
}

// Geocode returns the points matching a place name, best first. An empty result is
// not an error.
func (c *Client) Geocode(ctx context.Context, query string) ([]transit.Position, error) {
	u := c.baseURL + "/search?" + url.Values{
		"q":              {query + ", London"},
		"format":         {"jsonv2"},
		"limit":          {strconv.Itoa(maxResults)},
		"countrycodes":   {"gb"},
		"viewbox":        {c.viewbox()},
		"bounded":        {"1"},
		"addressdetails": {"0"},
	}.Encode()

	body, err := c.fetcher.Fetch(ctx, u, "application/json")
	if err != nil {
		return nil, fmt.Errorf("nominatim request: %w", err)
	}
	points, err := c.parse(query, body)
	if err != nil {
		c.fetcher.Forget(u)
		return nil, err
	}
	c.logger.Debug("geocoded", "query", query, "points", len(points))
	return points, nil
}

func (c *Client) parse(query string, body []byte) ([]transit.Position, error) {
	var results []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("nominatim decode: %w", err)
	}

	var points []transit.Position
	for _, r := range results {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("parse lat: %w", err)
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("parse lon: %w", err)
		}
		if d := geo.Haversine(c.centre.Lat, c.centre.Lon, lat, lon); d > c.radius {
			c.logger.Debug("geocode result too far out", "query", query, "place", r.DisplayName, "meters", int(d))
			continue
		}
		points = append(points, transit.Position{Lat: lat, Lon: lon})
	}
	return points, nil
}
