package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"transitbot/internal/resolver"
	"transitbot/internal/transit"
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	bus      *resolver.Bus
	rail     *resolver.Rail
	arrivals resolver.ArrivalSource
	trains   resolver.DepartureSource
	logger   *slog.Logger
}

// New creates a Handler. arrivals and trains may be nil, in which case live data
// is never attached.
func New(bus *resolver.Bus, rail *resolver.Rail, arrivals resolver.ArrivalSource, trains resolver.DepartureSource, logger *slog.Logger) *Handler {
	return &Handler{bus: bus, rail: rail, arrivals: arrivals, trains: trains, logger: logger}
}

// errorBody is the JSON sent for a failed request.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorBody{Error: kind, Message: msg})
}

// parseRequest builds a resolver request from the query parameters shared by both
// modes. A position needs both lat and lon.
func parseRequest(r *http.Request, tokens []string) (resolver.Request, error) {
	q := r.URL.Query()
	req := resolver.Request{
		Tokens:      tokens,
		Origin:      strings.TrimSpace(q.Get("from")),
		Destination: strings.TrimSpace(q.Get("to")),
		Direction:   strings.TrimSpace(q.Get("direction")),
	}
	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" && lonStr == "" {
		return req, nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return req, fmt.Errorf("bad lat %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return req, fmt.Errorf("bad lon %q", lonStr)
	}
	req.Position = &transit.Position{Lat: lat, Lon: lon}
	return req, nil
}

func wantsLive(r *http.Request) bool {
	live, _ := strconv.ParseBool(r.URL.Query().Get("live"))
	return live
}
