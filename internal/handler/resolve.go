package handler

import (
	"errors"
	"net/http"
	"strings"

	"transitbot/internal/resolver"
	"transitbot/internal/transit"
)

// Health reports that the server is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Bus resolves the space-separated routes in ?route= from ?from= or ?lat=&lon=.
func (h *Handler) Bus(w http.ResponseWriter, r *http.Request) {
	routes := strings.Fields(r.URL.Query().Get("route"))
	if len(routes) == 0 {
		writeError(w, http.StatusBadRequest, "missing_route", "route is required")
		return
	}
	var enrich resolver.Enrich
	if h.arrivals != nil && wantsLive(r) {
		enrich = h.bus.Departures(h.arrivals)
	}
	h.resolve(w, r, h.bus, routes, enrich)
}

// Rail resolves the line in ?line= from ?from= or ?lat=&lon=.
func (h *Handler) Rail(w http.ResponseWriter, r *http.Request) {
	line := strings.TrimSpace(r.URL.Query().Get("line"))
	if line == "" {
		writeError(w, http.StatusBadRequest, "missing_line", "line is required")
		return
	}
	var enrich resolver.Enrich
	if h.trains != nil && wantsLive(r) {
		enrich = h.rail.Departures(h.trains)
	}
	h.resolve(w, r, h.rail, []string{line}, enrich)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, res resolver.Resolver, tokens []string, enrich resolver.Enrich) {
	req, err := parseRequest(r, tokens)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	outcomes, err := resolver.ResolveAll(r.Context(), res, req, enrich)
	switch {
	case errors.Is(err, resolver.ErrNoOrigin):
		writeError(w, http.StatusBadRequest, "no_origin", err.Error())
	case transit.IsFatal(err):
		h.logger.Warn("upstream unavailable", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, string(transit.UpstreamUnavailable),
			transit.NewError(transit.UpstreamUnavailable).UserMessage())
	case err != nil:
		h.logger.Error("resolving request", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal error")
	default:
		writeJSON(w, http.StatusOK, outcomes)
	}
}
