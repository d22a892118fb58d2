// Package resolver turns the route tokens and place of a request into the stops and
// stations the live feeds are asked about, reporting failures per token.
package resolver

import (
	"context"
	"errors"

	"transitbot/internal/match"
	"transitbot/internal/storage"
	"transitbot/internal/transit"
)

// ErrNoOrigin is returned for a request with neither a place name nor a position.
var ErrNoOrigin = errors.New("request needs an origin or a position")

// Request is one parsed user request. Tokens are bus routes or rail lines, each
// resolved independently.
type Request struct {
	Tokens      []string
	Origin      string
	Destination string
	Direction   string
	Position    *transit.Position
}

// Resolution is where and which way to look for departures of one token.
type Resolution struct {
	Mode  transit.Mode `json:"mode"`
	Token string       `json:"token"`

	Route string            `json:"route,omitempty"`
	Stops []storage.BusStop `json:"stops,omitempty"` // one per run, in run order

	Line    *Line            `json:"line,omitempty"`
	Station *storage.Station `json:"station,omitempty"`

	Destination string `json:"destination,omitempty"`
	Direction   string `json:"direction,omitempty"`
}

// Resolver resolves a single route or line token.
type Resolver interface {
	Resolve(ctx context.Context, token string, req Request) (*Resolution, error)
}

// Enrich attaches live data to a resolution.
type Enrich func(ctx context.Context, res *Resolution) (any, error)

// Outcome is the result for one token: a resolution, or the message explaining why
// there is none.
type Outcome struct {
	Token      string       `json:"token"`
	Resolution *Resolution  `json:"resolution,omitempty"`
	Departures any          `json:"departures,omitempty"`
	Kind       transit.Kind `json:"error,omitempty"`
	Message    string       `json:"message,omitempty"`
}

// Settings tune resolution.
type Settings struct {
	MinConfidence int
	Coverage      Coverage
}

func (s Settings) withDefaults() Settings {
	if s.MinConfidence == 0 {
		s.MinConfidence = match.DefaultMinConfidence
	}
	if s.Coverage == (Coverage{}) {
		s.Coverage = London
	}
	return s
}

// yourLocation stands in for the origin in messages about position requests.
const yourLocation = "your location"

func originText(req Request) string {
	if req.Position != nil {
		return yourLocation
	}
	return req.Origin
}

// ResolveAll resolves every token of req, running enrich on each success when it is
// not nil. A *transit.Error for one token becomes that token's outcome. Any other
// error, or an upstream failure, abandons the whole request.
func ResolveAll(ctx context.Context, r Resolver, req Request, enrich Enrich) ([]Outcome, error) {
	if req.Origin == "" && req.Position == nil {
		return nil, ErrNoOrigin
	}
	outcomes := make([]Outcome, 0, len(req.Tokens))
	for _, token := range req.Tokens {
		out := Outcome{Token: token}
		res, err := r.Resolve(ctx, token, req)
		if err == nil && enrich != nil {
			out.Departures, err = enrich(ctx, res)
		}
		if err != nil {
			var te *transit.Error
			if transit.IsFatal(err) || !errors.As(err, &te) {
				return nil, err
			}
			out.Kind, out.Message = te.Kind, te.UserMessage()
		} else {
			out.Resolution = res
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
