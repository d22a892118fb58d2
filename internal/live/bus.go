package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"transitbot/internal/transit"
)

// busesShown is how many arrivals are kept per stop.
const busesShown = 3

const systemErrorMessage = "noPredictionsDueToSystemError"

type busBoard struct {
	Arrivals         []busArrival `json:"arrivals"`
	StopBoardMessage string       `json:"stopBoardMessage"`
}

type busArrival struct {
	RouteName     string `json:"routeName"`
	Destination   string `json:"destination"`
	ScheduledTime string `json:"scheduledTime"`
	IsRealTime    *bool  `json:"isRealTime"`
	IsCancelled   bool   `json:"isCancelled"`
}

// Arrival is a bus due at a stop.
type Arrival struct {
	Route         string `json:"route"`
	Destination   string `json:"destination"`
	ScheduledTime string `json:"scheduledTime"`
}

// BusArrivals returns the next buses on route, or its night variant, due at a stop.
func (c *Client) BusArrivals(ctx context.Context, stopCode, route string) ([]Arrival, error) {
	u := fmt.Sprintf(c.busURL, url.PathEscape(stopCode))
	body, err := c.Fetch(ctx, u, "application/json")
	if err != nil {
		return nil, err
	}
	arrivals, err := parseBusBoard(body, route)
	if err != nil {
		c.cache.Delete(u)
		c.logger.Error("bad bus board", "url", u, "error", err)
		return nil, err
	}
	return arrivals, nil
}

func parseBusBoard(body []byte, route string) ([]Arrival, error) {
	var board busBoard
	if err := json.Unmarshal(body, &board); err != nil {
		return nil, transit.Upstream(fmt.Errorf("decode bus board: %w", err))
	}
	if len(board.Arrivals) == 0 && board.StopBoardMessage == systemErrorMessage {
		return nil, transit.Upstream(fmt.Errorf("bus board reports %s", systemErrorMessage))
	}

	var arrivals []Arrival
	for _, a := range board.Arrivals {
		if a.RouteName != route && a.RouteName != "N"+route {
			continue
		}
		if a.IsRealTime != nil && !*a.IsRealTime {
			continue
		}
		if a.IsCancelled {
			continue
		}
		arrivals = append(arrivals, Arrival{
			Route:         a.RouteName,
			Destination:   a.Destination,
			ScheduledTime: a.ScheduledTime,
		})
		if len(arrivals) == busesShown {
			break
		}
	}
	return arrivals, nil
}
