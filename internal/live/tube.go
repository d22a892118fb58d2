package live

import (
	"cmp"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"transitbot/internal/storage"
	"transitbot/internal/transit"
)

// trainsShown is how many trains are kept per direction.
const trainsShown = 3

const whenCreatedLayout = "02 Jan 2006 15:04:05"

// UnknownDirection labels a platform that gives no direction.
const UnknownDirection = "Unknown"

type prediction struct {
	WhenCreated string     `xml:"WhenCreated"`
	Platforms   []platform `xml:"S>P"`
}

type platform struct {
	Name   string  `xml:"N,attr"`
	Num    string  `xml:"Num,attr"`
	Trains []train `xml:"T"`
}

type train struct {
	Line        string `xml:"LN,attr"`
	SetNo       string `xml:"SetNo,attr"`
	SecondsTo   string `xml:"SecondsTo,attr"`
	Location    string `xml:"Location,attr"`
	Destination string `xml:"Destination,attr"`
	DestCode    string `xml:"DestCode,attr"`
}

// Train is a Tube train due at a station.
type Train struct {
	Destination string `json:"destination"`
	DestCode    string `json:"destCode"`
	Direction   string `json:"direction"`
	Line        string `json:"line"`
	SetNo       string `json:"setNo"`
	SecondsTo   int    `json:"secondsTo"`
	Departure   string `json:"departure"` // HHMM
}

// Departures groups trains by direction, soonest first.
type Departures map[string][]Train

// Depot, sidings and out of service destination codes.
var ignoredDestCodes = map[string]bool{
	"261": true, "341": true, "342": true, "433": true, "546": true, "749": true, "775": true,
}

var nationalRailDestinations = map[string]bool{
	"Network Rail": true, "Network Rail TOC": true, "Chiltern TOC": true, "Chiltern Goods": true, "TOC": true,
}

func inService(t train) bool {
	if ignoredDestCodes[t.DestCode] {
		return false
	}
	if t.DestCode == "0" && strings.Contains(t.Location, "Sidings") {
		return false
	}
	if t.Destination == "Special" || t.Destination == "Out Of Service" {
		return false
	}
	if strings.HasPrefix(t.Destination, "BR") || nationalRailDestinations[t.Destination] {
		return false
	}
	return true
}

// feedLine is the line code the prediction feed uses: the Circle shares the
// Hammersmith & City's.
func feedLine(lineCode string) string {
	if lineCode == "O" {
		return "H"
	}
	return lineCode
}

// TubeDepartures returns the trains on a line due at a station, by direction. Trains
// whose direction cannot be told are grouped under UnknownDirection.
func (c *Client) TubeDepartures(ctx context.Context, station storage.Station, lineCode string) (Departures, error) {
	line := feedLine(lineCode)
	u := fmt.Sprintf(c.tubeURL, url.PathEscape(line), url.PathEscape(station.Code))
	body, err := c.Fetch(ctx, u, "application/xml")
	if err != nil {
		return nil, err
	}
	deps, err := parsePrediction(body, station, line)
	if err != nil {
		c.cache.Delete(u)
		c.logger.Error("bad tube prediction", "url", u, "error", err)
		return nil, err
	}
	return deps, nil
}

func platformDirection(station storage.Station, p platform) string {
	direction := station.DirectionForPlatform(p.Name)
	if direction != UnknownDirection {
		return direction
	}
	// Chesham branch platforms say nothing about direction.
	switch {
	case station.Code == "CHM":
		return "Southbound"
	case station.Code == "CLF" && p.Num == "3":
		return "Northbound"
	}
	return UnknownDirection
}

func parsePrediction(body []byte, station storage.Station, line string) (Departures, error) {
	var pred prediction
	if err := xml.Unmarshal(body, &pred); err != nil {
		return nil, transit.Upstream(fmt.Errorf("decode prediction: %w", err))
	}
	created, err := time.Parse(whenCreatedLayout, strings.TrimSpace(pred.WhenCreated))
	if err != nil {
		return nil, transit.Upstream(fmt.Errorf("prediction time: %w", err))
	}

	var trains []Train
	for _, p := range pred.Platforms {
		direction := platformDirection(station, p)
		for _, t := range p.Trains {
			if t.Line != line || !inService(t) {
				continue
			}
			secs, err := strconv.Atoi(t.SecondsTo)
			if err != nil {
				continue
			}
			trains = append(trains, Train{
				Destination: t.Destination,
				DestCode:    t.DestCode,
				Direction:   direction,
				Line:        t.Line,
				SetNo:       t.SetNo,
				SecondsTo:   secs,
				Departure:   created.Add(time.Duration(secs) * time.Second).Format("1504"),
			})
		}
	}

	// Bidirectional platforms: a train is heading wherever other trains to the same
	// destination are heading. Trains no other train vouches for stay Unknown.
	byDest := make(map[string]string)
	for _, t := range trains {
		if t.Direction != UnknownDirection && t.Destination != UnknownDirection {
			byDest[t.DestCode] = t.Direction
		}
	}

	deps := make(Departures)
	for _, t := range trains {
		if d, ok := byDest[t.DestCode]; ok && t.Direction == UnknownDirection {
			t.Direction = d
		}
		deps[t.Direction] = append(deps[t.Direction], t)
	}
	for dir, ts := range deps {
		slices.SortStableFunc(ts, func(a, b Train) int { return cmp.Compare(a.SecondsTo, b.SecondsTo) })
		deps[dir] = firstUnique(ts, trainsShown)
	}
	return deps, nil
}

// firstUnique keeps the first n trains, counting a set reported on two platforms once.
func firstUnique(ts []Train, n int) []Train {
	seen := make(map[string]bool)
	var out []Train
	for _, t := range ts {
		if t.SetNo != "" && seen[t.SetNo] {
			continue
		}
		seen[t.SetNo] = true
		out = append(out, t)
		if len(out) == n {
			break
		}
	}
	return out
}
