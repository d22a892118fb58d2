package live

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"transitbot/internal/storage"
	"transitbot/internal/transit"
)

// DLRLine is the line code of the Docklands Light Railway.
const DLRLine = "DLR"

// dlrTrainLine matches a departure line such as "1 Beckton 3 mins".
var dlrTrainLine = regexp.MustCompile(`(?i)[1-4] (\D+)(([0-9]+) mins?)?`)

type stationPlatform struct{ station, platform string }

// Platforms no passenger boards from.
var ignoredDLRPlatforms = map[stationPlatform]bool{
	{"tog", "P1"}: true,
	{"wiq", "P1"}: true,
}

// Spare platforms at termini, dropped when nothing is shown there.
var sparePlatforms = map[stationPlatform]bool{
	{"ban", "P10"}: true,
	{"str", "P4B"}: true,
	{"lew", "P5"}:  true,
}

// DLRDepartures returns the trains due at a DLR station, by platform.
func (c *Client) DLRDepartures(ctx context.Context, station storage.Station) (Departures, error) {
	u := fmt.Sprintf(c.dlrURL, url.PathEscape(strings.ToLower(station.Code)))
	body, err := c.Fetch(ctx, u, "text/html")
	if err != nil {
		return nil, err
	}
	deps, err := parseDLRBoard(body, station)
	if err != nil {
		c.Forget(u)
		c.logger.Error("bad DLR board", "url", u, "error", err)
		return nil, err
	}
	return deps, nil
}

func parseDLRBoard(body []byte, station storage.Station) (Departures, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, transit.Upstream(fmt.Errorf("parse DLR board: %w", err))
	}
	code := strings.ToLower(station.Code)

	deps := make(Departures)
	var parseErr error
	doc.Find("div#ttbox").EachWithBreak(func(_ int, box *goquery.Selection) bool {
		src, _ := box.Find("div#platformleft img").Attr("src")
		name := platformFromImage(src)
		if name == "" || ignoredDLRPlatforms[stationPlatform{code, name}] {
			return true
		}

		info := box.Find("div#platformmiddle")
		published, err := time.Parse("15:04", strings.TrimSpace(info.Find("div#time").Text()))
		if err != nil {
			parseErr = transit.Upstream(fmt.Errorf("DLR board time for %s: %w", name, err))
			return false
		}

		lines := []string{info.Find("div#line1").Text()}
		info.Find("div#line23 p").Contents().Each(func(_ int, n *goquery.Selection) {
			if goquery.NodeName(n) == "#text" {
				lines = append(lines, n.Text())
			}
		})

		trains := []Train{}
		for _, line := range lines {
			m := dlrTrainLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			destination := capWords(strings.TrimSpace(m[1]))
			if destination == "Terminates Here" {
				continue
			}
			mins, _ := strconv.Atoi(m[3])
			trains = append(trains, Train{
				Destination: destination,
				Direction:   name,
				Line:        DLRLine,
				SecondsTo:   mins * 60,
				Departure:   published.Add(time.Duration(mins) * time.Minute).Format("1504"),
			})
		}
		if len(trains) == 0 && sparePlatforms[stationPlatform{code, name}] {
			return true
		}
		deps[name] = trains
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	mergeCommonPlatforms(deps)
	return deps, nil
}

// platformFromImage turns a platform image such as "p1l.gif" into "P1".
func platformFromImage(src string) string {
	base, _, _ := strings.Cut(path.Base(src), ".")
	if len(base) < 2 {
		return ""
	}
	return strings.ToUpper(base[:len(base)-1])
}

// mergeCommonPlatforms joins the first pair of platforms sharing a destination, as
// at termini where both platforms run the same way.
func mergeCommonPlatforms(deps Departures) {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	slices.Sort(names)
	for i, a := range names {
		for _, b := range names[i+1:] {
			if !shareDestination(deps[a], deps[b]) {
				continue
			}
			merged := slices.Clone(deps[a])
			for _, t := range deps[b] {
				if !slices.Contains(merged, t) {
					merged = append(merged, t)
				}
			}
			slices.SortStableFunc(merged, func(x, y Train) int { return cmp.Compare(x.SecondsTo, y.SecondsTo) })
			delete(deps, a)
			delete(deps, b)
			deps[a+" & "+b] = merged
			return
		}
	}
}

func shareDestination(a, b []Train) bool {
	for _, x := range a {
		for _, y := range b {
			if x.Destination == y.Destination {
				return true
			}
		}
	}
	return false
}

var (
	lowerWords = map[string]bool{"via": true}
	upperWords = map[string]bool{"CX": true}
)

func capWords(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		switch {
		case lowerWords[strings.ToLower(w)]:
			words[i] = strings.ToLower(w)
		case upperWords[strings.ToUpper(w)]:
			words[i] = strings.ToUpper(w)
		case w != "":
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}
