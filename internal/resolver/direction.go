package resolver

import "strings"

var directionAliases = map[string]string{}

func init() {
	for _, point := range []string{"North", "East", "South", "West"} {
		lower := strings.ToLower(point)
		for _, alias := range []string{lower[:1], lower[:1] + "b", lower, lower + "bound"} {
			directionAliases[alias] = point
		}
	}
}

// NormaliseDirection maps "N", "NB", "north", "Northbound" and so on to a cardinal point.
func NormaliseDirection(text string) (string, bool) {
	key := strings.ToLower(strings.NewReplacer("/", "", ".", "", " ", "").Replace(text))
	point, ok := directionAliases[key]
	return point, ok
}

// headingNear lists the compass points buses leaving a stop can show when heading
// toward a cardinal point.
var headingNear = map[string][]string{
	"North": {"NW", "North", "NE"},
	"East":  {"NE", "East", "SE"},
	"South": {"SE", "South", "SW"},
	"West":  {"SW", "West", "NW"},
}

func headsToward(compass, cardinal string) bool {
	for _, p := range headingNear[cardinal] {
		if p == compass {
			return true
		}
	}
	return false
}
