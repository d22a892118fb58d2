package geo

var compassPoints = [8]string{"North", "NE", "East", "SE", "South", "SW", "West", "NW"}

// HeadingToDirection buckets a heading in degrees into one of eight compass points.
func HeadingToDirection(heading int) string {
	i := ((heading+22)%360 + 360) % 360 / 45
	return compassPoints[i]
}
