package geo

import (
	"fmt"
	"math"
)

// Ellipsoid is a reference ellipsoid given by its semi-major and semi-minor axes in meters.
type Ellipsoid struct {
	A, B float64
}

var (
	WGS84    = Ellipsoid{A: 6378137.0, B: 6356752.3142}
	Airy1830 = Ellipsoid{A: 6377563.396, B: 6356256.910}
)

// Helmert holds the seven parameters of a Helmert datum transform.
// Translations are meters, rotations arc-seconds and scale parts per million.
type Helmert struct {
	TX, TY, TZ float64
	RX, RY, RZ float64
	S          float64
}

// WGS84ToOSGB36 is the Ordnance Survey's published transform from WGS84 to OSGB36.
var WGS84ToOSGB36 = Helmert{
	TX: -446.448, TY: 125.157, TZ: -542.060,
	RX: -0.1502, RY: -0.2470, RZ: -0.8421,
	S: 20.4894,
}

// National Grid projection constants.
const (
	natGridF0       = 0.9996012717
	natGridLat0     = 49.0
	natGridLon0     = -2.0
	natGridN0       = -100000.0
	natGridE0       = 400000.0
	gridSquareMeter = 100000
)

// ConvertWGS84ToOSGB36 converts a GPS (WGS84) position to its OSGB36 equivalent,
// returning latitude and longitude rounded to 7 decimal places and the height.
func ConvertWGS84ToOSGB36(lat, lon, height float64) (float64, float64, float64) {
	return Convert(lat, lon, height, WGS84, WGS84ToOSGB36, Airy1830)
}

// Convert moves a geodetic position from ellipsoid from to ellipsoid to using the
// Helmert transform t.
func Convert(lat, lon, height float64, from Ellipsoid, t Helmert, to Ellipsoid) (float64, float64, float64) {
	phi := toRad(lat)
	lambda := toRad(lon)

	a, b := from.A, from.B
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	sinLambda, cosLambda := math.Sin(lambda), math.Cos(lambda)

	eSq := (a*a - b*b) / (a * a)
	nu := a / math.Sqrt(1-eSq*sinPhi*sinPhi)

	x1 := (nu + height) * cosPhi * cosLambda
	y1 := (nu + height) * cosPhi * sinLambda
	z1 := ((1-eSq)*nu + height) * sinPhi

	rx := toRad(t.RX / 3600)
	ry := toRad(t.RY / 3600)
	rz := toRad(t.RZ / 3600)
	s1 := t.S/1e6 + 1

	x2 := t.TX + x1*s1 - y1*rz + z1*ry
	y2 := t.TY + x1*rz + y1*s1 - z1*rx
	z2 := t.TZ - x1*ry + y1*rx + z1*s1

	a, b = to.A, to.B
	precision := 4 / a
	eSq = (a*a - b*b) / (a * a)
	p := math.Sqrt(x2*x2 + y2*y2)

	phi = math.Atan2(z2, p*(1-eSq))
	phiP := 2 * math.Pi
	for math.Abs(phi-phiP) > precision {
		nu = a / math.Sqrt(1-eSq*math.Sin(phi)*math.Sin(phi))
		phiP = phi
		phi = math.Atan2(z2+eSq*nu*math.Sin(phi), p)
	}
	lambda = math.Atan2(y2, x2)
	h := p/math.Cos(phi) - nu

	return round7(toDeg(phi)), round7(toDeg(lambda)), h
}

// LatLonToOSGrid projects an OSGB36 latitude/longitude onto the British National Grid,
// returning easting and northing rounded to the nearest meter.
func LatLonToOSGrid(lat, lon float64) (easting, northing int) {
	phi := toRad(lat)
	lambda := toRad(lon)

	a, b := Airy1830.A, Airy1830.B
	phi0 := toRad(natGridLat0)
	lambda0 := toRad(natGridLon0)
	e2 := 1 - (b*b)/(a*a)
	n := (a - b) / (a + b)
	n2 := n * n
	n3 := n * n * n

	cosLat, sinLat := math.Cos(phi), math.Sin(phi)
	nu := a * natGridF0 / math.Sqrt(1-e2*sinLat*sinLat)
	rho := a * natGridF0 * (1 - e2) / math.Pow(1-e2*sinLat*sinLat, 1.5)
	eta2 := nu/rho - 1

	ma := (1 + n + (5.0/4.0)*n2 + (5.0/4.0)*n3) * (phi - phi0)
	mb := (3*n + 3*n*n + (21.0/8.0)*n3) * math.Sin(phi-phi0) * math.Cos(phi+phi0)
	mc := ((15.0/8.0)*n2 + (15.0/8.0)*n3) * math.Sin(2*(phi-phi0)) * math.Cos(2*(phi+phi0))
	md := (35.0 / 24.0) * n3 * math.Sin(3*(phi-phi0)) * math.Cos(3*(phi+phi0))
	m := b * natGridF0 * (ma - mb + mc - md)

	cos3Lat := cosLat * cosLat * cosLat
	cos5Lat := cos3Lat * cosLat * cosLat
	tan2Lat := math.Tan(phi) * math.Tan(phi)
	tan4Lat := tan2Lat * tan2Lat

	i := m + natGridN0
	ii := (nu / 2) * sinLat * cosLat
	iii := (nu / 24) * sinLat * cos3Lat * (5 - tan2Lat + 9*eta2)
	iiiA := (nu / 720) * sinLat * cos5Lat * (61 - 58*tan2Lat + tan4Lat)
	iv := nu * cosLat
	v := (nu / 6) * cos3Lat * (nu/rho - tan2Lat)
	vi := (nu / 120) * cos5Lat * (5 - 18*tan2Lat + tan4Lat + 14*eta2 - 58*tan2Lat*eta2)

	dLon := lambda - lambda0
	dLon2 := dLon * dLon
	dLon3 := dLon2 * dLon
	dLon4 := dLon3 * dLon
	dLon5 := dLon4 * dLon
	dLon6 := dLon5 * dLon

	north := i + ii*dLon2 + iii*dLon4 + iiiA*dLon6
	east := natGridE0 + iv*dLon + v*dLon3 + vi*dLon5

	return int(math.Round(east)), int(math.Round(north))
}

// WGS84ToEastingNorthing converts a GPS position straight to National Grid easting/northing.
func WGS84ToEastingNorthing(lat, lon float64) (easting, northing int) {
	osLat, osLon, _ := ConvertWGS84ToOSGB36(lat, lon, 0)
	return LatLonToOSGrid(osLat, osLon)
}

// GridRefNumToLet formats an easting/northing as a lettered OS grid reference with the
// given number of digits (split evenly between easting and northing). It returns ""
// when the point lies outside the lettered 100km squares.
func GridRefNumToLet(easting, northing, digits int) string {
	e100k := floorDiv(easting, gridSquareMeter)
	n100k := floorDiv(northing, gridSquareMeter)
	if e100k < 0 || e100k > 6 || n100k < 0 || n100k > 12 {
		return ""
	}

	l1 := (19 - n100k) - (19-n100k)%5 + (e100k+10)/5
	l2 := (19-n100k)*5%25 + e100k%5
	// there is no letter I
	if l1 > 7 {
		l1++
	}
	if l2 > 7 {
		l2++
	}

	half := digits / 2
	div := int(math.Pow10(5 - half))
	e := (easting % gridSquareMeter) / div
	n := (northing % gridSquareMeter) / div

	return fmt.Sprintf("%c%c%0*d%0*d", 'A'+rune(l1), 'A'+rune(l2), half, e, half, n)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func round7(v float64) float64 {
	return math.Round(v*1e7) / 1e7
}
