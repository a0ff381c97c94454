package geom

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	earthRadius     = 6371000.0 // meters
	metersPerDegree = earthRadius * math.Pi / 180.0
)

// Distance calculates the Haversine distance between two points in meters.
func Distance(a, b orb.Point) float64 {
	lat1Rad := a[1] * math.Pi / 180.0
	lon1Rad := a[0] * math.Pi / 180.0
	lat2Rad := b[1] * math.Pi / 180.0
	lon2Rad := b[0] * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadius * c
}

// Length returns the length of a line string in meters.
func Length(ls orb.LineString) float64 {
	var total float64
	for i := 1; i < len(ls); i++ {
		total += Distance(ls[i-1], ls[i])
	}
	return total
}

// Interpolate returns the point at the given distance in meters along the
// line, measured from its first vertex. Distances past either end clamp to
// the nearest endpoint.
func Interpolate(ls orb.LineString, meters float64) orb.Point {
	if len(ls) == 0 {
		return orb.Point{}
	}
	if meters <= 0 {
		return ls[0]
	}
	for i := 1; i < len(ls); i++ {
		seg := Distance(ls[i-1], ls[i])
		if meters <= seg && seg > 0 {
			t := meters / seg
			return orb.Point{
				ls[i-1][0] + (ls[i][0]-ls[i-1][0])*t,
				ls[i-1][1] + (ls[i][1]-ls[i-1][1])*t,
			}
		}
		meters -= seg
	}
	return ls[len(ls)-1]
}

// DistanceToSegment returns the shortest distance in meters from p to the
// segment ab, using a local equirectangular projection around p. At city
// scale and a 20 m join threshold the approximation error is negligible.
func DistanceToSegment(p, a, b orb.Point) float64 {
	kx := metersPerDegree * math.Cos(p[1]*math.Pi/180.0)
	ky := metersPerDegree

	ax := (a[0] - p[0]) * kx
	ay := (a[1] - p[1]) * ky
	bx := (b[0] - p[0]) * kx
	by := (b[1] - p[1]) * ky

	dx := bx - ax
	dy := by - ay

	// Degenerate segment collapses to a point.
	segLenSq := dx*dx + dy*dy
	if segLenSq == 0 {
		return math.Hypot(ax, ay)
	}

	// Project the origin (p) onto ab and clamp to the segment.
	t := -(ax*dx + ay*dy) / segLenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(ax+t*dx, ay+t*dy)
}

// DistanceToLine returns the shortest distance in meters from p to any
// segment of the line string.
func DistanceToLine(p orb.Point, ls orb.LineString) float64 {
	if len(ls) == 0 {
		return math.Inf(1)
	}
	if len(ls) == 1 {
		return Distance(p, ls[0])
	}
	min := math.Inf(1)
	for i := 1; i < len(ls); i++ {
		if d := DistanceToSegment(p, ls[i-1], ls[i]); d < min {
			min = d
		}
	}
	return min
}

// MetersToDegrees converts a distance in meters to the degree offsets that
// cover it in longitude and latitude at the given latitude. Used to grow
// R-Tree search rectangles by a meter threshold.
func MetersToDegrees(meters, lat float64) (dLon, dLat float64) {
	dLat = meters / metersPerDegree
	cos := math.Cos(lat * math.Pi / 180.0)
	if cos < 0.01 {
		cos = 0.01 // polar guard
	}
	dLon = dLat / cos
	return dLon, dLat
}
