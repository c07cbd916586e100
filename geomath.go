package stplanr

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	earthRadius = 6370.986884258304
	pi180       = math.Pi / 180.0
)

// degreesToRadians deg = r * pi / 180
func degreesToRadians(d float64) float64 {
	return d * pi180
}

// greatCircleDistance returns distance between two points treated as (lon, lat) degrees (kilometers)
func greatCircleDistance(p, q orb.Point) float64 {
	lat1 := degreesToRadians(p[1])
	lon1 := degreesToRadians(p[0])
	lat2 := degreesToRadians(q[1])
	lon2 := degreesToRadians(q[0])
	diffLat := lat2 - lat1
	diffLon := lon2 - lon1
	a := math.Pow(math.Sin(diffLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(diffLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return c * earthRadius
}

// findDistance returns distance between two points (assuming they are Euclidean: X, Y)
func findDistance(p, q orb.Point) float64 {
	xdistance := p[0] - q[0]
	ydistance := p[1] - q[1]
	return math.Sqrt(xdistance*xdistance + ydistance*ydistance)
}

// getLength returns length for given line (assuming points of the line are Euclidean)
func getLength(line orb.LineString) float64 {
	totalLength := 0.0
	if len(line) < 2 {
		return totalLength
	}
	for i := 1; i < len(line); i++ {
		totalLength += findDistance(line[i-1], line[i])
	}
	return totalLength
}

// getSphericalLength returns length for given line of (lon, lat) points (kilometers)
func getSphericalLength(line orb.LineString) float64 {
	totalLength := 0.0
	if len(line) < 2 {
		return totalLength
	}
	for i := 1; i < len(line); i++ {
		totalLength += greatCircleDistance(line[i-1], line[i])
	}
	return totalLength
}

// pointLess defines total order over points: lexicographic on X, then Y
func pointLess(p, q orb.Point) bool {
	if p[0] != q[0] {
		return p[0] < q[0]
	}
	return p[1] < q[1]
}

// snapPoint quantizes coordinates to the tolerance grid. Zero tolerance keeps the point untouched.
// Topologically distinct points must lie further apart than the tolerance, otherwise they collapse
// into one; that is a caller configuration error and is not detected here.
func snapPoint(p orb.Point, tolerance float64) orb.Point {
	if tolerance == 0 {
		return p
	}
	return orb.Point{
		math.Round(p[0]/tolerance) * tolerance,
		math.Round(p[1]/tolerance) * tolerance,
	}
}

// reverseLine reverses order of points in given line. Returns new slice
func reverseLine(line orb.LineString) orb.LineString {
	inputLen := len(line)
	output := make(orb.LineString, inputLen)
	for i, n := range line {
		j := inputLen - i - 1
		output[j] = n
	}
	return output
}
