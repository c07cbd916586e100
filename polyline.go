package stplanr

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	gopolyline "github.com/twpayne/go-polyline"
)

// RouteFromPolyline decodes a Google encoded polyline (lat, lon pairs) into a route
// with the given attributes. Routing services commonly return geometry in this form.
func RouteFromPolyline(encoded string, attributes map[string]float64) (Route, error) {
	coords, remaining, err := gopolyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return Route{}, errors.Wrap(err, "Can't decode polyline")
	}
	if len(remaining) != 0 {
		return Route{}, errors.Errorf("Trailing bytes after polyline: '%s'", string(remaining))
	}
	line := make(orb.LineString, len(coords))
	for i, c := range coords {
		line[i] = orb.Point{c[1], c[0]}
	}
	return Route{Geom: line, Attributes: attributes}, nil
}

// EncodePolyline encodes line geometry into a Google encoded polyline (lat, lon pairs)
func EncodePolyline(line orb.LineString) string {
	coords := make([][]float64, len(line))
	for i, pt := range line {
		coords[i] = []float64{pt[1], pt[0]}
	}
	return string(gopolyline.EncodeCoords(coords))
}
