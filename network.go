package stplanr

import (
	"math"

	"github.com/LdDl/ch"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// SegmentNetwork is a routable graph built over aggregated output segments:
// one vertex per distinct segment endpoint, one edge per output segment.
// Edge weights are segment lengths (spherical kilometers for lon/lat input,
// plain Euclidean units otherwise).
type SegmentNetwork struct {
	graph    ch.Graph
	vertices map[orb.Point]int64
	coords   map[int64]orb.Point
	geometry map[[2]int64]orb.LineString
	values   map[[2]int64]map[string]float64
}

// NewSegmentNetwork builds a contraction-hierarchies graph from aggregated segments.
// Spherical mode treats coordinates as (lon, lat) degrees when weighting edges.
func NewSegmentNetwork(segments []OutputRoute, spherical bool) (*SegmentNetwork, error) {
	if len(segments) == 0 {
		return nil, errors.New("no segments to build network from")
	}
	net := &SegmentNetwork{
		vertices: make(map[orb.Point]int64),
		coords:   make(map[int64]orb.Point),
		geometry: make(map[[2]int64]orb.LineString),
		values:   make(map[[2]int64]map[string]float64),
	}
	for _, segment := range segments {
		if len(segment.Geom) < 2 {
			continue
		}
		source, err := net.vertex(segment.Geom[0])
		if err != nil {
			return nil, errors.Wrap(err, "Can't create source vertex")
		}
		target, err := net.vertex(segment.Geom[len(segment.Geom)-1])
		if err != nil {
			return nil, errors.Wrap(err, "Can't create target vertex")
		}
		if source == target {
			// Closed rings carry no routable edge
			continue
		}
		forward := [2]int64{source, target}
		if _, ok := net.geometry[forward]; ok {
			// Keep the first of parallel segments between the same endpoints
			continue
		}
		weight := getLength(segment.Geom)
		if spherical {
			weight = getSphericalLength(segment.Geom)
		}
		err = net.graph.AddEdge(source, target, weight)
		if err != nil {
			return nil, errors.Wrap(err, "Can't add forward edge")
		}
		err = net.graph.AddEdge(target, source, weight)
		if err != nil {
			return nil, errors.Wrap(err, "Can't add backward edge")
		}
		net.geometry[forward] = segment.Geom
		net.geometry[[2]int64{target, source}] = reverseLine(segment.Geom)
		net.values[forward] = segment.Values
		net.values[[2]int64{target, source}] = segment.Values
	}
	net.graph.PrepareContractionHierarchies()
	return net, nil
}

func (net *SegmentNetwork) vertex(pt orb.Point) (int64, error) {
	if label, ok := net.vertices[pt]; ok {
		return label, nil
	}
	label := int64(len(net.vertices))
	err := net.graph.CreateVertex(label)
	if err != nil {
		return 0, err
	}
	net.vertices[pt] = label
	net.coords[label] = pt
	return label, nil
}

// NearestVertex returns the graph vertex closest (Euclidean) to the given point
func (net *SegmentNetwork) NearestVertex(pt orb.Point) (int64, bool) {
	best := int64(-1)
	bestDistance := math.Inf(1)
	for label, coord := range net.coords {
		d := findDistance(pt, coord)
		if d < bestDistance || (d == bestDistance && label < best) {
			best = label
			bestDistance = d
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// ShortestPath finds the cheapest path between two coordinates snapped to their
// nearest network vertices. Returns total cost and the full path geometry.
func (net *SegmentNetwork) ShortestPath(from, to orb.Point) (float64, orb.LineString, error) {
	source, ok := net.NearestVertex(from)
	if !ok {
		return 0, nil, errors.New("network has no vertices")
	}
	target, ok := net.NearestVertex(to)
	if !ok {
		return 0, nil, errors.New("network has no vertices")
	}
	if source == target {
		return 0, orb.LineString{net.coords[source]}, nil
	}
	cost, path := net.graph.ShortestPath(source, target)
	if len(path) < 2 {
		return 0, nil, errors.Errorf("No path between vertices %d and %d", source, target)
	}
	geom := orb.LineString{}
	for i := 1; i < len(path); i++ {
		edgeGeom, ok := net.geometry[[2]int64{path[i-1], path[i]}]
		if !ok {
			// Shortcut edges are unpacked by the library; a missing pair means the
			// two vertices are not directly connected by a stored segment
			return 0, nil, errors.Errorf("No geometry for edge %d -> %d", path[i-1], path[i])
		}
		if len(geom) > 0 {
			edgeGeom = edgeGeom[1:]
		}
		geom = append(geom, edgeGeom...)
	}
	return cost, geom, nil
}

// EdgeValues returns aggregated attribute values of the segment connecting
// two adjacent network vertices
func (net *SegmentNetwork) EdgeValues(from, to int64) (map[string]float64, bool) {
	values, ok := net.values[[2]int64{from, to}]
	return values, ok
}
