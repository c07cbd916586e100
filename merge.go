package stplanr

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// OutputRoute is a maximal run of mutually adjacent atomic segments carrying
// identical aggregated values, fused into a single polyline. Never mutated after creation.
type OutputRoute struct {
	Geom   orb.LineString
	Values map[string]float64
}

// atomicPiece is one atomic segment with its aggregated values materialized,
// ready for re-linearization
type atomicPiece struct {
	a, b   orb.Point
	values []float64
}

// equalValues compares materialized value vectors componentwise within the given
// tolerance. Zero tolerance demands exact equality, which is what integral
// reductions such as count use.
func equalValues(v1, v2 []float64, tolerance float64) bool {
	if len(v1) != len(v2) {
		return false
	}
	for i := range v1 {
		if math.Abs(v1[i]-v2[i]) > tolerance {
			return false
		}
	}
	return true
}

// otherEnd returns the endpoint of the piece opposite to the given one
func otherEnd(piece atomicPiece, at orb.Point) orb.Point {
	if piece.a == at {
		return piece.b
	}
	return piece.a
}

// continuation returns the only unvisited piece continuing a chain through the given
// endpoint. The endpoint must be touched by exactly two pieces carrying the chain's
// values; any other degree is a branch point (or a dead end) and stops the chain.
// Splitting at branches instead of picking a continuation keeps the output deterministic.
// A candidate leading straight back to prev is a directed twin of the segment just
// traversed and never continues a chain.
func continuation(adjacency map[orb.Point][]int, pieces []atomicPiece, visited []bool, prev, at orb.Point, values []float64, tolerance float64) (int, bool) {
	sameValued := 0
	candidate := -1
	for _, idx := range adjacency[at] {
		if !equalValues(pieces[idx].values, values, tolerance) {
			continue
		}
		sameValued++
		if !visited[idx] && otherEnd(pieces[idx], at) != prev {
			candidate = idx
		}
	}
	if sameValued != 2 || candidate < 0 {
		return 0, false
	}
	return candidate, true
}

// directedContinuation is the directed analog of continuation: pieces keep their
// traversal direction, so a chain continues through an endpoint only when exactly
// one same-valued piece enters it and exactly one leaves it. When forward is true
// the chain grows along the flow and the candidate is the leaving piece, otherwise
// the chain grows against the flow and the candidate is the entering piece.
func directedContinuation(adjacency map[orb.Point][]int, pieces []atomicPiece, visited []bool, prev, at orb.Point, values []float64, tolerance float64, forward bool) (int, bool) {
	entering, leaving := 0, 0
	candidate := -1
	for _, idx := range adjacency[at] {
		if !equalValues(pieces[idx].values, values, tolerance) {
			continue
		}
		if pieces[idx].a == at {
			leaving++
			if forward && !visited[idx] && pieces[idx].b != prev {
				candidate = idx
			}
		}
		if pieces[idx].b == at {
			entering++
			if !forward && !visited[idx] && pieces[idx].a != prev {
				candidate = idx
			}
		}
	}
	if entering != 1 || leaving != 1 || candidate < 0 {
		return 0, false
	}
	return candidate, true
}

// relinearize fuses chains of same-valued adjacent atomic pieces into output routes.
// Pieces must come in canonical key order; chains are seeded from the lowest unvisited
// piece and extended in both directions, so repeated runs produce identical output.
// Undirected chains are normalized to run from their lower endpoint; directed chains
// keep the traversal direction of their constituent pieces.
func relinearize(pieces []atomicPiece, columns []string, valueTolerance float64, directed bool) []OutputRoute {
	adjacency := make(map[orb.Point][]int)
	for i := range pieces {
		adjacency[pieces[i].a] = append(adjacency[pieces[i].a], i)
		adjacency[pieces[i].b] = append(adjacency[pieces[i].b], i)
	}

	extend := func(visited []bool, prev, at orb.Point, values []float64, forward bool) (int, bool) {
		if directed {
			return directedContinuation(adjacency, pieces, visited, prev, at, values, valueTolerance, forward)
		}
		return continuation(adjacency, pieces, visited, prev, at, values, valueTolerance)
	}

	type chain struct {
		geom   orb.LineString
		values []float64
	}

	visited := make([]bool, len(pieces))
	chains := []chain{}
	for i := range pieces {
		if visited[i] {
			continue
		}
		visited[i] = true
		values := pieces[i].values
		geom := orb.LineString{pieces[i].a, pieces[i].b}
		// Extend the chain forward from its tail
		for {
			next, ok := extend(visited, geom[len(geom)-2], geom[len(geom)-1], values, true)
			if !ok {
				break
			}
			visited[next] = true
			geom = append(geom, otherEnd(pieces[next], geom[len(geom)-1]))
		}
		// Extend the chain backward from its head
		for {
			next, ok := extend(visited, geom[1], geom[0], values, false)
			if !ok {
				break
			}
			visited[next] = true
			geom = append(orb.LineString{otherEnd(pieces[next], geom[0])}, geom...)
		}
		if !directed && pointLess(geom[len(geom)-1], geom[0]) {
			geom = reverseLine(geom)
		}
		chains = append(chains, chain{geom: geom, values: values})
	}

	// Stable output ordering: canonical order of the lowest constituent point,
	// ties broken by pointwise geometry comparison, then by values
	sort.Slice(chains, func(i, j int) bool {
		pi := lowestPoint(chains[i].geom)
		pj := lowestPoint(chains[j].geom)
		if pi != pj {
			return pointLess(pi, pj)
		}
		if !equalLines(chains[i].geom, chains[j].geom) {
			return lineLess(chains[i].geom, chains[j].geom)
		}
		return valuesLess(chains[i].values, chains[j].values)
	})

	out := make([]OutputRoute, 0, len(chains))
	for _, c := range chains {
		valuesByColumn := make(map[string]float64, len(columns))
		for i, column := range columns {
			valuesByColumn[column] = c.values[i]
		}
		out = append(out, OutputRoute{Geom: c.geom, Values: valuesByColumn})
	}
	return out
}

func lowestPoint(line orb.LineString) orb.Point {
	lowest := line[0]
	for _, pt := range line[1:] {
		if pointLess(pt, lowest) {
			lowest = pt
		}
	}
	return lowest
}

func lineLess(l1, l2 orb.LineString) bool {
	n := len(l1)
	if len(l2) < n {
		n = len(l2)
	}
	for i := 0; i < n; i++ {
		if l1[i] != l2[i] {
			return pointLess(l1[i], l2[i])
		}
	}
	return len(l1) < len(l2)
}

func equalLines(l1, l2 orb.LineString) bool {
	if len(l1) != len(l2) {
		return false
	}
	for i := range l1 {
		if l1[i] != l2[i] {
			return false
		}
	}
	return true
}

func valuesLess(v1, v2 []float64) bool {
	for i := range v1 {
		if v1[i] != v2[i] {
			return v1[i] < v2[i]
		}
	}
	return false
}
