package stplanr

import (
	"testing"

	"github.com/paulmach/orb"
)

func pieceBetween(p, q orb.Point, values ...float64) atomicPiece {
	key := newSegmentKey(p, q, false)
	return atomicPiece{a: key.a, b: key.b, values: values}
}

func TestRelinearizeFusesChain(t *testing.T) {
	pieces := []atomicPiece{
		pieceBetween(orb.Point{0.0, 0.0}, orb.Point{1.0, 0.0}, 5.0),
		pieceBetween(orb.Point{1.0, 0.0}, orb.Point{2.0, 0.0}, 5.0),
		pieceBetween(orb.Point{2.0, 0.0}, orb.Point{3.0, 0.0}, 5.0),
	}
	out := relinearize(pieces, []string{"flow"}, 0.0, false)
	if len(out) != 1 {
		t.Fatalf("Same-valued chain must fuse into 1 route, but got %d", len(out))
	}
	res := orb.LineString{{0.0, 0.0}, {1.0, 0.0}, {2.0, 0.0}, {3.0, 0.0}}
	if len(out[0].Geom) != len(res) {
		t.Fatalf("Fused route must have %d points, but got %d", len(res), len(out[0].Geom))
	}
	for i := range res {
		if out[0].Geom[i] != res[i] {
			t.Errorf("Point %d must be %v, but got %v", i, res[i], out[0].Geom[i])
		}
	}
	if out[0].Values["flow"] != 5.0 {
		t.Errorf("Fused route value must be 5, but got %f", out[0].Values["flow"])
	}
}

func TestRelinearizeKeepsValueBoundaries(t *testing.T) {
	pieces := []atomicPiece{
		pieceBetween(orb.Point{0.0, 0.0}, orb.Point{1.0, 0.0}, 5.0),
		pieceBetween(orb.Point{1.0, 0.0}, orb.Point{2.0, 0.0}, 8.0),
		pieceBetween(orb.Point{2.0, 0.0}, orb.Point{3.0, 0.0}, 3.0),
	}
	out := relinearize(pieces, []string{"flow"}, 0.0, false)
	if len(out) != 3 {
		t.Fatalf("Segments with different values must stay separate, but got %d routes", len(out))
	}
	resValues := []float64{5.0, 8.0, 3.0}
	for i, route := range out {
		if len(route.Geom) != 2 {
			t.Errorf("Route %d must stay atomic, but has %d points", i, len(route.Geom))
		}
		if route.Values["flow"] != resValues[i] {
			t.Errorf("Route %d value must be %f, but got %f", i, resValues[i], route.Values["flow"])
		}
	}
}

func TestRelinearizeSplitsAtBranchPoint(t *testing.T) {
	// Three same-valued segments share the endpoint (1,0): no chain may pass through it
	pieces := []atomicPiece{
		pieceBetween(orb.Point{0.0, 0.0}, orb.Point{1.0, 0.0}, 5.0),
		pieceBetween(orb.Point{1.0, 0.0}, orb.Point{1.0, 1.0}, 5.0),
		pieceBetween(orb.Point{1.0, 0.0}, orb.Point{2.0, 0.0}, 5.0),
	}
	out := relinearize(pieces, []string{"flow"}, 0.0, false)
	if len(out) != 3 {
		t.Fatalf("Branch point must split chains, expected 3 routes, but got %d", len(out))
	}
	for i, route := range out {
		if len(route.Geom) != 2 {
			t.Errorf("Branch route %d must stay atomic, but has %d points", i, len(route.Geom))
		}
	}
}

func TestRelinearizeClosedRing(t *testing.T) {
	pieces := []atomicPiece{
		pieceBetween(orb.Point{0.0, 0.0}, orb.Point{1.0, 0.0}, 5.0),
		pieceBetween(orb.Point{1.0, 0.0}, orb.Point{1.0, 1.0}, 5.0),
		pieceBetween(orb.Point{1.0, 1.0}, orb.Point{0.0, 1.0}, 5.0),
		pieceBetween(orb.Point{0.0, 1.0}, orb.Point{0.0, 0.0}, 5.0),
	}
	out := relinearize(pieces, []string{"flow"}, 0.0, false)
	if len(out) != 1 {
		t.Fatalf("Same-valued ring must fuse into 1 route, but got %d", len(out))
	}
	geom := out[0].Geom
	if len(geom) != 5 {
		t.Fatalf("Ring route must have 5 points, but got %d", len(geom))
	}
	if geom[0] != geom[len(geom)-1] {
		t.Errorf("Ring route must be closed, got ends %v and %v", geom[0], geom[len(geom)-1])
	}
}

func TestRelinearizeStableOrdering(t *testing.T) {
	pieces := []atomicPiece{
		pieceBetween(orb.Point{2.0, 0.0}, orb.Point{3.0, 0.0}, 3.0),
		pieceBetween(orb.Point{0.0, 0.0}, orb.Point{1.0, 0.0}, 5.0),
		pieceBetween(orb.Point{1.0, 0.0}, orb.Point{2.0, 0.0}, 8.0),
	}
	out := relinearize(pieces, []string{"flow"}, 0.0, false)
	resFirsts := []orb.Point{{0.0, 0.0}, {1.0, 0.0}, {2.0, 0.0}}
	for i, route := range out {
		if route.Geom[0] != resFirsts[i] {
			t.Errorf("Route %d must start at %v, but starts at %v", i, resFirsts[i], route.Geom[0])
		}
	}
}

func TestRelinearizeDirectedTwins(t *testing.T) {
	// Directed registries may hold both traversal directions of one geometry.
	// Twins never chain into a back-and-forth polyline.
	pieces := []atomicPiece{
		{a: orb.Point{0.0, 0.0}, b: orb.Point{1.0, 0.0}, values: []float64{5.0}},
		{a: orb.Point{1.0, 0.0}, b: orb.Point{0.0, 0.0}, values: []float64{5.0}},
	}
	out := relinearize(pieces, []string{"flow"}, 0.0, true)
	if len(out) != 2 {
		t.Fatalf("Directed twins must stay separate, but got %d routes", len(out))
	}
	for i, route := range out {
		if len(route.Geom) != 2 {
			t.Errorf("Twin route %d must stay atomic, but has %d points", i, len(route.Geom))
		}
	}
}

func TestRelinearizeDirectedKeepsOrientation(t *testing.T) {
	// Flow runs towards decreasing X; fused route must keep that direction
	// instead of normalizing to the lower endpoint
	pieces := []atomicPiece{
		{a: orb.Point{1.0, 0.0}, b: orb.Point{0.0, 0.0}, values: []float64{5.0}},
		{a: orb.Point{2.0, 0.0}, b: orb.Point{1.0, 0.0}, values: []float64{5.0}},
	}
	out := relinearize(pieces, []string{"flow"}, 0.0, true)
	if len(out) != 1 {
		t.Fatalf("Same-valued directed chain must fuse into 1 route, but got %d", len(out))
	}
	res := orb.LineString{{2.0, 0.0}, {1.0, 0.0}, {0.0, 0.0}}
	if len(out[0].Geom) != len(res) {
		t.Fatalf("Fused route must have %d points, but got %d", len(res), len(out[0].Geom))
	}
	for i := range res {
		if out[0].Geom[i] != res[i] {
			t.Errorf("Point %d must be %v, but got %v", i, res[i], out[0].Geom[i])
		}
	}
}

func TestRelinearizeDirectedSplitsConvergingFlows(t *testing.T) {
	// Two same-valued flows converge at (1,0): neither continues through it
	pieces := []atomicPiece{
		{a: orb.Point{0.0, 0.0}, b: orb.Point{1.0, 0.0}, values: []float64{5.0}},
		{a: orb.Point{2.0, 0.0}, b: orb.Point{1.0, 0.0}, values: []float64{5.0}},
	}
	out := relinearize(pieces, []string{"flow"}, 0.0, true)
	if len(out) != 2 {
		t.Fatalf("Converging directed flows must stay separate, but got %d routes", len(out))
	}
}

func TestRelinearizeValueTolerance(t *testing.T) {
	pieces := []atomicPiece{
		pieceBetween(orb.Point{0.0, 0.0}, orb.Point{1.0, 0.0}, 5.0),
		pieceBetween(orb.Point{1.0, 0.0}, orb.Point{2.0, 0.0}, 5.0000004),
	}
	out := relinearize(pieces, []string{"flow"}, 0.001, false)
	if len(out) != 1 {
		t.Fatalf("Values within tolerance must fuse into 1 route, but got %d", len(out))
	}
	out = relinearize(pieces, []string{"flow"}, 0.0, false)
	if len(out) != 2 {
		t.Fatalf("Exact comparison must keep 2 routes, but got %d", len(out))
	}
}

func TestRelinearizeIdempotent(t *testing.T) {
	pieces := []atomicPiece{
		pieceBetween(orb.Point{0.0, 0.0}, orb.Point{1.0, 0.0}, 5.0),
		pieceBetween(orb.Point{1.0, 0.0}, orb.Point{2.0, 0.0}, 5.0),
		pieceBetween(orb.Point{2.0, 0.0}, orb.Point{3.0, 0.0}, 3.0),
		pieceBetween(orb.Point{3.0, 0.0}, orb.Point{4.0, 0.0}, 3.0),
	}
	first := relinearize(pieces, []string{"flow"}, 0.0, false)

	// Decompose the output back into atomic pieces and merge again
	again := []atomicPiece{}
	for _, route := range first {
		for i := 1; i < len(route.Geom); i++ {
			again = append(again, pieceBetween(route.Geom[i-1], route.Geom[i], route.Values["flow"]))
		}
	}
	second := relinearize(again, []string{"flow"}, 0.0, false)

	if len(second) != len(first) {
		t.Fatalf("Re-merging merged output must keep %d routes, but got %d", len(first), len(second))
	}
	for i := range first {
		if len(first[i].Geom) != len(second[i].Geom) {
			t.Fatalf("Route %d must keep %d points, but got %d", i, len(first[i].Geom), len(second[i].Geom))
		}
		for j := range first[i].Geom {
			if first[i].Geom[j] != second[i].Geom[j] {
				t.Errorf("Route %d point %d must be %v, but got %v", i, j, first[i].Geom[j], second[i].Geom[j])
			}
		}
		if first[i].Values["flow"] != second[i].Values["flow"] {
			t.Errorf("Route %d value must be %f, but got %f", i, first[i].Values["flow"], second[i].Values["flow"])
		}
	}
}
