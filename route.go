package stplanr

import (
	"github.com/paulmach/orb"
)

// Route is a single origin-to-destination geometry with named numeric attributes.
// All routes of one invocation must share a single spatial reference frame.
// Identity of a route is its positional index in the input collection.
type Route struct {
	Geom       orb.LineString
	Attributes map[string]float64
}

// decompose streams atomic (two-vertex) segments of the route into the emit callback,
// snapping every vertex to the tolerance grid first. Returns number of emitted segments
// and number of degenerate (zero-length after snapping) segments dropped.
// A route with fewer than 2 points emits nothing.
func (rt Route) decompose(tolerance float64, emit func(p, q orb.Point)) (emitted int, dropped int) {
	if len(rt.Geom) < 2 {
		return 0, 0
	}
	prev := snapPoint(rt.Geom[0], tolerance)
	for i := 1; i < len(rt.Geom); i++ {
		cur := snapPoint(rt.Geom[i], tolerance)
		if cur == prev {
			dropped++
			continue
		}
		emit(prev, cur)
		emitted++
		prev = cur
	}
	return emitted, dropped
}
