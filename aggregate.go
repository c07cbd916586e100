package stplanr

import (
	"sort"

	"github.com/paulmach/orb"
)

// segmentRegistry maps canonical segment identity to its accumulated contributions.
// It is a plain locally-scoped structure with an explicit merge operation,
// so parallel aggregation can fold into private registries and combine them afterwards.
// Records buffer raw per-route contributions instead of a running accumulator:
// reductions are materialized later by SegmentRecord.Value in a canonical order,
// which keeps floating point sums independent of input permutation and sharding.
type segmentRegistry struct {
	columns   []string
	directed  bool
	tolerance float64
	records   map[segmentKey]*SegmentRecord

	degenerateRoutes []int
	droppedSegments  int
}

func newSegmentRegistry(columns []string, directed bool, tolerance float64) *segmentRegistry {
	return &segmentRegistry{
		columns:   columns,
		directed:  directed,
		tolerance: tolerance,
		records:   make(map[segmentKey]*SegmentRecord),
	}
}

// addRoute folds every atomic segment of the route into the registry.
// Routes yielding no segments at all are recorded as degenerate.
func (reg *segmentRegistry) addRoute(routeIdx int, route Route) {
	emitted, dropped := route.decompose(reg.tolerance, func(p, q orb.Point) {
		key := newSegmentKey(p, q, reg.directed)
		rec, ok := reg.records[key]
		if !ok {
			rec = &SegmentRecord{
				key:           key,
				contributions: make([][]float64, len(reg.columns)),
			}
			reg.records[key] = rec
		}
		for i, column := range reg.columns {
			rec.contributions[i] = append(rec.contributions[i], route.Attributes[column])
		}
		rec.routes = append(rec.routes, routeIdx)
	})
	reg.droppedSegments += dropped
	if emitted == 0 {
		reg.degenerateRoutes = append(reg.degenerateRoutes, routeIdx)
	}
}

// merge folds another registry into the current one.
// Both registries must share columns, direction mode and tolerance.
func (reg *segmentRegistry) merge(other *segmentRegistry) {
	for key, otherRec := range other.records {
		rec, ok := reg.records[key]
		if !ok {
			reg.records[key] = otherRec
			continue
		}
		for i := range rec.contributions {
			rec.contributions[i] = append(rec.contributions[i], otherRec.contributions[i]...)
		}
		rec.routes = append(rec.routes, otherRec.routes...)
	}
	reg.degenerateRoutes = append(reg.degenerateRoutes, other.degenerateRoutes...)
	reg.droppedSegments += other.droppedSegments
}

// finalized returns all records sorted by canonical key order
func (reg *segmentRegistry) finalized() []*SegmentRecord {
	out := make([]*SegmentRecord, 0, len(reg.records))
	for _, rec := range reg.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return keyLess(out[i].key, out[j].key)
	})
	return out
}
