package stplanr

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// segmentKey is identity of an atomic segment: a pair of endpoints.
// For undirected keys the endpoints are stored in canonical point order,
// so {P,Q} and {Q,P} collapse into the same key.
type segmentKey struct {
	a orb.Point
	b orb.Point
}

// newSegmentKey builds canonical key for segment between two points
func newSegmentKey(p, q orb.Point, directed bool) segmentKey {
	if directed || pointLess(p, q) {
		return segmentKey{a: p, b: q}
	}
	return segmentKey{a: q, b: p}
}

// keyLess defines total order over segment keys used for stable output ordering
func keyLess(k1, k2 segmentKey) bool {
	if k1.a != k2.a {
		return pointLess(k1.a, k2.a)
	}
	return pointLess(k1.b, k2.b)
}

// SegmentRecord holds all contributions folded into a single atomic segment
type SegmentRecord struct {
	key           segmentKey
	contributions [][]float64 // per requested column, one value per contributing route
	routes        []int       // indices of contributing routes
}

// Endpoints returns both endpoints of the segment in canonical order
func (rec *SegmentRecord) Endpoints() (orb.Point, orb.Point) {
	return rec.key.a, rec.key.b
}

// Count returns number of contributions folded into the record
func (rec *SegmentRecord) Count() int {
	return len(rec.routes)
}

// Routes returns indices of all routes that contributed to the segment
func (rec *SegmentRecord) Routes() []int {
	return rec.routes
}

// Value materializes aggregated value for i-th requested column.
// Sums fold contributions in ascending value order, so the result depends only
// on the multiset of contributions, never on the order routes were processed in:
// permuting the input collection or sharding it over workers yields bitwise
// identical values.
func (rec *SegmentRecord) Value(i int, reduction ReductionKind) float64 {
	switch reduction {
	case REDUCTION_COUNT:
		return float64(len(rec.routes))
	case REDUCTION_MAX:
		best := math.Inf(-1)
		for _, v := range rec.contributions[i] {
			best = math.Max(best, v)
		}
		return best
	case REDUCTION_MEAN:
		return sortedSum(rec.contributions[i]) / float64(len(rec.routes))
	default:
		return sortedSum(rec.contributions[i])
	}
}

// sortedSum folds values in ascending order
func sortedSum(values []float64) float64 {
	ordered := make([]float64, len(values))
	copy(ordered, values)
	sort.Float64s(ordered)
	total := 0.0
	for _, v := range ordered {
		total += v
	}
	return total
}
