package stplanr

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedReduction reduction kind is not one of sum/count/mean/max
	ErrUnsupportedReduction = errors.New("unsupported reduction")
	// ErrInvalidTolerance coordinate tolerance is negative
	ErrInvalidTolerance = errors.New("coordinate tolerance must be non-negative")
	// ErrNoAttributeColumns no attribute columns requested for a value-based reduction
	ErrNoAttributeColumns = errors.New("at least one attribute column is required")
)

// MissingAttributeError reports a requested attribute column absent on some route
type MissingAttributeError struct {
	RouteIndex int
	Column     string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("attribute column '%s' is not present on route %d", e.Column, e.RouteIndex)
}

// OverlineConfig is the configuration surface of the aggregation
type OverlineConfig struct {
	// Columns are attribute names to aggregate. May be left empty for REDUCTION_COUNT only,
	// in which case the single output column is named 'count'.
	Columns []string
	// Reduction combines contributions of multiple routes to the same segment
	Reduction ReductionKind
	// Tolerance quantizes coordinates before identity checks. Zero means exact match.
	Tolerance float64
	// Directed keeps traversal direction in segment identity. Default (false) aggregates
	// opposite traversals of the same geometry together.
	Directed bool
	// Workers > 1 enables merge-reduce aggregation over private per-worker registries.
	// The result is identical to the sequential one.
	Workers int
}

// Diagnostics summarizes per-record issues recovered during aggregation
type Diagnostics struct {
	InputRoutes      int
	DegenerateRoutes []int // indices of routes with <2 distinct points after snapping
	DroppedSegments  int   // zero-length segments removed after snapping
	DistinctSegments int
}

// OverlineResult is the aggregated flow network: non-overlapping polyline segments,
// each carrying the reduced attribute values of every input route passing through it
type OverlineResult struct {
	Segments    []OutputRoute
	Columns     []string
	Diagnostics Diagnostics
}

// Overline splits possibly-overlapping routes into atomic segments, reduces attribute
// values over geometrically coincident segments and fuses same-valued adjacent segments
// back into maximal polylines. All-or-nothing: configuration and attribute errors abort
// before any aggregation work, no partial result is ever returned.
func Overline(routes []Route, cfg OverlineConfig) (*OverlineResult, error) {
	if cfg.Tolerance < 0 {
		return nil, errors.Wrapf(ErrInvalidTolerance, "got %f", cfg.Tolerance)
	}
	if !cfg.Reduction.valid() {
		return nil, errors.Wrapf(ErrUnsupportedReduction, "reduction kind %d", cfg.Reduction)
	}
	columns := cfg.Columns
	if len(columns) == 0 {
		if cfg.Reduction != REDUCTION_COUNT {
			return nil, ErrNoAttributeColumns
		}
		columns = []string{"count"}
	} else {
		for i, route := range routes {
			for _, column := range columns {
				if _, ok := route.Attributes[column]; !ok {
					return nil, &MissingAttributeError{RouteIndex: i, Column: column}
				}
			}
		}
	}

	registry := newSegmentRegistry(columns, cfg.Directed, cfg.Tolerance)
	if cfg.Workers > 1 && len(routes) > 1 {
		aggregateParallel(registry, routes, cfg)
	} else {
		for i, route := range routes {
			registry.addRoute(i, route)
		}
	}
	sort.Ints(registry.degenerateRoutes)

	records := registry.finalized()
	pieces := make([]atomicPiece, len(records))
	for i, rec := range records {
		values := make([]float64, len(columns))
		for c := range columns {
			values[c] = rec.Value(c, cfg.Reduction)
		}
		pieces[i] = atomicPiece{a: rec.key.a, b: rec.key.b, values: values}
	}

	// Count is integral, adjacent segments must match exactly to fuse; value-based
	// reductions fuse within the same tolerance used for coordinate identity
	valueTolerance := cfg.Tolerance
	if cfg.Reduction == REDUCTION_COUNT {
		valueTolerance = 0
	}

	return &OverlineResult{
		Segments: relinearize(pieces, columns, valueTolerance, cfg.Directed),
		Columns:  columns,
		Diagnostics: Diagnostics{
			InputRoutes:      len(routes),
			DegenerateRoutes: registry.degenerateRoutes,
			DroppedSegments:  registry.droppedSegments,
			DistinctSegments: len(records),
		},
	}, nil
}

// aggregateParallel fans routes out to private per-worker registries and merges
// the partials back into the shared one. Records buffer raw contributions, so
// sharding does not change the materialized values.
func aggregateParallel(registry *segmentRegistry, routes []Route, cfg OverlineConfig) {
	workers := cfg.Workers
	if workers > len(routes) {
		workers = len(routes)
	}
	shards := make([]*segmentRegistry, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		shards[w] = newSegmentRegistry(registry.columns, cfg.Directed, cfg.Tolerance)
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(routes); i += workers {
				shards[w].addRoute(i, routes[i])
			}
		}(w)
	}
	wg.Wait()
	for _, shard := range shards {
		registry.merge(shard)
	}
}

// ExportToCSV writes aggregated segments into a ';'-separated CSV file.
// Geometry column format is selected by geomFormat: 'wkt' or 'geojson'.
func (res *OverlineResult) ExportToCSV(fname string, geomFormat string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	header := append([]string{"id"}, res.Columns...)
	header = append(header, "geom")
	err = writer.Write(header)
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	useGeoJSON := strings.ToLower(geomFormat) == "geojson"
	for i, segment := range res.Segments {
		row := make([]string, 0, len(header))
		row = append(row, fmt.Sprintf("%d", i))
		for _, column := range res.Columns {
			row = append(row, fmt.Sprintf("%f", segment.Values[column]))
		}
		if useGeoJSON {
			row = append(row, PrepareGeoJSONLinestring(segment.Geom))
		} else {
			row = append(row, PrepareWKTLinestring(segment.Geom))
		}
		err = writer.Write(row)
		if err != nil {
			return errors.Wrap(err, "Can't write segment")
		}
	}
	return nil
}
