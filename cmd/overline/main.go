package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/timpearson99/stplanr"
)

var (
	routesFileName = flag.String("file", "routes.geojson", "Filename of GeoJSON feature collection with LineString routes")
	out            = flag.String("out", "flows.csv", "Output filename. Extension picks the format: *.csv (';'-separated) or *.geojson")
	columnsStr     = flag.String("columns", "", "Attribute columns to aggregate (separated by commas). May be empty for reduction = count")
	reductionStr   = flag.String("reduction", "sum", "Reduction applied to shared segments. Expected values: sum / count / mean / max")
	tolerance      = flag.Float64("tolerance", 0.0, "Coordinate tolerance. Points within the tolerance grid are treated as identical. 0 means exact match")
	directed       = flag.Bool("directed", false, "Keep traversal direction in segment identity")
	workers        = flag.Int("workers", 1, "Number of aggregation workers")
	geomFormat     = flag.String("geomf", "wkt", "Format of geometry column in CSV output. Expected values: wkt / geojson")
)

func main() {

	flag.Parse()

	data, err := os.ReadFile(*routesFileName)
	if err != nil {
		fmt.Println(err)
		return
	}
	routes, err := stplanr.RoutesFromGeoJSON(data)
	if err != nil {
		fmt.Println(err)
		return
	}

	reduction, err := stplanr.ParseReduction(*reductionStr)
	if err != nil {
		fmt.Println(err)
		return
	}
	columns := []string{}
	if strings.TrimSpace(*columnsStr) != "" {
		columns = strings.Split(*columnsStr, ",")
	}

	st := time.Now()
	result, err := stplanr.Overline(routes, stplanr.OverlineConfig{
		Columns:   columns,
		Reduction: reduction,
		Tolerance: *tolerance,
		Directed:  *directed,
		Workers:   *workers,
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Aggregated %d routes into %d segments in %v\n", result.Diagnostics.InputRoutes, len(result.Segments), time.Since(st))
	if len(result.Diagnostics.DegenerateRoutes) > 0 {
		fmt.Printf("Degenerate routes skipped: %v\n", result.Diagnostics.DegenerateRoutes)
	}
	if result.Diagnostics.DroppedSegments > 0 {
		fmt.Printf("Zero-length segments dropped: %d\n", result.Diagnostics.DroppedSegments)
	}

	if strings.HasSuffix(strings.ToLower(*out), ".geojson") {
		body, err := result.ToGeoJSON()
		if err != nil {
			fmt.Println(err)
			return
		}
		err = os.WriteFile(*out, body, 0644)
		if err != nil {
			fmt.Println(err)
			return
		}
		return
	}
	err = result.ExportToCSV(*out, *geomFormat)
	if err != nil {
		fmt.Println(err)
		return
	}
}
