package stplanr

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// RoutesFromGeoJSON parses a GeoJSON feature collection of LineString features into routes.
// Every numeric property becomes a route attribute; non-numeric properties are ignored.
func RoutesFromGeoJSON(data []byte) ([]Route, error) {
	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Can't unmarshal feature collection")
	}
	routes := make([]Route, 0, len(collection.Features))
	for i, feature := range collection.Features {
		if feature.Geometry == nil || !feature.Geometry.IsLineString() {
			return nil, errors.Errorf("Feature %d is not a LineString", i)
		}
		line := make(orb.LineString, len(feature.Geometry.LineString))
		for j, pt := range feature.Geometry.LineString {
			if len(pt) < 2 {
				return nil, errors.Errorf("Feature %d has malformed coordinate at position %d", i, j)
			}
			line[j] = orb.Point{pt[0], pt[1]}
		}
		attributes := make(map[string]float64)
		for name, value := range feature.Properties {
			switch v := value.(type) {
			case float64:
				attributes[name] = v
			case int:
				attributes[name] = float64(v)
			}
		}
		routes = append(routes, Route{Geom: line, Attributes: attributes})
	}
	return routes, nil
}

// ToGeoJSON returns aggregated segments as a GeoJSON feature collection
func (res *OverlineResult) ToGeoJSON() ([]byte, error) {
	collection := geojson.NewFeatureCollection()
	for _, segment := range res.Segments {
		coordinates := make([][]float64, len(segment.Geom))
		for i, pt := range segment.Geom {
			coordinates[i] = []float64{pt[0], pt[1]}
		}
		feature := geojson.NewLineStringFeature(coordinates)
		for _, column := range res.Columns {
			feature.SetProperty(column, segment.Values[column])
		}
		collection.AddFeature(feature)
	}
	data, err := collection.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal feature collection")
	}
	return data, nil
}

// PrepareGeoJSONLinestring returns GeoJSON representation of LineString
func PrepareGeoJSONLinestring(line orb.LineString) string {
	pts2d := make([][]float64, len(line))
	for i := range line {
		pts2d[i] = []float64{line[i][0], line[i][1]}
	}
	b, err := geojson.NewLineStringGeometry(pts2d).MarshalJSON()
	if err != nil {
		fmt.Printf("Warning. Can not convert geometry to geojson format: %s", err.Error())
		return ""
	}
	return string(b)
}

// PrepareGeoJSONPoint returns GeoJSON representation of Point
func PrepareGeoJSONPoint(pt orb.Point) string {
	b, err := geojson.NewPointGeometry([]float64{pt[0], pt[1]}).MarshalJSON()
	if err != nil {
		fmt.Printf("Warning. Can not convert geometry to geojson format: %s", err.Error())
		return ""
	}
	return string(b)
}
