package stplanr

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Zone is a traffic analysis zone reduced to its centroid
type Zone struct {
	ID       string
	Centroid orb.Point
}

// ODPair is one row of an origin-destination table: a pair of zone identifiers
// plus named numeric columns (trip counts by mode, etc.)
type ODPair struct {
	Origin      string
	Destination string
	Attributes  map[string]float64
}

// ODToRoutes converts an OD table into straight-line routes between zone centroids.
// Intra-zonal pairs (origin == destination) produce no geometry and are skipped;
// their count is returned alongside the routes. A pair referencing an unknown zone
// is fatal and aborts the conversion.
func ODToRoutes(pairs []ODPair, zones []Zone) ([]Route, int, error) {
	centroids := make(map[string]orb.Point, len(zones))
	for _, zone := range zones {
		centroids[zone.ID] = zone.Centroid
	}
	routes := make([]Route, 0, len(pairs))
	intrazonal := 0
	for i, pair := range pairs {
		if pair.Origin == pair.Destination {
			intrazonal++
			continue
		}
		origin, ok := centroids[pair.Origin]
		if !ok {
			return nil, 0, errors.Errorf("Origin zone '%s' for OD pair %d is not found", pair.Origin, i)
		}
		destination, ok := centroids[pair.Destination]
		if !ok {
			return nil, 0, errors.Errorf("Destination zone '%s' for OD pair %d is not found", pair.Destination, i)
		}
		attributes := make(map[string]float64, len(pair.Attributes))
		for name, value := range pair.Attributes {
			attributes[name] = value
		}
		routes = append(routes, Route{
			Geom:       orb.LineString{origin, destination},
			Attributes: attributes,
		})
	}
	return routes, intrazonal, nil
}

// ReadZonesCSV reads zone centroids from a ';'-separated CSV file with
// header 'id;lon;lat'
func ReadZonesCSV(fname string) ([]Zone, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'

	_, err = reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read header")
	}

	zones := []Zone{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "Can't read record")
		}
		if len(record) < 3 {
			return nil, errors.Errorf("Malformed zone record: %v", record)
		}
		lon, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse longitude for zone '%s'", record[0])
		}
		lat, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse latitude for zone '%s'", record[0])
		}
		zones = append(zones, Zone{ID: record[0], Centroid: orb.Point{lon, lat}})
	}
	return zones, nil
}

// ReadODPairsCSV reads an OD table from a ';'-separated CSV file. First two header
// columns must be 'origin' and 'destination'; every remaining header column is parsed
// as a numeric attribute.
func ReadODPairsCSV(fname string) ([]ODPair, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read header")
	}
	if len(header) < 2 || header[0] != "origin" || header[1] != "destination" {
		return nil, errors.Errorf("Header must start with 'origin;destination', got: %v", header)
	}

	pairs := []ODPair{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "Can't read record")
		}
		if len(record) != len(header) {
			return nil, errors.Errorf("Record length %d does not match header length %d", len(record), len(header))
		}
		attributes := make(map[string]float64, len(header)-2)
		for c := 2; c < len(header); c++ {
			value, err := strconv.ParseFloat(record[c], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "Can't parse column '%s' for OD pair %d", header[c], len(pairs))
			}
			attributes[header[c]] = value
		}
		pairs = append(pairs, ODPair{Origin: record[0], Destination: record[1], Attributes: attributes})
	}
	return pairs, nil
}
