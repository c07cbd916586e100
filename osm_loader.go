package stplanr

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
)

// OSMScanner is a contract for reading OSM entities from file
type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

// OSMRoutesConfig filters OSM ways and defines how the flow attribute is read off them
type OSMRoutesConfig struct {
	EntityName string   // tag key to filter ways by, e.g. 'highway'
	Tags       []string // accepted tag values; empty set accepts any tagged way
	FlowTag    string   // way tag carrying the numeric flow value
	FlowColumn string   // attribute name the flow is stored under on produced routes
	Default    float64  // flow applied when the tag is absent or not numeric
}

// CheckTag checks if incoming tag is represented in configuration
func (cfg *OSMRoutesConfig) CheckTag(tag string) bool {
	if len(cfg.Tags) == 0 {
		return true
	}
	for i := range cfg.Tags {
		if cfg.Tags[i] == tag {
			return true
		}
	}
	return false
}

// RoutesFromOSMFile reads matching ways from an *.osm (XML) or *.osm.pbf file and
// converts each way to a route carrying its flow attribute. Two passes over the file:
// ways first, then coordinates for every referenced node.
func RoutesFromOSMFile(filename string, cfg *OSMRoutesConfig, verbose bool) ([]Route, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "File open")
	}
	defer file.Close()

	scannerWays, err := prepareScanner(filename, file)
	if err != nil {
		return nil, err
	}
	defer scannerWays.Close()

	type wayData struct {
		nodes []osm.NodeID
		flow  float64
	}
	ways := []wayData{}
	nodesSeen := make(map[osm.NodeID]struct{})

	if verbose {
		fmt.Printf("Scanning ways...")
	}
	st := time.Now()
	for scannerWays.Scan() {
		obj := scannerWays.Object()
		if obj.ObjectID().Type() != "way" {
			continue
		}
		way := obj.(*osm.Way)
		tagMap := way.TagMap()
		tag, ok := tagMap[cfg.EntityName]
		if !ok {
			continue
		}
		if !cfg.CheckTag(tag) {
			continue
		}
		flow := cfg.Default
		if v, ok := tagMap[cfg.FlowTag]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				flow = parsed
			}
		}
		prepared := wayData{
			nodes: make([]osm.NodeID, len(way.Nodes)),
			flow:  flow,
		}
		for i, node := range way.Nodes {
			prepared.nodes[i] = node.ID
			nodesSeen[node.ID] = struct{}{}
		}
		ways = append(ways, prepared)
	}
	if scannerWays.Err() != nil {
		return nil, errors.Wrap(scannerWays.Err(), "Scanner error on Ways")
	}
	if verbose {
		fmt.Printf("Done in %v\n\tWays: %d\n", time.Since(st), len(ways))
	}

	// Seek file to start for the nodes pass
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return nil, errors.Wrap(err, "Can't repeat seeking")
	}
	scannerNodes, err := prepareScanner(filename, file)
	if err != nil {
		return nil, err
	}
	defer scannerNodes.Close()

	if verbose {
		fmt.Printf("Scanning nodes...")
	}
	st = time.Now()
	coordinates := make(map[osm.NodeID]orb.Point)
	for scannerNodes.Scan() {
		obj := scannerNodes.Object()
		if obj.ObjectID().Type() != "node" {
			continue
		}
		node := obj.(*osm.Node)
		if _, ok := nodesSeen[node.ID]; ok {
			delete(nodesSeen, node.ID)
			coordinates[node.ID] = orb.Point{node.Lon, node.Lat}
		}
	}
	if scannerNodes.Err() != nil {
		return nil, errors.Wrap(scannerNodes.Err(), "Scanner error on Nodes")
	}
	if verbose {
		fmt.Printf("Done in %v\n\tNodes: %d\n", time.Since(st), len(coordinates))
	}

	routes := make([]Route, 0, len(ways))
	for _, way := range ways {
		line := make(orb.LineString, 0, len(way.nodes))
		for _, nodeID := range way.nodes {
			pt, ok := coordinates[nodeID]
			if !ok {
				return nil, errors.Errorf("Missing node with id: %d", nodeID)
			}
			line = append(line, pt)
		}
		routes = append(routes, Route{
			Geom:       line,
			Attributes: map[string]float64{cfg.FlowColumn: way.flow},
		})
	}
	return routes, nil
}

// prepareScanner guesses file extension and prepares correct scanner
func prepareScanner(filename string, file *os.File) (OSMScanner, error) {
	ext := filepath.Ext(filename)
	switch ext {
	case ".osm", ".xml":
		return osmxml.New(context.Background(), file), nil
	case ".pbf":
		return osmpbf.New(context.Background(), file, 4), nil
	default:
		return nil, errors.Errorf("File extension '%s' for file '%s' is not handled yet", ext, filename)
	}
}
