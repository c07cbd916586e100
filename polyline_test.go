package stplanr

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteFromPolyline(t *testing.T) {
	// Reference example from the encoded polyline format description
	encoded := "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	route, err := RouteFromPolyline(encoded, map[string]float64{"flow": 2.0})
	require.NoError(t, err)
	require.Len(t, route.Geom, 3)

	assert.Equal(t, orb.Point{-120.2, 38.5}, route.Geom[0])
	assert.Equal(t, orb.Point{-120.95, 40.7}, route.Geom[1])
	assert.Equal(t, orb.Point{-126.453, 43.252}, route.Geom[2])
	assert.Equal(t, 2.0, route.Attributes["flow"])
}

func TestRouteFromPolylineBadInput(t *testing.T) {
	_, err := RouteFromPolyline("_p~iF~ps|U_ulLnnqC_", nil)
	assert.Error(t, err)
}

func TestEncodePolylineRoundTrip(t *testing.T) {
	line := orb.LineString{{-120.2, 38.5}, {-120.95, 40.7}, {-126.453, 43.252}}
	encoded := EncodePolyline(line)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", encoded)

	route, err := RouteFromPolyline(encoded, nil)
	require.NoError(t, err)
	assert.Equal(t, line, route.Geom)
}
