package stplanr

import (
	"testing"

	"github.com/paulmach/orb"
)

func Round(x, unit float64) float64 {
	if x > 0 {
		return float64(int64(x/unit+0.5)) * unit
	}
	return float64(int64(x/unit-0.5)) * unit
}

func TestGreatCircleDistance(t *testing.T) {
	p1 := orb.Point{37.6417350769043, 55.751849391735284}
	p2 := orb.Point{37.668514251708984, 55.73261980350401}
	res := 2.71693096539 // kilometers
	gcd := greatCircleDistance(p1, p2)
	if Round(gcd, 0.0005) != Round(res, 0.0005) {
		t.Errorf("Great circle dist must be %f, but got %f", res, gcd)
	}
}

func TestGetLength(t *testing.T) {
	line := orb.LineString{{0.0, 0.0}, {3.0, 4.0}, {3.0, 8.0}}
	res := 9.0
	length := getLength(line)
	if length != res {
		t.Errorf("Length must be %f, but got %f", res, length)
	}
	short := orb.LineString{{1.0, 1.0}}
	if getLength(short) != 0.0 {
		t.Errorf("Length of single point line must be 0, but got %f", getLength(short))
	}
}

func TestGetSphericalLength(t *testing.T) {
	line := orb.LineString{
		{37.6417350769043, 55.751849391735284},
		{37.668514251708984, 55.73261980350401},
	}
	res := 2.71693096539
	length := getSphericalLength(line)
	if Round(length, 0.0005) != Round(res, 0.0005) {
		t.Errorf("Spherical length must be %f, but got %f", res, length)
	}
}

func TestPointLess(t *testing.T) {
	if !pointLess(orb.Point{0.0, 5.0}, orb.Point{1.0, 0.0}) {
		t.Errorf("Point with smaller X must be lower")
	}
	if !pointLess(orb.Point{1.0, 0.0}, orb.Point{1.0, 5.0}) {
		t.Errorf("Point with equal X and smaller Y must be lower")
	}
	if pointLess(orb.Point{1.0, 5.0}, orb.Point{1.0, 5.0}) {
		t.Errorf("Point must not be lower than itself")
	}
}

func TestSnapPoint(t *testing.T) {
	pt := orb.Point{1.00042, -0.00049}
	snapped := snapPoint(pt, 0.001)
	res := orb.Point{1.0, -0.0}
	if snapped != res {
		t.Errorf("Snapped point must be %v, but got %v", res, snapped)
	}
	untouched := snapPoint(pt, 0.0)
	if untouched != pt {
		t.Errorf("Zero tolerance must keep the point untouched, but got %v", untouched)
	}
}

func TestReverseLine(t *testing.T) {
	line := orb.LineString{{0.0, 0.0}, {1.0, 0.0}, {2.0, 0.0}}
	reversed := reverseLine(line)
	res := orb.LineString{{2.0, 0.0}, {1.0, 0.0}, {0.0, 0.0}}
	for i := range res {
		if reversed[i] != res[i] {
			t.Errorf("Point %d of reversed line must be %v, but got %v", i, res[i], reversed[i])
		}
	}
	if line[0] != (orb.Point{0.0, 0.0}) {
		t.Errorf("Source line must stay untouched")
	}
}
