package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// SRID is the spatial reference of every geometry handled by the importer.
const SRID = 4326

// Ring builds a closed, validated polygon ring from a vertex sequence.
// Consecutive duplicate vertices are collapsed and the ring is closed when the
// last vertex differs from the first.
func Ring(points []orb.Point) (orb.Ring, error) {
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		if _, err := NewPoint(p.Lon(), p.Lat()); err != nil {
			return nil, err
		}
		if n := len(ring); n > 0 && ring[n-1].Equal(p) {
			continue
		}
		ring = append(ring, p)
	}
	if len(ring) > 1 && ring[0].Equal(ring[len(ring)-1]) {
		ring = ring[:len(ring)-1]
	}

	if distinct(ring) < 3 {
		return nil, newError("ring needs at least 3 distinct vertices", "")
	}
	ring = append(ring, ring[0])

	if planar.Area(ring) == 0 {
		return nil, newError("ring has zero area", "")
	}
	if selfIntersects(ring) {
		return nil, newError("ring is self-intersecting", "")
	}
	return ring, nil
}

// Line builds a validated line string with at least two distinct vertices.
func Line(points []orb.Point) (orb.LineString, error) {
	line := make(orb.LineString, 0, len(points))
	for _, p := range points {
		if _, err := NewPoint(p.Lon(), p.Lat()); err != nil {
			return nil, err
		}
		if n := len(line); n > 0 && line[n-1].Equal(p) {
			continue
		}
		line = append(line, p)
	}
	if distinct(line) < 2 {
		return nil, newError("line needs at least 2 distinct vertices", "")
	}
	return line, nil
}

// MultiPolygon wraps validated rings as single-ring polygons.
func MultiPolygon(rings ...orb.Ring) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, 0, len(rings))
	for _, r := range rings {
		mp = append(mp, Polygon(r))
	}
	return mp
}

func distinct(points []orb.Point) int {
	seen := make(map[orb.Point]struct{}, len(points))
	for _, p := range points {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// selfIntersects reports whether any two non-adjacent edges of a closed ring touch.
func selfIntersects(r orb.Ring) bool {
	n := len(r) - 1 // edge count
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := r[i], r[i+1]
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if segmentsIntersect(a1, a2, r[j], r[j+1]) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	if math.Max(p1[0], p2[0]) < math.Min(p3[0], p4[0]) || math.Max(p3[0], p4[0]) < math.Min(p1[0], p2[0]) ||
		math.Max(p1[1], p2[1]) < math.Min(p3[1], p4[1]) || math.Max(p3[1], p4[1]) < math.Min(p1[1], p2[1]) {
		return false
	}

	d1 := orientation(p3, p4, p1)
	d2 := orientation(p3, p4, p2)
	d3 := orientation(p1, p2, p3)
	d4 := orientation(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(p3, p4, p1)) ||
		(d2 == 0 && onSegment(p3, p4, p2)) ||
		(d3 == 0 && onSegment(p1, p2, p3)) ||
		(d4 == 0 && onSegment(p1, p2, p4))
}

func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

// Polygon wraps a single validated ring.
func Polygon(r orb.Ring) orb.Polygon {
	return orb.Polygon{r}
}
