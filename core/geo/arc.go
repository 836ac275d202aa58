package geo

import (
	"math"
	"strconv"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// ArcStepDegrees is the angular step used to approximate circles and arcs.
// A full circle yields 360/ArcStepDegrees vertices plus the closing vertex.
const ArcStepDegrees = 5.0

// MetersPerNM converts nautical miles to meters.
const MetersPerNM = 1852.0

// Circle expands a circle around center into a closed ring.
func Circle(center orb.Point, radiusNM, step float64) (orb.Ring, error) {
	if radiusNM <= 0 || math.IsNaN(radiusNM) {
		return nil, newError("circle radius must be positive", strconv.FormatFloat(radiusNM, 'f', -1, 64))
	}
	if step <= 0 {
		step = ArcStepDegrees
	}
	n := int(math.Round(360 / step))
	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		ring = append(ring, orbgeo.PointAtBearingAndDistance(center, float64(i)*step, radiusNM*MetersPerNM))
	}
	ring = append(ring, ring[0])
	return ring, nil
}

// Arc expands the arc from bearing fromBrg to toBrg (degrees true) around center.
// The returned vertices include both end points. Clockwise follows increasing bearings.
func Arc(center orb.Point, radiusNM, fromBrg, toBrg float64, clockwise bool, step float64) ([]orb.Point, error) {
	if radiusNM <= 0 || math.IsNaN(radiusNM) {
		return nil, newError("arc radius must be positive", strconv.FormatFloat(radiusNM, 'f', -1, 64))
	}
	if step <= 0 {
		step = ArcStepDegrees
	}

	var sweep float64
	if clockwise {
		sweep = normalizeBearing(toBrg - fromBrg)
	} else {
		sweep = -normalizeBearing(fromBrg - toBrg)
	}
	if sweep == 0 {
		sweep = 360
		if !clockwise {
			sweep = -360
		}
	}

	steps := int(math.Ceil(math.Abs(sweep) / step))
	direction := 1.0
	if sweep < 0 {
		direction = -1
	}
	distance := radiusNM * MetersPerNM
	points := make([]orb.Point, 0, steps+1)
	for i := 0; i < steps; i++ {
		brg := fromBrg + direction*float64(i)*step
		points = append(points, orbgeo.PointAtBearingAndDistance(center, normalizeBearing(brg), distance))
	}
	points = append(points, orbgeo.PointAtBearingAndDistance(center, normalizeBearing(toBrg), distance))
	return points, nil
}

// ArcBetween expands the arc from one boundary point to another around center.
// The exact end points are kept so adjacent segments join without gaps.
func ArcBetween(center, from, to orb.Point, clockwise bool, step float64) ([]orb.Point, error) {
	radiusNM := orbgeo.Distance(center, from) / MetersPerNM
	if radiusNM == 0 {
		return nil, newError("arc start coincides with its centre", "")
	}
	points, err := Arc(center, radiusNM, orbgeo.Bearing(center, from), orbgeo.Bearing(center, to), clockwise, step)
	if err != nil {
		return nil, err
	}
	points[0] = from
	points[len(points)-1] = to
	return points, nil
}

func normalizeBearing(b float64) float64 {
	b = math.Mod(b, 360)
	if b < 0 {
		b += 360
	}
	return b
}
