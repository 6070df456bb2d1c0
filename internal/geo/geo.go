// Package geo implements the distance/bearing/CPA geometry this repo
// treats as a total function over positions and motion vectors. It is
// built on golang/geo's spherical primitives rather than hand-rolled
// trigonometry, per the reference pack's richest geometry dependency.
package geo

import (
	"math"
	"time"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const earthRadiusMetres = 6371000.0

// Point is a WGS-84-ish latitude/longitude pair in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

func (p Point) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Latitude, p.Longitude)
}

// Distance returns the great-circle distance between a and b, in metres.
func Distance(a, b Point) float64 {
	angle := a.latLng().Distance(b.latLng())
	return float64(angle) * earthRadiusMetres
}

// Bearing returns the initial true bearing from a to b, in degrees
// [0, 360).
func Bearing(a, b Point) float64 {
	lat1 := s1.Angle(a.Latitude * math.Pi / 180).Radians()
	lat2 := s1.Angle(b.Latitude * math.Pi / 180).Radians()
	dLon := s1.Angle((b.Longitude - a.Longitude) * math.Pi / 180).Radians()

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	theta := math.Atan2(y, x)

	deg := theta * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Destination returns the point reached by travelling distanceMetres
// from origin along the given true bearing (degrees), over the
// great-circle path.
func Destination(origin Point, bearingDegrees, distanceMetres float64) Point {
	latLng := s2.LatLngFromDegrees(origin.Latitude, origin.Longitude)
	brng := bearingDegrees * math.Pi / 180
	angularDist := s1.Angle(distanceMetres / earthRadiusMetres)

	lat1 := latLng.Lat.Radians()
	lon1 := latLng.Lng.Radians()

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(float64(angularDist)) +
		math.Cos(lat1)*math.Sin(float64(angularDist))*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(float64(angularDist))*math.Cos(lat1),
		math.Cos(float64(angularDist))-math.Sin(lat1)*math.Sin(lat2))

	return Point{
		Latitude:  lat2 * 180 / math.Pi,
		Longitude: lon2 * 180 / math.Pi,
	}
}

// Motion is a position with a course-over-ground (degrees) and
// speed-over-ground (knots) used to project future positions.
type Motion struct {
	Position Point
	COG      float64 // degrees true
	SOG      float64 // knots
}

func (m Motion) project(d time.Duration) Point {
	if m.SOG <= 0 {
		return m.Position
	}
	hours := d.Hours()
	nauticalMiles := m.SOG * hours
	return Destination(m.Position, m.COG, nauticalMiles*1852.0)
}

// ClosestPointOfApproach estimates the minimum future distance between
// two moving vessels and the time at which it occurs, by sampling their
// great-circle projected tracks over a bounded horizon. This is
// advisory geometry, not radar-grade collision prediction: it assumes
// each vessel holds its current course and speed.
//
// now is the time both motions are current as of; horizon bounds how
// far into the future the search looks (callers typically pass a
// multiple of their alarm warning-time parameter).
func ClosestPointOfApproach(own, target Motion, now time.Time, horizon time.Duration) (cpa float64, tcpa time.Time) {
	const steps = 240
	step := horizon / steps

	bestDist := Distance(own.Position, target.Position)
	bestAt := now

	for i := 1; i <= steps; i++ {
		d := time.Duration(i) * step
		ownPos := own.project(d)
		targetPos := target.project(d)
		dist := Distance(ownPos, targetPos)
		if dist < bestDist {
			bestDist = dist
			bestAt = now.Add(d)
		}
	}

	return bestDist, bestAt
}
