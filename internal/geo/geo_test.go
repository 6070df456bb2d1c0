package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDistance_SamePointIsZero(t *testing.T) {
	p := Point{Latitude: 42.25, Longitude: -70.5}
	assert.InDelta(t, 0, Distance(p, p), 1e-6)
}

func TestDistance_KnownSeparation(t *testing.T) {
	// Roughly one degree of longitude at the equator is ~111.2km.
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 0, Longitude: 1}
	assert.InDelta(t, 111195.0, Distance(a, b), 1000)
}

func TestBearing_DueNorth(t *testing.T) {
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 1, Longitude: 0}
	assert.InDelta(t, 0, Bearing(a, b), 1)
}

func TestBearing_DueEast(t *testing.T) {
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 0, Longitude: 1}
	assert.InDelta(t, 90, Bearing(a, b), 1)
}

func TestDestination_RoundTripsWithBearing(t *testing.T) {
	origin := Point{Latitude: 42.0, Longitude: -70.0}
	dest := Destination(origin, 90, 10000)

	gotBearing := Bearing(origin, dest)
	assert.InDelta(t, 90, gotBearing, 1)
	assert.InDelta(t, 10000, Distance(origin, dest), 50)
}

func TestClosestPointOfApproach_ConvergingTracks(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	own := Motion{Position: Point{Latitude: 0, Longitude: 0}, COG: 90, SOG: 10}
	target := Motion{Position: Point{Latitude: 0.2, Longitude: 0.3}, COG: 270, SOG: 10}

	cpaDist, tcpa := ClosestPointOfApproach(own, target, now, time.Hour)

	startDist := Distance(own.Position, target.Position)
	assert.Less(t, cpaDist, startDist)
	assert.True(t, tcpa.After(now))
}

func TestClosestPointOfApproach_StationaryTargetHoldsDistance(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	own := Motion{Position: Point{Latitude: 0, Longitude: 0}, COG: 90, SOG: 0}
	target := Motion{Position: Point{Latitude: 1, Longitude: 1}, COG: 0, SOG: 0}

	cpaDist, _ := ClosestPointOfApproach(own, target, now, time.Hour)
	assert.InDelta(t, Distance(own.Position, target.Position), cpaDist, 1)
}
