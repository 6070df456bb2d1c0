package poscache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aistrack/internal/nmea"
)

func mustParse(t *testing.T, line string) nmea.Sentence {
	t.Helper()
	s, err := nmea.Parse(line)
	require.NoError(t, err)
	return s
}

func TestUpdate_RMC(t *testing.T) {
	c := NewCache()
	now := time.Now()

	body := "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"
	s := mustParse(t, "$"+body+"*"+nmea.Checksum(body))

	c.Update(s, now)

	pos, cog, sog, _, _, msgTime, ok := c.TryGetCurrentPosition(now)
	require.True(t, ok)
	assert.InDelta(t, 48+7.038/60, pos.Latitude, 0.0001)
	assert.InDelta(t, 11+31.0/60, pos.Longitude, 0.0001)
	assert.InDelta(t, 22.4, sog, 0.01)
	assert.InDelta(t, 84.4, cog, 0.01)
	assert.Equal(t, now, msgTime)
}

func TestUpdate_RMC_VoidFixIgnored(t *testing.T) {
	c := NewCache()
	now := time.Now()

	body := "GPRMC,123519,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"
	s := mustParse(t, "$"+body+"*"+nmea.Checksum(body))
	c.Update(s, now)

	_, _, _, _, _, _, ok := c.TryGetCurrentPosition(now)
	assert.False(t, ok)
}

func TestUpdate_VTG(t *testing.T) {
	c := NewCache()
	now := time.Now()

	body := "GPVTG,054.7,T,034.4,M,005.5,N,010.2,K"
	s := mustParse(t, "$"+body+"*"+nmea.Checksum(body))
	c.Update(s, now)

	_, cog, sog, _, _, _, ok := c.TryGetCurrentPosition(now)
	require.False(t, ok, "VTG carries no position, so no current position is reported")
	assert.InDelta(t, 54.7, cog, 0.01)
	assert.InDelta(t, 5.5, sog, 0.01)
}

func TestTryGetCurrentPosition_NeverSet(t *testing.T) {
	c := NewCache()
	_, _, _, _, _, _, ok := c.TryGetCurrentPosition(time.Now())
	assert.False(t, ok)
}

func TestUpdate_SouthAndWestAreNegative(t *testing.T) {
	c := NewCache()
	now := time.Now()

	body := "GPRMC,123519,A,4807.038,S,01131.000,W,0,0,230394,,"
	s := mustParse(t, "$"+body+"*"+nmea.Checksum(body))
	c.Update(s, now)

	pos, _, _, _, _, _, ok := c.TryGetCurrentPosition(now)
	require.True(t, ok)
	assert.Less(t, pos.Latitude, 0.0)
	assert.Less(t, pos.Longitude, 0.0)
}
