package nmea

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidSentence(t *testing.T) {
	body := "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"
	s, err := Parse("$" + body + "*" + Checksum(body))
	require.NoError(t, err)
	assert.Equal(t, "GP", s.Talker)
	assert.Equal(t, "RMC", s.Type)
	assert.Equal(t, "GPRMC", s.ID())
	assert.Len(t, s.Fields, 11)
}

func TestParse_BadChecksum(t *testing.T) {
	body := "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"
	_, err := Parse("$" + body + "*FF")
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestParse_MalformedLine(t *testing.T) {
	_, err := Parse("not a sentence")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse_NoChecksumIsAccepted(t *testing.T) {
	s, err := Parse("!AIVDM,1,1,,A,13u?etPv2;0n:dDPwUM1U1Cb069D,0")
	require.NoError(t, err)
	assert.Equal(t, "AI", s.Talker)
	assert.Equal(t, "VDM", s.Type)
}

func TestZDATime(t *testing.T) {
	body := "GPZDA,123519.00,15,12,2024"
	s, err := Parse("$" + body + "*" + Checksum(body))
	require.NoError(t, err)

	require.True(t, s.IsZDA())
	zt, ok := s.ZDATime()
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 12, 15, 12, 35, 19, 0, time.UTC), zt)
}

func TestZDATime_NonZDAIsFalse(t *testing.T) {
	body := "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"
	s, err := Parse("$" + body + "*" + Checksum(body))
	require.NoError(t, err)
	assert.False(t, s.IsZDA())
	_, ok := s.ZDATime()
	assert.False(t, ok)
}
