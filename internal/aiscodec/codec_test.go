package aiscodec

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aistrack/internal/nmea"
)

func TestPositionReport_EncodeDecodeRoundTrip(t *testing.T) {
	c := NewCodec()

	original := PositionReport{
		MMSI:             123456789,
		NavigationStatus: 0,
		RateOfTurnRaw:    10,
		RateOfTurnValid:  true,
		SOGKnots:         12.3,
		SOGValid:         true,
		PositionAccurate: true,
		Longitude:        -70.5,
		Latitude:         42.25,
		PositionValid:    true,
		COGDegrees:       180.5,
		COGValid:         true,
		TrueHeading:      181,
		HeadingValid:     true,
		TimestampSecond:  30,
		RAIM:             false,
	}

	sentences, err := c.ToSentences(original, SentenceIDVDO)
	require.NoError(t, err)
	require.Len(t, sentences, 1)

	body := sentences[0]
	s, err := nmea.Parse("!" + body + "*" + nmea.Checksum(body))
	require.NoError(t, err)

	msg, err := c.Parse("test", s)
	require.NoError(t, err)
	require.NotNil(t, msg)

	decoded, ok := msg.(PositionReport)
	require.True(t, ok)

	assert.Equal(t, original.MMSI, decoded.MMSI)
	assert.InDelta(t, original.Longitude, decoded.Longitude, 0.001)
	assert.InDelta(t, original.Latitude, decoded.Latitude, 0.001)
	assert.InDelta(t, original.SOGKnots, decoded.SOGKnots, 0.1)
	assert.InDelta(t, original.COGDegrees, decoded.COGDegrees, 0.1)
	assert.Equal(t, original.TrueHeading, decoded.TrueHeading)
	assert.True(t, decoded.PositionValid)
}

func TestSafetyBroadcast_EncodeDecodeRoundTrip(t *testing.T) {
	c := NewCodec()

	original := SafetyBroadcastMessage{SourceMMSI: 987654321, Text: "ICE NEAR BUOY 12"}

	sentences, err := c.ToSentences(original, SentenceIDVDM)
	require.NoError(t, err)
	require.Len(t, sentences, 1)

	body := sentences[0]
	s, err := nmea.Parse("!" + body + "*" + nmea.Checksum(body))
	require.NoError(t, err)

	msg, err := c.Parse("test", s)
	require.NoError(t, err)

	decoded, ok := msg.(SafetyBroadcastMessage)
	require.True(t, ok)
	assert.Equal(t, original.SourceMMSI, decoded.SourceMMSI)
	assert.Equal(t, original.Text, decoded.Text)
}

func TestParse_IgnoresNonAISSentence(t *testing.T) {
	c := NewCodec()
	s, err := nmea.Parse("$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A")
	require.NoError(t, err)

	msg, err := c.Parse("test", s)
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestParse_UnknownMessageType(t *testing.T) {
	c := &Codec{reassemblers: map[string]*reassembler{}, StrictUnknown: true}

	w := &bitWriter{}
	w.putUint(63, 6) // not a defined message type
	w.putUint(0, 2)
	w.putUint(111111111, 30)
	payload, fill := encodeArmor(w.bits)
	body := "AIVDM,1,1,,A," + payload + "," + strconv.Itoa(fill)

	s, err := nmea.Parse("!" + body + "*" + nmea.Checksum(body))
	require.NoError(t, err)

	_, err = c.Parse("test", s)
	assert.ErrorIs(t, err, ErrUnsupportedMessage)
}
