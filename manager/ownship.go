package manager

import (
	"time"

	"aistrack/internal/aiscodec"
	"aistrack/internal/nmea"
	"aistrack/target"
)

// OwnShipData is a snapshot of the own-ship sentence cache's latest fix.
type OwnShipData struct {
	Position    target.Position
	COG, SOG    float64
	Heading     float64
	HeadingKnown bool
	MessageTime time.Time
	Fresh       bool // within TrackEstimation.MaximumPositionAge of now
}

// GetOwnShipData returns the most recently cached own-ship fix, along
// with whether it is still fresh enough to steer the surveillance loop.
func (m *Manager) GetOwnShipData() OwnShipData {
	now := m.clock.Now()
	pos, cog, sog, heading, headingOK, msgTime, ok := m.positions.TryGetCurrentPosition(now)
	if !ok {
		return OwnShipData{}
	}
	return OwnShipData{
		Position:     pos,
		COG:          cog,
		SOG:          sog,
		Heading:      heading,
		HeadingKnown: headingOK,
		MessageTime:  msgTime,
		Fresh:        now.Sub(msgTime) <= m.cfg.TrackEstimation.MaximumPositionAge,
	}
}

// SendShipPositionReport encodes and emits an own-ship Class A position
// report. It returns aiscodec.ErrEncodeFailure if the payload can't be
// framed into a single sentence (Class A reports never fragment) and
// aiscodec.ErrUnsupportedEncoding if the codec can't encode it at all.
func (m *Manager) SendShipPositionReport(status target.NavigationStatus, pos target.Position, cogDegrees, sogKnots, headingDegrees float64, headingKnown bool, rateOfTurn float64, rateOfTurnKnown bool) error {
	msg := aiscodec.PositionReport{
		MMSI:             uint32(m.cfg.OwnMMSI),
		NavigationStatus: int(status),
		PositionAccurate: true,
		PositionValid:    pos.Valid(),
		Longitude:        pos.Longitude,
		Latitude:         pos.Latitude,
		COGDegrees:       cogDegrees,
		COGValid:         true,
		SOGKnots:         sogKnots,
		SOGValid:         true,
		TrueHeading:      int(headingDegrees),
		HeadingValid:     headingKnown,
		TimestampSecond:  m.clock.Now().UTC().Second(),
	}
	if rateOfTurnKnown {
		msg.RateOfTurnValid = true
		msg.RateOfTurnRaw = rateOfTurnToRaw(rateOfTurn)
	}

	sentences, err := m.codec.ToSentences(msg, m.cfg.GeneratedSentencesID)
	if err != nil {
		return err
	}
	for _, body := range sentences {
		m.emitOutbound(frame(body))
	}
	return nil
}

// SendWarningMessage issues a manually-triggered warning through the
// same debounced ledger the automatic exceptional-target and CPA
// checks use, keyed by messageID and attributed to sourceMMSI. It
// returns true if the warning was accepted, false if it was
// suppressed because messageID was already issued within
// WarningRepeatTimeout of now.
func (m *Manager) SendWarningMessage(messageID string, sourceMMSI target.MMSI, text string, now time.Time) bool {
	return m.issueWarning(messageID, sourceMMSI, text, now)
}

// SendBroadcastMessage encodes and emits a safety broadcast (message
// type 14) without going through the warning ledger — for operator-
// initiated traffic that shouldn't be subject to repeat suppression.
func (m *Manager) SendBroadcastMessage(text string) error {
	sentences, err := m.codec.ToSentences(aiscodec.SafetyBroadcastMessage{
		SourceMMSI: uint32(m.cfg.OwnMMSI),
		Text:       text,
	}, m.cfg.GeneratedSentencesID)
	if err != nil {
		return err
	}
	for _, body := range sentences {
		m.emitOutbound(frame(body))
	}
	m.emitMessage(false, m.cfg.OwnMMSI, 0, text)
	return nil
}

// frame wraps an encoded AIVDM/AIVDO body with its '!' prefix and
// trailing checksum, matching what nmea.Parse expects on the receive
// side.
func frame(body string) string {
	return "!" + body + "*" + nmea.Checksum(body)
}
