package manager

import (
	"fmt"
	"math"
	"time"

	"aistrack/internal/aiscodec"
	"aistrack/internal/geo"
	"aistrack/target"
)

// positionReportClassAToShip folds a decoded Class A position report
// into a Ship target, applying the AIS rate-of-turn decode transform.
func positionReportClassAToShip(v aiscodec.PositionReport, ship *target.Ship) {
	if v.PositionValid {
		ship.SetPosition(target.Position{Latitude: v.Latitude, Longitude: v.Longitude})
	}
	ship.TransceiverClass = target.TransceiverClassA
	ship.NavigationStatus = target.NavigationStatus(v.NavigationStatus)

	if v.SOGValid {
		sog := v.SOGKnots
		ship.SpeedOverGround = &sog
	}
	if v.COGValid {
		cog := v.COGDegrees
		ship.CourseOverGround = &cog
	}
	if v.HeadingValid {
		hdg := float64(v.TrueHeading)
		ship.TrueHeading = &hdg
	} else {
		ship.TrueHeading = nil
	}
	if v.RateOfTurnValid {
		rot := rateOfTurnFromRaw(v.RateOfTurnRaw)
		ship.RateOfTurn = &rot
	}
}

// classBToShip folds a decoded Class B (types 18/19) position report
// into a Ship target; Class B carries no rate of turn or navigational
// status, so any rate of turn from an earlier report is cleared.
func classBToShip(v aiscodec.ClassBPositionReport, ship *target.Ship) {
	if v.PositionValid {
		ship.SetPosition(target.Position{Latitude: v.Latitude, Longitude: v.Longitude})
	}
	ship.TransceiverClass = target.TransceiverClassB
	ship.RateOfTurn = nil

	if v.SOGValid {
		sog := v.SOGKnots
		ship.SpeedOverGround = &sog
	}
	if v.COGValid {
		cog := v.COGDegrees
		ship.CourseOverGround = &cog
	}
	if v.HeadingValid {
		hdg := float64(v.TrueHeading)
		ship.TrueHeading = &hdg
	}
	if v.Extended {
		ship.SetName(v.ShipName)
		ship.ShipType = v.ShipType
		ship.Dimensions = target.Dimensions{
			ToBow: float64(v.DimBow), ToStern: float64(v.DimStern),
			ToPort: float64(v.DimPort), ToStarboard: float64(v.DimStarboard),
		}
	}
}

// rateOfTurnFromRaw decodes the 8-bit AIS ROT field into degrees per
// minute: v = raw / 4.733, rot = sign(v) * v^2.
func rateOfTurnFromRaw(raw int) float64 {
	v := float64(raw) / 4.733
	if v < 0 {
		return -v * v
	}
	return v * v
}

// rateOfTurnToRaw is the inverse transform, used by outbound position
// report encoding: v = sign(rot) * sqrt(|rot|), raw = round(v * 4.733).
func rateOfTurnToRaw(rot float64) int {
	v := math.Sqrt(math.Abs(rot))
	if rot < 0 {
		v = -v
	}
	return int(math.Round(v * 4.733))
}

// computeETA applies the month/day rollover rule: an ETA's month and
// day are compared lexicographically against now's UTC month/day; if
// the ETA falls before today's date it is assumed to fall in the
// following year. Invalid month/day/hour/minute combinations
// (including the all-zero "not available" sentinel) yield a nil ETA
// without causing decode failure.
func computeETA(month, day, hour, minute int, now time.Time) *time.Time {
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
		return nil
	}

	nowUTC := now.UTC()
	year := nowUTC.Year()
	if month < int(nowUTC.Month()) || (month == int(nowUTC.Month()) && day < nowUTC.Day()) {
		year++
	}

	eta := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	// time.Date normalises out-of-range days (e.g. Feb 30); reject those
	// instead of silently returning a rolled-over date.
	if eta.Month() != time.Month(month) || eta.Day() != day {
		return nil
	}
	return &eta
}

// mmsiTargetType classifies an MMSI's 3-digit MID-style prefix for the
// exceptional-target rule.
type mmsiTargetType int

const (
	mmsiTargetTypeOrdinary mmsiTargetType = iota
	mmsiTargetTypeAisSart
	mmsiTargetTypeMob
	mmsiTargetTypeEpirb
)

// identifyMmsiType applies the exceptional-target MMSI-range rule: MMSI
// 972xxxxxx identifies an AIS-SART, 974xxxxxx an EPIRB-AIS, 973xxxxxx a
// man-overboard device.
func identifyMmsiType(mmsi target.MMSI) mmsiTargetType {
	prefix := uint32(mmsi) / 1000000
	switch prefix {
	case 972:
		return mmsiTargetTypeAisSart
	case 973:
		return mmsiTargetTypeMob
	case 974:
		return mmsiTargetTypeEpirb
	default:
		return mmsiTargetTypeOrdinary
	}
}

// label names an exceptional-target kind for warning text; the
// ordinary type has no label since it never triggers a warning.
func (t mmsiTargetType) label() string {
	switch t {
	case mmsiTargetTypeAisSart:
		return "AIS SART"
	case mmsiTargetTypeMob:
		return "Man overboard device"
	case mmsiTargetTypeEpirb:
		return "EPIRB-AIS"
	default:
		return ""
	}
}

// formatPosition renders a position as "<lat><N/S> <lon><E/W>" for
// warning text, e.g. "47.5000N 9.5000E".
func formatPosition(lat, lon float64) string {
	latHemi := "N"
	if lat < 0 {
		latHemi = "S"
		lat = -lat
	}
	lonHemi := "E"
	if lon < 0 {
		lonHemi = "W"
		lon = -lon
	}
	return fmt.Sprintf("%.4f%s %.4f%s", lat, latHemi, lon, lonHemi)
}

// formatDistance renders a metre distance for warning text.
func formatDistance(metres float64) string {
	return fmt.Sprintf("%.0fm", metres)
}

// formatMinutesSeconds renders a (possibly negative) duration as
// mm:ss, e.g. "03:45" or "-00:30".
func formatMinutesSeconds(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%s%02d:%02d", sign, int(d/time.Minute), int((d%time.Minute)/time.Second))
}

// checkIsExceptionalTarget detects SART/MOB/EPIRB targets, either by
// navigational status (AIS-SART transmitting "active" status) or by
// MMSI range, and files a debounced warning — including own-ship
// distance and the target's position — if the manager is configured
// to auto-send warnings.
func (m *Manager) checkIsExceptionalTarget(ship *target.Ship, now time.Time) {
	if !m.cfg.AutoSendWarnings {
		return
	}

	exceptional := ship.NavigationStatus == target.NavigationStatusAisSartIsActive
	mmsiType := identifyMmsiType(ship.MMSI())
	if !exceptional && mmsiType == mmsiTargetTypeOrdinary {
		return
	}

	label := mmsiType.label()
	if label == "" {
		label = "AIS SART"
	}

	posText, distText := "unknown", "unknown"
	if pos, hasPos := ship.Position(); hasPos {
		posText = formatPosition(pos.Latitude, pos.Longitude)
		if ownPos, _, _, _, _, _, ok := m.positions.TryGetCurrentPosition(now); ok {
			d := geo.Distance(
				geo.Point{Latitude: ownPos.Latitude, Longitude: ownPos.Longitude},
				geo.Point{Latitude: pos.Latitude, Longitude: pos.Longitude},
			)
			distText = formatDistance(d)
		}
	}

	text := fmt.Sprintf("%s Target activated: MMSI %s in Position %s! Distance %s", label, ship.FormatMMSI(), posText, distText)
	m.issueWarning(ship.FormatMMSI(), m.cfg.OwnMMSI, text, now)
}

// issueWarning runs the text through the debounce ledger and, only if
// it survives, both emits it as a message event and encodes and sends
// a safety broadcast. It returns whether the
// warning was accepted (true) or suppressed by the repeat-timeout
// window (false).
func (m *Manager) issueWarning(messageID string, sourceMMSI target.MMSI, text string, now time.Time) bool {
	if !m.ledger.TryInsert(messageID, text, now) {
		return false
	}
	m.emitMessage(false, sourceMMSI, 0, text)
	m.sendBroadcastSentences(sourceMMSI, text)
	return true
}

func (m *Manager) sendBroadcastSentences(sourceMMSI target.MMSI, text string) {
	sentences, err := m.codec.ToSentences(aiscodec.SafetyBroadcastMessage{
		SourceMMSI: uint32(sourceMMSI),
		Text:       text,
	}, m.cfg.GeneratedSentencesID)
	if err != nil {
		m.log.Warn("failed to encode safety broadcast", "err", err)
		return
	}
	for _, s := range sentences {
		m.emitOutbound(frame(s))
	}
}
