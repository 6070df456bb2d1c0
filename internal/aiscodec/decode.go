package aiscodec

import (
	"errors"
	"fmt"
	"sync"

	"aistrack/internal/nmea"
)

// ErrUnsupportedMessage is returned by Parse when throwOnUnknownMessage
// semantics are requested by the caller and the payload's message type
// is not one this codec understands.
var ErrUnsupportedMessage = errors.New("aiscodec: unsupported message type")

// Codec decodes AIVDM/AIVDO sentences into Messages and encodes
// internally-built Messages back into sentences. It keeps one fragment
// reassembler per source identifier so concurrent input streams don't
// interleave each other's multi-part messages.
type Codec struct {
	mu             sync.Mutex
	reassemblers   map[string]*reassembler
	GeneratedID    SentenceID
	StrictUnknown  bool
}

// NewCodec builds a Codec that generates AIVDO sentences by default.
func NewCodec() *Codec {
	return &Codec{
		reassemblers: make(map[string]*reassembler),
		GeneratedID:  SentenceIDVDO,
	}
}

// Parse decodes one NMEA sentence's AIS payload, if any. It returns
// (nil, nil) for non-AIS sentences or incomplete fragment groups: both
// are "no message yet", not errors. StrictUnknown controls whether an
// unrecognised-but-well-formed message type is an error or silently
// dropped, mirroring throwOnUnknownMessage.
func (c *Codec) Parse(source string, s nmea.Sentence) (Message, error) {
	if s.Type != "VDM" && s.Type != "VDO" {
		return nil, nil
	}

	c.mu.Lock()
	r, ok := c.reassemblers[source]
	if !ok {
		r = newReassembler()
		c.reassemblers[source] = r
	}
	payload, fillBits, complete := r.add(s.Fields)
	c.mu.Unlock()

	if !complete {
		return nil, nil
	}

	bits := decodeArmor(payload, fillBits)
	if len(bits) < 38 {
		return nil, nil
	}
	br := newBitReader(bits)
	msgType := MessageType(br.uint(0, 6))
	mmsi := uint32(br.uint(8, 30))

	switch msgType {
	case 1, 2, 3:
		return decodePositionReport(br, mmsi), nil
	case MessageTypeBaseStationReport:
		return decodeBaseStationReport(br, mmsi), nil
	case MessageTypeStaticVoyageData:
		return decodeStaticVoyageData(br, mmsi), nil
	case MessageTypeStandardSARAircraft:
		return decodeSARAircraftReport(br, mmsi), nil
	case MessageTypeStandardClassB:
		return decodeClassBPositionReport(br, mmsi, false), nil
	case MessageTypeExtendedClassB:
		return decodeClassBPositionReport(br, mmsi, true), nil
	case MessageTypeAidToNavigation:
		return decodeAidToNavigation(br, mmsi), nil
	case MessageTypeStaticDataReport:
		return decodeStaticDataReport(br, mmsi), nil
	case MessageTypeAddressedSafetyMessage:
		return decodeAddressedSafetyMessage(br, mmsi), nil
	case MessageTypeSafetyBroadcast:
		return decodeSafetyBroadcast(br, mmsi), nil
	case MessageTypeInterrogation:
		return InterrogationMessage{SourceMMSI: mmsi}, nil
	case MessageTypeDataLinkManagement:
		return DataLinkManagementMessage{SourceMMSI: mmsi}, nil
	default:
		if c.StrictUnknown {
			return nil, fmt.Errorf("%w: type %d", ErrUnsupportedMessage, msgType)
		}
		return nil, nil
	}
}

func latLonValid(lat, lon int64) bool {
	return lat != unavailLatitude && lon != unavailLongitude
}

func decodePositionReport(br *bitReader, mmsi uint32) PositionReport {
	rot := int(br.int(42, 8))
	sog := br.uint(50, 10)
	lon := br.int(61, 28)
	lat := br.int(89, 27)
	cog := br.uint(116, 12)
	heading := int(br.uint(128, 9))

	return PositionReport{
		MMSI:             mmsi,
		NavigationStatus: int(br.uint(38, 4)),
		RateOfTurnRaw:    rot,
		RateOfTurnValid:  rot != unavailRateOfTurn,
		SOGKnots:         float64(sog) * 0.1,
		SOGValid:         sog != unavailSOG,
		PositionAccurate: br.bool(60),
		Longitude:        float64(lon) / 600000.0,
		Latitude:         float64(lat) / 600000.0,
		PositionValid:    latLonValid(lat, lon),
		COGDegrees:       float64(cog) * 0.1,
		COGValid:         cog != unavailCOG,
		TrueHeading:      heading,
		HeadingValid:     heading != unavailHeading,
		TimestampSecond:  int(br.uint(137, 6)),
		RAIM:             br.bool(148),
	}
}

func decodeBaseStationReport(br *bitReader, mmsi uint32) BaseStationReport {
	lon := br.int(79, 28)
	lat := br.int(107, 27)
	return BaseStationReport{
		MMSI:          mmsi,
		Longitude:     float64(lon) / 600000.0,
		Latitude:      float64(lat) / 600000.0,
		PositionValid: latLonValid(lat, lon),
	}
}

func decodeStaticVoyageData(br *bitReader, mmsi uint32) StaticVoyageData {
	return StaticVoyageData{
		MMSI:          mmsi,
		IMONumber:     uint32(br.uint(40, 30)),
		CallSign:      br.text(70, 42),
		ShipName:      br.text(112, 120),
		ShipType:      int(br.uint(232, 8)),
		DimBow:        int(br.uint(240, 9)),
		DimStern:      int(br.uint(249, 9)),
		DimPort:       int(br.uint(258, 6)),
		DimStarboard:  int(br.uint(264, 6)),
		ETAMonth:      int(br.uint(274, 4)),
		ETADay:        int(br.uint(278, 5)),
		ETAHour:       int(br.uint(283, 5)),
		ETAMinute:     int(br.uint(288, 6)),
		DraughtMetres: float64(br.uint(294, 8)) * 0.1,
		Destination:   br.text(302, 120),
	}
}

func decodeSARAircraftReport(br *bitReader, mmsi uint32) SARAircraftReport {
	alt := int(br.uint(38, 12))
	sog := br.uint(50, 10)
	lon := br.int(61, 28)
	lat := br.int(89, 27)
	cog := br.uint(116, 12)
	return SARAircraftReport{
		MMSI:           mmsi,
		AltitudeMetres: alt,
		SOGKnots:       float64(sog),
		SOGValid:       sog != unavailSOG,
		Longitude:      float64(lon) / 600000.0,
		Latitude:       float64(lat) / 600000.0,
		PositionValid:  latLonValid(lat, lon),
		COGDegrees:     float64(cog) * 0.1,
		COGValid:       cog != unavailCOG,
	}
}

func decodeClassBPositionReport(br *bitReader, mmsi uint32, extended bool) ClassBPositionReport {
	sog := br.uint(46, 10)
	lon := br.int(57, 28)
	lat := br.int(85, 27)
	cog := br.uint(112, 12)
	heading := int(br.uint(124, 9))

	report := ClassBPositionReport{
		MMSI:             mmsi,
		Extended:         extended,
		SOGKnots:         float64(sog) * 0.1,
		SOGValid:         sog != unavailSOG,
		PositionAccurate: br.bool(56),
		Longitude:        float64(lon) / 600000.0,
		Latitude:         float64(lat) / 600000.0,
		PositionValid:    latLonValid(lat, lon),
		COGDegrees:       float64(cog) * 0.1,
		COGValid:         cog != unavailCOG,
		TrueHeading:      heading,
		HeadingValid:     heading != unavailHeading,
		TimestampSecond:  int(br.uint(133, 6)),
	}

	if extended && br.len() >= 312 {
		report.ShipName = br.text(143, 120)
		report.ShipType = int(br.uint(263, 8))
		report.DimBow = int(br.uint(271, 9))
		report.DimStern = int(br.uint(280, 9))
		report.DimPort = int(br.uint(289, 6))
		report.DimStarboard = int(br.uint(295, 6))
	}
	return report
}

func decodeAidToNavigation(br *bitReader, mmsi uint32) AidToNavigationReport {
	lon := br.int(164, 28)
	lat := br.int(192, 27)
	r := AidToNavigationReport{
		MMSI:          mmsi,
		NavAidType:    int(br.uint(38, 5)),
		Name:          br.text(43, 120),
		Longitude:     float64(lon) / 600000.0,
		Latitude:      float64(lat) / 600000.0,
		PositionValid: latLonValid(lat, lon),
		DimBow:        int(br.uint(219, 9)),
		DimStern:      int(br.uint(228, 9)),
		DimPort:       int(br.uint(237, 6)),
		DimStarboard:  int(br.uint(243, 6)),
		OffPosition:   br.bool(259),
		Virtual:       br.bool(269),
	}
	if br.len() > 272 {
		extBits := br.len() - 272
		extBits -= extBits % 6
		if extBits > 0 {
			r.NameExtension = br.text(272, extBits)
		}
	}
	return r
}

func decodeStaticDataReport(br *bitReader, mmsi uint32) StaticDataReport {
	part := br.uint(38, 2)
	r := StaticDataReport{MMSI: mmsi, PartB: part == 1}
	if part == 0 {
		r.ShipName = br.text(40, 120)
		return r
	}
	r.ShipType = int(br.uint(40, 8))
	r.CallSign = br.text(90, 42)
	r.DimBow = int(br.uint(132, 9))
	r.DimStern = int(br.uint(141, 9))
	r.DimPort = int(br.uint(150, 6))
	r.DimStarboard = int(br.uint(156, 6))
	return r
}

func decodeAddressedSafetyMessage(br *bitReader, mmsi uint32) AddressedSafetyMessage {
	dest := uint32(br.uint(40, 30))
	textBits := br.len() - 72
	textBits -= textBits % 6
	text := ""
	if textBits > 0 {
		text = br.text(72, textBits)
	}
	return AddressedSafetyMessage{SourceMMSI: mmsi, DestMMSI: dest, Text: text}
}

func decodeSafetyBroadcast(br *bitReader, mmsi uint32) SafetyBroadcastMessage {
	textBits := br.len() - 40
	textBits -= textBits % 6
	text := ""
	if textBits > 0 {
		text = br.text(40, textBits)
	}
	return SafetyBroadcastMessage{SourceMMSI: mmsi, Text: text}
}
