// Package aiscodec is the AIS payload encoder/decoder this repo treats
// as an external collaborator: it turns AIVDM/AIVDO sentence payloads
// into typed messages and back. Its bit-level fidelity is best-effort
// and advisory, grounded on the ITU-R M.1371 field layout and on the
// bit-walking style of the reference pack's Mode S decoder and AIS
// payload reader — this repo's subject under test is the manager and
// store built on top of it, not the wire format itself.
package aiscodec

// MessageType identifies the decoded AIS message kind.
type MessageType int

const (
	MessageTypePositionReportClassA   MessageType = 1 // covers sub-types 1, 2, 3
	MessageTypeBaseStationReport      MessageType = 4
	MessageTypeStaticVoyageData       MessageType = 5
	MessageTypeAddressedSafetyMessage MessageType = 12
	MessageTypeSafetyBroadcast        MessageType = 14
	MessageTypeInterrogation          MessageType = 15
	MessageTypeStandardClassB         MessageType = 18
	MessageTypeExtendedClassB         MessageType = 19
	MessageTypeDataLinkManagement     MessageType = 20
	MessageTypeAidToNavigation        MessageType = 21
	MessageTypeStaticDataReport       MessageType = 24 // Part A or B, see StaticDataReport.PartB
	MessageTypeStandardSARAircraft    MessageType = 9
)

// Message is the tagged-union contract every decoded AIS payload
// satisfies. The manager type-switches on the concrete type.
type Message interface {
	Type() MessageType
}

const (
	unavailLatitude  = 91 * 600000
	unavailLongitude = 181 * 600000
	unavailSOG       = 1023
	unavailCOG       = 3600
	unavailHeading   = 511
	unavailRateOfTurn = -128
	unavailAltitude  = 4095
	unavailDraught   = 0
)

// PositionReport decodes AIS message types 1, 2 and 3 (Position Report
// Class A); all three share the same field layout.
type PositionReport struct {
	MMSI             uint32
	NavigationStatus int
	RateOfTurnRaw    int
	RateOfTurnValid  bool
	SOGKnots         float64
	SOGValid         bool
	PositionAccurate bool
	Longitude        float64
	Latitude         float64
	PositionValid    bool
	COGDegrees       float64
	COGValid         bool
	TrueHeading      int
	HeadingValid     bool
	TimestampSecond  int
	RAIM             bool
}

func (PositionReport) Type() MessageType { return MessageTypePositionReportClassA }

// BaseStationReport decodes AIS message type 4.
type BaseStationReport struct {
	MMSI          uint32
	Longitude     float64
	Latitude      float64
	PositionValid bool
}

func (BaseStationReport) Type() MessageType { return MessageTypeBaseStationReport }

// StaticVoyageData decodes AIS message type 5 (Static & Voyage Related Data).
type StaticVoyageData struct {
	MMSI        uint32
	IMONumber   uint32
	CallSign    string
	ShipName    string
	ShipType    int
	DimBow      int
	DimStern    int
	DimPort     int
	DimStarboard int
	ETAMonth    int
	ETADay      int
	ETAHour     int
	ETAMinute   int
	DraughtMetres float64
	Destination string
}

func (StaticVoyageData) Type() MessageType { return MessageTypeStaticVoyageData }

// StaticDataReport decodes AIS message type 24, Part A or Part B.
type StaticDataReport struct {
	MMSI     uint32
	PartB    bool
	ShipName string // Part A
	CallSign string // Part B
	ShipType int    // Part B
	DimBow, DimStern, DimPort, DimStarboard int // Part B
}

func (StaticDataReport) Type() MessageType { return MessageTypeStaticDataReport }

// ClassBPositionReport decodes AIS message types 18 and 19 (Standard and
// Extended Class B CS Position Reports); Extended carries the extra
// fields populated, zero-valued for Standard.
type ClassBPositionReport struct {
	MMSI          uint32
	Extended      bool
	SOGKnots      float64
	SOGValid      bool
	PositionAccurate bool
	Longitude     float64
	Latitude      float64
	PositionValid bool
	COGDegrees    float64
	COGValid      bool
	TrueHeading   int
	HeadingValid  bool
	TimestampSecond int
	// Extended-only:
	ShipName string
	ShipType int
	DimBow, DimStern, DimPort, DimStarboard int
}

func (ClassBPositionReport) Type() MessageType {
	return MessageTypeStandardClassB
}

// SARAircraftReport decodes AIS message type 9.
type SARAircraftReport struct {
	MMSI          uint32
	AltitudeMetres int
	SOGKnots      float64
	SOGValid      bool
	Longitude     float64
	Latitude      float64
	PositionValid bool
	COGDegrees    float64
	COGValid      bool
}

func (SARAircraftReport) Type() MessageType { return MessageTypeStandardSARAircraft }

// AidToNavigationReport decodes AIS message type 21.
type AidToNavigationReport struct {
	MMSI          uint32
	NavAidType    int
	Name          string
	NameExtension string
	Longitude     float64
	Latitude      float64
	PositionValid bool
	DimBow, DimStern, DimPort, DimStarboard int
	OffPosition bool
	Virtual     bool
}

func (AidToNavigationReport) Type() MessageType { return MessageTypeAidToNavigation }

// AddressedSafetyMessage decodes AIS message type 12.
type AddressedSafetyMessage struct {
	SourceMMSI uint32
	DestMMSI   uint32
	Text       string
}

func (AddressedSafetyMessage) Type() MessageType { return MessageTypeAddressedSafetyMessage }

// SafetyBroadcastMessage decodes AIS message type 14.
type SafetyBroadcastMessage struct {
	SourceMMSI uint32
	Text       string
}

func (SafetyBroadcastMessage) Type() MessageType { return MessageTypeSafetyBroadcast }

// InterrogationMessage marks AIS message type 15; its fields are not
// decoded, per the spec's "consume silently" policy.
type InterrogationMessage struct{ SourceMMSI uint32 }

func (InterrogationMessage) Type() MessageType { return MessageTypeInterrogation }

// DataLinkManagementMessage marks AIS message type 20.
type DataLinkManagementMessage struct{ SourceMMSI uint32 }

func (DataLinkManagementMessage) Type() MessageType { return MessageTypeDataLinkManagement }

// SentenceID selects the talker-pair used for sentences this codec
// generates: AIVDO for own-ship traffic, AIVDM for received/relayed.
type SentenceID int

const (
	SentenceIDVDO SentenceID = iota
	SentenceIDVDM
)

func (id SentenceID) String() string {
	if id == SentenceIDVDM {
		return "VDM"
	}
	return "VDO"
}
