// Package manager implements the AIS manager: sentence ingestion,
// target-store maintenance, warning debouncing, periodic cleanup and
// the background CPA/TCPA surveillance loop.
package manager

import (
	"fmt"
	"sync"
	"time"

	"aistrack/internal/aiscodec"
	"aistrack/internal/clock"
	"aistrack/internal/nmea"
	"aistrack/logging"
	"aistrack/target"
	"aistrack/warning"
)

// SentenceCache is the sentence cache / own-ship position provider
// contract the manager depends on; poscache.Cache satisfies it.
type SentenceCache interface {
	Update(s nmea.Sentence, now time.Time)
	TryGetCurrentPosition(now time.Time) (pos target.Position, cog, sog, heading float64, headingOK bool, messageTime time.Time, ok bool)
}

// OutboundSentenceHandler receives one outbound NMEA sentence (already
// framed with leading '!'/'$' and trailing checksum).
type OutboundSentenceHandler func(sentence string)

// MessageHandler receives safety-related message events, both incoming
// (received=true) and internally generated broadcasts (received=false,
// destination=0).
type MessageHandler func(received bool, source, destination target.MMSI, text string)

// Manager is the AIS manager. It is safe for concurrent use: the
// exported methods may be called from any goroutine.
type Manager struct {
	cfg Config

	store     *target.Store
	ledger    *warning.Ledger
	codec     *aiscodec.Codec
	positions SentenceCache
	clock     clock.Clock
	log       *logging.Logger

	lastCleanup   time.Time
	lastCleanupMu sync.Mutex

	handlersMu  sync.Mutex
	outbound    []OutboundSentenceHandler
	messageSubs []MessageHandler

	alarm alarmState
}

// New constructs a Manager. positions supplies the own-ship sentence
// cache, codec decodes/encodes AIS payloads, and clk supplies "now"
// (use clock.Real{} in production, a fake in tests).
func New(cfg Config, positions SentenceCache, codec *aiscodec.Codec, clk clock.Clock) *Manager {
	if clk == nil {
		clk = clock.Real{}
	}
	m := &Manager{
		cfg:       cfg,
		store:     target.NewStore(),
		ledger:    warning.NewLedger(),
		codec:     codec,
		positions: positions,
		clock:     clk,
		log:       logging.Component("manager"),
	}
	m.alarm.params = cfg.TrackEstimation
	// Unknown AIS message types come back from the codec as errors;
	// SendSentence applies ThrowOnUnknownMessage to them.
	codec.StrictUnknown = true
	return m
}

// OnOutboundSentence registers a callback invoked for every sentence
// the manager emits (position reports, safety broadcasts).
func (m *Manager) OnOutboundSentence(h OutboundSentenceHandler) {
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.outbound = append(m.outbound, h)
}

// OnMessage registers a callback invoked for incoming and internally
// generated safety-related messages.
func (m *Manager) OnMessage(h MessageHandler) {
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.messageSubs = append(m.messageSubs, h)
}

func (m *Manager) emitOutbound(sentence string) {
	m.handlersMu.Lock()
	handlers := append([]OutboundSentenceHandler(nil), m.outbound...)
	m.handlersMu.Unlock()
	for _, h := range handlers {
		h(sentence)
	}
}

func (m *Manager) emitMessage(received bool, source, dest target.MMSI, text string) {
	m.handlersMu.Lock()
	handlers := append([]MessageHandler(nil), m.messageSubs...)
	m.handlersMu.Unlock()
	for _, h := range handlers {
		h(received, source, dest, text)
	}
}

// TryGetTarget returns the target for mmsi, if known.
func (m *Manager) TryGetTarget(mmsi target.MMSI) (target.Target, bool) {
	return m.store.TryGet(mmsi)
}

// GetTargets returns a stable snapshot of every known target.
func (m *Manager) GetTargets() []target.Target {
	return m.store.Snapshot()
}

// ClearWarnings empties the warning ledger.
func (m *Manager) ClearWarnings() {
	m.ledger.Clear()
}

// Close stops the surveillance loop (if running) and releases the
// warning ledger, matching the spec's resource-discipline requirement.
func (m *Manager) Close() {
	m.EnableAlarms(false, nil)
	m.ClearWarnings()
}

// SendSentence is the ingestion entry point: it feeds the sentence
// cache, runs cleanup, decodes any AIS payload and dispatches it. It
// never suspends the caller's goroutine.
func (m *Manager) SendSentence(source string, s nmea.Sentence) error {
	m.positions.Update(s, s.Timestamp)
	m.doCleanup(s.Timestamp)

	msg, err := m.codec.Parse(source, s)
	if err != nil {
		if m.cfg.ThrowOnUnknownMessage {
			return err
		}
		m.log.Debug("dropping unsupported AIS message", "source", source, "err", err)
		return nil
	}
	if msg == nil {
		return nil
	}

	return m.dispatch(msg, s.Timestamp)
}

// doCleanup removes targets older than DeleteTargetAfterTimeout, but
// performs at most one sweep per CleanupLatency regardless of how often
// it's called.
func (m *Manager) doCleanup(now time.Time) {
	if m.cfg.DeleteTargetAfterTimeout <= 0 {
		return
	}

	m.lastCleanupMu.Lock()
	if !m.lastCleanup.IsZero() && now.Sub(m.lastCleanup) < CleanupLatency {
		m.lastCleanupMu.Unlock()
		return
	}
	m.lastCleanup = now
	m.lastCleanupMu.Unlock()

	m.store.Lock()
	defer m.store.Unlock()
	m.store.RemoveIfLocked(func(t target.Target) bool {
		return now.Sub(t.LastSeen()) > m.cfg.DeleteTargetAfterTimeout
	})
}

func (m *Manager) dispatch(msg aiscodec.Message, now time.Time) error {
	m.store.Lock()

	switch v := msg.(type) {
	case aiscodec.PositionReport:
		ship := target.GetOrCreateLocked(m.store, target.MMSI(v.MMSI), func() *target.Ship { return target.NewShip(target.MMSI(v.MMSI)) }, &now)
		positionReportClassAToShip(v, ship)
		m.store.Unlock()
		m.checkIsExceptionalTarget(ship, now)
		return nil

	case aiscodec.StaticDataReport:
		ship := target.GetOrCreateLocked(m.store, target.MMSI(v.MMSI), func() *target.Ship { return target.NewShip(target.MMSI(v.MMSI)) }, &now)
		if v.PartB {
			ship.CallSign = v.CallSign
			ship.ShipType = v.ShipType
			ship.Dimensions = target.Dimensions{ToBow: float64(v.DimBow), ToStern: float64(v.DimStern), ToPort: float64(v.DimPort), ToStarboard: float64(v.DimStarboard)}
		} else {
			ship.SetName(v.ShipName)
		}
		m.store.Unlock()
		return nil

	case aiscodec.StaticVoyageData:
		ship := target.GetOrCreateLocked(m.store, target.MMSI(v.MMSI), func() *target.Ship { return target.NewShip(target.MMSI(v.MMSI)) }, &now)
		ship.SetName(v.ShipName)
		ship.CallSign = v.CallSign
		ship.Destination = v.Destination
		ship.Draught = v.DraughtMetres
		ship.IMONumber = v.IMONumber
		ship.ShipType = v.ShipType
		ship.EstimatedTimeOfArrival = computeETA(v.ETAMonth, v.ETADay, v.ETAHour, v.ETAMinute, now)
		m.store.Unlock()
		return nil

	case aiscodec.ClassBPositionReport:
		ship := target.GetOrCreateLocked(m.store, target.MMSI(v.MMSI), func() *target.Ship { return target.NewShip(target.MMSI(v.MMSI)) }, &now)
		classBToShip(v, ship)
		m.store.Unlock()
		return nil

	case aiscodec.BaseStationReport:
		bs := target.GetOrCreateLocked(m.store, target.MMSI(v.MMSI), func() *target.BaseStation { return target.NewBaseStation(target.MMSI(v.MMSI)) }, &now)
		if v.PositionValid {
			bs.SetPosition(target.Position{Latitude: v.Latitude, Longitude: v.Longitude})
		}
		m.store.Unlock()
		return nil

	case aiscodec.SARAircraftReport:
		ac := target.GetOrCreateLocked(m.store, target.MMSI(v.MMSI), func() *target.SarAircraft { return target.NewSarAircraft(target.MMSI(v.MMSI)) }, &now)
		if v.PositionValid {
			ac.SetPosition(target.Position{Latitude: v.Latitude, Longitude: v.Longitude, Altitude: float64(v.AltitudeMetres)})
		}
		if v.COGValid {
			ac.CourseOverGround = v.COGDegrees
		}
		if v.SOGValid {
			ac.SpeedOverGround = v.SOGKnots
		}
		m.store.Unlock()
		return nil

	case aiscodec.AidToNavigationReport:
		aton := target.GetOrCreateLocked(m.store, target.MMSI(v.MMSI), func() *target.AidToNavigation { return target.NewAidToNavigation(target.MMSI(v.MMSI)) }, &now)
		aton.SetName(v.Name)
		aton.NameExtension = v.NameExtension
		if v.PositionValid {
			aton.SetPosition(target.Position{Latitude: v.Latitude, Longitude: v.Longitude})
		}
		aton.Dimensions = target.Dimensions{ToBow: float64(v.DimBow), ToStern: float64(v.DimStern), ToPort: float64(v.DimPort), ToStarboard: float64(v.DimStarboard)}
		aton.OffPosition = v.OffPosition
		aton.Virtual = v.Virtual
		aton.NavigationalAidType = v.NavAidType
		m.store.Unlock()
		return nil

	case aiscodec.AddressedSafetyMessage:
		m.store.Unlock()
		m.emitMessage(true, target.MMSI(v.SourceMMSI), target.MMSI(v.DestMMSI), v.Text)
		return nil

	case aiscodec.SafetyBroadcastMessage:
		m.store.Unlock()
		m.emitMessage(true, target.MMSI(v.SourceMMSI), 0, v.Text)
		return nil

	case aiscodec.InterrogationMessage, aiscodec.DataLinkManagementMessage:
		m.store.Unlock()
		return nil

	default:
		m.store.Unlock()
		if m.cfg.ThrowOnUnknownMessage {
			return fmt.Errorf("manager: unsupported message %T", msg)
		}
		return nil
	}
}
