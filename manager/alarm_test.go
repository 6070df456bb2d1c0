package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aistrack/internal/aiscodec"
	"aistrack/internal/clock"
	"aistrack/internal/nmea"
	"aistrack/target"
)

// fakePositions is a SentenceCache stub whose own-ship fix is set
// directly by the test rather than derived from fed sentences, so the
// surveillance loop's branches can be exercised independently.
type fakePositions struct {
	pos      target.Position
	cog, sog float64
	msgTime  time.Time
	ok       bool
}

func (f fakePositions) Update(nmea.Sentence, time.Time) {}
func (f fakePositions) TryGetCurrentPosition(time.Time) (target.Position, float64, float64, float64, bool, time.Time, bool) {
	return f.pos, f.cog, f.sog, 0, false, f.msgTime, f.ok
}

// recordMessages subscribes to m's message events and returns the
// slice their text is appended to.
func recordMessages(m *Manager) *[]string {
	var texts []string
	m.OnMessage(func(received bool, source, destination target.MMSI, text string) {
		texts = append(texts, text)
	})
	return &texts
}

func TestSurveillanceTick_NoGNSSWarnsWhenPositionMissing(t *testing.T) {
	codec := aiscodec.NewCodec()
	clk := newFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.OwnMMSI = 111111111
	m := New(cfg, fakePositions{ok: false}, codec, clk)

	texts := recordMessages(m)

	params := cfg.TrackEstimation
	params.WarnIfGNSSMissing = true
	m.surveillanceTick(params, params.WarningTime*6)

	require.Len(t, *texts, 1)
	assert.Equal(t, "no own-ship position available", (*texts)[0])
}

func TestSurveillanceTick_GNSSOldWarnsWhenPositionStale(t *testing.T) {
	codec := aiscodec.NewCodec()
	clk := newFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.OwnMMSI = 111111111
	positions := fakePositions{
		ok:      true,
		pos:     target.Position{Latitude: 10, Longitude: 10},
		msgTime: clk.Now().Add(-time.Hour),
	}
	m := New(cfg, positions, codec, clk)

	texts := recordMessages(m)

	params := cfg.TrackEstimation
	params.WarnIfGNSSMissing = true
	m.surveillanceTick(params, params.WarningTime*6)

	require.Len(t, *texts, 1)
	assert.Equal(t, "own-ship position is stale", (*texts)[0])
}

func TestSurveillanceTick_GNSSWarningsSuppressedWhenDisabled(t *testing.T) {
	codec := aiscodec.NewCodec()
	clk := newFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	m := New(cfg, fakePositions{ok: false}, codec, clk)

	texts := recordMessages(m)

	params := cfg.TrackEstimation
	params.WarnIfGNSSMissing = false
	m.surveillanceTick(params, params.WarningTime*6)

	assert.Empty(t, *texts, "WarnIfGNSSMissing=false must suppress both NOGNSS and GNSSOLD warnings")
}

func TestSurveillanceTick_DangerousVesselWarning(t *testing.T) {
	codec := aiscodec.NewCodec()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := newFakeClock(now)
	cfg := DefaultConfig()
	cfg.OwnMMSI = 111111111
	positions := fakePositions{
		ok:      true,
		pos:     target.Position{Latitude: 0, Longitude: 0},
		msgTime: now,
	}
	m := New(cfg, positions, codec, clk)

	// A stationary target ~100m north of a stationary own ship: CPA
	// equals the present distance and TCPA is effectively now, well
	// inside both default thresholds.
	mmsi := target.MMSI(244670999)
	cog, sog := 0.0, 0.0
	m.store.Lock()
	ship := target.GetOrCreateLocked(m.store, mmsi, func() *target.Ship { return target.NewShip(mmsi) }, &now)
	ship.SetPosition(target.Position{Latitude: 0.0009, Longitude: 0})
	ship.CourseOverGround = &cog
	ship.SpeedOverGround = &sog
	m.store.Unlock()

	texts := recordMessages(m)

	params := cfg.TrackEstimation
	m.surveillanceTick(params, params.WarningTime*6)

	require.Len(t, *texts, 1)
	assert.Contains(t, (*texts)[0], "is dangerously close")
	assert.Contains(t, (*texts)[0], "CPA")
	assert.Contains(t, (*texts)[0], "TCPA")
}

func TestSurveillanceTick_DangerousVesselAndExceptionalTargetDoNotCollide(t *testing.T) {
	// The CPA warning for an MMSI and an exceptional-target warning for
	// the same MMSI must use disjoint ledger ids, so one never
	// suppresses the other.
	codec := aiscodec.NewCodec()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := newFakeClock(now)
	cfg := DefaultConfig()
	cfg.OwnMMSI = 111111111
	mmsi := target.MMSI(972000001) // an AIS-SART range MMSI
	positions := fakePositions{
		ok:      true,
		pos:     target.Position{Latitude: 0, Longitude: 0},
		msgTime: now,
	}
	m := New(cfg, positions, codec, clk)

	s := positionReportSentence(t, codec, aiscodec.PositionReport{
		MMSI: uint32(mmsi), PositionValid: true, Latitude: 0.0009, Longitude: 0,
	})
	require.NoError(t, m.SendSentence("test", s))
	assert.Equal(t, 1, m.ledger.Len(), "the exceptional-target warning should have been filed")

	params := cfg.TrackEstimation
	m.surveillanceTick(params, params.WarningTime*6)
	assert.Equal(t, 2, m.ledger.Len(), "the CPA warning must file under a distinct id, not collide with the exceptional-target entry")
}

func TestEnableAlarms_StartStopLifecycle(t *testing.T) {
	codec := aiscodec.NewCodec()
	cfg := DefaultConfig()
	cfg.TrackEstimation.AISSafetyCheckInterval = 5 * time.Millisecond
	m := New(cfg, fakePositions{ok: false}, codec, clock.Real{})

	m.EnableAlarms(true, nil)
	m.EnableAlarms(true, nil) // already running: must be a no-op, not a second goroutine
	time.Sleep(20 * time.Millisecond)
	m.EnableAlarms(false, nil)

	assert.False(t, m.alarm.running)
}

func TestEnableAlarms_OverrideParamsOnlyAppliesAtStart(t *testing.T) {
	codec := aiscodec.NewCodec()
	cfg := DefaultConfig()
	m := New(cfg, fakePositions{ok: false}, codec, clock.Real{})

	override := cfg.TrackEstimation
	override.WarningDistance = 42
	m.EnableAlarms(true, &override)
	m.EnableAlarms(false, nil)

	assert.Equal(t, 42.0, m.alarm.params.WarningDistance)

	// Once running, a further override must not retroactively apply.
	m.EnableAlarms(true, nil)
	ignored := cfg.TrackEstimation
	ignored.WarningDistance = 999
	m.EnableAlarms(true, &ignored)
	m.EnableAlarms(false, nil)

	assert.Equal(t, 42.0, m.alarm.params.WarningDistance, "params passed while already running must be ignored")
}
