package manager

import (
	"sync"
	"time"

	"aistrack/internal/geo"
	"aistrack/target"
)

// alarmState tracks the surveillance loop's lifecycle: disabled,
// running, or (briefly, while EnableAlarms(false, ...) blocks)
// stopping. params holds the track estimation parameters the loop
// will run with the next time it's (re)started.
type alarmState struct {
	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
	params  TrackEstimationParameters
}

// EnableAlarms starts or stops the background CPA/TCPA surveillance
// loop. If enable is true and the loop is not already running, params
// (when non-nil) replaces the track estimation parameters it will run
// with before it is spawned; if the loop is already alive this is a
// no-op and params has no effect, matching "replace parameters, then
// spawn" applying only at start time, not to an already-running loop.
//
// Disabling blocks until the loop has actually exited, which may take
// up to one AISSafetyCheckInterval — this repo accepts that join
// latency rather than building a cancellable sleep, since the loop's
// own safety-check cadence is already the relevant time constant.
func (m *Manager) EnableAlarms(enable bool, params *TrackEstimationParameters) {
	m.alarm.mu.Lock()
	defer m.alarm.mu.Unlock()

	if enable {
		if m.alarm.running {
			return
		}
		if params != nil {
			m.alarm.params = *params
		}
		m.alarm.running = true
		m.alarm.done = make(chan struct{})
		m.alarm.wg.Add(1)
		done := m.alarm.done
		activeParams := m.alarm.params
		go m.surveillanceLoop(done, activeParams)
		return
	}

	if !m.alarm.running {
		return
	}
	close(m.alarm.done)
	m.alarm.running = false
	m.alarm.mu.Unlock()
	m.alarm.wg.Wait()
	m.alarm.mu.Lock()
}

func (m *Manager) surveillanceLoop(done chan struct{}, params TrackEstimationParameters) {
	defer m.alarm.wg.Done()

	interval := params.AISSafetyCheckInterval
	if interval < MinimumAlarmSleep {
		interval = MinimumAlarmSleep
	}
	horizon := params.WarningTime * 6

	for {
		select {
		case <-done:
			return
		default:
		}

		start := m.clock.Now()
		m.surveillanceTick(params, horizon)

		select {
		case <-done:
			return
		default:
			remaining := interval - m.clock.Now().Sub(start)
			if remaining < MinimumAlarmSleep {
				remaining = MinimumAlarmSleep
			}
			m.clock.Sleep(remaining)
		}
	}
}

func (m *Manager) surveillanceTick(params TrackEstimationParameters, horizon time.Duration) {
	now := m.clock.Now()

	ownPos, cog, sog, _, _, msgTime, ok := m.positions.TryGetCurrentPosition(now)
	if !ok {
		if params.WarnIfGNSSMissing {
			m.issueWarning("NOGNSS", m.cfg.OwnMMSI, "no own-ship position available", now)
		}
		return
	}
	if now.Sub(msgTime) > params.MaximumPositionAge {
		if params.WarnIfGNSSMissing {
			m.issueWarning("GNSSOLD", m.cfg.OwnMMSI, "own-ship position is stale", now)
		}
		return
	}

	own := geo.Motion{Position: geo.Point{Latitude: ownPos.Latitude, Longitude: ownPos.Longitude}, COG: cog, SOG: sog}

	for _, t := range m.store.Snapshot() {
		pos, hasPos := t.Position()
		if !hasPos {
			continue
		}

		targetMotion := geo.Motion{Position: geo.Point{Latitude: pos.Latitude, Longitude: pos.Longitude}}
		if ship, isShip := t.(*target.Ship); isShip {
			if ship.CourseOverGround != nil {
				targetMotion.COG = *ship.CourseOverGround
			}
			if ship.SpeedOverGround != nil {
				targetMotion.SOG = *ship.SpeedOverGround
			}
		}

		cpaDist, tcpa := geo.ClosestPointOfApproach(own, targetMotion, now, horizon)

		rp := target.RelativePosition{
			From:                           m.cfg.OwnMMSI,
			To:                             t.MMSI(),
			Distance:                       geo.Distance(own.Position, targetMotion.Position),
			Bearing:                        geo.Bearing(own.Position, targetMotion.Position),
			ClosestPointOfApproachDistance: cpaDist,
			TimeOfClosestPointOfApproach:   tcpa,
		}

		m.store.Lock()
		target.WriteRelativePositionLocked(m.store, rp)
		m.store.Unlock()

		timeToClosest := rp.TimeToClosestPointOfApproach(now)
		if m.cfg.AutoSendWarnings && cpaDist < params.WarningDistance && timeToClosest > -time.Minute && timeToClosest < params.WarningTime {
			name := t.Name()
			if name == "" {
				name = t.MMSI().String()
			}
			text := name + " is dangerously close. CPA " + formatDistance(cpaDist) + "; TCPA " + formatMinutesSeconds(timeToClosest)
			m.issueWarning("DANGEROUS VESSEL-"+t.MMSI().String(), m.cfg.OwnMMSI, text, now)
		}
	}
}
