// Package poscache implements the sentence cache / own-ship position
// provider: it remembers the most recent position, course, speed and
// heading derived from ingested NMEA sentences, on top of
// patrickmn/go-cache (the teacher repo's own TTL cache dependency).
//
// go-cache's own expiry is a convenience sweep here, not the source of
// truth: whether a cached fix still counts as "current" is decided by
// the caller comparing the stored MessageTime against its own now and
// TrackEstimationParameters.MaximumPositionAge (see manager.GetOwnShipData),
// exactly as the spec requires.
package poscache

import (
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"

	"aistrack/internal/nmea"
	"aistrack/target"
)

const sweepInterval = 10 * time.Minute
const entryTTL = 24 * time.Hour

const positionKey = "position"

type fix struct {
	Position    target.Position
	PositionValid bool
	COG         float64
	COGValid    bool
	SOG         float64
	SOGValid    bool
	Heading     float64
	HeadingValid bool
	MessageTime time.Time
}

// Cache is the sentence cache / position provider.
type Cache struct {
	c *cache.Cache
}

// NewCache returns an empty position cache backed by go-cache.
func NewCache() *Cache {
	return &Cache{c: cache.New(entryTTL, sweepInterval)}
}

// Update folds one NMEA sentence into the cache if it carries position,
// course, speed or heading information. Recognised sentence types are
// RMC (position/COG/SOG), VTG (COG/SOG) and HDT/HDG (heading); all
// others are ignored, matching the spec's "cache everything, decode
// what's recognised" stance.
func (c *Cache) Update(s nmea.Sentence, now time.Time) {
	existing := c.current()

	switch s.Type {
	case "RMC":
		updateFromRMC(&existing, s)
	case "VTG":
		updateFromVTG(&existing, s)
	case "HDT", "HDG":
		updateFromHeading(&existing, s)
	default:
		return
	}

	existing.MessageTime = now
	c.c.Set(positionKey, existing, cache.DefaultExpiration)
}

func (c *Cache) current() fix {
	if v, ok := c.c.Get(positionKey); ok {
		return v.(fix)
	}
	return fix{}
}

// TryGetCurrentPosition returns the most recently cached own-ship fix.
// ok is false if no position has ever been recorded; course, speed and
// heading recorded without a position are still returned alongside
// ok=false. Callers additionally compare MessageTime against their own
// freshness horizon.
func (c *Cache) TryGetCurrentPosition(now time.Time) (pos target.Position, cog, sog, heading float64, headingOK bool, messageTime time.Time, ok bool) {
	f := c.current()
	if f.MessageTime.IsZero() {
		return target.Position{}, 0, 0, 0, false, time.Time{}, false
	}
	return f.Position, f.COG, f.SOG, f.Heading, f.HeadingValid, f.MessageTime, f.PositionValid
}

func updateFromRMC(f *fix, s nmea.Sentence) {
	// RMC: time,status,lat,N/S,lon,E/W,sog,cog,date,...
	if len(s.Fields) < 8 {
		return
	}
	if s.Fields[1] != "A" {
		return
	}
	lat, okLat := parseNMEALatLon(s.Fields[2], s.Fields[3])
	lon, okLon := parseNMEALatLon(s.Fields[4], s.Fields[5])
	if okLat && okLon {
		f.Position.Latitude = lat
		f.Position.Longitude = lon
		f.PositionValid = true
	}
	if v, err := strconv.ParseFloat(s.Fields[6], 64); err == nil {
		f.SOG = v
		f.SOGValid = true
	}
	if v, err := strconv.ParseFloat(s.Fields[7], 64); err == nil {
		f.COG = v
		f.COGValid = true
	}
}

func updateFromVTG(f *fix, s nmea.Sentence) {
	// VTG: cog_true,T,cog_mag,M,sog_knots,N,sog_kmh,K
	if len(s.Fields) < 5 {
		return
	}
	if v, err := strconv.ParseFloat(s.Fields[0], 64); err == nil {
		f.COG = v
		f.COGValid = true
	}
	if v, err := strconv.ParseFloat(s.Fields[4], 64); err == nil {
		f.SOG = v
		f.SOGValid = true
	}
}

func updateFromHeading(f *fix, s nmea.Sentence) {
	if len(s.Fields) < 1 {
		return
	}
	if v, err := strconv.ParseFloat(s.Fields[0], 64); err == nil {
		f.Heading = v
		f.HeadingValid = true
	}
}

// parseNMEALatLon parses an NMEA ddmm.mmmm / dddmm.mmmm coordinate plus
// hemisphere letter into signed decimal degrees.
func parseNMEALatLon(raw, hemi string) (float64, bool) {
	if raw == "" || hemi == "" {
		return 0, false
	}
	dotIdx := -1
	for i, c := range raw {
		if c == '.' {
			dotIdx = i
			break
		}
	}
	if dotIdx < 2 {
		return 0, false
	}
	degDigits := dotIdx - 2
	deg, err1 := strconv.ParseFloat(raw[:degDigits], 64)
	min, err2 := strconv.ParseFloat(raw[degDigits:], 64)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	val := deg + min/60.0
	if hemi == "S" || hemi == "W" {
		val = -val
	}
	return val, true
}
