// Package replay implements the log replay source: it reads a stream
// of NMEA-0183 lines and hands each parsed sentence to a handler,
// either as fast as it can be read (fast mode) or paced against the
// wall clock using the stream's own recorded timestamps (realtime
// mode).
//
// The scan-loop/stop-function shape is grounded on the reference
// pack's RTL-ADSB receiver, which scans lines from a subprocess's
// stdout in a goroutine and returns a stop function; this package
// scans a file/stream instead of a subprocess, and adds timestamp
// pacing the ADS-B receiver never needed.
package replay

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"aistrack/internal/clock"
	"aistrack/internal/nmea"
	"aistrack/logging"
)

// Mode selects replay pacing.
type Mode int

const (
	// ModeFast delivers every sentence as quickly as it can be scanned.
	ModeFast Mode = iota
	// ModeRealtime paces delivery against the wall clock using each
	// record's log timestamp.
	ModeRealtime
)

// Format selects how a raw input line is split into a sentence and,
// where the format supports it, the log timestamp it was recorded at.
type Format int

const (
	// FormatPlain treats every line as a bare NMEA sentence. Only ZDA
	// sentences carry an embedded timestamp; every sentence between
	// one ZDA and the next is paced against that most recently seen
	// timestamp (the format itself carries no finer-grained timing).
	FormatPlain Format = iota
	// FormatPipeDelimited treats every line as
	// "<timestamp>|<NMEA sentence>" (timestamp either RFC3339Nano or
	// Unix seconds), giving every record its own log timestamp
	// independent of any ZDA sentence in the stream.
	FormatPipeDelimited
)

// SentenceHandler receives one parsed sentence, tagged with the source
// identifier the caller supplied to NewSource (used by the manager and
// codec to key per-stream fragment reassembly).
type SentenceHandler func(source string, s nmea.Sentence)

// ErrAlreadyStarted is returned by StartDecode if called twice on one Source.
var ErrAlreadyStarted = errors.New("replay: source already started")

// Source reads framed NMEA sentences from r and delivers them to a
// handler, optionally paced to realtime using the stream's own log
// timestamps.
type Source struct {
	id      string
	r       io.Reader
	format  Format
	mode    Mode
	clock   clock.Clock
	handler SentenceHandler
	log     *logging.Logger

	mu      sync.Mutex
	started bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewSource builds a replay source. id identifies this stream to
// downstream fragment reassembly and callbacks (e.g. "replay:coastal.log").
func NewSource(id string, r io.Reader, format Format, mode Mode, clk clock.Clock, handler SentenceHandler) *Source {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Source{
		id:      id,
		r:       r,
		format:  format,
		mode:    mode,
		clock:   clk,
		handler: handler,
		log:     logging.Component("replay"),
		done:    make(chan struct{}),
	}
}

// StartDecode begins scanning in a background goroutine. It returns
// ErrAlreadyStarted if called more than once.
func (s *Source) StartDecode() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run()
	return nil
}

// StopDecode stops the scan loop. In fast mode it first blocks until the
// input has been read to end-of-data. In realtime mode it signals the
// loop to stop at the next sentence boundary and returns without
// waiting; a realtime sleep already in progress runs to completion.
func (s *Source) StopDecode() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if s.mode != ModeRealtime {
		s.wg.Wait()
	}
	close(s.done)
}

// parseLine splits one raw input line into a sentence and, if the
// format or the sentence itself carries one, its log timestamp.
func (s *Source) parseLine(line string) (sentence nmea.Sentence, logTime time.Time, hasTime bool, err error) {
	if s.format == FormatPipeDelimited {
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			return nmea.Sentence{}, time.Time{}, false, errors.New("replay: malformed pipe-delimited record")
		}
		t, err := parseRecordTimestamp(parts[0])
		if err != nil {
			return nmea.Sentence{}, time.Time{}, false, err
		}
		sentence, err = nmea.Parse(parts[1])
		if err != nil {
			return nmea.Sentence{}, time.Time{}, false, err
		}
		return sentence, t, true, nil
	}

	sentence, err = nmea.Parse(line)
	if err != nil {
		return nmea.Sentence{}, time.Time{}, false, err
	}
	if t, ok := sentence.ZDATime(); ok {
		return sentence, t, true, nil
	}
	return sentence, time.Time{}, false, nil
}

func parseRecordTimestamp(field string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, field); err == nil {
		return t, nil
	}
	if secs, err := strconv.ParseFloat(field, 64); err == nil {
		return time.Unix(0, int64(secs*float64(time.Second))).UTC(), nil
	}
	return time.Time{}, errors.New("replay: unrecognised timestamp " + field)
}

func (s *Source) run() {
	defer s.wg.Done()

	scanner := bufio.NewScanner(s.r)
	pacer := newRealtimePacer(s.clock)

	for scanner.Scan() {
		select {
		case <-s.done:
			return
		default:
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		sentence, logTime, hasTime, err := s.parseLine(line)
		if err != nil {
			s.log.Debug("skipping malformed line", "source", s.id, "err", err)
			continue
		}

		if s.mode != ModeRealtime {
			sentence.Timestamp = s.clock.Now()
			s.handler(s.id, sentence)
			continue
		}

		if hasTime {
			pacer.observe(logTime)
		} else if t, ok := pacer.latched(); ok {
			logTime, hasTime = t, true
		}

		if !hasTime {
			// No log-time reference established yet: drop silently.
			continue
		}

		pacer.waitUntilDue(logTime)
		sentence.Timestamp = s.clock.Now()
		s.handler(s.id, sentence)
	}
}

// realtimePacer implements the realtime-replay pacing algorithm: the
// first log timestamp observed anchors referenceInLog/referenceNow,
// and every subsequent timestamped sentence is delayed so its offset
// from that single anchor is reproduced against the wall clock:
//
//	due = referenceNow + (t - referenceInLog)
//	wait = due - now
//	if wait > 0: sleep(wait)
//
// The anchor is established once, from the first timestamp seen, and
// is never re-synced — matching the documented "first valid
// date/time sentence" rule rather than continuously drift-correcting
// against later timestamps.
type realtimePacer struct {
	clock clock.Clock

	haveAnchor     bool
	referenceInLog time.Time
	referenceNow   time.Time

	haveLatch bool
	latchTime time.Time
}

func newRealtimePacer(clk clock.Clock) *realtimePacer {
	return &realtimePacer{clock: clk}
}

// observe records a newly-seen log timestamp, establishing the anchor
// if none exists yet.
func (p *realtimePacer) observe(t time.Time) {
	if !p.haveAnchor {
		p.referenceInLog = t
		p.referenceNow = p.clock.Now()
		p.haveAnchor = true
	}
	p.haveLatch = true
	p.latchTime = t
}

// latched returns the most recently observed log timestamp, used by
// sentences that carry no timestamp of their own.
func (p *realtimePacer) latched() (time.Time, bool) {
	return p.latchTime, p.haveLatch
}

// waitUntilDue sleeps, if necessary, until t's due wall-clock instant
// (relative to the established anchor) has arrived.
func (p *realtimePacer) waitUntilDue(t time.Time) {
	due := p.referenceNow.Add(t.Sub(p.referenceInLog))
	if wait := due.Sub(p.clock.Now()); wait > 0 {
		p.clock.Sleep(wait)
	}
}
