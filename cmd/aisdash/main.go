// Command aisdash is a terminal dashboard demonstrating the AIS
// manager against a replayed NMEA log: a gocui status/list layout
// mirroring the teacher go1090 console, showing live targets instead
// of Mode S aircraft.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/awesome-gocui/gocui"
	. "github.com/logrusorgru/aurora"

	"aistrack/internal/aiscodec"
	"aistrack/internal/clock"
	"aistrack/internal/nmea"
	"aistrack/manager"
	"aistrack/poscache"
	"aistrack/replay"
	"aistrack/target"
)

// Context holds the dashboard's live state, rebuilt each refresh from
// the manager's target snapshot.
type Context struct {
	mgr *manager.Manager
}

func createContext(mgr *manager.Manager) *Context {
	return &Context{mgr: mgr}
}

func (ctx *Context) update(g *gocui.Gui) error {
	s, err := g.View("status")
	if err != nil {
		return nil
	}
	s.Clear()

	targets := ctx.mgr.GetTargets()
	own := ctx.mgr.GetOwnShipData()
	fmt.Fprintf(s, " TARGETS: %02d  OWN FIX: %s\n",
		Green(len(targets)),
		Bold(Green(fmt.Sprintf("%v", own.Fresh))))

	l, err := g.View("list")
	if err != nil {
		return nil
	}
	l.Clear()

	fmt.Fprintln(l, " MMSI       NAME                 LAT       LON   COG   SOG  SEEN")
	fmt.Fprintln(l, " =================================================================")

	sort.Slice(targets, func(i, j int) bool { return targets[i].MMSI() < targets[j].MMSI() })

	for _, t := range targets {
		pos, _ := t.Position()
		cog, sog := "--", "--"
		if ship, ok := t.(*target.Ship); ok {
			if ship.CourseOverGround != nil {
				cog = fmt.Sprintf("%.0f", *ship.CourseOverGround)
			}
			if ship.SpeedOverGround != nil {
				sog = fmt.Sprintf("%.1f", *ship.SpeedOverGround)
			}
		}
		fmt.Fprintln(l, Sprintf(Yellow(" %-9s  %-18s  %8.3f  %8.3f  %4s  %4s  %s"),
			t.MMSI().String(), t.Name(), pos.Latitude, pos.Longitude, cog, sog, t.LastSeen().Format("15:04:05")))
	}

	return nil
}

func main() {
	logPath := flag.String("log", "", "path to an NMEA log file to replay")
	realtime := flag.Bool("realtime", false, "pace replay to the log's own ZDA timestamps")
	ownMMSI := flag.Uint("mmsi", 0, "own-ship MMSI")
	flag.Parse()

	if *logPath == "" {
		fmt.Fprintln(os.Stderr, "usage: aisdash -log path/to/file.nmea")
		os.Exit(1)
	}

	f, err := os.Open(*logPath)
	if err != nil {
		log.Panicln(err)
	}
	defer f.Close()

	cfg := manager.DefaultConfig()
	cfg.OwnMMSI = target.MMSI(*ownMMSI)

	mgr := manager.New(cfg, poscache.NewCache(), aiscodec.NewCodec(), clock.Real{})
	defer mgr.Close()

	g, err := gocui.NewGui(gocui.OutputNormal, false)
	if err != nil {
		log.Panicln(err)
	}
	defer g.Close()

	g.SetManagerFunc(layout)
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		log.Panicln(err)
	}

	ctx := createContext(mgr)

	mode := replay.ModeFast
	if *realtime {
		mode = replay.ModeRealtime
	}
	replaySource := replay.NewSource(*logPath, f, replay.FormatPlain, mode, clock.Real{}, func(sourceID string, s nmea.Sentence) {
		if err := mgr.SendSentence(sourceID, s); err != nil {
			log.Printf("aisdash: %v", err)
		}
		g.Update(ctx.update)
	})
	if err := replaySource.StartDecode(); err != nil {
		log.Panicln(err)
	}
	defer replaySource.StopDecode()

	if err := g.MainLoop(); err != nil && !gocui.IsQuit(err) {
		log.Panicln(err)
	}
}

func layout(g *gocui.Gui) error {
	const maxX = 84
	_, maxY := g.Size()

	v, err := g.SetView("status", 0, 0, maxX-2, 2, 0)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Title = " STATUS "
	fmt.Fprintln(v, " TARGETS: --  OWN FIX: --")

	v, err = g.SetView("list", 0, 3, maxX-2, maxY-1, 0)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Title = " TARGETS "
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
