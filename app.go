// Package mazduino drives the instrument display: it samples telemetry,
// redraws the gauges that changed and manages the configuration hotspot
// from a single cooperative loop.
package mazduino

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amrikarisma/mazduino-display-speeduino/display"
	"github.com/amrikarisma/mazduino-display-speeduino/gauge"
	"github.com/amrikarisma/mazduino-display-speeduino/hotspot"
	"github.com/amrikarisma/mazduino-display-speeduino/settings"
	"github.com/amrikarisma/mazduino-display-speeduino/splash"
	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/mem"
	log "github.com/sirupsen/logrus"
)

// Loop cadence.
const (
	RequestInterval = 10 * time.Millisecond
	// slow fields are resampled once the lazy pass is older than this
	slowSampleAge = 100 * time.Millisecond
	stoppedRPM    = 100

	sweepFrom = gauge.BarFullScale
	sweepStep = 250

	banner     = "www.mazduino.com"
	supportURL = "https://www.mazduino.com"
)

type Options struct {
	Version  string
	Hardware string
	// SplashHold is how long the splash screen stays up at boot.
	SplashHold time.Duration
	// Idle is slept between loop iterations.
	Idle time.Duration
}

// App is the whole device state. Everything except the source goroutines
// and the web listener runs on the goroutine calling Step.
type App struct {
	opts     Options
	clock    clockwork.Clock
	store    *settings.Store
	splash   *splash.Selector
	panel    display.Panel
	renderer *gauge.Renderer
	frame    *telemetry.Frame
	ingest   *ingest
	radio    *hotspot.Controller
	fwds     []Forwarder
	sched    *Scheduler

	started       time.Time
	lastIteration time.Time
}

func NewApp(clock clockwork.Clock, store *settings.Store, panel display.Panel, opts Options, sources ...Source) *App {
	a := &App{
		opts:     opts,
		clock:    clock,
		store:    store,
		splash:   splash.NewSelector(store),
		panel:    panel,
		renderer: gauge.NewRenderer(panel, store, clock),
		frame:    telemetry.NewFrame(),
		ingest:   newIngest(sources...),
		sched:    NewScheduler(clock),
	}
	a.started = clock.Now()
	a.lastIteration = a.started

	a.sched.Add("request", RequestInterval, a.ingest.request)
	a.sched.Add("decode", 0, a.decode)
	a.sched.Add("render", 0, a.render)
	a.sched.Add("housekeeping", hotspot.CheckInterval, a.housekeeping)
	a.sched.Add("service", 0, a.service)
	return a
}

// AttachRadio hands the connectivity controller to the loop. Without one
// the housekeeping and service tasks do nothing.
func (a *App) AttachRadio(c *hotspot.Controller) {
	a.radio = c
}

func (a *App) AddForwarder(f Forwarder) {
	a.fwds = append(a.fwds, f)
}

func (a *App) Frame() *telemetry.Frame {
	return a.frame
}

// Boot shows the splash screen, draws every gauge once, sweeps the RPM
// bar and brings up the hotspot.
func (a *App) Boot() error {
	w, h := a.panel.Size()
	if err := a.panel.FillRect(0, 0, w, h, display.Black); err != nil {
		return errors.Wrap(err, "unable to clear display")
	}
	if err := a.splash.DrawCurrent(a.panel, display.White, display.Black); err != nil {
		log.WithField("err", err).Warn("unable to draw splash")
	}
	if err := a.drawBootText(w, h); err != nil {
		log.WithField("err", err).Warn("unable to draw boot text")
	}
	if a.opts.SplashHold > 0 {
		a.clock.Sleep(a.opts.SplashHold)
	}

	if err := a.panel.FillRect(0, 0, w, h, display.Black); err != nil {
		return errors.Wrap(err, "unable to clear display")
	}
	if err := a.renderer.Render(a.frame, true); err != nil {
		log.WithField("err", err).Warn("initial render incomplete")
	}
	if err := a.renderer.Sweep(a.frame, sweepFrom, sweepStep); err != nil {
		log.WithField("err", err).Warn("rpm sweep failed")
	}

	if a.radio != nil {
		if err := a.radio.Start(); err != nil {
			log.WithField("err", err).Error("unable to start hotspot")
		}
	}
	a.lastIteration = a.clock.Now()
	log.WithFields(log.Fields{
		"version": a.opts.Version,
		"splash":  a.splash.CurrentName(),
		"mode":    a.store.DisplayMode(),
	}).Info("display ready")
	return nil
}

func (a *App) drawBootText(w, h int16) error {
	top := display.NewSurface(w, 20)
	top.Text(display.Small, w/2, 0, banner, display.White, display.AlignCenter)
	if err := a.panel.Blit(0, 4, top); err != nil {
		return err
	}
	bottom := display.NewSurface(w, 20)
	bottom.Text(display.Small, 4, 0, a.splash.CurrentName(), display.White, display.AlignLeft)
	bottom.Text(display.Small, w-4, 0, "v"+a.opts.Version, display.White, display.AlignRight)
	return a.panel.Blit(0, h-24, bottom)
}

// Step runs one loop iteration.
func (a *App) Step() {
	a.sched.Step()
}

// Run starts the sources, boots and loops until ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.ingest.start(ctx)
	if err := a.Boot(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		a.Step()
		if a.opts.Idle > 0 {
			a.clock.Sleep(a.opts.Idle)
		}
	}
}

func (a *App) decode() error {
	now := a.clock.Now()
	cur := &a.frame.Current
	if ms := now.Sub(a.lastIteration).Milliseconds(); ms > 0 {
		cur.RefreshRate = int(1000 / ms)
	} else {
		cur.RefreshRate = 0
	}
	a.lastIteration = now

	slow := now.Sub(a.renderer.LastLazy()) > slowSampleAge || cur.RPM < stoppedRPM
	a.ingest.drain(cur, slow)
	return nil
}

func (a *App) render() error {
	err := a.renderer.Render(a.frame, false)
	if len(a.fwds) == 0 {
		return err
	}
	snap := a.rendered()
	for _, f := range a.fwds {
		f.Forward(&snap)
	}
	return err
}

// rendered is the snapshot on screen. The aux value hidden by the current
// display mode is taken from the latest sample.
func (a *App) rendered() telemetry.Snapshot {
	snap := a.frame.Previous
	if a.store.DisplayMode() == settings.ShowRefreshRate {
		snap.FuelPressure = a.frame.Current.FuelPressure
	} else {
		snap.RefreshRate = a.frame.Current.RefreshRate
	}
	return snap
}

func (a *App) housekeeping() error {
	if a.radio == nil {
		return nil
	}
	return a.radio.Check(a.frame.Current.RPM)
}

func (a *App) service() error {
	if a.radio != nil {
		a.radio.Tick()
	}
	return nil
}

func (a *App) redrawAux() {
	if err := a.renderer.ForceField(a.frame, gauge.FieldAux); err != nil {
		log.WithField("err", err).Warn("unable to redraw display mode field")
	}
}

func (a *App) DisplayMode() settings.DisplayMode {
	return a.store.DisplayMode()
}

func (a *App) SetDisplayMode(m settings.DisplayMode) error {
	prev := a.store.DisplayMode()
	if err := a.store.SetDisplayMode(m); err != nil {
		return err
	}
	if m != prev {
		a.redrawAux()
	}
	return nil
}

func (a *App) ToggleDisplayMode() (settings.DisplayMode, error) {
	m, err := a.store.ToggleDisplayMode()
	if err != nil {
		return m, err
	}
	log.WithField("mode", m).Info("display mode changed")
	a.redrawAux()
	return m, nil
}

func (a *App) SplashName() string {
	return a.splash.CurrentName()
}

func (a *App) NextSplash() (string, error) {
	id, err := a.splash.Next()
	if err != nil {
		return "", err
	}
	name := splash.Name(id)
	log.WithField("splash", name).Info("splash selection changed")
	return name, nil
}

// Info is the plain-text diagnostic report.
func (a *App) Info() string {
	peers := 0
	if a.radio != nil {
		peers = a.radio.Peers()
	}
	free := "unknown"
	if vm, err := mem.VirtualMemory(); err == nil {
		free = fmt.Sprintf("%d", vm.Available)
	} else {
		log.WithField("err", err).Warn("unable to read memory stats")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Mazduino Display v%s\n", a.opts.Version)
	fmt.Fprintf(&b, "Hardware: %s\n", a.opts.Hardware)
	fmt.Fprintf(&b, "Current Splash: %s\n", a.splash.CurrentName())
	fmt.Fprintf(&b, "Display Mode: %s\n", a.store.DisplayMode())
	fmt.Fprintf(&b, "WiFi: %d clients connected\n", peers)
	fmt.Fprintf(&b, "Uptime: %d seconds\n", int(a.clock.Since(a.started).Seconds()))
	fmt.Fprintf(&b, "Memory: %s bytes free\n", free)
	fmt.Fprintf(&b, "\nFor support and documentation visit:\n%s\n", supportURL)
	return b.String()
}
