package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/amrikarisma/mazduino-display-speeduino"
	"github.com/amrikarisma/mazduino-display-speeduino/display"
	"github.com/amrikarisma/mazduino-display-speeduino/firmware"
	"github.com/amrikarisma/mazduino-display-speeduino/forwarder"
	"github.com/amrikarisma/mazduino-display-speeduino/hotspot"
	"github.com/amrikarisma/mazduino-display-speeduino/settings"
	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
	"github.com/amrikarisma/mazduino-display-speeduino/webui"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

var version = "2.1.0"

var configFile = flag.String("config", "mazduino.toml", "configuration file")
var testMode = flag.Bool("testmode", false, "generate test data")
var printTelemetry = flag.Bool("print-telemetry", false, "print telemetry to stdout")

type printer struct {
	last telemetry.Snapshot
}

func (p *printer) Forward(s *telemetry.Snapshot) {
	if *s != p.last {
		p.last = *s
		fmt.Printf("%+v\n", *s)
	}
}

func main() {
	log.SetLevel(log.InfoLevel)
	flag.Parse()

	cfg, err := mazduino.LoadConfigFile(*configFile)
	if err != nil {
		log.Fatal("unable to load configuration: ", err)
	}
	if err := mazduino.SetupLogging(cfg.Log); err != nil {
		log.Fatal("unable to configure logging: ", err)
	}

	cells, err := mazduino.OpenCells(cfg.Store)
	if err != nil {
		log.Fatal("unable to open settings store: ", err)
	}
	defer cells.Close()
	store, err := settings.Open(cells)
	if err != nil {
		log.Fatal("unable to initialise settings: ", err)
	}

	panel, err := mazduino.OpenPanel(cfg.Display)
	if err != nil {
		log.Fatal("unable to open display: ", err)
	}
	if c, ok := panel.(io.Closer); ok {
		defer c.Close()
	}

	src, err := mazduino.NewSource(cfg.Telemetry, *testMode)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	clock := clockwork.NewRealClock()
	app := mazduino.NewApp(clock, store, panel, mazduino.Options{
		Version:    version,
		Hardware:   fmt.Sprintf("%s/%s + ILI9488 3.5\" TFT", runtime.GOOS, runtime.GOARCH),
		SplashHold: cfg.Display.SplashHold,
		Idle:       cfg.Display.Idle,
	}, src)

	target := cfg.Firmware.Target
	if target == "" {
		if target, err = os.Executable(); err != nil {
			log.Fatal("unable to locate executable: ", err)
		}
	}
	ap, err := mazduino.NewAccessPoint(cfg.Hotspot)
	if err != nil {
		log.Fatal(err)
	}
	srv := webui.NewServer(cfg.Hotspot.Listen, app, &firmware.Installer{Target: target})
	app.AttachRadio(hotspot.NewController(ap, srv, clock))

	if cfg.Forwarder != nil {
		fwder, err := forwarder.NewUDPForwarder(*cfg.Forwarder)
		if err != nil {
			log.Fatal("unable to load UDP forwarder: ", err)
		}
		defer fwder.Close()
		go fwder.Start(ctx)
		app.AddForwarder(fwder)
	}
	if *printTelemetry {
		app.AddForwarder(&printer{})
	}

	err = app.Run(ctx)
	srv.Stop()
	if mp, ok := panel.(*display.Memory); ok && cfg.Display.Snapshot != "" {
		writeSnapshot(mp, cfg.Display.Snapshot)
	}
	if err != nil && err != context.Canceled {
		log.Fatal(err)
	}
}

func writeSnapshot(mp *display.Memory, path string) {
	f, err := os.Create(path)
	if err != nil {
		log.WithField("err", err).Error("unable to create screen snapshot")
		return
	}
	defer f.Close()
	if err := mp.WritePNG(f); err != nil {
		log.WithField("err", err).Error("unable to write screen snapshot")
	}
}
