package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gloworm-vision/encodersine/hardware"
	"github.com/gloworm-vision/encodersine/render"
	"github.com/gloworm-vision/encodersine/render/otoout"
	"github.com/gloworm-vision/encodersine/server"
	"github.com/gloworm-vision/encodersine/store"
	"github.com/gloworm-vision/encodersine/synth"
	"github.com/sirupsen/logrus"
)

type options struct {
	dbPath    string
	addr      string
	simulated bool
}

func main() {
	var opts options
	flag.StringVar(&opts.dbPath, "db", "encodersine.db", "settings database")
	flag.StringVar(&opts.addr, "addr", ":8080", "status server address, empty to disable")
	flag.BoolVar(&opts.simulated, "sim", false, "use a simulated encoder")
	flag.Parse()

	logger := logrus.New()

	if err := run(opts, logger); err != nil {
		logger.Errorf("%s", err)
		os.Exit(1)
	}
}

// run plays the synth until SIGINT or SIGTERM. Everything it opens is closed
// before it returns.
func run(opts options, logger *logrus.Logger) error {
	st, err := store.OpenBBolt(opts.dbPath, 0666, nil)
	if err != nil {
		return fmt.Errorf("unable to open store: %w", err)
	}
	defer st.Close()

	hardwareConfig, err := st.HardwareConfig()
	if err != nil {
		logger.Warnf("no hardware config found, using defaults: %s", err)
		hardwareConfig = hardware.DefaultConfig()
	}
	if opts.simulated {
		hardwareConfig.Simulated = true
	}

	synthConfig, err := st.SynthConfig()
	if err != nil {
		logger.Warnf("no synth config found, using defaults: %s", err)
		synthConfig = synth.DefaultConfig()
	}

	device, err := hardware.New(hardwareConfig)
	if err != nil {
		return fmt.Errorf("unable to setup hardware: %w", err)
	}
	defer device.Close()

	app := synth.New(synthConfig, device.Encoder, logger)
	app.Indicators = device.Indicators

	audioCtx, err := render.NewContext(44100, 256, 2)
	if err != nil {
		return fmt.Errorf("unable to create audio context: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErrs := make(chan error, 1)
	if opts.addr != "" {
		srv := &server.Server{Addr: opts.addr, Store: st, Synth: app, Logger: logger}
		go func() {
			serverErrs <- srv.Run(ctx)
		}()
	}

	player := &otoout.Player{Context: audioCtx, Logger: logger}
	if err := player.Run(ctx, app); err != nil {
		return err
	}

	if opts.addr != "" {
		if err := <-serverErrs; err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("status server stopped: %s", err)
		}
	}

	return nil
}
