package main

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"liftsim/config"
	"liftsim/fsm"
	"liftsim/gpio"
	"liftsim/lifecycle"
	"liftsim/lights"
	"liftsim/logger"
	"liftsim/network"
	"liftsim/requests"
	"liftsim/timer"
)

func main() {
	args := processCmdArgs()

	cfg := config.Default()
	if args.configPath != "" {
		loaded, err := config.Load(args.configPath)
		if err != nil {
			logger.GetLogger().Fatal().Err(err).Msg("bad configuration")
		}
		cfg = loaded
	}
	if args.backend != "" {
		cfg.Backend = args.backend
	}
	if args.monitor != "" {
		cfg.Monitor.Addr = args.monitor
	}
	if args.logLevel != "" {
		cfg.LogLevel = args.logLevel
	}

	log := logger.GetLoggerConfigured(logger.ParseLevel(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}

	log.Info().Msg("Lift Operation Simulation")
	log.Info().Msg("-----------------------------------------------")

	chip, err := gpio.Open(cfg.Backend, gpio.Options{
		SysfsDir:     cfg.SysfsDir,
		Chip:         cfg.Chip,
		PollInterval: cfg.PollInterval,
		KeyPins:      cfg.Buttons(),
	})
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Backend).Msg("cannot open gpio backend")
	}

	sleeper := timer.Real{}
	bank := lights.New(chip, cfg.Direction, cfg.Positions(), cfg.Acks(), sleeper, cfg.Timing.SweepStep)
	source := requests.New(chip, bank, cfg.Buttons(), sleeper, cfg.Timing.CallSettle)
	ctrl := fsm.NewController(bank, source, sleeper, cfg.Timing, cfg.DefaultFloor)

	var teardown lifecycle.Teardown
	teardown.Add("lamps", bank.ShutdownAll)
	teardown.Add("buttons", source.Close)

	if cfg.Monitor.Addr != "" {
		pub, err := network.NewPublisher(cfg.Monitor.Addr)
		if err != nil {
			log.Warn().Err(err).Msg("panel mirror disabled")
		} else {
			log.Info().Str("monitor", cfg.Monitor.Addr).Str("session", pub.Session().String()).Msg("mirroring panel")
			pub.Attach(bank)
			teardown.Add("monitor", func() { pub.Close() })
		}
	}
	teardown.Add("chip", func() { chip.Close() })

	bank.Init()
	source.Init()
	ctrl.Start()

	ctx, stop := lifecycle.Signals(context.Background())
	err = ctrl.Run(ctx)
	os.Exit(finish(err, stop, &teardown))
}

// finish tears the lift down once with further signals ignored and returns
// the process exit code. An interrupt is a clean exit.
func finish(err error, stop context.CancelFunc, teardown *lifecycle.Teardown) int {
	log := logger.GetLogger()

	lifecycle.Shield()
	stop()
	teardown.Run()
	log.Info().Msg("=== Demonstration END ===")

	if errors.Is(err, context.Canceled) {
		log.Info().Msg("Program Exit due to CTRL-C")
		return 0
	}
	log.Error().Err(err).Msg("lift stopped")
	return 1
}
