package main

import (
	"flag"
	"fmt"
	"os"
)

type cmdArgs struct {
	configPath string
	backend    string
	logLevel   string
	monitor    string
}

// processCmdArgs reads the optional flags. With none given the lift runs the
// reference board on sysfs.
func processCmdArgs() cmdArgs {
	var args cmdArgs
	help := flag.Bool("help", false, "Show Help Window")
	flag.StringVar(&args.configPath, "config", "", "YAML file overriding the reference pin table and timing")
	flag.StringVar(&args.backend, "backend", "", "GPIO backend: sysfs, cdev, periph, rpio, keyboard or sim")
	flag.StringVar(&args.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&args.monitor, "monitor", "", "host:port of a liftmonitor to mirror the panel to")

	flag.Parse()

	if *help {
		fmt.Println("Usage: ./liftsim [OPTIONS]")
		fmt.Println("Lift operation simulation on GPIO call buttons and lamps")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	return args
}
