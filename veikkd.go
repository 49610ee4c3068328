package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veikk/veikkd-go/config"
	"github.com/veikk/veikkd-go/core"
	"github.com/veikk/veikkd-go/server"
	"github.com/veikk/veikkd-go/uinput"
	"github.com/veikk/veikkd-go/usb"
)

const version = "1.0.0"

const rescanInterval = 500 * time.Millisecond

func main() {
	options := parseFlags()

	if options.versionFlag {
		fmt.Printf("veikkd version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(options.configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if options.logfile == "" {
		options.logfile = cfg.Log.File
	}
	if !options.verbose {
		options.verbose = cfg.Log.Verbose
	}
	if options.serverAddr == "" {
		options.serverAddr = cfg.Server.Addr
	}

	stderrWriter, stderrLogger, detailWriter := initLoggers(options.logfile, options.verbose)
	stderrLogger.Print("veikkd is starting.")

	var buses []core.HIDBus
	if options.withusb {
		detailWriter.Log("initing hidapi")
		h, err := usb.InitHIDAPI(detailWriter)
		if err != nil {
			stderrLogger.Fatalf("hidapi: %s", err)
		}
		defer h.Close()
		buses = append(buses, h)
	}
	if options.emulator != "" {
		detailWriter.Log("initing emulator on " + options.emulator)
		e, err := usb.InitEmulator(options.emulator, uint16(options.emulatorPID))
		if err != nil {
			stderrLogger.Fatalf("emulator: %s", err)
		}
		buses = append(buses, e)
	}
	if len(buses) == 0 {
		stderrLogger.Fatalf("No transports enabled")
	}

	bus := usb.Init(buses...)
	publisher := uinput.New(options.uinputPath)
	manager := core.New(bus, publisher, detailWriter, cfg.ActivationPolicy())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if options.configFile != "" {
		go func() {
			err := config.Watch(ctx, options.configFile, detailWriter, func(c *config.Config) {
				manager.SetActivationPolicy(c.ActivationPolicy())
			})
			if err != nil {
				stderrLogger.Printf("config watcher: %s", err)
			}
		}()
	}

	go manager.Watch(ctx, rescanInterval)

	detailWriter.Log("creating status server on " + options.serverAddr)
	s := server.New(manager, options.serverAddr, version, stderrWriter, detailWriter)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		stderrLogger.Print("veikkd is shutting down.")
		cancel()
		manager.DetachAll()
		_ = s.Close()
	}()

	detailWriter.Log("running status server")
	if err := s.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		stderrLogger.Fatalf("server: %s", err)
	}

	detailWriter.Log("main ended")
}
