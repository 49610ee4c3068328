package main

import (
	"flag"
)

type initOptions struct {
	configFile string
	logfile    string
	verbose    bool

	withusb     bool
	emulator    string
	emulatorPID uint
	uinputPath  string

	serverAddr  string
	versionFlag bool
}

func parseFlags() initOptions {
	var options initOptions
	flag.StringVar(
		&(options.configFile),
		"c",
		"",
		"Read configuration from a TOML file and reload it on change.",
	)
	flag.StringVar(
		&(options.logfile),
		"l",
		"",
		"Log into a file, rotating after 20MB",
	)
	flag.BoolVar(
		&(options.verbose),
		"v",
		false,
		"Write verbose logs to either stderr or logfile",
	)
	flag.BoolVar(
		&(options.withusb),
		"u",
		true,
		"Use USB devices. Can be disabled for testing environments. Example: veikkd -e 127.0.0.1:21324 -u=false",
	)
	flag.StringVar(
		&(options.emulator),
		"e",
		"",
		"Use a UDP tablet emulator on the given address. Example: veikkd -e 127.0.0.1:21324",
	)
	flag.UintVar(
		&(options.emulatorPID),
		"ep",
		0x0002,
		"Product id the emulator is presented as. Default is the A30.",
	)
	flag.StringVar(
		&(options.uinputPath),
		"uinput",
		"/dev/uinput",
		"Path of the uinput device node.",
	)
	flag.StringVar(
		&(options.serverAddr),
		"s",
		"",
		"Status server address; overrides the config file.",
	)
	flag.BoolVar(
		&(options.versionFlag),
		"version",
		false,
		"Write version",
	)
	flag.Parse()
	return options
}
