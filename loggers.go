package main

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/veikk/veikkd-go/memorywriter"
)

func initLoggers(logfile string, verbose bool) (
	stderrWriter io.Writer, // where we write short messages
	stderrLogger *log.Logger, // logger for stderrWriter
	detailWriter *memorywriter.MemoryWriter, // what we serve on the /log endpoint
) {
	if logfile != "" {
		stderrWriter = &lumberjack.Logger{
			Filename:   logfile,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
		}
	} else {
		stderrWriter = os.Stderr
	}

	stderrLogger = log.New(stderrWriter, "", log.LstdFlags)

	verboseWriter := stderrWriter
	if !verbose {
		verboseWriter = nil
	}

	detailWriter, err := memorywriter.New(90000, 200, true, verboseWriter)
	if err != nil {
		stderrLogger.Fatalf("writer: %s", err)
	}
	return stderrWriter, stderrLogger, detailWriter
}
