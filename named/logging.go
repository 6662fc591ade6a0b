/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package named

import (
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging wires the standard logger to a rotated file when logfile
// is non-empty, otherwise leaves log output on stderr. Category/module
// tagging for individual error lines is done by the caller (see
// ErrorSink.addEntry) rather than by multiple loggers, matching the
// teacher's single global *log.Logger approach.
func SetupLogging(logfile string) error {
	log.SetFlags(log.Lshortfile | log.Ltime)

	if logfile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   logfile,
			MaxSize:    20,
			MaxBackups: 3,
			MaxAge:     14,
		})
	}
	return nil
}

// SetupCliLogging configures logging for short-lived CLI invocations:
// no timestamps by default, file/line info when verbose or debug.
func SetupCliLogging() {
	if Globals.Verbose || Globals.Debug {
		log.SetFlags(log.Lshortfile | log.Ltime)
	} else {
		log.SetFlags(0)
	}
}
