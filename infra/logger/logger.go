// Package logger provides the zerolog-backed implementation of the core
// logger interface.
package logger

import corelogger "github.com/campusgrid/timetable/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// New returns a Logger for the given component at the given level. The
// output format is detected via the APP_ENV variable.
func New(component, level string) Logger {
	return NewZerologLogger(component).WithLevel(level)
}
