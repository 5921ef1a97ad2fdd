/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package flogging

import (
	"io"
)

// Global is the process wide logging system.
var Global *Logging

func init() {
	logging, err := New(Config{})
	if err != nil {
		panic(err)
	}
	Global = logging
}

// Init initializes logging with the provided config.
func Init(config Config) {
	err := Global.Apply(config)
	if err != nil {
		panic(err)
	}
}

// Reset sets logging to the defaults defined in this package.
//
// Used in tests and in the package init
func Reset() {
	Global.Apply(Config{})
}

// LoggerLevel gets the current logging level for the logger with the
// provided name.
func LoggerLevel(loggerName string) string {
	return Global.Level(loggerName).String()
}

// MustGetLogger creates a logger with the specified name. If an invalid name
// is provided, the operation will panic.
func MustGetLogger(loggerName string) *FabricLogger {
	return Global.Logger(loggerName)
}

// ActivateSpec is used to activate a logging specification.
func ActivateSpec(spec string) {
	err := Global.ActivateSpec(spec)
	if err != nil {
		panic(err)
	}
}

// DefaultLevel returns the default log level.
func DefaultLevel() string {
	return Global.DefaultLevel().String()
}

// SetWriter calls SetWriter returning the previous value
// of the writer.
func SetWriter(w io.Writer) io.Writer {
	return Global.SetWriterReturningPrevious(w)
}

// SetObserver calls SetObserver on the global logging system.
func SetObserver(observer Observer) {
	Global.SetObserver(observer)
}

// SetWriterReturningPrevious swaps the writer and returns the previous one.
func (s *Logging) SetWriterReturningPrevious(w io.Writer) io.Writer {
	s.mutex.RLock()
	prev := s.writer
	s.mutex.RUnlock()

	s.SetWriter(w)
	return prev
}
