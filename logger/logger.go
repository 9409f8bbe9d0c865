// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
)

// Logger specifies logging API.
type Logger interface {
	// Debug logs any object in JSON format on debug level.
	Debug(string)
	// Info logs any object in JSON format on info level.
	Info(string)
	// Warn logs any object in JSON format on warning level.
	Warn(string)
	// Error logs any object in JSON format on error level.
	Error(string)
	// Fatal logs any object in JSON format on any level and calls "os.Exit(1)".
	Fatal(string)
}

var _ Logger = (*logger)(nil)

type logger struct {
	kitLogger log.Logger
	level     Level
}

// New returns wrapped go kit logger writing JSON lines to out.
func New(out io.Writer, levelText string, keyvals ...interface{}) (Logger, error) {
	var level Level
	if err := level.UnmarshalText(levelText); err != nil {
		return nil, fmt.Errorf(`{"level":"error","message":"%s: %s"}`, err, levelText)
	}
	l := log.NewJSONLogger(log.NewSyncWriter(out))
	l = log.With(l, "ts", log.DefaultTimestampUTC)
	if len(keyvals) > 0 {
		l = log.With(l, keyvals...)
	}
	return &logger{l, level}, nil
}

func (l logger) Debug(msg string) {
	if Debug.isAllowed(l.level) {
		_ = l.kitLogger.Log("level", Debug.String(), "message", msg)
	}
}

func (l logger) Info(msg string) {
	if Info.isAllowed(l.level) {
		_ = l.kitLogger.Log("level", Info.String(), "message", msg)
	}
}

func (l logger) Warn(msg string) {
	if Warn.isAllowed(l.level) {
		_ = l.kitLogger.Log("level", Warn.String(), "message", msg)
	}
}

func (l logger) Error(msg string) {
	if Error.isAllowed(l.level) {
		_ = l.kitLogger.Log("level", Error.String(), "message", msg)
	}
}

func (l logger) Fatal(msg string) {
	_ = l.kitLogger.Log("fatal", msg)
	os.Exit(1)
}
