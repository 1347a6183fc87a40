// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
// Package log provides a small, instantiable leveled logger.
//
// Unlike a process-wide logging singleton, every *Logger here is an
// independent value: the evaluation core must be constructible more than
// once in a single process (see spec §9, "global singletons"), so nothing
// in this package keeps state in package-level variables.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Level is an ordered verbosity level, lowest-first.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelNote
	LevelWarn
	LevelError
	LevelCrit
	// LevelSilent discards everything.
	LevelSilent
)

// ParseLevel accepts the level names "debug", "info", "notice", "warn",
// "err"/"fatal" and "crit", defaulting to LevelDebug for anything
// unrecognized.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "notice":
		return LevelNote
	case "warn":
		return LevelWarn
	case "err", "fatal":
		return LevelError
	case "crit":
		return LevelCrit
	default:
		return LevelDebug
	}
}

var prefixes = [...]string{
	LevelDebug: "<7>[DEBUG]    ",
	LevelInfo:  "<6>[INFO]     ",
	LevelNote:  "<5>[NOTICE]   ",
	LevelWarn:  "<4>[WARNING]  ",
	LevelError: "<3>[ERROR]    ",
	LevelCrit:  "<2>[CRITICAL] ",
}

// Logger is a prefixed, level-gated writer. The zero value is not usable;
// construct one with New.
type Logger struct {
	level    atomic.Int32
	dateTime bool
	loggers  [len(prefixes)]*log.Logger
}

// Option configures a Logger at construction time.
type Option func(*Logger)

// WithWriter routes the output of level lvl alone to w. Call multiple
// times to fan different levels to different writers; levels not given a
// writer default to os.Stderr.
func WithWriter(lvl Level, w io.Writer) Option {
	return func(l *Logger) {
		flags := 0
		switch lvl {
		case LevelNote, LevelWarn:
			flags = log.Lshortfile
		case LevelError, LevelCrit:
			flags = log.Llongfile
		}
		if l.dateTime {
			flags |= log.LstdFlags
		}
		l.loggers[lvl] = log.New(w, prefixes[lvl], flags)
	}
}

// WithLevel sets the initial minimum level that is emitted.
func WithLevel(lvl Level) Option {
	return func(l *Logger) { l.level.Store(int32(lvl)) }
}

// WithDateTime enables systemd-style date/time prefixing; by default it is
// left off because most deployments of this SDK run under a supervisor that
// timestamps stdout/stderr itself. It affects only writers installed by
// WithWriter options that come after it; the default os.Stderr writers
// never carry a timestamp.
func WithDateTime(enabled bool) Option {
	return func(l *Logger) { l.dateTime = enabled }
}

// New builds a Logger writing to os.Stderr at every level unless overridden.
func New(opts ...Option) *Logger {
	l := &Logger{}
	l.level.Store(int32(LevelDebug))
	for lvl := range l.loggers {
		flags := 0
		switch Level(lvl) {
		case LevelNote, LevelWarn:
			flags = log.Lshortfile
		case LevelError, LevelCrit:
			flags = log.Llongfile
		}
		l.loggers[lvl] = log.New(os.Stderr, prefixes[lvl], flags)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Nop returns a Logger that discards everything. Useful as a zero-cost
// default when a caller does not supply one.
func Nop() *Logger {
	return New(WithLevel(LevelSilent))
}

// SetLevel changes the minimum emitted level at runtime; safe for
// concurrent use alongside logging calls.
func (l *Logger) SetLevel(lvl Level) { l.level.Store(int32(lvl)) }

func (l *Logger) enabled(lvl Level) bool {
	return l != nil && Level(l.level.Load()) <= lvl
}

func (l *Logger) output(lvl Level, s string) {
	if !l.enabled(lvl) {
		return
	}
	_ = l.loggers[lvl].Output(3, s)
}

func (l *Logger) Debug(v ...interface{})                 { l.output(LevelDebug, fmt.Sprint(v...)) }
func (l *Logger) Debugf(format string, v ...interface{})  { l.output(LevelDebug, fmt.Sprintf(format, v...)) }
func (l *Logger) Info(v ...interface{})                  { l.output(LevelInfo, fmt.Sprint(v...)) }
func (l *Logger) Infof(format string, v ...interface{})   { l.output(LevelInfo, fmt.Sprintf(format, v...)) }
func (l *Logger) Note(v ...interface{})                  { l.output(LevelNote, fmt.Sprint(v...)) }
func (l *Logger) Notef(format string, v ...interface{})   { l.output(LevelNote, fmt.Sprintf(format, v...)) }
func (l *Logger) Warn(v ...interface{})                  { l.output(LevelWarn, fmt.Sprint(v...)) }
func (l *Logger) Warnf(format string, v ...interface{})   { l.output(LevelWarn, fmt.Sprintf(format, v...)) }
func (l *Logger) Error(v ...interface{})                 { l.output(LevelError, fmt.Sprint(v...)) }
func (l *Logger) Errorf(format string, v ...interface{})  { l.output(LevelError, fmt.Sprintf(format, v...)) }
func (l *Logger) Crit(v ...interface{})                  { l.output(LevelCrit, fmt.Sprint(v...)) }
func (l *Logger) Critf(format string, v ...interface{})   { l.output(LevelCrit, fmt.Sprintf(format, v...)) }
