// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

// Package log supports leveled logging for the huffzip command and library.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Severity is the level of a log message.
type Severity int

const (
	SeverityDefault Severity = iota
	SeverityDebug
	SeverityInfo
	SeverityWarning
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityDefault:
		return "DEFAULT"
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Logger is the interface a logging backend implements.
type Logger interface {
	Log(s Severity, payload any)
	Flush()
}

var (
	mu           sync.Mutex
	logger       Logger = &stdlibLogger{l: log.New(os.Stderr, "", log.LstdFlags)}
	currentLevel        = SeverityInfo
)

// stdlibLogger uses the Go standard library logger.
type stdlibLogger struct {
	l *log.Logger
}

func (s *stdlibLogger) Log(sev Severity, payload any) {
	s.l.Printf("%s: %+v", sev, payload)
}

func (*stdlibLogger) Flush() {}

// SetOutput directs the logger to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = &stdlibLogger{l: log.New(w, "", log.LstdFlags)}
}

// SetLevel sets the minimum severity that is logged.
// It accepts "debug", "info", "warning", "error" and "fatal",
// in any case. Anything else restores the default, "info".
func SetLevel(v string) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = toLevel(v)
}

func getLevel() Severity {
	mu.Lock()
	defer mu.Unlock()
	return currentLevel
}

func toLevel(v string) Severity {
	switch strings.ToLower(v) {
	case "debug":
		return SeverityDebug
	case "info":
		return SeverityInfo
	case "warning":
		return SeverityWarning
	case "error":
		return SeverityError
	case "fatal":
		return SeverityCritical
	default:
		return SeverityInfo
	}
}

// Debugf logs a formatted string at the Debug level.
func Debugf(format string, args ...any) {
	logf(SeverityDebug, format, args)
}

// Infof logs a formatted string at the Info level.
func Infof(format string, args ...any) {
	logf(SeverityInfo, format, args)
}

// Fatalf logs a formatted string at the Critical level and exits the program.
func Fatalf(format string, args ...any) {
	logf(SeverityCritical, format, args)
	die()
}

func logf(s Severity, format string, args []any) {
	doLog(s, fmt.Sprintf(format, args...))
}

// Fatal logs arg at the Critical level and exits the program.
func Fatal(arg any) {
	doLog(SeverityCritical, arg)
	die()
}

func doLog(s Severity, payload any) {
	if getLevel() > s {
		return
	}
	// Convert errors to strings, or they may print as an empty struct.
	if err, ok := payload.(error); ok {
		payload = err.Error()
	}
	mu.Lock()
	l := logger
	mu.Unlock()
	l.Log(s, payload)
}

func die() {
	mu.Lock()
	logger.Flush()
	mu.Unlock()
	os.Exit(1)
}
