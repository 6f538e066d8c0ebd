package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps LOG_LEVEL values to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type Logger struct {
	level Level
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	error *log.Logger
}

// New writes debug and info to stdout, warn and error to stderr.
func New(level string) *Logger {
	return build(ParseLevel(level), os.Stdout, os.Stderr)
}

func NewWithWriter(level string, writer io.Writer) *Logger {
	return build(ParseLevel(level), writer, writer)
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return build(LevelError+1, io.Discard, io.Discard)
}

func build(level Level, out, errOut io.Writer) *Logger {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	return &Logger{
		level: level,
		debug: log.New(out, "DEBUG: ", flags),
		info:  log.New(out, "INFO: ", flags),
		warn:  log.New(errOut, "WARN: ", flags),
		error: log.New(errOut, "ERROR: ", flags),
	}
}

// calldepth 3 attributes Lshortfile to the caller of Infof etc.
func (l *Logger) output(lvl Level, target *log.Logger, s string) {
	if lvl < l.level {
		return
	}
	_ = target.Output(3, s)
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	l.output(LevelDebug, l.debug, fmt.Sprintf(format, v...))
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.output(LevelInfo, l.info, fmt.Sprintf(format, v...))
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.output(LevelWarn, l.warn, fmt.Sprintf(format, v...))
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.output(LevelError, l.error, fmt.Sprintf(format, v...))
}

// Fatalf logs at error level regardless of the configured level and exits.
func (l *Logger) Fatalf(format string, v ...interface{}) {
	_ = l.error.Output(2, "FATAL: "+fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Std exposes a stdlib logger at info level for libraries that want one.
func (l *Logger) Std() *log.Logger {
	return l.info
}
