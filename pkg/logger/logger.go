package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Leveled process logger shared by the API server and schemactl.
// Printf-style helpers for free text, the *w variants for key=value pairs.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu      sync.RWMutex
	logger  *log.Logger = log.New(os.Stdout, "", 0)
	level   Level       = LevelInfo
	service string      = "docschema"
)

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values fall back to info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(l)
}

// ParseLevel converts a level name into a Level.
func ParseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// SetOutput redirects log output; used by tests and the CLI (stderr).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", 0)
}

// SetService changes the service name printed in every line.
func SetService(name string) {
	mu.Lock()
	defer mu.Unlock()
	service = name
}

func header(lvl string) string {
	mu.RLock()
	svc := service
	mu.RUnlock()
	return fmt.Sprintf("%s [%s] %s: ", time.Now().Format(time.RFC3339), strings.ToUpper(lvl), svc)
}

func shouldLog(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func output(s string) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Print(s)
}

func logf(l Level, name, format string, v ...interface{}) {
	if !shouldLog(l) {
		return
	}
	output(header(name) + fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...interface{}) { logf(LevelDebug, "debug", format, v...) }
func Infof(format string, v ...interface{})  { logf(LevelInfo, "info", format, v...) }
func Warnf(format string, v ...interface{})  { logf(LevelWarn, "warn", format, v...) }
func Errorf(format string, v ...interface{}) { logf(LevelError, "error", format, v...) }

func Fatalf(format string, v ...interface{}) {
	output(header("fatal") + fmt.Sprintf(format, v...))
	os.Exit(1)
}

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// Infow logs msg followed by key=value pairs, e.g. Infow("template created", "id", id).
func Infow(msg string, kv ...interface{})  { logw(LevelInfo, "info", msg, kv) }
func Warnw(msg string, kv ...interface{})  { logw(LevelWarn, "warn", msg, kv) }
func Errorw(msg string, kv ...interface{}) { logw(LevelError, "error", msg, kv) }
func Debugw(msg string, kv ...interface{}) { logw(LevelDebug, "debug", msg, kv) }

func logw(l Level, name, msg string, kv []interface{}) {
	if !shouldLog(l) {
		return
	}
	output(header(name) + msg + formatPairs(kv))
}

func formatPairs(kv []interface{}) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			fmt.Fprintf(&b, " %s=<missing>", key)
			break
		}
		val := fmt.Sprint(kv[i+1])
		if strings.ContainsAny(val, " \t\"=") {
			val = fmt.Sprintf("%q", val)
		}
		fmt.Fprintf(&b, " %s=%s", key, val)
	}
	return b.String()
}

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}
