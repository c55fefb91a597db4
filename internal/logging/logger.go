package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger     = zerolog.Nop()
	loggerLock sync.RWMutex
	closer     io.Closer
)

// Init 初始化日志：path 为 "-" 时输出到 stderr 控制台格式，否则追加 JSON 行到文件
// Init configures the package logger. A path of "-" writes console-formatted lines to
// stderr; any other path appends JSON lines to that file. The console itself owns stdout.
func Init(path, level string) error {
	path = strings.TrimSpace(path)

	var output io.Writer
	var c io.Closer
	switch path {
	case "":
		output = io.Discard
	case "-":
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	default:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		output = f
		c = f
	}

	loggerLock.Lock()
	defer loggerLock.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
	closer = c
	logger = zerolog.New(output).
		Level(parseLogLevel(level)).
		With().
		Timestamp().
		Logger()
	return nil
}

// Close 关闭日志文件 / Close releases the log file, if any
func Close() {
	loggerLock.Lock()
	defer loggerLock.Unlock()
	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	logger = zerolog.Nop()
}

// SetLevel sets the global log level at runtime
func SetLevel(levelStr string) {
	level := parseLogLevel(levelStr)
	loggerLock.Lock()
	logger = logger.Level(level)
	loggerLock.Unlock()
}

// SetOutput replaces the writer, mostly for tests
func SetOutput(w io.Writer, levelStr string) {
	loggerLock.Lock()
	logger = zerolog.New(w).Level(parseLogLevel(levelStr)).With().Timestamp().Logger()
	loggerLock.Unlock()
}

// parseLogLevel converts a string log level to zerolog.Level
func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func current() zerolog.Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger
}

// Debug logs a debug message
func Debug() *zerolog.Event {
	l := current()
	return l.Debug()
}

// Info logs an info message
func Info() *zerolog.Event {
	l := current()
	return l.Info()
}

// Warn logs a warning message
func Warn() *zerolog.Event {
	l := current()
	return l.Warn()
}

// Error logs an error message
func Error() *zerolog.Event {
	l := current()
	return l.Error()
}

// Logger returns the underlying zerolog.Logger for integrations
func Logger() zerolog.Logger {
	return current()
}
