package logger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// MaxLogLines caps the log file size; when exceeded the file is trimmed to
// its most recent MaxLogLines lines
const MaxLogLines = 5000

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a LogLevel, defaulting to info
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// FileLogger writes timestamped, leveled messages to a file and keeps the
// file from growing without bound
type FileLogger struct {
	mu        sync.Mutex
	file      *os.File
	level     LogLevel
	lineCount int
}

var (
	global        *FileLogger
	defaultLogger = &FileLogger{file: os.Stderr, level: LevelInfo}
)

// Open creates a FileLogger appending to path and installs it as the
// package-wide logger. The caller should Close it on shutdown.
func Open(path string, level LogLevel) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := &FileLogger{file: f, level: level}
	l.countExistingLines()
	global = l
	return l, nil
}

// SetLevel changes the logging level
func (l *FileLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Close closes the underlying file
func (l *FileLogger) Close() error {
	if l.file == os.Stderr {
		return nil
	}
	return l.file.Close()
}

func (l *FileLogger) log(level LogLevel, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	msg := fmt.Sprintf("%s [%s] %s\n",
		time.Now().Format("2006/01/02 15:04:05"), level, fmt.Sprintf(format, v...))
	if _, err := l.file.WriteString(msg); err != nil {
		return
	}
	l.lineCount += strings.Count(msg, "\n")
	if l.lineCount > MaxLogLines {
		l.rotate()
	}
}

// Debug logs a debug message
func (l *FileLogger) Debug(format string, v ...any) { l.log(LevelDebug, format, v...) }

// Info logs an info message
func (l *FileLogger) Info(format string, v ...any) { l.log(LevelInfo, format, v...) }

// Warn logs a warning message
func (l *FileLogger) Warn(format string, v ...any) { l.log(LevelWarn, format, v...) }

// Error logs an error message
func (l *FileLogger) Error(format string, v ...any) { l.log(LevelError, format, v...) }

// Write implements io.Writer so the standard log package can be pointed here
func (l *FileLogger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, err := l.file.Write(p)
	if err != nil {
		return n, err
	}
	l.lineCount += strings.Count(string(p), "\n")
	if l.lineCount > MaxLogLines {
		l.rotate()
	}
	return n, nil
}

// countExistingLines seeds lineCount from the file's current content
func (l *FileLogger) countExistingLines() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.file.Seek(0, 0)
	scanner := bufio.NewScanner(l.file)
	count := 0
	for scanner.Scan() {
		count++
	}
	l.lineCount = count
	l.file.Seek(0, 2)
}

// rotate trims the file to its last MaxLogLines lines; caller holds the lock
func (l *FileLogger) rotate() {
	l.file.Seek(0, 0)
	scanner := bufio.NewScanner(l.file)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) > MaxLogLines {
		lines = lines[len(lines)-MaxLogLines:]
	}

	l.file.Truncate(0)
	l.file.Seek(0, 0)
	for _, line := range lines {
		l.file.WriteString(line + "\n")
	}
	l.lineCount = len(lines)
}

func active() *FileLogger {
	if global != nil {
		return global
	}
	return defaultLogger
}

// Package-level logging functions writing through the installed logger,
// or stderr before one is installed

// SetLevel changes the level of the installed logger
func SetLevel(level LogLevel) { active().SetLevel(level) }

func Debug(format string, v ...any) { active().Debug(format, v...) }

func Info(format string, v ...any) { active().Info(format, v...) }

func Warn(format string, v ...any) { active().Warn(format, v...) }

func Error(format string, v ...any) { active().Error(format, v...) }

// Fatal logs an error message and exits with code 1
func Fatal(format string, v ...any) {
	active().Error(format, v...)
	os.Exit(1)
}

// Trace returns a function that logs the elapsed time since the call when
// invoked. Usage: defer logger.Trace("operation")()
func Trace(name string) func() {
	l := active()
	if LevelDebug < l.level {
		return func() {}
	}
	start := time.Now()
	return func() {
		l.Debug("%s took %v", name, time.Since(start))
	}
}
