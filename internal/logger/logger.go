package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// FileOptions configures the rotating log file. Secrets must never be passed
// to this package; callers redact before logging.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu            sync.RWMutex
	console       io.Writer = os.Stderr
	minLevel                = INFO
	fileSink      *lumberjack.Logger
	defaultLogger = newZapLogger(console, nil, minLevel)
)

func zapLevel(level LogLevel) zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func newZapLogger(out io.Writer, file *lumberjack.Logger, level LogLevel) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	encCfg.LevelKey = ""
	encCfg.CallerKey = ""

	enabler := zap.NewAtomicLevelAt(zapLevel(level))

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(out), enabler),
	}

	if file != nil {
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(file), enabler))
	}

	return zap.New(zapcore.NewTee(cores...)).Sugar()
}

func rebuild() {
	defaultLogger = newZapLogger(console, fileSink, minLevel)
}

func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	console = w
	rebuild()
}

func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = level
	rebuild()
}

// EnableFile adds a rotating JSON log file next to the console output.
func EnableFile(opts FileOptions) error {
	if opts.Path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()

	fileSink = &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
	rebuild()

	return nil
}

// CloseFile flushes and detaches the log file, if any.
func CloseFile() error {
	mu.Lock()
	defer mu.Unlock()

	if fileSink == nil {
		return nil
	}

	_ = defaultLogger.Sync()
	err := fileSink.Close()
	fileSink = nil
	rebuild()

	return err
}

func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = defaultLogger.Sync()
}

func formatMessage(level LogLevel, format string, args ...interface{}) string {
	levelStr := ""
	switch level {
	case DEBUG:
		levelStr = "DEBUG"
	case INFO:
		levelStr = "INFO"
	case WARN:
		levelStr = "WARN"
	case ERROR:
		levelStr = "ERROR"
	case FATAL:
		levelStr = "FATAL"
	}

	msg := fmt.Sprintf(format, args...)
	return fmt.Sprintf("[%s] [FLEETBUDDY] %s", levelStr, msg)
}

func Debug(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	defaultLogger.Debug(formatMessage(DEBUG, format, args...))
}

func Info(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	defaultLogger.Info(formatMessage(INFO, format, args...))
}

func Warn(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	defaultLogger.Warn(formatMessage(WARN, format, args...))
}

func Error(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	defaultLogger.Error(formatMessage(ERROR, format, args...))
}

func Fatal(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	defaultLogger.Fatal(formatMessage(FATAL, format, args...))
}
