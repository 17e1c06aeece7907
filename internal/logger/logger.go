// Package logger provides the structured, async-safe logging used across
// respd. It replaces the hand-rolled channel-and-pool logger the teacher
// project kept under lib/logger with a go.uber.org/zap core, rotated
// through gopkg.in/natefinch/lumberjack.v2 when a file sink is configured.
package logger

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level names accepted by Settings.Level.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Settings configures the default logger. The zero value logs INFO and
// above to stdout, matching NewStdoutLogger's role in the teacher project.
type Settings struct {
	Level      string `mapstructure:"level"`
	Stdout     bool   `mapstructure:"stdout"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
}

func levelOf(s string) zapcore.Level {
	switch s {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger wraps a zap.SugaredLogger with the level-named helpers the rest
// of respd calls (Debug/Info/Warn/Error/Fatal), mirroring the teacher's
// ILogger surface without its manual object pooling — zap already owns
// allocation efficiency for structured fields.
type Logger struct {
	base *zap.Logger
	s    *zap.SugaredLogger
}

// New builds a Logger from Settings. A non-empty Filename selects a
// lumberjack-rotated file sink; if Stdout is also set, entries go to both
// the file and stdout. With no Filename, entries go to stdout.
func New(settings Settings) (*Logger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Local().Format("2006-01-02T15:04:05.000Z07:00"))
	}
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encCfg)

	var sink zapcore.WriteSyncer
	switch {
	case settings.Filename != "":
		if err := os.MkdirAll(filepath.Dir(settings.Filename), 0o755); err != nil {
			return nil, err
		}
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   settings.Filename,
			MaxSize:    orDefault(settings.MaxSizeMB, 100),
			MaxAge:     orDefault(settings.MaxAgeDays, 14),
			MaxBackups: orDefault(settings.MaxBackups, 7),
			LocalTime:  true,
		})
		if settings.Stdout {
			sink = zapcore.NewMultiWriteSyncer(sink, zapcore.AddSync(os.Stdout))
		}
	default:
		sink = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, sink, levelOf(settings.Level))
	base := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{base: base, s: base.Sugar()}, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// With returns a child Logger carrying the given structured fields on
// every subsequent call (used to attach sid/trace_id to a connection's
// lifetime of log lines).
func (l *Logger) With(args ...any) *Logger {
	child := l.s.With(args...)
	return &Logger{base: l.base, s: child}
}

func (l *Logger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }
func (l *Logger) Fatal(msg string, args ...any) { l.s.Fatalw(msg, args...) }

// Sync flushes any buffered log entries; call before process exit.
func (l *Logger) Sync() error { return l.base.Sync() }

var std = mustStdout()

func mustStdout() *Logger {
	l, err := New(Settings{Level: LevelInfo, Stdout: true})
	if err != nil {
		panic(err)
	}
	return l
}

// Setup replaces the package-level default logger, mirroring the
// teacher's logger.Setup(settings) entrypoint called once at startup.
func Setup(settings Settings) error {
	l, err := New(settings)
	if err != nil {
		return err
	}
	std = l
	return nil
}

func Debug(msg string, args ...any) { std.Debug(msg, args...) }
func Info(msg string, args ...any)  { std.Info(msg, args...) }
func Warn(msg string, args ...any)  { std.Warn(msg, args...) }
func Error(msg string, args ...any) { std.Error(msg, args...) }
func Fatal(msg string, args ...any) { std.Fatal(msg, args...) }
func Sync() error                   { return std.Sync() }
