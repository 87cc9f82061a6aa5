package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Provides a small structured logger interface for the application.
// Arguments after msg are alternating key/value pairs.

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// Key constants for structured log fields.
const (
	KeyComponent = "component"
	KeyKind      = "kind"
	KeyError     = "error"
	KeyPath      = "path"
)

// Options selects level, encoding and destination.
type Options struct {
	Level      string // debug, info, warn, error
	Format     string // console, json
	File       string // empty = stderr
	MaxSizeMB  int
	MaxBackups int
}

// ZapLogger adapts a zap SugaredLogger to Logger.
type ZapLogger struct {
	s      *zap.SugaredLogger
	closer io.Closer
}

// New builds a logger from opts.
func New(opts Options) (*ZapLogger, error) {
	var lvl zapcore.Level
	if opts.Level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(opts.Level))); err != nil {
			return nil, fmt.Errorf("logging level %q: %w", opts.Level, err)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(opts.Format) {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "", "console", "text":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("logging format %q: want console or json", opts.Format)
	}

	var (
		ws     zapcore.WriteSyncer
		closer io.Closer
	)
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		ws = zapcore.AddSync(lj)
		closer = lj
	} else {
		ws = zapcore.Lock(os.Stderr)
	}

	return newFromCore(zapcore.NewCore(enc, ws, lvl), closer), nil
}

// NewWriter logs to w, mainly for tests.
func NewWriter(w io.Writer, level zapcore.Level) *ZapLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level)
	return newFromCore(core, nil)
}

func newFromCore(core zapcore.Core, closer io.Closer) *ZapLogger {
	return &ZapLogger{s: zap.New(core).Sugar(), closer: closer}
}

// Nop discards everything.
func Nop() *ZapLogger {
	return &ZapLogger{s: zap.NewNop().Sugar()}
}

// Named returns a child logger tagged with the component name.
func (l *ZapLogger) Named(component string) *ZapLogger {
	return &ZapLogger{s: l.s.With(KeyComponent, component), closer: l.closer}
}

func (l *ZapLogger) Debug(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l *ZapLogger) Info(msg string, kv ...any)  { l.s.Infow(msg, kv...) }
func (l *ZapLogger) Warn(msg string, kv ...any)  { l.s.Warnw(msg, kv...) }
func (l *ZapLogger) Error(msg string, kv ...any) { l.s.Errorw(msg, kv...) }

// Close flushes buffered entries and closes the log file, if any.
func (l *ZapLogger) Close() error {
	_ = l.s.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
