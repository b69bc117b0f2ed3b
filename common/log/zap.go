package log

import (
	"fmt"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap sugared logger to the Logger interface. It is the
// backend for --log-format=json.
type ZapLogger struct {
	s *zap.SugaredLogger
}

func NewZapLogger(level string) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		var lvl zapcore.Level
		// log15 calls it crit, zap calls it fatal
		if level == "crit" {
			level = "fatal"
		}
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, errors.Wrapf(err, "invalid log level [%s]", level)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	z, err := cfg.Build()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &ZapLogger{s: z.Sugar()}, nil
}

// WrapZap wraps an existing zap logger, e.g. zap.NewNop() in tests.
func WrapZap(z *zap.Logger) *ZapLogger {
	return &ZapLogger{s: z.Sugar()}
}

func (l *ZapLogger) New(ctx ...interface{}) Logger {
	return &ZapLogger{s: l.s.With(ctx...)}
}

func (l *ZapLogger) Debug(v ...interface{}) {
	if msg, ctx, ok := split(v); ok {
		l.s.Debugw(msg, ctx...)
	}
}

func (l *ZapLogger) Debugf(format string, v ...interface{}) {
	l.s.Debug(fmt.Sprintf(format, v...))
}

func (l *ZapLogger) Info(v ...interface{}) {
	if msg, ctx, ok := split(v); ok {
		l.s.Infow(msg, ctx...)
	}
}

func (l *ZapLogger) Infof(format string, v ...interface{}) {
	l.s.Info(fmt.Sprintf(format, v...))
}

func (l *ZapLogger) Warning(v ...interface{}) {
	if msg, ctx, ok := split(v); ok {
		l.s.Warnw(msg, ctx...)
	}
}

func (l *ZapLogger) Warningf(format string, v ...interface{}) {
	l.s.Warn(fmt.Sprintf(format, v...))
}

func (l *ZapLogger) Error(v ...interface{}) {
	if msg, ctx, ok := split(v); ok {
		l.s.Errorw(msg, ctx...)
	}
}

func (l *ZapLogger) Errorf(format string, v ...interface{}) {
	l.s.Error(fmt.Sprintf(format, v...))
}

// Fatal logs at error level; unlike zap's own Fatal it does not exit.
func (l *ZapLogger) Fatal(v ...interface{}) {
	if msg, ctx, ok := split(v); ok {
		l.s.Errorw(msg, ctx...)
	}
}

func (l *ZapLogger) Fatalf(format string, v ...interface{}) {
	l.s.Error(fmt.Sprintf(format, v...))
}

// Sync flushes buffered zap entries.
func (l *ZapLogger) Sync() error {
	return l.s.Sync()
}

// zapHandler forwards log15 records to zap.
type zapHandler struct {
	s *zap.SugaredLogger
}

func (h zapHandler) Log(r *log15.Record) error {
	switch r.Lvl {
	case log15.LvlCrit, log15.LvlError:
		h.s.Errorw(r.Msg, r.Ctx...)
	case log15.LvlWarn:
		h.s.Warnw(r.Msg, r.Ctx...)
	case log15.LvlInfo:
		h.s.Infow(r.Msg, r.Ctx...)
	default:
		h.s.Debugw(r.Msg, r.Ctx...)
	}
	return nil
}
