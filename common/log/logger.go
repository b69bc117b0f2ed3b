package log

import (
	"fmt"
	"sync"

	"github.com/inconshreveable/log15"
	"github.com/zhigui-projects/go-quizledger/api"
)

type Logger = api.Logger

var (
	mu            sync.RWMutex
	defaultLogger Logger
)

// SetLogger replaces the process wide logger. Loggers already handed out
// by GetLogger keep their previous backend.
func SetLogger(l Logger) {
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
}

func GetLogger(ctx ...interface{}) Logger {
	mu.Lock()
	if defaultLogger == nil {
		defaultLogger = &DefaultLogger{Logger: root.New("logger", "quizledger")}
	}
	l := defaultLogger
	mu.Unlock()

	if len(ctx) == 0 {
		return l
	}
	return l.New(ctx...)
}

// DefaultLogger adapts a log15.Logger to the Logger interface.
type DefaultLogger struct {
	log15.Logger
}

func (l *DefaultLogger) New(ctx ...interface{}) Logger {
	return &DefaultLogger{l.Logger.New(ctx...)}
}

// split turns Debug("msg", "k", v) style arguments into log15's form.
func split(v []interface{}) (string, []interface{}, bool) {
	if len(v) == 0 {
		return "", nil, false
	}
	msg, ok := v[0].(string)
	if !ok {
		msg = fmt.Sprint(v[0])
	}
	return msg, v[1:], true
}

func (l *DefaultLogger) Debug(v ...interface{}) {
	if msg, ctx, ok := split(v); ok {
		l.Logger.Debug(msg, ctx...)
	}
}

func (l *DefaultLogger) Debugf(format string, v ...interface{}) {
	l.Logger.Debug(fmt.Sprintf(format, v...))
}

func (l *DefaultLogger) Info(v ...interface{}) {
	if msg, ctx, ok := split(v); ok {
		l.Logger.Info(msg, ctx...)
	}
}

func (l *DefaultLogger) Infof(format string, v ...interface{}) {
	l.Logger.Info(fmt.Sprintf(format, v...))
}

func (l *DefaultLogger) Warning(v ...interface{}) {
	if msg, ctx, ok := split(v); ok {
		l.Logger.Warn(msg, ctx...)
	}
}

func (l *DefaultLogger) Warningf(format string, v ...interface{}) {
	l.Logger.Warn(fmt.Sprintf(format, v...))
}

func (l *DefaultLogger) Error(v ...interface{}) {
	if msg, ctx, ok := split(v); ok {
		l.Logger.Error(msg, ctx...)
	}
}

func (l *DefaultLogger) Errorf(format string, v ...interface{}) {
	l.Logger.Error(fmt.Sprintf(format, v...))
}

func (l *DefaultLogger) Fatal(v ...interface{}) {
	if msg, ctx, ok := split(v); ok {
		l.Logger.Crit(msg, ctx...)
	}
}

func (l *DefaultLogger) Fatalf(format string, v ...interface{}) {
	l.Logger.Crit(fmt.Sprintf(format, v...))
}
