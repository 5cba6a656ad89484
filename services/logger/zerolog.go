package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/kymoh/moviematrix/core"
)

type zeroLogger struct {
	log zerolog.Logger
}

var _ core.Logger = (*zeroLogger)(nil)

// NewZeroLogger returns a console logger for local development.
func NewZeroLogger(conf *core.Config) core.Logger {
	var out io.Writer = os.Stderr
	if conf.Debug {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	lvl := zerolog.InfoLevel
	if conf.Debug {
		lvl = zerolog.DebugLevel
	}
	log := zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("app", conf.AppName).
		Logger()
	return &zeroLogger{log: log}
}

func NewTestLogger() core.Logger {
	return &zeroLogger{log: zerolog.New(io.Discard)}
}

func (l *zeroLogger) Debug(msg string, args ...interface{}) { l.emit(l.log.Debug(), msg, args) }
func (l *zeroLogger) Info(msg string, args ...interface{})  { l.emit(l.log.Info(), msg, args) }
func (l *zeroLogger) Warn(msg string, args ...interface{})  { l.emit(l.log.Warn(), msg, args) }
func (l *zeroLogger) Error(msg string, args ...interface{}) { l.emit(l.log.Error(), msg, args) }
func (l *zeroLogger) Fatal(msg string, args ...interface{}) { l.emit(l.log.Fatal(), msg, args) }

func (l *zeroLogger) emit(evt *zerolog.Event, msg string, args []interface{}) {
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			evt = evt.Interface(key, args[i+1])
		}
	}
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			evt = evt.Err(err)
			break
		}
	}
	evt.Msg(msg)
}
