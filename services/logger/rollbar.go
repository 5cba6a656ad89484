package logger

import (
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/kymoh/moviematrix/core"
	"github.com/kymoh/moviematrix/core/user"
)

// rollbarLogger ships Warning-and-up to Rollbar and mirrors everything
// to a local logger.
type rollbarLogger struct {
	client *rollbar.Client
	local  core.Logger
}

var _ core.Logger = (*rollbarLogger)(nil)

func NewRollbarLogger(conf *core.Config, local core.Logger) core.Logger {
	client := rollbar.New(conf.RollbarToken, conf.Env, conf.Build, conf.Server.Host, "github.com/kymoh/moviematrix")
	client.SetStackTracer(errors.StackTracer)
	client.SetEnabled(!(conf.Debug || conf.TestMode))
	return &rollbarLogger{
		client: client,
		local:  local,
	}
}

func (l *rollbarLogger) Debug(msg string, args ...interface{}) {
	l.local.Debug(msg, args...)
}

func (l *rollbarLogger) Info(msg string, args ...interface{}) {
	l.local.Info(msg, args...)
}

func (l *rollbarLogger) Warn(msg string, args ...interface{}) {
	l.local.Warn(msg, args...)
	l.client.MessageWithExtras(rollbar.WARN, msg, extras(args))
}

func (l *rollbarLogger) Error(msg string, args ...interface{}) {
	l.local.Error(msg, args...)
	if err, rest := splitError(args); err != nil {
		l.client.ErrorWithExtras(rollbar.ERR, err, extras(rest))
	} else {
		l.client.MessageWithExtras(rollbar.ERR, msg, extras(args))
	}
}

func (l *rollbarLogger) Fatal(msg string, args ...interface{}) {
	if err, rest := splitError(args); err != nil {
		l.client.ErrorWithExtras(rollbar.CRIT, err, extras(rest))
	} else {
		l.client.MessageWithExtras(rollbar.CRIT, msg, extras(args))
	}
	l.client.Wait()
	l.local.Fatal(msg, args...)
}

// SetUser attaches the acting user to subsequent Rollbar reports.
func (l *rollbarLogger) SetUser(usr user.User) {
	l.client.SetPerson(strconv.FormatInt(usr.ID, 10), usr.Username, usr.Email)
}

func splitError(args []interface{}) (error, []interface{}) {
	for i, arg := range args {
		if err, ok := arg.(error); ok {
			return err, append(args[:i:i], args[i+1:]...)
		}
	}
	return nil, args
}

func extras(args []interface{}) map[string]interface{} {
	if len(args) == 0 {
		return nil
	}
	m := make(map[string]interface{}, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = strconv.Itoa(i)
		}
		m[key] = args[i+1]
	}
	return m
}
