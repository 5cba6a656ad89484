package core

// Logger is implemented by the logging services (services/logger).
// Extra args may carry errors or any contextual value; implementations
// decide how to report them.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
