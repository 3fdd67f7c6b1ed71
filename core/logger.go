package core

// Logger is any leveled logger the services can report to.
// Implementations may inspect args for well-known types (errors, request users)
// and forward them to an external error tracker.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
