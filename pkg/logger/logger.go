package logger

// Instance is a logging backend. All pipeline stages log through the
// package-level functions, which fan out to every configured backend.
type Instance interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
	Fatal(message string, keyvals ...any)
}

type dispatcher struct {
	instances []Instance
}

var singleton *dispatcher

// Init configures the global logger with one or more backends.
// Must be called once at process startup, before any logging call.
func Init(instances ...Instance) {
	singleton = &dispatcher{instances: instances}
}

// Log writes a message at the default level to all backends.
func Log(message string, keyvals ...any) {
	if singleton == nil {
		return
	}
	for _, in := range singleton.instances {
		in.Log(message, keyvals...)
	}
}

// Debug writes a message at DEBUG level to all backends.
func Debug(message string, keyvals ...any) {
	if singleton == nil {
		return
	}
	for _, in := range singleton.instances {
		in.Debug(message, keyvals...)
	}
}

// Info writes a message at INFO level to all backends.
func Info(message string, keyvals ...any) {
	if singleton == nil {
		return
	}
	for _, in := range singleton.instances {
		in.Info(message, keyvals...)
	}
}

// Warn writes a message at WARN level to all backends.
func Warn(message string, keyvals ...any) {
	if singleton == nil {
		return
	}
	for _, in := range singleton.instances {
		in.Warn(message, keyvals...)
	}
}

// Error writes a message at ERROR level to all backends.
func Error(message string, keyvals ...any) {
	if singleton == nil {
		return
	}
	for _, in := range singleton.instances {
		in.Error(message, keyvals...)
	}
}

// Fatal writes a message at FATAL level and terminates the process.
func Fatal(message string, keyvals ...any) {
	if singleton == nil {
		return
	}
	for _, in := range singleton.instances {
		in.Fatal(message, keyvals...)
	}
}
