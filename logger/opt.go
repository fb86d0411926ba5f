package logger

import "log"

// A LoggerOptFn is a functional option configuring a LifelineLogger when constructing a new one.
type LoggerOptFn func(*LifelineLogger)

// WithEnv sets the environment LifelineLogger is operating in.
func WithEnv(env string) func(*LifelineLogger) {
	return func(l *LifelineLogger) {
		l.env = env
	}
}

// WithLevel sets the log level LifelineLogger uses.
func WithLevel(level LogLevel) func(*LifelineLogger) {
	return func(l *LifelineLogger) {
		l.ll = level
	}
}

// WithLogger sets the log.Logger LifelineLogger uses.
func WithLogger(log *log.Logger) func(*LifelineLogger) {
	return func(l *LifelineLogger) {
		l.l = log
	}
}

// WithSkip sets the number of frames in the call stack
// to skip in order to log the desired file and line number
// of the calling code.
func WithSkip(skip int) func(*LifelineLogger) {
	return func(l *LifelineLogger) {
		l.skip = skip
	}
}
