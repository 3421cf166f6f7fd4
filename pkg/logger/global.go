package logger

import "go.uber.org/zap"

type globalLogger struct{}

// Global returns a Logger that resolves zap.L() on every call, so it keeps
// following the process-wide logger across re-initialization.
func Global() Logger {
	return globalLogger{}
}

func sugar() *zap.SugaredLogger {
	return zap.L().WithOptions(zap.AddCallerSkip(1)).Sugar()
}

func (globalLogger) Debug(msg string, fields ...interface{}) { sugar().Debugw(msg, fields...) }
func (globalLogger) Info(msg string, fields ...interface{})  { sugar().Infow(msg, fields...) }
func (globalLogger) Warn(msg string, fields ...interface{})  { sugar().Warnw(msg, fields...) }
func (globalLogger) Error(msg string, fields ...interface{}) { sugar().Errorw(msg, fields...) }

func (globalLogger) Critical(msg string, fields ...interface{}) {
	sugar().DPanicw(msg, fields...)
}

func (globalLogger) Fatal(msg string, fields ...interface{}) { sugar().Fatalw(msg, fields...) }
